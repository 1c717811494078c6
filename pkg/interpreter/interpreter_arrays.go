package interpreter

import (
	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/runtime"
)

// declareFixedArray handles `T xs[size];` for scalar and class element types.
func (i *Interpreter) declareFixedArray(stmt *ast.AssignmentStatement, env *runtime.Environment) error {
	size, err := i.evaluateIndex(stmt.Value, env)
	if err != nil {
		return err
	}
	if size < 0 {
		return newRuntimeError(IndexOutOfBounds, "negative size %d for array '%s'", size, stmt.Target)
	}
	if size > i.maxArrayLen {
		return newRuntimeError(IndexOutOfBounds, "size %d for array '%s' exceeds the limit of %d elements", size, stmt.Target, i.maxArrayLen)
	}
	elems := make([]runtime.Value, size)
	if zero, ok := runtime.ZeroValue(stmt.TypeTag); ok {
		for idx := range elems {
			elems[idx] = zero
		}
	} else {
		class, ok := i.classes[stmt.TypeTag]
		if !ok {
			return newRuntimeError(UndefinedName, "unknown type '%s'", stmt.TypeTag)
		}
		for idx := range elems {
			obj, err := i.construct(class, nil, env, stmt, nil)
			if err != nil {
				return err
			}
			elems[idx] = obj
		}
	}
	i.arrays[stmt.Target] = &runtime.ArrayValue{ElemType: stmt.TypeTag, Elements: elems}
	return nil
}

// declareDynamicArray handles `T xs[];` and `T xs[] = expr;`. The result is
// growable.
func (i *Interpreter) declareDynamicArray(stmt *ast.AssignmentStatement, env *runtime.Environment) error {
	if !runtime.IsScalarType(stmt.TypeTag) {
		if _, ok := i.classes[stmt.TypeTag]; !ok {
			return newRuntimeError(UndefinedName, "unknown type '%s'", stmt.TypeTag)
		}
	}
	arr := &runtime.ArrayValue{ElemType: stmt.TypeTag, Growable: true}
	if stmt.Value != nil {
		val, err := i.evaluateExpression(stmt.Value, env)
		if err != nil {
			return err
		}
		src, ok := val.(*runtime.ArrayValue)
		if !ok {
			return newRuntimeError(TypeMismatch, "cannot initialize array '%s' from %s", stmt.Target, typeNameOf(val))
		}
		elems, err := i.coerceElements(src.Elements, stmt.TypeTag)
		if err != nil {
			return err
		}
		arr.Elements = elems
	}
	i.arrays[stmt.Target] = arr
	return nil
}

// evaluateArrayLiteral infers the element type from the first element.
func (i *Interpreter) evaluateArrayLiteral(lit *ast.ArrayLiteral, env *runtime.Environment) (runtime.Value, error) {
	values, err := i.evaluateArguments(lit.Elements, env)
	if err != nil {
		return nil, err
	}
	arr := &runtime.ArrayValue{Growable: true}
	if len(values) == 0 {
		return arr, nil
	}
	if values[0].Kind() != runtime.KindArray {
		arr.ElemType = typeNameOf(values[0])
	}
	elems, err := i.coerceElements(values, arr.ElemType)
	if err != nil {
		return nil, err
	}
	arr.Elements = elems
	return arr, nil
}

// storeElement writes arr[index]. Growable arrays append when index equals the
// current length.
func (i *Interpreter) storeElement(name string, arr *runtime.ArrayValue, index int64, val runtime.Value) error {
	elemType := arr.ElemType
	if elemType == "" && val.Kind() != runtime.KindArray {
		elemType = typeNameOf(val)
	}
	converted, err := i.coerce(val, elemType)
	if err != nil {
		return err
	}
	switch {
	case index >= 0 && index < int64(arr.Len()):
		arr.Elements[index] = converted
	case arr.Growable && index == int64(arr.Len()):
		if index >= i.maxArrayLen {
			return newRuntimeError(IndexOutOfBounds, "array '%s' cannot grow past %d elements", name, i.maxArrayLen)
		}
		arr.Elements = append(arr.Elements, converted)
	default:
		return newIndexError(name, index, arr.Len())
	}
	arr.ElemType = elemType
	return nil
}
