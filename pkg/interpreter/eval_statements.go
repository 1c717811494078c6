package interpreter

import (
	"errors"
	"fmt"

	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) error {
	var err error
	switch n := node.(type) {
	case *ast.AssignmentStatement:
		err = i.evaluateAssignment(n, env)
	case *ast.ArrayAssignment:
		err = i.evaluateArrayAssignment(n, env)
	case *ast.PrintStatement:
		err = i.evaluatePrintStatement(n, env)
	case *ast.ExpressionStatement:
		_, err = i.evaluateExpression(n.Expression, env)
	case *ast.IfStatement:
		err = i.evaluateIfStatement(n, env)
	case *ast.WhileStatement:
		err = i.evaluateWhileStatement(n, env)
	case *ast.ForStatement:
		err = i.evaluateForStatement(n, env)
	case *ast.ReturnStatement:
		err = i.evaluateReturnStatement(n, env)
	case *ast.FunctionDefinition:
		i.defineFunction(n)
	case *ast.ClassDefinition:
		err = i.defineClass(n)
	case *ast.ObjectInstantiation:
		err = i.evaluateObjectInstantiation(n, env)
	case nil:
		err = newRuntimeError(UnsupportedConstruct, "nil statement")
	default:
		err = newRuntimeError(UnsupportedConstruct, "unsupported statement type: %s", n.NodeType())
	}
	if err != nil {
		return located(err, node)
	}
	return nil
}

// evaluateBlock runs statements in env. Control statements do not open a new
// scope; only calls do.
func (i *Interpreter) evaluateBlock(stmts []ast.Statement, env *runtime.Environment) error {
	for _, stmt := range stmts {
		if err := i.evaluateStatement(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluatePrintStatement(stmt *ast.PrintStatement, env *runtime.Environment) error {
	if lit, ok := stmt.Value.(*ast.BooleanLiteral); ok {
		_, err := fmt.Fprintln(i.stdout, lit.Value)
		return err
	}
	val, err := i.evaluateExpression(stmt.Value, env)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(i.stdout, valueToString(val))
	return err
}

func (i *Interpreter) evaluateIfStatement(stmt *ast.IfStatement, env *runtime.Environment) error {
	cond, err := i.evaluateCondition(stmt.Condition, env)
	if err != nil {
		return err
	}
	if cond {
		return i.evaluateBlock(stmt.Then, env)
	}
	return i.evaluateBlock(stmt.Else, env)
}

func (i *Interpreter) evaluateWhileStatement(loop *ast.WhileStatement, env *runtime.Environment) error {
	for {
		cond, err := i.evaluateCondition(loop.Condition, env)
		if err != nil {
			return err
		}
		if !cond {
			return nil
		}
		if err := i.evaluateBlock(loop.Body, env); err != nil {
			return err
		}
	}
}

func (i *Interpreter) evaluateForStatement(loop *ast.ForStatement, env *runtime.Environment) error {
	if loop.Init != nil {
		if err := i.evaluateStatement(loop.Init, env); err != nil {
			return err
		}
	}
	for {
		if loop.Condition != nil {
			cond, err := i.evaluateCondition(loop.Condition, env)
			if err != nil {
				return err
			}
			if !cond {
				return nil
			}
		}
		if err := i.evaluateBlock(loop.Body, env); err != nil {
			return err
		}
		if loop.Increment != nil {
			if err := i.evaluateStatement(loop.Increment, env); err != nil {
				return err
			}
		}
	}
}

func (i *Interpreter) evaluateCondition(expr ast.Expression, env *runtime.Environment) (bool, error) {
	val, err := i.evaluateExpression(expr, env)
	if err != nil {
		return false, err
	}
	truthy, err := isTruthy(val)
	if err != nil {
		return false, located(err, expr)
	}
	return truthy, nil
}

func (i *Interpreter) evaluateReturnStatement(stmt *ast.ReturnStatement, env *runtime.Environment) error {
	var result runtime.Value = runtime.IntegerValue{Val: 0}
	if stmt.Value != nil {
		val, err := i.evaluateExpression(stmt.Value, env)
		if err != nil {
			return err
		}
		result = val
	}
	return returnSignal{value: result}
}

//-----------------------------------------------------------------------------
// Assignment
//-----------------------------------------------------------------------------

func (i *Interpreter) evaluateAssignment(stmt *ast.AssignmentStatement, env *runtime.Environment) error {
	switch {
	case stmt.Shape == ast.ShapeFixed:
		return i.declareFixedArray(stmt, env)
	case stmt.Shape == ast.ShapeDynamic:
		return i.declareDynamicArray(stmt, env)
	case stmt.IsDeclaration():
		return i.declareVariable(stmt, env)
	}

	val, err := i.evaluateExpression(stmt.Value, env)
	if err != nil {
		return err
	}
	path, err := ast.ParseTargetPath(stmt.Target)
	if err != nil {
		return newRuntimeError(UnsupportedConstruct, "%s", err.Error())
	}
	if path.IsSimple() {
		return i.assignVariable(path.Base, val, env)
	}
	return i.assignPath(path, val, env)
}

// declareVariable always binds in the current frame, converting the
// initializer to the declared type.
func (i *Interpreter) declareVariable(stmt *ast.AssignmentStatement, env *runtime.Environment) error {
	var val runtime.Value
	if stmt.Value == nil {
		zero, ok := runtime.ZeroValue(stmt.TypeTag)
		if !ok {
			return newRuntimeError(UndefinedName, "unknown type '%s'", stmt.TypeTag)
		}
		val = zero
	} else {
		raw, err := i.evaluateExpression(stmt.Value, env)
		if err != nil {
			return err
		}
		converted, err := i.coerce(raw, stmt.TypeTag)
		if err != nil {
			return err
		}
		val = converted
	}
	env.Declare(stmt.Target, stmt.TypeTag, val)
	return nil
}

// assignVariable mutates an existing binding wherever it lives, or creates one
// in the current frame. A binding made by a typed declaration converts the
// value to its declared type; any other binding takes the value as it is.
// Registered arrays and objects are replaced in place.
func (i *Interpreter) assignVariable(name string, val runtime.Value, env *runtime.Environment) error {
	if typeName, ok := env.DeclaredType(name); ok {
		if typeName != "" {
			converted, err := i.coerce(val, typeName)
			if err != nil {
				if errors.Is(err, ErrTypeMismatch) {
					return newRuntimeError(TypeMismatch, "cannot assign %s to %s variable '%s'", typeNameOf(val), typeName, name)
				}
				return err
			}
			val = converted
		}
		env.Set(name, val)
		return nil
	}
	if arr, ok := i.arrays[name]; ok {
		src, ok := val.(*runtime.ArrayValue)
		if !ok {
			return newRuntimeError(TypeMismatch, "cannot assign %s to array '%s'", val.Kind(), name)
		}
		elems, err := i.coerceElements(src.Elements, arr.ElemType)
		if err != nil {
			return err
		}
		if arr.ElemType == "" && len(elems) > 0 {
			arr.ElemType = src.ElemType
		}
		arr.Elements = elems
		return nil
	}
	if obj, ok := i.objects[name]; ok {
		src, ok := val.(*runtime.ObjectValue)
		if !ok || !src.Class.IsSubclassOf(obj.Class) {
			return newRuntimeError(TypeMismatch, "cannot assign %s to object '%s' of class %s", typeNameOf(val), name, obj.Class.Name())
		}
		i.objects[name] = src
		return nil
	}
	env.Define(name, val)
	return nil
}

// assignPath writes through a composite target such as "p.x" or "pts[2].x".
func (i *Interpreter) assignPath(path ast.TargetPath, val runtime.Value, env *runtime.Environment) error {
	var current runtime.Value
	if path.HasIndex {
		arr, err := i.resolveArray(path.Base, env)
		if err != nil {
			return err
		}
		if path.Index < 0 || path.Index >= int64(arr.Len()) {
			return newIndexError(path.Base, path.Index, arr.Len())
		}
		if len(path.Fields) == 0 {
			return i.storeElement(path.Base, arr, path.Index, val)
		}
		current = arr.Elements[path.Index]
	} else {
		obj, err := i.resolveObject(path.Base, env)
		if err != nil {
			return err
		}
		current = obj
	}

	owner := path.Base
	for idx, field := range path.Fields {
		obj, ok := current.(*runtime.ObjectValue)
		if !ok {
			return newRuntimeError(TypeMismatch, "'%s' is %s, not an object", owner, typeNameOf(current))
		}
		if _, ok := obj.Fields[field]; !ok {
			return newRuntimeError(UndefinedName, "class %s has no field '%s'", obj.Class.Name(), field)
		}
		if idx == len(path.Fields)-1 {
			return i.storeField(obj, field, val)
		}
		current = obj.Fields[field]
		owner = field
	}
	return nil
}

func (i *Interpreter) storeField(obj *runtime.ObjectValue, field string, val runtime.Value) error {
	typeName, _ := obj.FieldType(field)
	converted, err := i.coerce(val, typeName)
	if err != nil {
		return err
	}
	obj.Fields[field] = converted
	return nil
}

func (i *Interpreter) evaluateArrayAssignment(stmt *ast.ArrayAssignment, env *runtime.Environment) error {
	arr, err := i.resolveArray(stmt.Array, env)
	if err != nil {
		return err
	}
	index, err := i.evaluateIndex(stmt.Index, env)
	if err != nil {
		return err
	}
	val, err := i.evaluateExpression(stmt.Value, env)
	if err != nil {
		return err
	}
	return i.storeElement(stmt.Array, arr, index, val)
}

//-----------------------------------------------------------------------------
// Objects
//-----------------------------------------------------------------------------

func (i *Interpreter) evaluateObjectInstantiation(stmt *ast.ObjectInstantiation, env *runtime.Environment) error {
	class, ok := i.classes[stmt.ClassName]
	if !ok {
		return newRuntimeError(UndefinedName, "undefined class '%s'", stmt.ClassName)
	}
	args, err := i.evaluateArguments(stmt.Arguments, env)
	if err != nil {
		return err
	}
	obj, err := i.construct(class, args, env, stmt, nil)
	if err != nil {
		return err
	}
	i.objects[stmt.Name] = obj
	return nil
}
