package interpreter

import (
	"tinylang/interpreter-go/pkg/runtime"
)

func applyUnary(op string, operand runtime.Value) (runtime.Value, error) {
	switch op {
	case "!":
		truthy, err := isTruthy(operand)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(!truthy), nil
	case "-":
		switch v := operand.(type) {
		case runtime.IntegerValue:
			return runtime.IntegerValue{Val: -v.Val}, nil
		case runtime.FloatValue:
			return runtime.FloatValue{Val: -v.Val}, nil
		case runtime.CharValue:
			return runtime.IntegerValue{Val: -int64(v.Val)}, nil
		}
		return nil, newRuntimeError(TypeMismatch, "unary '-' is not defined for %s", typeNameOf(operand))
	default:
		return nil, newRuntimeError(UnsupportedConstruct, "unsupported unary operator %s", op)
	}
}

// applyBinary implements every non-logical operator. Rules apply in order:
// string concatenation, float promotion, char equality, integer arithmetic.
func applyBinary(op string, left, right runtime.Value) (runtime.Value, error) {
	ls, leftIsString := left.(runtime.StringValue)
	rs, rightIsString := right.(runtime.StringValue)
	if leftIsString || rightIsString {
		switch {
		case op == "+":
			return runtime.StringValue{Val: valueToString(left) + valueToString(right)}, nil
		case leftIsString && rightIsString && op == "==":
			return runtime.Bool(ls.Val == rs.Val), nil
		case leftIsString && rightIsString && op == "!=":
			return runtime.Bool(ls.Val != rs.Val), nil
		}
		return nil, operatorMismatch(op, left, right)
	}
	if !isNumeric(left) || !isNumeric(right) {
		return nil, operatorMismatch(op, left, right)
	}

	if left.Kind() == runtime.KindFloat || right.Kind() == runtime.KindFloat {
		return applyFloat(op, toFloat(left), toFloat(right))
	}
	if lc, ok := left.(runtime.CharValue); ok {
		if rc, ok := right.(runtime.CharValue); ok {
			switch op {
			case "==":
				return runtime.Bool(lc.Val == rc.Val), nil
			case "!=":
				return runtime.Bool(lc.Val != rc.Val), nil
			}
			return nil, operatorMismatch(op, left, right)
		}
	}
	return applyInteger(op, toInt(left), toInt(right))
}

func applyInteger(op string, l, r int64) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.IntegerValue{Val: l + r}, nil
	case "-":
		return runtime.IntegerValue{Val: l - r}, nil
	case "*":
		return runtime.IntegerValue{Val: l * r}, nil
	case "/":
		if r == 0 {
			return nil, newDivisionByZeroError()
		}
		return runtime.IntegerValue{Val: l / r}, nil
	case ">":
		return runtime.Bool(l > r), nil
	case "<":
		return runtime.Bool(l < r), nil
	case "==":
		return runtime.Bool(l == r), nil
	case "!=":
		return runtime.Bool(l != r), nil
	default:
		return nil, newRuntimeError(UnsupportedConstruct, "unsupported binary operator %s", op)
	}
}

func applyFloat(op string, l, r float64) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.FloatValue{Val: l + r}, nil
	case "-":
		return runtime.FloatValue{Val: l - r}, nil
	case "*":
		return runtime.FloatValue{Val: l * r}, nil
	case "/":
		if r == 0 {
			return nil, newDivisionByZeroError()
		}
		return runtime.FloatValue{Val: l / r}, nil
	case ">":
		return runtime.Bool(l > r), nil
	case "<":
		return runtime.Bool(l < r), nil
	case "==":
		return runtime.Bool(l == r), nil
	case "!=":
		return runtime.Bool(l != r), nil
	default:
		return nil, newRuntimeError(UnsupportedConstruct, "unsupported binary operator %s", op)
	}
}

func operatorMismatch(op string, left, right runtime.Value) error {
	return newRuntimeError(TypeMismatch, "operator %s is not defined for %s and %s", op, typeNameOf(left), typeNameOf(right))
}

func isNumeric(val runtime.Value) bool {
	switch val.(type) {
	case runtime.IntegerValue, runtime.FloatValue, runtime.CharValue:
		return true
	default:
		return false
	}
}

// toInt and toFloat assume isNumeric(val).
func toInt(val runtime.Value) int64 {
	switch v := val.(type) {
	case runtime.IntegerValue:
		return v.Val
	case runtime.CharValue:
		return int64(v.Val)
	case runtime.FloatValue:
		return int64(v.Val)
	}
	return 0
}

func toFloat(val runtime.Value) float64 {
	switch v := val.(type) {
	case runtime.FloatValue:
		return v.Val
	case runtime.IntegerValue:
		return float64(v.Val)
	case runtime.CharValue:
		return float64(v.Val)
	}
	return 0
}

func isTruthy(val runtime.Value) (bool, error) {
	switch v := val.(type) {
	case runtime.IntegerValue:
		return v.Val != 0, nil
	case runtime.FloatValue:
		return v.Val != 0, nil
	case runtime.CharValue:
		return v.Val != 0, nil
	default:
		return false, newRuntimeError(TypeMismatch, "%s used as a condition", typeNameOf(val))
	}
}

// typeNameOf reports the declared-type spelling of a value: a scalar type
// keyword, a class name, or "array".
func typeNameOf(val runtime.Value) string {
	switch v := val.(type) {
	case *runtime.ObjectValue:
		return v.Class.Name()
	case nil:
		return "nothing"
	default:
		return v.Kind().String()
	}
}

//-----------------------------------------------------------------------------
// Coercion
//-----------------------------------------------------------------------------

// convertScalar converts between the numeric kinds; strings only convert to
// strings.
func convertScalar(val runtime.Value, typeName string) (runtime.Value, error) {
	if typeName == runtime.TypeString {
		if s, ok := val.(runtime.StringValue); ok {
			return s, nil
		}
		return nil, newRuntimeError(TypeMismatch, "cannot convert %s to string", typeNameOf(val))
	}
	if !isNumeric(val) {
		return nil, newRuntimeError(TypeMismatch, "cannot convert %s to %s", typeNameOf(val), typeName)
	}
	switch typeName {
	case runtime.TypeInt:
		return runtime.IntegerValue{Val: toInt(val)}, nil
	case runtime.TypeBool:
		truthy, _ := isTruthy(val)
		return runtime.Bool(truthy), nil
	case runtime.TypeFloat:
		return runtime.FloatValue{Val: toFloat(val)}, nil
	case runtime.TypeChar:
		return runtime.CharValue{Val: rune(toInt(val))}, nil
	default:
		return nil, newRuntimeError(UndefinedName, "unknown type '%s'", typeName)
	}
}

// coerce converts val to a declared type: a scalar keyword, a class name, or
// "" for untyped slots.
func (i *Interpreter) coerce(val runtime.Value, typeName string) (runtime.Value, error) {
	if typeName == "" {
		return val, nil
	}
	if runtime.IsScalarType(typeName) {
		return convertScalar(val, typeName)
	}
	class, ok := i.classes[typeName]
	if !ok {
		return nil, newRuntimeError(UndefinedName, "unknown type '%s'", typeName)
	}
	obj, ok := val.(*runtime.ObjectValue)
	if !ok || !obj.Class.IsSubclassOf(class) {
		return nil, newRuntimeError(TypeMismatch, "expected %s, got %s", typeName, typeNameOf(val))
	}
	return obj, nil
}

func (i *Interpreter) coerceElements(elems []runtime.Value, typeName string) ([]runtime.Value, error) {
	out := make([]runtime.Value, len(elems))
	for idx, elem := range elems {
		converted, err := i.coerce(elem, typeName)
		if err != nil {
			return nil, err
		}
		out[idx] = converted
	}
	return out, nil
}
