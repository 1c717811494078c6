package interpreter

import (
	"strconv"
	"strings"

	"tinylang/interpreter-go/pkg/runtime"
)

func valueToString(val runtime.Value) string {
	switch v := val.(type) {
	case runtime.IntegerValue:
		return strconv.FormatInt(v.Val, 10)
	case runtime.FloatValue:
		return strconv.FormatFloat(v.Val, 'g', -1, 64)
	case runtime.CharValue:
		return string(v.Val)
	case runtime.StringValue:
		return v.Val
	case *runtime.ArrayValue:
		parts := make([]string, len(v.Elements))
		for idx, elem := range v.Elements {
			parts[idx] = valueToString(elem)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *runtime.ObjectValue:
		var b strings.Builder
		b.WriteString(v.Class.Name())
		b.WriteByte('{')
		for idx, field := range v.Class.Fields() {
			if idx > 0 {
				b.WriteString(", ")
			}
			b.WriteString(field.Name)
			b.WriteString(": ")
			b.WriteString(valueToString(v.Fields[field.Name]))
		}
		b.WriteByte('}')
		return b.String()
	case *runtime.FunctionValue:
		return "<function " + v.Declaration.Name + ">"
	case *runtime.ClassValue:
		return "<class " + v.Name() + ">"
	case nil:
		return "nil"
	default:
		return "<" + val.Kind().String() + ">"
	}
}
