package interpreter

import (
	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpressionNode(node, env)
	if err != nil {
		return nil, located(err, node)
	}
	return val, nil
}

func (i *Interpreter) evaluateExpressionNode(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.IntegerLiteral:
		return runtime.IntegerValue{Val: n.Value}, nil
	case *ast.FloatLiteral:
		return runtime.FloatValue{Val: n.Value}, nil
	case *ast.CharLiteral:
		return runtime.CharValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.Bool(n.Value), nil
	case *ast.ArrayLiteral:
		return i.evaluateArrayLiteral(n, env)
	case *ast.Identifier:
		return i.resolveName(n.Name, env)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.CallExpression:
		return i.evaluateCallExpression(n, env)
	case *ast.IndexExpression:
		return i.evaluateIndexExpression(n, env)
	case *ast.MemberAccessExpression:
		return i.evaluateMemberAccess(n, env)
	case *ast.MethodCallExpression:
		return i.evaluateMethodCall(n, env)
	case *ast.InputExpression:
		return i.readInput()
	case *ast.ReadExpression:
		return i.readFile(n.Path)
	case nil:
		return nil, newRuntimeError(UnsupportedConstruct, "nil expression")
	default:
		return nil, newRuntimeError(UnsupportedConstruct, "unsupported expression type: %s", n.NodeType())
	}
}

// resolveName looks through the scope chain, then the object and array
// registries.
func (i *Interpreter) resolveName(name string, env *runtime.Environment) (runtime.Value, error) {
	if val, ok := env.Lookup(name); ok {
		return val, nil
	}
	if obj, ok := i.objects[name]; ok {
		return obj, nil
	}
	if arr, ok := i.arrays[name]; ok {
		return arr, nil
	}
	return nil, newRuntimeError(UndefinedName, "undefined variable '%s'", name)
}

func (i *Interpreter) resolveArray(name string, env *runtime.Environment) (*runtime.ArrayValue, error) {
	if val, ok := env.Lookup(name); ok {
		if arr, ok := val.(*runtime.ArrayValue); ok {
			return arr, nil
		}
		if _, ok := i.arrays[name]; !ok {
			return nil, newRuntimeError(TypeMismatch, "'%s' is %s, not an array", name, typeNameOf(val))
		}
	}
	if arr, ok := i.arrays[name]; ok {
		return arr, nil
	}
	return nil, newRuntimeError(UndefinedName, "undefined array '%s'", name)
}

func (i *Interpreter) resolveObject(name string, env *runtime.Environment) (*runtime.ObjectValue, error) {
	if val, ok := env.Lookup(name); ok {
		if obj, ok := val.(*runtime.ObjectValue); ok {
			return obj, nil
		}
		if _, ok := i.objects[name]; !ok {
			return nil, newRuntimeError(TypeMismatch, "'%s' is %s, not an object", name, typeNameOf(val))
		}
	}
	if obj, ok := i.objects[name]; ok {
		return obj, nil
	}
	return nil, newRuntimeError(UndefinedName, "undefined object '%s'", name)
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env)
	if err != nil {
		return nil, err
	}
	return applyUnary(expr.Operator, operand)
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	switch expr.Operator {
	case "&&", "||":
		return i.evaluateLogical(expr, env)
	}
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(expr.Operator, left, right)
}

// evaluateLogical leaves the right operand unevaluated once the left one
// decides the result.
func (i *Interpreter) evaluateLogical(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateCondition(expr.Left, env)
	if err != nil {
		return nil, err
	}
	if expr.Operator == "&&" && !left {
		return runtime.Bool(false), nil
	}
	if expr.Operator == "||" && left {
		return runtime.Bool(true), nil
	}
	right, err := i.evaluateCondition(expr.Right, env)
	if err != nil {
		return nil, err
	}
	return runtime.Bool(right), nil
}

func (i *Interpreter) evaluateArguments(args []ast.Expression, env *runtime.Environment) ([]runtime.Value, error) {
	if len(args) == 0 {
		return nil, nil
	}
	values := make([]runtime.Value, 0, len(args))
	for _, arg := range args {
		val, err := i.evaluateExpression(arg, env)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return values, nil
}

func (i *Interpreter) evaluateCallExpression(call *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	fn, ok := i.functions[call.Callee]
	if !ok {
		return nil, newRuntimeError(UndefinedName, "undefined function '%s'", call.Callee)
	}
	args, err := i.evaluateArguments(call.Arguments, env)
	if err != nil {
		return nil, err
	}
	return i.callFunction(fn, args, env, call)
}

// callFunction opens a frame whose parent is the caller's frame, binds the
// parameters and runs the body until it returns.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value, env *runtime.Environment, site ast.Node) (runtime.Value, error) {
	decl := fn.Declaration
	if len(args) != len(decl.Params) {
		return nil, newRuntimeError(ArgumentCountMismatch, "function '%s' expects %d arguments, got %d", decl.Name, len(decl.Params), len(args))
	}
	scope := env.Extend()
	for idx, param := range decl.Params {
		scope.Define(param, args[idx])
	}
	return i.invoke(decl, scope, site)
}

func (i *Interpreter) invoke(decl *ast.FunctionDefinition, scope *runtime.Environment, site ast.Node) (runtime.Value, error) {
	if i.depth >= i.maxCallDepth {
		return nil, newRuntimeError(CallDepthExceeded, "call depth exceeded %d in '%s'", i.maxCallDepth, decl.Name)
	}
	i.depth++
	defer func() { i.depth-- }()

	if err := i.evaluateBlock(decl.Body, scope); err != nil {
		if ret, ok := err.(returnSignal); ok {
			return ret.value, nil
		}
		return nil, withCallSite(err, site)
	}
	return runtime.IntegerValue{Val: 0}, nil
}

func (i *Interpreter) evaluateIndexExpression(expr *ast.IndexExpression, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	index, err := i.evaluateIndex(expr.Index, env)
	if err != nil {
		return nil, err
	}
	name := describeTarget(expr.Object)
	switch t := target.(type) {
	case *runtime.ArrayValue:
		if index < 0 || index >= int64(t.Len()) {
			return nil, newIndexError(name, index, t.Len())
		}
		return t.Elements[index], nil
	case runtime.StringValue:
		runes := []rune(t.Val)
		if index < 0 || index >= int64(len(runes)) {
			return nil, newIndexError(name, index, len(runes))
		}
		return runtime.CharValue{Val: runes[index]}, nil
	default:
		return nil, newRuntimeError(TypeMismatch, "cannot index %s", typeNameOf(target))
	}
}

func (i *Interpreter) evaluateIndex(expr ast.Expression, env *runtime.Environment) (int64, error) {
	val, err := i.evaluateExpression(expr, env)
	if err != nil {
		return 0, err
	}
	switch v := val.(type) {
	case runtime.IntegerValue:
		return v.Val, nil
	case runtime.CharValue:
		return int64(v.Val), nil
	default:
		return 0, located(newRuntimeError(TypeMismatch, "array index must be int, got %s", typeNameOf(val)), expr)
	}
}

// describeTarget names an indexed expression for error messages.
func describeTarget(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.MemberAccessExpression:
		return describeTarget(e.Object) + "." + e.Member
	case *ast.IndexExpression:
		return describeTarget(e.Object) + "[...]"
	default:
		return "value"
	}
}
