package interpreter

import (
	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/runtime"
)

const constructorName = "init"

// construct allocates an instance with every resolved field at its zero value
// and runs the constructor. With arguments an init method is required; without
// them a zero-parameter init runs when present. Class-typed fields hold their
// own instances; building tracks the classes under construction so a class
// that contains itself is rejected.
func (i *Interpreter) construct(class *runtime.ClassValue, args []runtime.Value, env *runtime.Environment, site ast.Node, building map[*runtime.ClassValue]bool) (*runtime.ObjectValue, error) {
	if building == nil {
		building = make(map[*runtime.ClassValue]bool)
	}
	if building[class] {
		return nil, newRuntimeError(UnsupportedConstruct, "class %s contains itself through its fields", class.Name())
	}
	building[class] = true
	defer delete(building, class)

	obj := &runtime.ObjectValue{Class: class, Fields: make(map[string]runtime.Value)}
	for _, field := range class.Fields() {
		if zero, ok := runtime.ZeroValue(field.Type); ok {
			obj.Fields[field.Name] = zero
			continue
		}
		fieldClass, ok := i.classes[field.Type]
		if !ok {
			return nil, newRuntimeError(UndefinedName, "unknown type '%s' for field %s.%s", field.Type, class.Name(), field.Name)
		}
		nested, err := i.construct(fieldClass, nil, env, site, building)
		if err != nil {
			return nil, err
		}
		obj.Fields[field.Name] = nested
	}

	ctor, hasInit := class.Method(constructorName)
	switch {
	case len(args) > 0 && !hasInit:
		return nil, newRuntimeError(UndefinedName, "class %s has no init method", class.Name())
	case len(args) > 0, hasInit && len(ctor.Params) == 0:
		if _, err := i.callMethod(obj, ctor, args, env, site); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (i *Interpreter) evaluateMemberAccess(expr *ast.MemberAccessExpression, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	obj, ok := target.(*runtime.ObjectValue)
	if !ok {
		return nil, newRuntimeError(TypeMismatch, "cannot access field '%s' on %s", expr.Member, typeNameOf(target))
	}
	val, ok := obj.Fields[expr.Member]
	if !ok {
		return nil, newRuntimeError(UndefinedName, "class %s has no field '%s'", obj.Class.Name(), expr.Member)
	}
	return val, nil
}

func (i *Interpreter) evaluateMethodCall(expr *ast.MethodCallExpression, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	obj, ok := target.(*runtime.ObjectValue)
	if !ok {
		return nil, newRuntimeError(TypeMismatch, "cannot call method '%s' on %s", expr.Method, typeNameOf(target))
	}
	method, ok := obj.Class.Method(expr.Method)
	if !ok {
		return nil, newRuntimeError(UndefinedName, "class %s has no method '%s'", obj.Class.Name(), expr.Method)
	}
	args, err := i.evaluateArguments(expr.Arguments, env)
	if err != nil {
		return nil, err
	}
	return i.callMethod(obj, method, args, env, expr)
}

// callMethod copies the instance's fields into a fresh frame as locals, binds
// the parameters over them, runs the body, then copies every field back. A
// parameter that shares a field's name therefore writes that field.
func (i *Interpreter) callMethod(obj *runtime.ObjectValue, method *ast.FunctionDefinition, args []runtime.Value, env *runtime.Environment, site ast.Node) (runtime.Value, error) {
	if len(args) != len(method.Params) {
		return nil, newRuntimeError(ArgumentCountMismatch, "method %s.%s expects %d arguments, got %d", obj.Class.Name(), method.Name, len(method.Params), len(args))
	}
	fields := obj.Class.Fields()
	scope := env.Extend()
	for _, field := range fields {
		scope.Declare(field.Name, field.Type, obj.Fields[field.Name])
	}
	for idx, param := range method.Params {
		scope.Define(param, args[idx])
	}

	result, err := i.invoke(method, scope, site)
	if err != nil {
		return nil, err
	}
	for _, field := range fields {
		val, _ := scope.Lookup(field.Name)
		converted, err := i.coerce(val, field.Type)
		if err != nil {
			return nil, located(err, site)
		}
		obj.Fields[field.Name] = converted
	}
	return result, nil
}
