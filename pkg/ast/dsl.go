package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Flt(value float64) *FloatLiteral {
	return NewFloatLiteral(value)
}

func Chr(value rune) *CharLiteral {
	return NewCharLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

// Expression helpers.

func Un(op string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Call(callee string, args ...Expression) *CallExpression {
	return NewCallExpression(callee, args)
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

func Member(object Expression, member string) *MemberAccessExpression {
	return NewMemberAccessExpression(object, member)
}

func CallMethod(object Expression, method string, args ...Expression) *MethodCallExpression {
	return NewMethodCallExpression(object, method, args)
}

func Input() *InputExpression {
	return NewInputExpression()
}

func Read(path string) *ReadExpression {
	return NewReadExpression(path)
}

// Statement helpers.

func Assign(target string, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(target, value, "", ShapeScalar)
}

func Decl(typeTag, name string, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(name, value, typeTag, ShapeScalar)
}

func DeclArray(typeTag, name string, size Expression) *AssignmentStatement {
	return NewAssignmentStatement(name, size, typeTag, ShapeFixed)
}

func DeclDynamicArray(typeTag, name string, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(name, value, typeTag, ShapeDynamic)
}

func Print(value Expression) *PrintStatement {
	return NewPrintStatement(value)
}

func Fn(name string, params []string, body ...Statement) *FunctionDefinition {
	return NewFunctionDefinition(name, params, body)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func Block(stmts ...Statement) []Statement {
	return stmts
}

func If(condition Expression, then []Statement, otherwise []Statement) *IfStatement {
	return NewIfStatement(condition, then, otherwise)
}

func While(condition Expression, body ...Statement) *WhileStatement {
	return NewWhileStatement(condition, body)
}

func For(init Statement, condition Expression, increment Statement, body ...Statement) *ForStatement {
	return NewForStatement(init, condition, increment, body)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func SetIndex(array string, index, value Expression) *ArrayAssignment {
	return NewArrayAssignment(array, index, value)
}

func Field(typ, name string) FieldDefinition {
	return FieldDefinition{Type: typ, Name: name}
}

func Class(name, base string, fields []FieldDefinition, methods ...*FunctionDefinition) *ClassDefinition {
	return NewClassDefinition(name, base, fields, methods)
}

func New(className, name string, args ...Expression) *ObjectInstantiation {
	return NewObjectInstantiation(className, name, args)
}
