package ast

// ArrayShape distinguishes scalar declarations from the two array forms.
type ArrayShape string

const (
	ShapeScalar  ArrayShape = ""
	ShapeFixed   ArrayShape = "fixed"   // T name[size];
	ShapeDynamic ArrayShape = "dynamic" // T name[] = {...};
)

// AssignmentStatement covers plain assignment, typed declarations, array
// declarations and object-array declarations.
//
// Target is either a bare name or a composite such as "p.x" or "pts[2].x".
// TypeTag is empty for plain assignment, a scalar type keyword for typed
// declarations, or a class name for object arrays. For ShapeFixed the Value
// holds the size expression.
type AssignmentStatement struct {
	nodeImpl
	statementMarker

	Target  string     `json:"target"`
	Value   Expression `json:"value,omitempty"`
	TypeTag string     `json:"typeTag,omitempty"`
	Shape   ArrayShape `json:"shape,omitempty"`
}

func NewAssignmentStatement(target string, value Expression, typeTag string, shape ArrayShape) *AssignmentStatement {
	return &AssignmentStatement{nodeImpl: newNodeImpl(NodeAssignmentStatement), Target: target, Value: value, TypeTag: typeTag, Shape: shape}
}

// IsDeclaration reports whether the statement carries a declared type.
func (a *AssignmentStatement) IsDeclaration() bool {
	return a.TypeTag != ""
}

type PrintStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value"`
}

func NewPrintStatement(value Expression) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Value: value}
}

type FunctionDefinition struct {
	nodeImpl
	statementMarker

	Name   string      `json:"name"`
	Params []string    `json:"params"`
	Body   []Statement `json:"body"`
}

func NewFunctionDefinition(name string, params []string, body []Statement) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDefinition), Name: name, Params: params, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Then      []Statement `json:"then"`
	Else      []Statement `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, then, otherwise []Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Then: then, Else: otherwise}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhileStatement(condition Expression, body []Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body}
}

// ForStatement clauses are each optional (nil).
type ForStatement struct {
	nodeImpl
	statementMarker

	Init      Statement   `json:"init,omitempty"`
	Condition Expression  `json:"condition,omitempty"`
	Increment Statement   `json:"increment,omitempty"`
	Body      []Statement `json:"body"`
}

func NewForStatement(init Statement, condition Expression, increment Statement, body []Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Condition: condition, Increment: increment, Body: body}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type ArrayAssignment struct {
	nodeImpl
	statementMarker

	Array string     `json:"array"`
	Index Expression `json:"index"`
	Value Expression `json:"value"`
}

func NewArrayAssignment(array string, index, value Expression) *ArrayAssignment {
	return &ArrayAssignment{nodeImpl: newNodeImpl(NodeArrayAssignment), Array: array, Index: index, Value: value}
}

// Classes

type FieldDefinition struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type ClassDefinition struct {
	nodeImpl
	statementMarker

	Name    string                `json:"name"`
	Base    string                `json:"base,omitempty"`
	Fields  []FieldDefinition     `json:"fields"`
	Methods []*FunctionDefinition `json:"methods"`
}

func NewClassDefinition(name, base string, fields []FieldDefinition, methods []*FunctionDefinition) *ClassDefinition {
	return &ClassDefinition{nodeImpl: newNodeImpl(NodeClassDefinition), Name: name, Base: base, Fields: fields, Methods: methods}
}

type ObjectInstantiation struct {
	nodeImpl
	statementMarker

	ClassName string       `json:"className"`
	Name      string       `json:"name"`
	Arguments []Expression `json:"arguments,omitempty"`
}

func NewObjectInstantiation(className, name string, args []Expression) *ObjectInstantiation {
	return &ObjectInstantiation{nodeImpl: newNodeImpl(NodeObjectInstantiation), ClassName: className, Name: name, Arguments: args}
}
