package ast

type NodeType string

const (
	NodeIdentifier             NodeType = "Identifier"
	NodeIntegerLiteral         NodeType = "IntegerLiteral"
	NodeFloatLiteral           NodeType = "FloatLiteral"
	NodeCharLiteral            NodeType = "CharLiteral"
	NodeStringLiteral          NodeType = "StringLiteral"
	NodeBooleanLiteral         NodeType = "BooleanLiteral"
	NodeArrayLiteral           NodeType = "ArrayLiteral"
	NodeUnaryExpression        NodeType = "UnaryExpression"
	NodeBinaryExpression       NodeType = "BinaryExpression"
	NodeCallExpression         NodeType = "CallExpression"
	NodeIndexExpression        NodeType = "IndexExpression"
	NodeMemberAccessExpression NodeType = "MemberAccessExpression"
	NodeMethodCallExpression   NodeType = "MethodCallExpression"
	NodeInputExpression        NodeType = "InputExpression"
	NodeReadExpression         NodeType = "ReadExpression"
	NodeAssignmentStatement    NodeType = "AssignmentStatement"
	NodePrintStatement         NodeType = "PrintStatement"
	NodeFunctionDefinition     NodeType = "FunctionDefinition"
	NodeReturnStatement        NodeType = "ReturnStatement"
	NodeIfStatement            NodeType = "IfStatement"
	NodeWhileStatement         NodeType = "WhileStatement"
	NodeForStatement           NodeType = "ForStatement"
	NodeExpressionStatement    NodeType = "ExpressionStatement"
	NodeArrayAssignment        NodeType = "ArrayAssignment"
	NodeClassDefinition        NodeType = "ClassDefinition"
	NodeObjectInstantiation    NodeType = "ObjectInstantiation"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	Loc  Span     `json:"span"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n *nodeImpl) NodeType() NodeType { return n.Type }
func (n *nodeImpl) Span() Span         { return n.Loc }
func (n *nodeImpl) setSpan(span Span)  { n.Loc = span }
func (*nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value int64 `json:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewFloatLiteral(value float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: value}
}

type CharLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value rune `json:"value"`
}

func NewCharLiteral(value rune) *CharLiteral {
	return &CharLiteral{nodeImpl: newNodeImpl(NodeCharLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

// Operators

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// Calls and access

// CallExpression invokes a free function by name.
type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee    string       `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee string, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: args}
}

// IndexExpression reads one element of an array or string. Chained accesses
// nest through Object.
type IndexExpression struct {
	nodeImpl
	expressionMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

type MemberAccessExpression struct {
	nodeImpl
	expressionMarker

	Object Expression `json:"object"`
	Member string     `json:"member"`
}

func NewMemberAccessExpression(object Expression, member string) *MemberAccessExpression {
	return &MemberAccessExpression{nodeImpl: newNodeImpl(NodeMemberAccessExpression), Object: object, Member: member}
}

type MethodCallExpression struct {
	nodeImpl
	expressionMarker

	Object    Expression   `json:"object"`
	Method    string       `json:"method"`
	Arguments []Expression `json:"arguments"`
}

func NewMethodCallExpression(object Expression, method string, args []Expression) *MethodCallExpression {
	return &MethodCallExpression{nodeImpl: newNodeImpl(NodeMethodCallExpression), Object: object, Method: method, Arguments: args}
}

// Primitives

type InputExpression struct {
	nodeImpl
	expressionMarker
}

func NewInputExpression() *InputExpression {
	return &InputExpression{nodeImpl: newNodeImpl(NodeInputExpression)}
}

type ReadExpression struct {
	nodeImpl
	expressionMarker

	Path string `json:"path"`
}

func NewReadExpression(path string) *ReadExpression {
	return &ReadExpression{nodeImpl: newNodeImpl(NodeReadExpression), Path: path}
}
