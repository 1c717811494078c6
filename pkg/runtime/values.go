package runtime

import (
	"fmt"

	"tinylang/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindChar
	KindString
	KindArray
	KindObject
	KindFunction
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

// Declared type names.
const (
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeChar   = "char"
	TypeBool   = "bool"
	TypeString = "string"
)

// IsScalarType reports whether name is one of the built-in type keywords.
func IsScalarType(name string) bool {
	switch name {
	case TypeInt, TypeFloat, TypeChar, TypeBool, TypeString:
		return true
	default:
		return false
	}
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

// IntegerValue also carries booleans as 0/1.
type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type CharValue struct {
	Val rune
}

func (v CharValue) Kind() Kind { return KindChar }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// Bool encodes a truth value the way comparisons produce it.
func Bool(b bool) IntegerValue {
	if b {
		return IntegerValue{Val: 1}
	}
	return IntegerValue{Val: 0}
}

// ZeroValue returns the default for a scalar type name.
func ZeroValue(typeName string) (Value, bool) {
	switch typeName {
	case TypeInt, TypeBool:
		return IntegerValue{Val: 0}, true
	case TypeFloat:
		return FloatValue{Val: 0}, true
	case TypeChar:
		return CharValue{Val: 0}, true
	case TypeString:
		return StringValue{Val: ""}, true
	default:
		return nil, false
	}
}

//-----------------------------------------------------------------------------
// Arrays
//-----------------------------------------------------------------------------

// ArrayValue is a homogeneously typed sequence. ElemType is a scalar type name
// or a class name; it is empty for arrays built from an empty literal until
// the first element arrives.
type ArrayValue struct {
	ElemType string
	Elements []Value
	Growable bool
}

func (v *ArrayValue) Kind() Kind { return KindArray }

func (v *ArrayValue) Len() int { return len(v.Elements) }

//-----------------------------------------------------------------------------
// Functions & classes
//-----------------------------------------------------------------------------

type FunctionValue struct {
	Declaration *ast.FunctionDefinition
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// ClassValue is a declared class. Its inherited field and method sets are
// merged once, root to leaf, on first use.
type ClassValue struct {
	Node *ast.ClassDefinition
	Base *ClassValue

	resolved bool
	fields   []ast.FieldDefinition
	methods  map[string]*ast.FunctionDefinition
}

func (v *ClassValue) Kind() Kind { return KindClass }

func (v *ClassValue) Name() string { return v.Node.Name }

// Fields returns every field visible on instances, base fields first. A
// redeclared field keeps its base position but takes the derived type.
func (v *ClassValue) Fields() []ast.FieldDefinition {
	v.resolve()
	return v.fields
}

// Method finds a method by name, derived definitions winning.
func (v *ClassValue) Method(name string) (*ast.FunctionDefinition, bool) {
	v.resolve()
	fn, ok := v.methods[name]
	return fn, ok
}

// Chain lists the class and its ancestors from root to leaf.
func (v *ClassValue) Chain() []*ClassValue {
	var chain []*ClassValue
	for c := v; c != nil; c = c.Base {
		chain = append([]*ClassValue{c}, chain...)
	}
	return chain
}

func (v *ClassValue) resolve() {
	if v.resolved {
		return
	}
	index := make(map[string]int)
	v.methods = make(map[string]*ast.FunctionDefinition)
	for _, class := range v.Chain() {
		for _, field := range class.Node.Fields {
			if pos, ok := index[field.Name]; ok {
				v.fields[pos] = field
				continue
			}
			index[field.Name] = len(v.fields)
			v.fields = append(v.fields, field)
		}
		for _, method := range class.Node.Methods {
			v.methods[method.Name] = method
		}
	}
	v.resolved = true
}

// IsSubclassOf reports whether v is other or derives from it.
func (v *ClassValue) IsSubclassOf(other *ClassValue) bool {
	for c := v; c != nil; c = c.Base {
		if c == other {
			return true
		}
	}
	return false
}

//-----------------------------------------------------------------------------
// Objects
//-----------------------------------------------------------------------------

type ObjectValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

func (v *ObjectValue) Kind() Kind { return KindObject }

// FieldType returns the declared type of a resolved field.
func (v *ObjectValue) FieldType(name string) (string, bool) {
	for _, field := range v.Class.Fields() {
		if field.Name == name {
			return field.Type, true
		}
	}
	return "", false
}
