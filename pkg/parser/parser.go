package parser

import (
	"sort"

	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/lexer"
)

// ClassRegistry tracks class names declared so far. The parser consults it to
// decide whether `Name v` introduces an object, so it must be shared across
// every file of one program.
type ClassRegistry struct {
	names map[string]struct{}
}

func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{names: make(map[string]struct{})}
}

func (r *ClassRegistry) Declare(name string) {
	r.names[name] = struct{}{}
}

func (r *ClassRegistry) Has(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Names returns the declared class names in sorted order.
func (r *ClassRegistry) Names() []string {
	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Parser turns a token stream into top-level statements.
type Parser struct {
	tokens  []lexer.Token
	pos     int
	classes *ClassRegistry
}

// New creates a parser over tokens. A nil registry starts empty.
func New(tokens []lexer.Token, classes *ClassRegistry) *Parser {
	if classes == nil {
		classes = NewClassRegistry()
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		var end lexer.Position
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens, lexer.Token{Type: lexer.EOF, Pos: end})
	}
	return &Parser{tokens: tokens, classes: classes}
}

// Parse consumes every token and returns the program's statements in source
// order.
func (p *Parser) Parse() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for !p.check(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ParseSource lexes and parses one source file.
func ParseSource(file, source string, classes *ClassRegistry) ([]ast.Statement, error) {
	tokens, err := lexer.New(source, lexer.Options{File: file}).Tokenize()
	if err != nil {
		return nil, err
	}
	return New(tokens, classes).Parse()
}
