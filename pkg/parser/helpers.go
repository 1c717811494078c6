package parser

import (
	"fmt"

	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/lexer"
)

// ParseError reports an unexpected or missing token.
type ParseError struct {
	Message string
	Pos     lexer.Position
	Found   lexer.Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser: %s: %s, found %s", e.Pos, e.Message, e.Found)
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind lexer.TokenType) bool {
	return p.peek().Type == kind
}

func (p *Parser) match(kind lexer.TokenType) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.TokenType, context string) (lexer.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorf("expected '%s' %s", kind, context)
}

func (p *Parser) expectIdent(context string) (lexer.Token, error) {
	if p.check(lexer.IDENT) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorf("expected identifier %s", context)
}

// errorf reports a failure at the current token.
func (p *Parser) errorf(format string, args ...any) error {
	return p.errorAt(p.peek(), format, args...)
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Pos: tok.Pos, Found: tok}
}

func spanOf(tok lexer.Token) ast.Span {
	return ast.Span{File: tok.Pos.File, Line: tok.Pos.Line, Column: tok.Pos.Column}
}

func at[T ast.Node](node T, tok lexer.Token) T {
	ast.SetSpan(node, spanOf(tok))
	return node
}

// isTypeName reports whether tok can start a typed declaration: a scalar type
// keyword or a declared class name.
func (p *Parser) isTypeName(tok lexer.Token) bool {
	return lexer.IsTypeKeyword(tok.Type) || (tok.Type == lexer.IDENT && p.classes.Has(tok.Lexeme))
}
