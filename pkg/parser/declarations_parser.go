package parser

import (
	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/lexer"
)

// parseVariableDeclaration handles `T x [= e]`, `T xs[size]` and
// `T xs[] [= e]`. The terminator is left to the caller.
func (p *Parser) parseVariableDeclaration() (ast.Statement, error) {
	typeTok := p.advance()
	name, err := p.expectIdent("after type '" + typeTok.Lexeme + "'")
	if err != nil {
		return nil, err
	}

	if p.match(lexer.LBRACKET) {
		if p.match(lexer.RBRACKET) {
			var value ast.Expression
			if p.match(lexer.ASSIGN) {
				if value, err = p.parseExpression(); err != nil {
					return nil, err
				}
			}
			return at(ast.NewAssignmentStatement(name.Lexeme, value, typeTok.Lexeme, ast.ShapeDynamic), typeTok), nil
		}
		size, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET, "after array size"); err != nil {
			return nil, err
		}
		return at(ast.NewAssignmentStatement(name.Lexeme, size, typeTok.Lexeme, ast.ShapeFixed), typeTok), nil
	}

	var value ast.Expression
	if p.match(lexer.ASSIGN) {
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return at(ast.NewAssignmentStatement(name.Lexeme, value, typeTok.Lexeme, ast.ShapeScalar), typeTok), nil
}

// parseObjectDeclaration handles `C v;`, `C v(args);` and `C vs[size];` for a
// declared class C.
func (p *Parser) parseObjectDeclaration() (ast.Statement, error) {
	classTok := p.advance()
	name := p.advance()

	var stmt ast.Statement
	switch {
	case p.match(lexer.LBRACKET):
		size, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET, "after object array size"); err != nil {
			return nil, err
		}
		stmt = at(ast.NewAssignmentStatement(name.Lexeme, size, classTok.Lexeme, ast.ShapeFixed), classTok)
	case p.check(lexer.LPAREN):
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		stmt = at(ast.NewObjectInstantiation(classTok.Lexeme, name.Lexeme, args), classTok)
	default:
		stmt = at(ast.NewObjectInstantiation(classTok.Lexeme, name.Lexeme, nil), classTok)
	}
	if _, err := p.expect(lexer.SEMICOLON, "after object declaration"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseFunctionDefinition() (*ast.FunctionDefinition, error) {
	kw := p.advance()
	name, err := p.expectIdent("after 'ComeAndDo'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, "after function name"); err != nil {
		return nil, err
	}
	var params []string
	if !p.match(lexer.RPAREN) {
		for {
			// An optional type annotation is accepted and discarded.
			if p.isTypeName(p.peek()) && p.peekAt(1).Type == lexer.IDENT {
				p.advance()
			}
			param, err := p.expectIdent("in parameter list")
			if err != nil {
				return nil, err
			}
			params = append(params, param.Lexeme)
			if !p.match(lexer.COMMA) {
				break
			}
		}
		if _, err := p.expect(lexer.RPAREN, "after parameters"); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock("before function body")
	if err != nil {
		return nil, err
	}
	return at(ast.NewFunctionDefinition(name.Lexeme, params, body), kw), nil
}

func (p *Parser) parseClassDefinition() (ast.Statement, error) {
	kw := p.advance()
	name, err := p.expectIdent("after 'class'")
	if err != nil {
		return nil, err
	}
	var base string
	if p.match(lexer.COLON) {
		baseTok, err := p.expectIdent("after ':' in class declaration")
		if err != nil {
			return nil, err
		}
		if !p.classes.Has(baseTok.Lexeme) {
			return nil, p.errorAt(baseTok, "unknown base class %s", baseTok.Lexeme)
		}
		base = baseTok.Lexeme
	}
	p.classes.Declare(name.Lexeme)

	if _, err := p.expect(lexer.LBRACE, "to open class body"); err != nil {
		return nil, err
	}
	var (
		fields  []ast.FieldDefinition
		methods []*ast.FunctionDefinition
	)
	for !p.match(lexer.RBRACE) {
		switch tok := p.peek(); {
		case tok.Type == lexer.EOF:
			return nil, p.errorf("expected '}' to close class body")
		case tok.Type == lexer.FUNCTION:
			method, err := p.parseFunctionDefinition()
			if err != nil {
				return nil, err
			}
			methods = append(methods, method)
		case p.isTypeName(tok):
			p.advance()
			field, err := p.expectIdent("in field declaration")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.SEMICOLON, "after field declaration"); err != nil {
				return nil, err
			}
			fields = append(fields, ast.FieldDefinition{Type: tok.Lexeme, Name: field.Lexeme})
		default:
			return nil, p.errorf("expected field or method declaration")
		}
	}
	p.match(lexer.SEMICOLON)
	return at(ast.NewClassDefinition(name.Lexeme, base, fields, methods), kw), nil
}
