package parser

import (
	"strconv"

	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/lexer"
)

var binaryPrecedence = map[lexer.TokenType]int{
	lexer.OR:       0,
	lexer.AND:      1,
	lexer.GT:       2,
	lexer.LT:       2,
	lexer.EQ:       2,
	lexer.NOT_EQ:   2,
	lexer.PLUS:     3,
	lexer.MINUS:    3,
	lexer.ASTERISK: 4,
	lexer.SLASH:    4,
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseBinary(0)
}

// parseBinary is precedence climbing: operators at or above minPrec bind here,
// and the right operand recurses with prec+1 to keep them left-associative.
func (p *Parser) parseBinary(minPrec int) (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.peek()
		prec, ok := binaryPrecedence[opTok.Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = at(ast.NewBinaryExpression(string(opTok.Type), left, right), opTok)
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.check(lexer.BANG) || p.check(lexer.MINUS) {
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return at(ast.NewUnaryExpression(string(opTok.Type), operand), opTok), nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.advance()
	switch tok.Type {
	case lexer.INT:
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errorAt(tok, "integer literal out of range")
		}
		return at(ast.NewIntegerLiteral(value), tok), nil
	case lexer.FLOAT:
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid float literal")
		}
		return at(ast.NewFloatLiteral(value), tok), nil
	case lexer.CHAR:
		return at(ast.NewCharLiteral([]rune(tok.Lexeme)[0]), tok), nil
	case lexer.STRING:
		return at(ast.NewStringLiteral(tok.Lexeme), tok), nil
	case lexer.BOOL:
		return at(ast.NewBooleanLiteral(tok.Lexeme == "true"), tok), nil
	case lexer.IDENT:
		if p.check(lexer.LPAREN) {
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			return at(ast.NewCallExpression(tok.Lexeme, args), tok), nil
		}
		return p.parseAccessChain(at(ast.NewIdentifier(tok.Lexeme), tok))
	case lexer.LBRACE:
		return p.parseArrayLiteral(tok)
	case lexer.INPUT:
		if _, err := p.expect(lexer.LPAREN, "after 'input'"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "in 'input()'"); err != nil {
			return nil, err
		}
		return at(ast.NewInputExpression(), tok), nil
	case lexer.READ:
		if _, err := p.expect(lexer.LPAREN, "after 'read'"); err != nil {
			return nil, err
		}
		if !p.check(lexer.STRING) {
			return nil, p.errorf("expected string literal in read()")
		}
		path := p.advance().Lexeme
		if _, err := p.expect(lexer.RPAREN, "after read argument"); err != nil {
			return nil, err
		}
		return at(ast.NewReadExpression(path), tok), nil
	case lexer.LPAREN:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorAt(tok, "unexpected token in expression")
	}
}

// parseAccessChain consumes any run of `[index]`, `.field` and
// `.method(args)` suffixes.
func (p *Parser) parseAccessChain(base ast.Expression) (ast.Expression, error) {
	expr := base
	for {
		switch {
		case p.check(lexer.LBRACKET):
			open := p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET, "after array index"); err != nil {
				return nil, err
			}
			expr = at(ast.NewIndexExpression(expr, index), open)
		case p.check(lexer.DOT):
			dot := p.advance()
			name, err := p.expectIdent("after '.'")
			if err != nil {
				return nil, err
			}
			if p.check(lexer.LPAREN) {
				args, err := p.parseArguments()
				if err != nil {
					return nil, err
				}
				expr = at(ast.NewMethodCallExpression(expr, name.Lexeme, args), dot)
				continue
			}
			expr = at(ast.NewMemberAccessExpression(expr, name.Lexeme), dot)
		default:
			return expr, nil
		}
	}
}

// parseArguments parses `( [expr {, expr}] )`.
func (p *Parser) parseArguments() ([]ast.Expression, error) {
	if _, err := p.expect(lexer.LPAREN, "to open argument list"); err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.match(lexer.RPAREN) {
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN, "after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseArrayLiteral(open lexer.Token) (ast.Expression, error) {
	var elements []ast.Expression
	if !p.check(lexer.RBRACE) {
		for {
			elem, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RBRACE, "to close array literal"); err != nil {
		return nil, err
	}
	return at(ast.NewArrayLiteral(elements), open), nil
}
