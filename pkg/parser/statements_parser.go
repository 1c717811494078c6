package parser

import (
	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/lexer"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.peek()
	switch {
	case tok.Type == lexer.CLASS:
		return p.parseClassDefinition()
	case tok.Type == lexer.FUNCTION:
		fn, err := p.parseFunctionDefinition()
		if err != nil {
			return nil, err
		}
		return fn, nil
	case tok.Type == lexer.IF:
		return p.parseIfStatement()
	case tok.Type == lexer.WHILE:
		return p.parseWhileStatement()
	case tok.Type == lexer.FOR:
		return p.parseForStatement()
	case tok.Type == lexer.ELSE:
		return nil, p.errorf("'else' without matching 'if'")
	case tok.Type == lexer.PRINT:
		return p.parsePrintStatement()
	case tok.Type == lexer.RETURN:
		return p.parseReturnStatement()
	case tok.Type == lexer.IDENT && p.classes.Has(tok.Lexeme) && p.peekAt(1).Type == lexer.IDENT:
		return p.parseObjectDeclaration()
	}

	stmt, err := p.parseSimpleStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "after statement"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseSimpleStatement parses a declaration, assignment or bare expression
// without its terminator. for-loop clauses use it directly.
func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	if lexer.IsTypeKeyword(p.peek().Type) {
		return p.parseVariableDeclaration()
	}

	start := p.pos
	target, err := p.scanAssignmentTarget()
	if err != nil {
		return nil, err
	}
	if target != nil && p.check(lexer.ASSIGN) {
		return p.finishAssignment(target)
	}

	p.pos = start
	first := p.peek()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return at(ast.NewExpressionStatement(expr), first), nil
}

type assignmentTarget struct {
	start      lexer.Token
	name       string
	index      ast.Expression // set for name[index]
	indexToken lexer.Token
	fields     []string
}

// scanAssignmentTarget reads `name`, `name[index]`, `name.f.g` or
// `name[index].f.g`. It returns nil when the tokens cannot be a target; the
// caller rewinds in that case.
func (p *Parser) scanAssignmentTarget() (*assignmentTarget, error) {
	if !p.check(lexer.IDENT) || p.peekAt(1).Type == lexer.LPAREN {
		return nil, nil
	}
	name := p.advance()
	target := &assignmentTarget{start: name, name: name.Lexeme}

	if p.check(lexer.LBRACKET) {
		target.indexToken = p.advance()
		index, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.match(lexer.RBRACKET) {
			return nil, nil
		}
		target.index = index
	}
	for p.check(lexer.DOT) {
		p.advance()
		if !p.check(lexer.IDENT) {
			return nil, nil
		}
		field := p.advance()
		if p.check(lexer.LPAREN) || p.check(lexer.LBRACKET) {
			return nil, nil
		}
		target.fields = append(target.fields, field.Lexeme)
	}
	return target, nil
}

func (p *Parser) finishAssignment(target *assignmentTarget) (ast.Statement, error) {
	if len(target.fields) > 0 && target.index != nil {
		if _, ok := target.index.(*ast.IntegerLiteral); !ok {
			return nil, p.errorAt(target.indexToken, "array index in a chained assignment target must be an integer constant")
		}
	}
	p.advance() // '='
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if target.index != nil && len(target.fields) == 0 {
		return at(ast.NewArrayAssignment(target.name, target.index, value), target.start), nil
	}
	return at(ast.NewAssignmentStatement(target.path(), value, "", ast.ShapeScalar), target.start), nil
}

// path serializes the target into the composite form the evaluator resolves,
// e.g. "pts[2].x".
func (t *assignmentTarget) path() string {
	path := ast.TargetPath{Base: t.name, Fields: t.fields}
	if lit, ok := t.index.(*ast.IntegerLiteral); ok {
		path.HasIndex = true
		path.Index = lit.Value
	}
	return path.String()
}

func (p *Parser) parseBlock(context string) ([]ast.Statement, error) {
	if _, err := p.expect(lexer.LBRACE, context); err != nil {
		return nil, err
	}
	var body []ast.Statement
	for !p.check(lexer.RBRACE) {
		if p.check(lexer.EOF) {
			return nil, p.errorf("expected '}' to close block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.advance()
	return body, nil
}

func (p *Parser) parseCondition(keyword string) (ast.Expression, error) {
	if _, err := p.expect(lexer.LPAREN, "after '"+keyword+"'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "after "+keyword+" condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	kw := p.advance()
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock("after if condition")
	if err != nil {
		return nil, err
	}
	var otherwise []ast.Statement
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			nested, err := p.parseIfStatement()
			if err != nil {
				return nil, err
			}
			otherwise = []ast.Statement{nested}
		} else {
			otherwise, err = p.parseBlock("after 'else'")
			if err != nil {
				return nil, err
			}
		}
	}
	return at(ast.NewIfStatement(cond, then, otherwise), kw), nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	kw := p.advance()
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("after while condition")
	if err != nil {
		return nil, err
	}
	return at(ast.NewWhileStatement(cond, body), kw), nil
}

func (p *Parser) parseForStatement() (ast.Statement, error) {
	kw := p.advance()
	if _, err := p.expect(lexer.LPAREN, "after 'for'"); err != nil {
		return nil, err
	}
	var (
		initStmt  ast.Statement
		cond      ast.Expression
		increment ast.Statement
		err       error
	)
	if !p.check(lexer.SEMICOLON) {
		if initStmt, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "after for initializer"); err != nil {
		return nil, err
	}
	if !p.check(lexer.SEMICOLON) {
		if cond, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "after for condition"); err != nil {
		return nil, err
	}
	if !p.check(lexer.RPAREN) {
		if increment, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN, "after for clauses"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock("after for clauses")
	if err != nil {
		return nil, err
	}
	return at(ast.NewForStatement(initStmt, cond, increment, body), kw), nil
}

func (p *Parser) parsePrintStatement() (ast.Statement, error) {
	kw := p.advance()
	if _, err := p.expect(lexer.LPAREN, "after 'print'"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "after print argument"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "after print statement"); err != nil {
		return nil, err
	}
	return at(ast.NewPrintStatement(value), kw), nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	kw := p.advance()
	var value ast.Expression
	if !p.check(lexer.SEMICOLON) {
		var err error
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "after return"); err != nil {
		return nil, err
	}
	return at(ast.NewReturnStatement(value), kw), nil
}
