package lexer

import (
	"fmt"
	"unicode"
)

// LexError reports a malformed token together with where it started.
type LexError struct {
	Message string
	Pos     Position
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Message)
}

// Options tunes lexer behaviour.
type Options struct {
	// File is recorded on every token position.
	File string
	// Lenient skips unrecognised characters and records a warning instead
	// of failing.
	Lenient bool
}

// Lexer converts source text into tokens.
type Lexer struct {
	input  []rune
	pos    int  // index of ch
	ch     rune // current rune (0 at end of input)
	line   int
	column int
	opts   Options

	warnings []LexError
}

// New creates a lexer over source.
func New(source string, opts Options) *Lexer {
	l := &Lexer{
		input:  []rune(source),
		pos:    -1,
		line:   1,
		column: 0,
		opts:   opts,
	}
	l.read()
	return l
}

// Tokenize lexes source with default options.
func Tokenize(source string) ([]Token, error) {
	return New(source, Options{}).Tokenize()
}

// Warnings returns characters skipped in lenient mode.
func (l *Lexer) Warnings() []LexError {
	out := make([]LexError, len(l.warnings))
	copy(out, l.warnings)
	return out
}

// Tokenize consumes the whole input. The returned slice always ends with an
// EOF token when err is nil.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) read() {
	if l.pos >= 0 && l.pos < len(l.input) && l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	if l.pos >= len(l.input) {
		l.pos = len(l.input)
		l.ch = 0
		return
	}
	l.ch = l.input[l.pos]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) position() Position {
	return Position{File: l.opts.File, Line: l.line, Column: l.column}
}

func (l *Lexer) errorf(pos Position, format string, args ...any) error {
	return &LexError{Message: fmt.Sprintf(format, args...), Pos: pos}
}

func (l *Lexer) skipTrivia() {
	for !l.atEnd() {
		switch {
		case unicode.IsSpace(l.ch):
			l.read()
		case l.ch == '/' && l.peek() == '/':
			for !l.atEnd() && l.ch != '\n' {
				l.read()
			}
		default:
			return
		}
	}
}

func (l *Lexer) next() (Token, error) {
	for {
		l.skipTrivia()
		start := l.position()
		if l.atEnd() {
			return Token{Type: EOF, Pos: start}, nil
		}

		ch := l.ch
		switch {
		case isIdentStart(ch):
			return l.readIdentifier(start), nil
		case isDigit(ch):
			return l.readNumber(start), nil
		case ch == '"':
			return l.readString(start)
		case ch == '\'':
			return l.readChar(start)
		}

		if tok, ok, err := l.readOperator(start); err != nil {
			return Token{}, err
		} else if ok {
			return tok, nil
		}

		if !l.opts.Lenient {
			return Token{}, l.errorf(start, "unknown character %q", ch)
		}
		l.warnings = append(l.warnings, LexError{Message: fmt.Sprintf("unknown character %q skipped", ch), Pos: start})
		l.read()
	}
}

func (l *Lexer) readIdentifier(start Position) Token {
	begin := l.pos
	for !l.atEnd() && isIdentPart(l.ch) {
		l.read()
	}
	word := string(l.input[begin:l.pos])
	return Token{Type: LookupIdent(word), Lexeme: word, Pos: start}
}

func (l *Lexer) readNumber(start Position) Token {
	begin := l.pos
	for !l.atEnd() && isDigit(l.ch) {
		l.read()
	}
	kind := INT
	if l.ch == '.' && isDigit(l.peek()) {
		kind = FLOAT
		l.read()
		for !l.atEnd() && isDigit(l.ch) {
			l.read()
		}
	}
	return Token{Type: kind, Lexeme: string(l.input[begin:l.pos]), Pos: start}
}

// readString takes every rune up to the closing quote literally; there are
// no escape sequences.
func (l *Lexer) readString(start Position) (Token, error) {
	l.read()
	begin := l.pos
	for !l.atEnd() && l.ch != '"' {
		l.read()
	}
	if l.atEnd() {
		return Token{}, l.errorf(start, "unterminated string literal")
	}
	text := string(l.input[begin:l.pos])
	l.read()
	return Token{Type: STRING, Lexeme: text, Pos: start}, nil
}

func (l *Lexer) readChar(start Position) (Token, error) {
	l.read()
	if l.atEnd() || l.ch == '\'' || l.ch == '\n' {
		return Token{}, l.errorf(start, "invalid char literal")
	}
	value := l.ch
	l.read()
	if l.ch != '\'' {
		return Token{}, l.errorf(start, "unterminated char literal")
	}
	l.read()
	return Token{Type: CHAR, Lexeme: string(value), Pos: start}, nil
}

func (l *Lexer) readOperator(start Position) (Token, bool, error) {
	ch := l.ch
	single := func(t TokenType) (Token, bool, error) {
		l.read()
		return Token{Type: t, Lexeme: string(ch), Pos: start}, true, nil
	}
	double := func(t TokenType) (Token, bool, error) {
		l.read()
		l.read()
		return Token{Type: t, Lexeme: string(t), Pos: start}, true, nil
	}

	switch ch {
	case '=':
		if l.peek() == '=' {
			return double(EQ)
		}
		return single(ASSIGN)
	case '!':
		if l.peek() == '=' {
			return double(NOT_EQ)
		}
		return single(BANG)
	case '&':
		if l.peek() == '&' {
			return double(AND)
		}
		return Token{}, false, l.errorf(start, "expected '&&'")
	case '|':
		if l.peek() == '|' {
			return double(OR)
		}
		return Token{}, false, l.errorf(start, "expected '||'")
	case '+':
		return single(PLUS)
	case '-':
		return single(MINUS)
	case '*':
		return single(ASTERISK)
	case '/':
		return single(SLASH)
	case '>':
		return single(GT)
	case '<':
		return single(LT)
	case '(':
		return single(LPAREN)
	case ')':
		return single(RPAREN)
	case '{':
		return single(LBRACE)
	case '}':
		return single(RBRACE)
	case '[':
		return single(LBRACKET)
	case ']':
		return single(RBRACKET)
	case ',':
		return single(COMMA)
	case ';':
		return single(SEMICOLON)
	case '.':
		return single(DOT)
	case ':':
		return single(COLON)
	}
	return Token{}, false, nil
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
