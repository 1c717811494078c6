package lexer

import "fmt"

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	EOF TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	CHAR   TokenType = "CHAR"
	STRING TokenType = "STRING"
	BOOL   TokenType = "BOOL"

	// Keywords
	IF         TokenType = "IF"
	ELSE       TokenType = "ELSE"
	WHILE      TokenType = "WHILE"
	FOR        TokenType = "FOR"
	RETURN     TokenType = "RETURN"
	PRINT      TokenType = "PRINT"
	CLASS      TokenType = "CLASS"
	FUNCTION   TokenType = "COMEANDDO"
	INPUT      TokenType = "INPUT"
	READ       TokenType = "READ"
	TYPEINT    TokenType = "TYPE_INT"
	TYPEFLOAT  TokenType = "TYPE_FLOAT"
	TYPECHAR   TokenType = "TYPE_CHAR"
	TYPEBOOL   TokenType = "TYPE_BOOL"
	TYPESTRING TokenType = "TYPE_STRING"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	GT       TokenType = ">"
	LT       TokenType = "<"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	BANG     TokenType = "!"
	AND      TokenType = "&&"
	OR       TokenType = "||"

	// Delimiters
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	DOT       TokenType = "."
	COLON     TokenType = ":"
)

var keywords = map[string]TokenType{
	"if":        IF,
	"else":      ELSE,
	"while":     WHILE,
	"for":       FOR,
	"return":    RETURN,
	"print":     PRINT,
	"class":     CLASS,
	"ComeAndDo": FUNCTION,
	"input":     INPUT,
	"read":      READ,
	"int":       TYPEINT,
	"float":     TYPEFLOAT,
	"char":      TYPECHAR,
	"bool":      TYPEBOOL,
	"string":    TYPESTRING,
	"true":      BOOL,
	"false":     BOOL,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsTypeKeyword reports whether t names one of the built-in scalar types.
func IsTypeKeyword(t TokenType) bool {
	switch t {
	case TYPEINT, TYPEFLOAT, TYPECHAR, TYPEBOOL, TYPESTRING:
		return true
	default:
		return false
	}
}

// Position is the 1-based source location of a token's first character.
type Position struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit. Tokens are immutable once produced.
type Token struct {
	Type   TokenType
	Lexeme string // decoded text: string/char literals exclude their quotes
	Pos    Position
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case STRING:
		return fmt.Sprintf("%q", t.Lexeme)
	case CHAR:
		return fmt.Sprintf("'%s'", t.Lexeme)
	default:
		return fmt.Sprintf("'%s'", t.Lexeme)
	}
}
