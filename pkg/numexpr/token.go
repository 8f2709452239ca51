package numexpr

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable name
	NUMBER     // numeric literal, e.g. 2, 3.5, 1e-3

	// Operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	// Paired delimiters
	LPAREN // (
	RPAREN // )
)

var tokenNames = map[TokenType]string{
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
}

func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is one lexical unit of an expression. Pos is the byte offset of the
// token's first character within the source string.
type Token struct {
	Type   TokenType
	Lexeme string
	Pos    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Lexeme, t.Pos)
}
