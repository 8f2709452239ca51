package numexpr

// Lexer holds all mutable state for a single scanning pass over src.
// Expressions are plain ASCII arithmetic, so it works on bytes and every
// token position is a byte offset.
type Lexer struct {
	src string
	pos int // index of the next byte to consume
}

func newLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// peek returns the byte at the current position without advancing.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the byte one position ahead of the current position.
func (l *Lexer) peek2() byte {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one byte and returns it.
func (l *Lexer) advance() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	b := l.src[l.pos]
	l.pos++
	return b
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) {
		switch l.peek() {
		case ' ', '\t', '\n', '\r':
			l.advance()
		default:
			return
		}
	}
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// scanIdent collects a full identifier token. The first character (letter
// or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.src) && (isLetter(l.peek()) || isDigit(l.peek())) {
		l.advance()
	}
	return Token{Type: IDENTIFIER, Lexeme: l.src[start:l.pos], Pos: start}
}

// scanNumber collects a numeric literal: digits, an optional fraction, and
// an optional exponent (e.g. 2, 3.5, .25, 1e-3). The first digit or the
// leading '.' must still be at l.peek().
func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos

	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' {
		l.advance()
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if !isDigit(l.peek()) {
			return Token{}, &SyntaxError{Pos: l.pos, Msg: "malformed exponent in numeric literal"}
		}
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
	}

	return Token{Type: NUMBER, Lexeme: l.src[start:l.pos], Pos: start}, nil
}

// nextToken skips whitespace and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Pos: l.pos}, nil
	}

	ch := l.peek()
	pos := l.pos

	if isLetter(ch) {
		return l.scanIdent(), nil
	}
	if isDigit(ch) || ch == '.' && isDigit(l.peek2()) {
		return l.scanNumber()
	}

	l.advance()
	switch ch {
	case '+':
		return Token{PLUS, "+", pos}, nil
	case '-':
		return Token{MINUS, "-", pos}, nil
	case '*':
		return Token{STAR, "*", pos}, nil
	case '/':
		return Token{SLASH, "/", pos}, nil
	case '(':
		return Token{LPAREN, "(", pos}, nil
	case ')':
		return Token{RPAREN, ")", pos}, nil
	default:
		return Token{}, &SyntaxError{Pos: pos, Msg: "unexpected character " + quoteByte(ch)}
	}
}

// Lex tokenizes src and returns all tokens including the final EOF token.
// It returns a non-nil error on the first illegal character.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
