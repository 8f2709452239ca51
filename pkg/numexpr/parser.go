package numexpr

import (
	"fmt"
	"strconv"
)

// Parser consumes the flat token slice produced by the Lexer and builds an
// expression tree, applying the constant-folding constructors as it goes.
//
// Grammar (ascending precedence):
//
//	expr   = term (("+" | "-") term)*
//	term   = factor (("*" | "/") factor)*
//	factor = "-" factor | "(" expr ")" | NUMBER | IDENTIFIER
type Parser struct {
	tokens []Token
	pos    int
}

func newParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise fails.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, &SyntaxError{
			Pos: tok.Pos,
			Msg: fmt.Sprintf("expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme),
		}
	}
	return tok, nil
}

func (p *Parser) parseExpr() (Node, error) {
	expr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.peek().Type
		if tt != PLUS && tt != MINUS {
			break
		}
		op := p.advance().Type
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == PLUS {
			expr = Add(expr, right)
		} else {
			expr = Sub(expr, right)
		}
	}

	return expr, nil
}

func (p *Parser) parseTerm() (Node, error) {
	expr, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.peek().Type
		if tt != STAR && tt != SLASH {
			break
		}
		op := p.advance().Type
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		if op == STAR {
			expr = Mul(expr, right)
		} else {
			expr = Div(expr, right)
		}
	}

	return expr, nil
}

func (p *Parser) parseFactor() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case MINUS:
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return Neg(right), nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case NUMBER:
		p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("malformed number %q", tok.Lexeme)}
		}
		return Const(val), nil

	case IDENTIFIER:
		p.advance()
		return Var(tok.Lexeme), nil

	default:
		return nil, &SyntaxError{
			Pos: tok.Pos,
			Msg: fmt.Sprintf("expected expression, got %s (%q)", tok.Type, tok.Lexeme),
		}
	}
}

// Parse turns expression text into a node tree. It fails with a *SyntaxError
// carrying the byte offset of the first token that does not fit the grammar.
func Parse(src string) (Node, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := newParser(tokens)
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, &SyntaxError{
			Pos: tok.Pos,
			Msg: fmt.Sprintf("unexpected %s (%q) after expression", tok.Type, tok.Lexeme),
		}
	}
	return expr, nil
}
