package lexer

import (
	"fmt"

	"bibadac/internal/diag"
	"bibadac/internal/token"
)

// isSpace matches the whitespace BibTeX ignores between tokens.
func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// isIdentByte matches bytes allowed in entry types, citation keys, field
// keys and macro names. BibTeX is permissive here: anything that is not
// whitespace, a delimiter or an operator qualifies, including non-ASCII.
func isIdentByte(b byte) bool {
	if isSpace(b) {
		return false
	}
	switch b {
	case '{', '}', '(', ')', ',', '=', '#', '"', '@':
		return false
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func quoteByte(b byte) string {
	return fmt.Sprintf("%q", rune(b))
}

// scanIdentOrNumber lexes a run of identifier bytes; an all-digit run is a
// Number (bare values like year = 2024).
func (lx *Lexer) scanIdentOrNumber() token.Token {
	m := lx.cursor.Mark()
	allDigits := true
	for !lx.cursor.EOF() && isIdentByte(lx.cursor.Peek()) {
		if !isDigit(lx.cursor.Peek()) {
			allDigits = false
		}
		lx.cursor.Bump()
	}
	kind := token.Ident
	if allDigits {
		kind = token.Number
	}
	return lx.make(kind, m)
}

// scanQuoted lexes a quote-delimited value. Quotes do not nest, but braced
// sub-ranges inside them make an embedded '"' literal. An unterminated
// string runs to end of line (or input) and becomes an Invalid token.
func (lx *Lexer) scanQuoted() token.Token {
	m := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	sub := 0
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '{':
			sub++
		case b == '}':
			if sub > 0 {
				sub--
			}
		case b == '"' && sub == 0:
			lx.cursor.Bump()
			return lx.make(token.Quoted, m)
		case b == '\n' && sub == 0:
			tok := lx.make(token.Invalid, m)
			lx.report(diag.LexUnterminatedQuote, tok.Span, "unterminated quoted value")
			return tok
		}
		lx.cursor.Bump()
	}
	tok := lx.make(token.Invalid, m)
	lx.report(diag.LexUnterminatedQuote, tok.Span, "unterminated quoted value at end of input")
	return tok
}
