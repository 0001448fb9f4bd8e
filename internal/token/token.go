package token

import (
	"bibadac/internal/source"
)

// Token represents a single source token with its location.
// Text carries the raw slice for text-bearing kinds (Ident, Number, Quoted,
// Comment, Invalid); it is empty for pure punctuation.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsOpenDelim reports whether the token opens an entry body.
func (t Token) IsOpenDelim() bool {
	return t.Kind == LBrace || t.Kind == LParen
}

// ClosesDelim reports whether the token closes the given open delimiter.
func (t Token) ClosesDelim(open Kind) bool {
	switch open {
	case LBrace:
		return t.Kind == RBrace
	case LParen:
		return t.Kind == RParen
	default:
		return false
	}
}

// IsEOF reports whether the token ends the stream.
func (t Token) IsEOF() bool { return t.Kind == EOF }
