package parser

import (
	"strings"

	"bibadac/internal/bib"
	"bibadac/internal/diag"
	"bibadac/internal/source"
	"bibadac/internal/token"
)

// parseValue parses a field value starting after prev (the '=' token, or the
// opening delimiter for @preamble). Segments joined with '#' become separate
// Parts; a missing value yields an empty Value with a zero-width span so the
// field survives with its position intact.
func (p *parser) parseValue(prev token.Token) *bib.Value {
	var parts []bib.Part
	full := prev.Span.Collapse(prev.Span.End)
	for {
		part, ok := p.parseSegment(prev)
		if !ok {
			if len(parts) == 0 {
				p.mark(diag.SynExpectValue, full, "expected a value here")
			}
			break
		}
		parts = append(parts, part)
		if len(parts) == 1 {
			full = part.Span
		} else {
			full = full.Cover(part.Span)
		}

		sep := p.next()
		if sep.Kind != token.Concat {
			p.unread(sep)
			break
		}
		prev = sep
	}
	return bib.NewValue(parts, full)
}

// parseSegment parses one concatenation segment. ok is false when the next
// token cannot start a value; the token is pushed back untouched.
func (p *parser) parseSegment(prev token.Token) (bib.Part, bool) {
	tok := p.next()
	switch tok.Kind {
	case token.LBrace:
		return p.parseBraced(tok), true

	case token.Quoted:
		inner := tok.Text
		if len(inner) >= 2 {
			inner = inner[1 : len(inner)-1]
		}
		return bib.Part{
			Kind: bib.PartLiteral,
			Text: inner,
			Raw:  tok.Text,
			Span: tok.Span,
		}, true

	case token.Number:
		return bib.Part{
			Kind: bib.PartLiteral,
			Text: tok.Text,
			Raw:  tok.Text,
			Span: tok.Span,
		}, true

	case token.Ident:
		return bib.Part{
			Kind: bib.PartMacroRef,
			Text: tok.Text,
			Raw:  tok.Text,
			Span: tok.Span,
		}, true

	case token.Invalid:
		// Typically an unterminated quote; the lexer already recorded it.
		// Salvage the scanned bytes as a literal so the value is not lost.
		inner := strings.TrimPrefix(tok.Text, "\"")
		return bib.Part{
			Kind: bib.PartLiteral,
			Text: inner,
			Raw:  tok.Text,
			Span: tok.Span,
		}, true

	default:
		p.unread(tok)
		return bib.Part{}, false
	}
}

// parseBraced consumes a brace-delimited segment, lb being the opening
// brace. Inner tokens are opaque; only the brace balance matters. An
// unterminated value runs to end of input.
func (p *parser) parseBraced(lb token.Token) bib.Part {
	depth := 1
	end := lb.Span.End
	closed := false
	for depth > 0 {
		tok := p.next()
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				closed = true
			}
		case token.Invalid:
			// A '{' past the nesting limit: the lexer counted it, so the
			// balancing '}' will arrive as an extra RBrace.
			if tok.Text == "{" {
				depth++
			}
		case token.EOF:
			p.mark(diag.SynUnclosedValue, tok.Span, "value is not closed at end of input")
			depth = 0
		}
		if tok.Kind != token.EOF {
			end = tok.Span.End
		}
	}

	span := source.Span{File: lb.Span.File, Start: lb.Span.Start, End: end}
	raw := string(p.file.Content[span.Start:span.End])
	inner := raw
	if closed && len(raw) >= 2 {
		inner = raw[1 : len(raw)-1]
	} else if len(raw) >= 1 {
		inner = raw[1:]
	}
	return bib.Part{
		Kind: bib.PartLiteral,
		Text: inner,
		Raw:  raw,
		Span: span,
	}
}
