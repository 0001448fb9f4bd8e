package parser

import (
	"bibadac/internal/bib"
	"bibadac/internal/diag"
	"bibadac/internal/source"
	"bibadac/internal/token"
)

// parseRegular parses @type{key, field = value, ...}. The entry is always
// appended, however malformed; recovery degrades fields, never drops the
// record.
func (p *parser) parseRegular(at, typeTok, open token.Token) {
	entry := &bib.RegularEntry{
		Type:     typeTok.Text,
		TypeSpan: typeTok.Span,
		Paren:    open.Kind == token.LParen,
	}

	// Citation key. A comma or closing delimiter in key position means the
	// key is missing: synthesize an empty one at that zero-width position.
	keyTok := p.next()
	switch keyTok.Kind {
	case token.Ident, token.Number:
		entry.Key = keyTok.Text
		entry.KeySpan = keyTok.Span
	default:
		at0 := keyTok.Span.Collapse(keyTok.Span.Start)
		entry.Key = ""
		entry.KeySpan = at0
		p.mark(diag.SynMissingKey, at0, "entry has no citation key")
		p.unread(keyTok)
	}

	closeOff, closed := p.parseBody(entry, at, open)
	entry.CloseOff = closeOff
	end := closeOff
	if closed {
		end++ // include the closing delimiter
	}
	entry.Full = source.Span{File: at.Span.File, Start: at.Span.Start, End: end}
	p.doc.Entries = append(p.doc.Entries, entry)
}

// parseBody consumes `, field = value` pairs until the matching close
// delimiter. Returns the offset of the close (or of the recovery point) and
// whether the entry was properly closed.
func (p *parser) parseBody(entry *bib.RegularEntry, at, open token.Token) (closeOff uint32, closed bool) {
	for {
		tok := p.next()
		switch {
		case tok.ClosesDelim(open.Kind):
			return tok.Span.Start, true

		case tok.Kind == token.Comma:
			// Separators, including trailing and repeated ones.

		case tok.Kind == token.Ident || tok.Kind == token.Number:
			p.parseField(entry, tok)

		case tok.Kind == token.At:
			// Resynchronization point: the entry never closed.
			p.mark(diag.SynUnclosedEntry, tok.Span.Collapse(tok.Span.Start),
				"entry '"+entry.Key+"' is not closed before the next '@'")
			p.unread(tok)
			return tok.Span.Start, false

		case tok.Kind == token.EOF:
			p.mark(diag.SynUnclosedEntry, tok.Span,
				"entry '"+entry.Key+"' is not closed at end of input")
			return tok.Span.Start, false

		case tok.Kind == token.Invalid:
			// The lexer already recorded a marker; resume at the next field.

		default:
			// One marker for the whole skipped range, then resynchronize
			// at the next comma, the close delimiter, '@', or EOF.
			skipped, resync := p.skipMalformed(tok, open)
			p.mark(diag.SynSkippedEntry, skipped,
				"skipped malformed text inside entry '"+entry.Key+"'")
			switch resync {
			case resyncComma:
				// Resume field parsing past the garbage.
			case resyncClosed:
				return skipped.End - 1, true
			case resyncAt, resyncEOF:
				return skipped.End, false
			}
		}
	}
}

type resyncPoint uint8

const (
	resyncComma resyncPoint = iota
	resyncClosed
	resyncAt
	resyncEOF
)

// skipMalformed consumes tokens after an unexpected one until a field
// separator at body level, the entry's closing delimiter, the next
// top-level '@', or end of input. It bounds the error cascade to a single
// marker per malformed run.
func (p *parser) skipMalformed(bad token.Token, open token.Token) (source.Span, resyncPoint) {
	span := bad.Span
	depth := 0
	for {
		tok := p.next()
		switch {
		case tok.Kind == token.EOF:
			return span, resyncEOF
		case tok.Kind == token.At:
			p.unread(tok)
			return span, resyncAt
		case tok.Kind == token.Comma && depth == 0:
			return span, resyncComma
		case tok.Kind == token.LBrace:
			depth++
			span = span.Cover(tok.Span)
		case tok.Kind == token.RBrace && depth > 0:
			depth--
			span = span.Cover(tok.Span)
		case tok.ClosesDelim(open.Kind) && depth == 0:
			span = span.Cover(tok.Span)
			return span, resyncClosed
		default:
			span = span.Cover(tok.Span)
		}
	}
}

// parseField parses `key = value` with keyTok already consumed.
func (p *parser) parseField(entry *bib.RegularEntry, keyTok token.Token) {
	eq := p.next()
	if eq.Kind != token.Equals {
		p.mark(diag.SynExpectValue, keyTok.Span,
			"field '"+keyTok.Text+"' has no '=' value")
		p.unread(eq)
		entry.Fields = append(entry.Fields, &bib.Field{
			Key:     keyTok.Text,
			KeySpan: keyTok.Span,
			Value:   bib.NewValue(nil, keyTok.Span.Collapse(keyTok.Span.End)),
			Full:    keyTok.Span,
		})
		return
	}

	value := p.parseValue(eq)
	entry.Fields = append(entry.Fields, &bib.Field{
		Key:     keyTok.Text,
		KeySpan: keyTok.Span,
		Value:   value,
		Full:    keyTok.Span.Cover(value.Full),
	})
}

// parseMacroDef parses @string{name = value, ...}. Each pair becomes one
// MacroDef entry; redefinitions are recorded by the table and reported by
// the rule engine.
func (p *parser) parseMacroDef(at, open token.Token) {
	sawAny := false
	for {
		tok := p.next()
		switch {
		case tok.ClosesDelim(open.Kind):
			if !sawAny {
				p.mark(diag.SynExpectValue, at.Span.Cover(tok.Span), "@string defines no macro")
			}
			return
		case tok.Kind == token.Comma:
			// separator
		case tok.Kind == token.Ident:
			eq := p.next()
			if eq.Kind != token.Equals {
				p.mark(diag.SynExpectValue, tok.Span, "macro '"+tok.Text+"' has no '=' value")
				p.unread(eq)
				continue
			}
			value := p.parseValue(eq)
			def := &bib.MacroDef{
				Name:     tok.Text,
				NameSpan: tok.Span,
				Value:    value,
				Full:     at.Span.Cover(value.Full),
			}
			p.doc.Entries = append(p.doc.Entries, def)
			p.doc.Macros.Define(def)
			sawAny = true
		case tok.Kind == token.At:
			p.mark(diag.SynUnclosedEntry, tok.Span.Collapse(tok.Span.Start),
				"@string is not closed before the next '@'")
			p.unread(tok)
			return
		case tok.Kind == token.EOF:
			p.mark(diag.SynUnclosedEntry, tok.Span, "@string is not closed at end of input")
			return
		case tok.Kind == token.Invalid:
			// already recorded
		default:
			skipped, _ := p.skipMalformed(tok, open)
			p.mark(diag.SynSkippedEntry, skipped, "skipped malformed text inside @string")
			return
		}
	}
}

// parseComment consumes a balanced @comment{...} body verbatim.
func (p *parser) parseComment(at, open token.Token) {
	depth := 0
	last := open.Span
	for {
		tok := p.next()
		switch {
		case tok.ClosesDelim(open.Kind) && depth == 0:
			inner := source.Span{File: at.Span.File, Start: open.Span.End, End: tok.Span.Start}
			p.doc.Entries = append(p.doc.Entries, &bib.CommentEntry{
				Explicit: true,
				Text:     string(p.file.Content[inner.Start:inner.End]),
				Full:     at.Span.Cover(tok.Span),
			})
			return
		case tok.Kind == token.LBrace:
			depth++
			last = tok.Span
		case tok.Kind == token.RBrace:
			depth--
			last = tok.Span
		case tok.Kind == token.At:
			p.mark(diag.SynUnclosedEntry, tok.Span.Collapse(tok.Span.Start),
				"@comment is not closed before the next '@'")
			p.unread(tok)
			p.appendPartialComment(at, open, last)
			return
		case tok.Kind == token.EOF:
			p.mark(diag.SynUnclosedEntry, tok.Span, "@comment is not closed at end of input")
			p.appendPartialComment(at, open, last)
			return
		default:
			last = tok.Span
		}
	}
}

func (p *parser) appendPartialComment(at, open token.Token, last source.Span) {
	end := max(open.Span.End, last.End)
	p.doc.Entries = append(p.doc.Entries, &bib.CommentEntry{
		Explicit: true,
		Text:     string(p.file.Content[open.Span.End:end]),
		Full:     source.Span{File: at.Span.File, Start: at.Span.Start, End: end},
	})
}

// parsePreamble parses @preamble{ value }.
func (p *parser) parsePreamble(at, open token.Token) {
	value := p.parseValue(open)
	closeTok := p.next()
	full := at.Span.Cover(value.Full)
	if closeTok.ClosesDelim(open.Kind) {
		full = full.Cover(closeTok.Span)
	} else {
		p.mark(diag.SynUnclosedEntry, closeTok.Span.Collapse(closeTok.Span.Start),
			"@preamble is not closed")
		p.unread(closeTok)
	}
	p.doc.Entries = append(p.doc.Entries, &bib.PreambleEntry{Value: value, Full: full})
}
