// Package parser builds a bib.Document from the token stream. Parsing is
// total: it never fails, whatever the input bytes. Malformed constructs are
// recorded as markers on the Document and recovery resumes at the next
// top-level '@', so one broken entry cannot suppress the rest of the file.
package parser

import (
	"bibadac/internal/bib"
	"bibadac/internal/diag"
	"bibadac/internal/lexer"
	"bibadac/internal/source"
	"bibadac/internal/token"
)

// Options configures parsing.
type Options struct {
	// MaxDepth is forwarded to the lexer's brace nesting limit.
	MaxDepth int
}

// Parse converts one file into a Document. It is the only constructor of
// bib.Document; the result is immutable afterwards.
func Parse(file *source.File, opts Options) *bib.Document {
	doc := &bib.Document{
		File:   file.ID,
		Macros: bib.NewMacroTable(),
	}
	p := &parser{
		file: file,
		doc:  doc,
	}
	p.lx = lexer.New(file, lexer.Options{
		Reporter: (*markerSink)(p),
		MaxDepth: opts.MaxDepth,
	})
	p.run()
	return doc
}

type parser struct {
	file *source.File
	lx   *lexer.Lexer
	doc  *bib.Document

	pushback *token.Token
}

// markerSink adapts the lexer's Reporter contract onto the Document's
// marker list.
type markerSink parser

func (s *markerSink) Report(code diag.Code, span source.Span, msg string) {
	s.doc.Markers = append(s.doc.Markers, bib.Marker{Code: code, Span: span, Msg: msg})
}

func (p *parser) next() token.Token {
	if p.pushback != nil {
		tok := *p.pushback
		p.pushback = nil
		return tok
	}
	return p.lx.Next()
}

func (p *parser) unread(tok token.Token) {
	p.pushback = &tok
}

func (p *parser) peek() token.Token {
	tok := p.next()
	p.unread(tok)
	return tok
}

func (p *parser) mark(code diag.Code, span source.Span, msg string) {
	p.doc.Markers = append(p.doc.Markers, bib.Marker{Code: code, Span: span, Msg: msg})
}

func (p *parser) run() {
	for {
		tok := p.next()
		switch tok.Kind {
		case token.EOF:
			return
		case token.Comment:
			p.doc.Entries = append(p.doc.Entries, &bib.CommentEntry{
				Text: tok.Text,
				Full: tok.Span,
			})
		case token.At:
			p.parseEntry(tok)
		case token.Invalid:
			// Already recorded by the lexer's reporter.
		default:
			// The lexer's junk mode makes this unreachable for well-behaved
			// streams; keep the parse total anyway.
			p.mark(diag.SynUnexpectedToken, tok.Span, "unexpected "+tok.Kind.String()+" at top level")
		}
	}
}

// parseEntry dispatches on the identifier following '@'.
func (p *parser) parseEntry(at token.Token) {
	typeTok := p.next()
	if typeTok.Kind != token.Ident && typeTok.Kind != token.Number {
		p.mark(diag.SynUnexpectedToken, at.Span, "expected an entry type after '@'")
		p.unread(typeTok)
		p.doc.Entries = append(p.doc.Entries, &bib.CommentEntry{
			Text: "@",
			Full: at.Span,
		})
		return
	}

	open := p.next()
	if !open.IsOpenDelim() {
		sp := at.Span.Cover(typeTok.Span)
		p.mark(diag.SynUnexpectedToken, sp, "expected '{' or '(' after '@"+typeTok.Text+"'")
		p.unread(open)
		p.doc.Entries = append(p.doc.Entries, &bib.CommentEntry{
			Text: "@" + typeTok.Text,
			Full: sp,
		})
		return
	}

	switch lowerASCII(typeTok.Text) {
	case "string":
		p.parseMacroDef(at, open)
	case "comment":
		p.parseComment(at, open)
	case "preamble":
		p.parsePreamble(at, open)
	default:
		p.parseRegular(at, typeTok, open)
	}
}

func lowerASCII(s string) string {
	out := []byte(s)
	changed := false
	for i, b := range out {
		if b >= 'A' && b <= 'Z' {
			out[i] = b + 'a' - 'A'
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(out)
}
