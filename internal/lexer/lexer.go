package lexer

import (
	"bibadac/internal/diag"
	"bibadac/internal/source"
	"bibadac/internal/token"
)

// mode tracks where in the grammar the lexer is. BibTeX has no reserved
// escape scheme outside entries, so everything between entries is junk that
// becomes Comment tokens; structure only exists from '@' to the matching
// closing delimiter.
type mode uint8

const (
	modeJunk       mode = iota // between entries
	modeHeaderType             // after '@', expecting the entry type
	modeHeaderOpen             // after the type, expecting '{' or '('
	modeBody                   // inside the entry body
)

// Lexer converts one file into a stream of tokens. It never fails: malformed
// regions become Invalid tokens (each accompanied by one Reporter call) and
// lexing continues. It is restartable only by constructing a new Lexer.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options

	mode  mode
	depth int  // 1 = entry body level, >=2 inside a value brace
	paren bool // current entry delimited with parentheses

	prev token.Kind // previous significant token, for value context
	look *token.Token

	depthReported bool
}

// New creates a lexer over the file.
func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		mode:   modeJunk,
	}
}

// Next returns the next token. After EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	tok := lx.next()
	lx.prev = tok.Kind
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) next() token.Token {
	for {
		switch lx.mode {
		case modeJunk:
			if tok, ok := lx.scanJunk(); ok {
				return tok
			}
		case modeHeaderType:
			if tok, ok := lx.scanHeaderType(); ok {
				return tok
			}
		case modeHeaderOpen:
			if tok, ok := lx.scanHeaderOpen(); ok {
				return tok
			}
		case modeBody:
			return lx.scanBody()
		}
	}
}

func (lx *Lexer) eofToken() token.Token {
	return token.Token{Kind: token.EOF, Span: lx.cursor.SpanFrom(lx.cursor.Mark())}
}

func (lx *Lexer) make(kind token.Kind, m Mark) token.Token {
	sp := lx.cursor.SpanFrom(m)
	return token.Token{Kind: kind, Span: sp, Text: lx.cursor.Slice(sp)}
}

// scanJunk consumes inter-entry bytes. It emits At for '@', a Comment token
// for any run containing non-whitespace, and nothing for pure whitespace.
func (lx *Lexer) scanJunk() (token.Token, bool) {
	if lx.cursor.EOF() {
		return lx.eofToken(), true
	}
	if lx.cursor.Peek() == '@' {
		m := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.mode = modeHeaderType
		return lx.make(token.At, m), true
	}

	// Run to the next '@' or EOF, remembering the non-whitespace extent.
	first, last := uint32(0), uint32(0)
	seen := false
	for !lx.cursor.EOF() && lx.cursor.Peek() != '@' {
		off := lx.cursor.Off
		b := lx.cursor.Bump()
		if !isSpace(b) {
			if !seen {
				first = off
				seen = true
			}
			last = off + 1
		}
	}
	if !seen {
		return token.Token{}, false
	}
	sp := source.Span{File: lx.file.ID, Start: first, End: last}
	return token.Token{Kind: token.Comment, Span: sp, Text: lx.cursor.Slice(sp)}, true
}

func (lx *Lexer) scanHeaderType() (token.Token, bool) {
	lx.skipSpace()
	if lx.cursor.EOF() {
		return lx.eofToken(), true
	}
	if !isIdentByte(lx.cursor.Peek()) {
		// Not an entry after all; re-lex the rest as junk.
		lx.mode = modeJunk
		return token.Token{}, false
	}
	tok := lx.scanIdentOrNumber()
	lx.mode = modeHeaderOpen
	return tok, true
}

func (lx *Lexer) scanHeaderOpen() (token.Token, bool) {
	lx.skipSpace()
	if lx.cursor.EOF() {
		return lx.eofToken(), true
	}
	m := lx.cursor.Mark()
	switch lx.cursor.Peek() {
	case '{':
		lx.cursor.Bump()
		lx.enterBody(false)
		return lx.make(token.LBrace, m), true
	case '(':
		lx.cursor.Bump()
		lx.enterBody(true)
		return lx.make(token.LParen, m), true
	default:
		// "@type" without a body; the parser reports it.
		lx.mode = modeJunk
		return token.Token{}, false
	}
}

func (lx *Lexer) enterBody(paren bool) {
	lx.mode = modeBody
	lx.depth = 1
	lx.paren = paren
	lx.depthReported = false
}

func (lx *Lexer) leaveBody() {
	lx.mode = modeJunk
	lx.depth = 0
}

func (lx *Lexer) scanBody() token.Token {
	if lx.depth >= 2 {
		return lx.scanBraceText()
	}

	lx.skipSpace()
	if lx.cursor.EOF() {
		return lx.eofToken()
	}

	m := lx.cursor.Mark()
	switch b := lx.cursor.Peek(); b {
	case '{':
		lx.cursor.Bump()
		lx.depth++
		return lx.make(token.LBrace, m)
	case '}':
		lx.cursor.Bump()
		if lx.paren {
			tok := lx.make(token.Invalid, m)
			lx.report(diag.LexUnbalancedBrace, tok.Span, "closing brace in a parenthesized entry body")
			return tok
		}
		lx.leaveBody()
		return lx.make(token.RBrace, m)
	case ')':
		lx.cursor.Bump()
		if lx.paren {
			lx.leaveBody()
		}
		return lx.make(token.RParen, m)
	case ',':
		lx.cursor.Bump()
		return lx.make(token.Comma, m)
	case '=':
		lx.cursor.Bump()
		return lx.make(token.Equals, m)
	case '#':
		lx.cursor.Bump()
		return lx.make(token.Concat, m)
	case '@':
		// Resynchronization point: an unclosed entry followed by a new one.
		lx.cursor.Bump()
		lx.mode = modeHeaderType
		lx.depth = 0
		return lx.make(token.At, m)
	case '"':
		// Value position: after '=', '#', or, for @preamble, right after
		// the opening delimiter.
		switch lx.prev {
		case token.Equals, token.Concat, token.LBrace, token.LParen:
			return lx.scanQuoted()
		}
		lx.cursor.Bump()
		tok := lx.make(token.Invalid, m)
		lx.report(diag.LexStrayByte, tok.Span, "unexpected '\"' outside a value position")
		return tok
	default:
		if isIdentByte(b) {
			return lx.scanIdentOrNumber()
		}
		lx.cursor.Bump()
		tok := lx.make(token.Invalid, m)
		lx.report(diag.LexStrayByte, tok.Span, "unexpected byte "+quoteByte(b)+" in entry body")
		return tok
	}
}

// scanBraceText lexes inside a value brace: only braces are structural,
// everything else is an opaque Text run preserved verbatim.
func (lx *Lexer) scanBraceText() token.Token {
	m := lx.cursor.Mark()
	switch lx.cursor.Peek() {
	case '{':
		lx.cursor.Bump()
		lx.depth++
		if lx.depth > lx.opts.maxDepth() {
			tok := lx.make(token.Invalid, m)
			if !lx.depthReported {
				lx.depthReported = true
				lx.report(diag.LexDepthExceeded, tok.Span, "brace nesting exceeds the maximum depth")
			}
			return tok
		}
		return lx.make(token.LBrace, m)
	case '}':
		lx.cursor.Bump()
		lx.depth--
		if lx.depth <= lx.opts.maxDepth() {
			lx.depthReported = false
		}
		return lx.make(token.RBrace, m)
	}
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '{' || b == '}' {
			break
		}
		lx.cursor.Bump()
	}
	if lx.cursor.EOF() && lx.cursor.Off == uint32(m) {
		return lx.eofToken()
	}
	return lx.make(token.Text, m)
}

func (lx *Lexer) skipSpace() {
	for !lx.cursor.EOF() && isSpace(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}
