package lexer_test

import (
	"testing"

	"bibadac/internal/diag"
	"bibadac/internal/lexer"
	"bibadac/internal/source"
	"bibadac/internal/token"
)

// testReporter collects malformation reports from the lexer.
type testReporter struct {
	reports []struct {
		code diag.Code
		span source.Span
		msg  string
	}
}

func (r *testReporter) Report(code diag.Code, span source.Span, msg string) {
	r.reports = append(r.reports, struct {
		code diag.Code
		span source.Span
		msg  string
	}{code, span, msg})
}

func makeLexer(input string, opts lexer.Options) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.bib", []byte(input))
	rep := &testReporter{}
	if opts.Reporter == nil {
		opts.Reporter = rep
	}
	return lexer.New(fs.Get(id), opts), rep
}

func collect(t *testing.T, lx *lexer.Lexer) []token.Token {
	t.Helper()
	var out []token.Token
	for i := 0; ; i++ {
		if i > 10000 {
			t.Fatal("lexer did not reach EOF")
		}
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func expectKinds(t *testing.T, got []token.Token, want []token.Kind) {
	t.Helper()
	gk := kinds(got)
	if len(gk) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(gk), gk, len(want), want)
	}
	for i := range want {
		if gk[i] != want[i] {
			t.Errorf("token %d = %s (%q), want %s", i, gk[i], got[i].Text, want[i])
		}
	}
}

func TestEmptyInput(t *testing.T) {
	lx, _ := makeLexer("", lexer.Options{})
	toks := collect(t, lx)
	expectKinds(t, toks, []token.Kind{token.EOF})
}

func TestSimpleEntry(t *testing.T) {
	lx, rep := makeLexer(`@article{knuth84, title = {The {TeX}book}, year = 1984}`, lexer.Options{})
	toks := collect(t, lx)
	expectKinds(t, toks, []token.Kind{
		token.At, token.Ident, token.LBrace, token.Ident, token.Comma,
		token.Ident, token.Equals, token.LBrace, token.Text, token.LBrace,
		token.Text, token.RBrace, token.Text, token.RBrace, token.Comma,
		token.Ident, token.Equals, token.Number, token.RBrace, token.EOF,
	})
	if toks[1].Text != "article" {
		t.Errorf("entry type = %q", toks[1].Text)
	}
	if toks[3].Text != "knuth84" {
		t.Errorf("key = %q", toks[3].Text)
	}
	if toks[17].Text != "1984" {
		t.Errorf("year = %q", toks[17].Text)
	}
	if len(rep.reports) != 0 {
		t.Errorf("unexpected reports: %v", rep.reports)
	}
}

func TestQuotedValueWithBracedQuote(t *testing.T) {
	lx, rep := makeLexer(`@misc{k, note = "a {"} b"}`, lexer.Options{})
	toks := collect(t, lx)
	expectKinds(t, toks, []token.Kind{
		token.At, token.Ident, token.LBrace, token.Ident, token.Comma,
		token.Ident, token.Equals, token.Quoted, token.RBrace, token.EOF,
	})
	if toks[7].Text != `"a {"} b"` {
		t.Errorf("quoted text = %q", toks[7].Text)
	}
	if len(rep.reports) != 0 {
		t.Errorf("unexpected reports: %v", rep.reports)
	}
}

func TestUnterminatedQuoteRunsToEndOfLine(t *testing.T) {
	lx, rep := makeLexer("@misc{k, note = \"oops\n}", lexer.Options{})
	toks := collect(t, lx)
	var invalid *token.Token
	for i := range toks {
		if toks[i].Kind == token.Invalid {
			invalid = &toks[i]
			break
		}
	}
	if invalid == nil {
		t.Fatal("expected an Invalid token for the unterminated quote")
	}
	if invalid.Text != `"oops` {
		t.Errorf("invalid token text = %q", invalid.Text)
	}
	if len(rep.reports) != 1 || rep.reports[0].code != diag.LexUnterminatedQuote {
		t.Errorf("reports = %v", rep.reports)
	}
}

func TestParenDelimitedEntry(t *testing.T) {
	lx, _ := makeLexer(`@article(key, year = 2020)`, lexer.Options{})
	toks := collect(t, lx)
	expectKinds(t, toks, []token.Kind{
		token.At, token.Ident, token.LParen, token.Ident, token.Comma,
		token.Ident, token.Equals, token.Number, token.RParen, token.EOF,
	})
}

func TestInterEntryJunkBecomesComment(t *testing.T) {
	lx, _ := makeLexer("stray text\n@misc{k}\n more junk ", lexer.Options{})
	toks := collect(t, lx)
	expectKinds(t, toks, []token.Kind{
		token.Comment, token.At, token.Ident, token.LBrace, token.Ident,
		token.RBrace, token.Comment, token.EOF,
	})
	if toks[0].Text != "stray text" {
		t.Errorf("junk text = %q (should be trimmed)", toks[0].Text)
	}
	if toks[6].Text != "more junk" {
		t.Errorf("trailing junk = %q", toks[6].Text)
	}
}

func TestWhitespaceOnlyJunkEmitsNothing(t *testing.T) {
	lx, _ := makeLexer("\n\n\t  \n", lexer.Options{})
	toks := collect(t, lx)
	expectKinds(t, toks, []token.Kind{token.EOF})
}

func TestDepthLimit(t *testing.T) {
	input := "@misc{k, note = {" + "{{{" + "x" + "}}}" + "}}"
	lx, rep := makeLexer(input, lexer.Options{MaxDepth: 3})
	toks := collect(t, lx)
	foundInvalid := false
	for _, tok := range toks {
		if tok.Kind == token.Invalid {
			foundInvalid = true
		}
	}
	if !foundInvalid {
		t.Error("expected an Invalid token past the depth limit")
	}
	if len(rep.reports) != 1 || rep.reports[0].code != diag.LexDepthExceeded {
		t.Errorf("reports = %+v", rep.reports)
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Error("lexer must still reach EOF")
	}
}

func TestResyncOnAtInsideBody(t *testing.T) {
	lx, _ := makeLexer("@misc{a, title = \n@misc{b}", lexer.Options{})
	toks := collect(t, lx)
	// The second '@' must come through as At so the parser can resynchronize.
	atCount := 0
	for _, tok := range toks {
		if tok.Kind == token.At {
			atCount++
		}
	}
	if atCount != 2 {
		t.Errorf("At tokens = %d, want 2", atCount)
	}
}

func TestTotalityOnArbitraryBytes(t *testing.T) {
	inputs := []string{
		"@",
		"@@@@",
		"@}",
		"}}}{{{",
		"@misc{k, \xff\xfe = {\xc3}}",
		"@misc{k",
		"@misc(k, a = 1",
		"@misc{k, a = }",
		"\"unopened quote\"",
		"@string",
	}
	for _, in := range inputs {
		lx, _ := makeLexer(in, lexer.Options{})
		toks := collect(t, lx)
		if toks[len(toks)-1].Kind != token.EOF {
			t.Errorf("input %q did not end with EOF", in)
		}
	}
}

func TestSpansCoverTokens(t *testing.T) {
	input := `@misc{key, title = {Braced {deep} text}}`
	lx, _ := makeLexer(input, lexer.Options{})
	for _, tok := range collect(t, lx) {
		if tok.Span.End > uint32(len(input)) {
			t.Fatalf("token %s span %v exceeds input length", tok.Kind, tok.Span)
		}
		if tok.Span.Start > tok.Span.End {
			t.Fatalf("token %s has inverted span %v", tok.Kind, tok.Span)
		}
		if tok.Kind != token.EOF && tok.Text != input[tok.Span.Start:tok.Span.End] {
			t.Fatalf("token %s text %q does not match span slice %q",
				tok.Kind, tok.Text, input[tok.Span.Start:tok.Span.End])
		}
	}
}
