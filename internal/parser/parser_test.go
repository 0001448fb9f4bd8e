package parser_test

import (
	"strings"
	"testing"

	"bibadac/internal/bib"
	"bibadac/internal/diag"
	"bibadac/internal/parser"
	"bibadac/internal/source"
)

func parse(t *testing.T, input string) (*bib.Document, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.bib", []byte(input))
	file := fs.Get(id)
	return parser.Parse(file, parser.Options{}), file
}

func regulars(doc *bib.Document) []*bib.RegularEntry {
	var out []*bib.RegularEntry
	for _, e := range doc.Entries {
		if r, ok := e.(*bib.RegularEntry); ok {
			out = append(out, r)
		}
	}
	return out
}

func TestParseSimpleEntry(t *testing.T) {
	doc, _ := parse(t, `@article{knuth84,
  title = {The {TeX}book},
  year = 1984,
}`)
	if len(doc.Markers) != 0 {
		t.Fatalf("unexpected markers: %v", doc.Markers)
	}
	entries := regulars(doc)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Type != "article" || e.Key != "knuth84" {
		t.Errorf("got type %q key %q", e.Type, e.Key)
	}
	if len(e.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(e.Fields))
	}
	title, _ := e.Field("TITLE")
	if title == nil {
		t.Fatal("case-insensitive field lookup failed")
	}
	if got := title.Value.Resolve(doc.Macros); got != "The {TeX}book" {
		t.Errorf("title resolved to %q", got)
	}
	year, _ := e.Field("year")
	if got := year.Value.Resolve(doc.Macros); got != "1984" {
		t.Errorf("year resolved to %q", got)
	}
}

func TestParseQuotedAndConcat(t *testing.T) {
	doc, _ := parse(t, `@string{jan = "January"}
@misc{m, month = jan # " " # 2024}`)
	if len(doc.Markers) != 0 {
		t.Fatalf("unexpected markers: %v", doc.Markers)
	}
	e := regulars(doc)[0]
	month, _ := e.Field("month")
	if month == nil {
		t.Fatal("month field missing")
	}
	if len(month.Value.Parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(month.Value.Parts))
	}
	if got := month.Value.Resolve(doc.Macros); got != "January 2024" {
		t.Errorf("resolved to %q", got)
	}
}

func TestParseMacroShadowing(t *testing.T) {
	doc, _ := parse(t, `@string{name = "Smith"}
@string{name = "Doe"}
@misc{m, author = name}`)
	e := regulars(doc)[0]
	author, _ := e.Field("author")
	if got := author.Value.Resolve(doc.Macros); got != "Doe" {
		t.Errorf("resolved to %q, want last definition to win", got)
	}
	if got := len(doc.Macros.Defs()); got != 2 {
		t.Errorf("table records %d defs, want both", got)
	}
}

func TestParseUndefinedMacroResolvesToName(t *testing.T) {
	doc, _ := parse(t, `@misc{m, month = jan}`)
	e := regulars(doc)[0]
	month, _ := e.Field("month")
	if got := month.Value.Resolve(doc.Macros); got != "jan" {
		t.Errorf("resolved to %q, want the macro name itself", got)
	}
	if !month.Value.HasMacroRef() {
		t.Error("segment should be a macro reference")
	}
}

func TestParseMissingKey(t *testing.T) {
	doc, _ := parse(t, `@article{, title = {X}}`)
	e := regulars(doc)[0]
	if e.Key != "" {
		t.Errorf("got key %q, want synthesized empty key", e.Key)
	}
	if !e.KeySpan.Empty() {
		t.Errorf("key span %v should be zero-width", e.KeySpan)
	}
	if len(e.Fields) != 1 {
		t.Errorf("got %d fields, the entry body must survive", len(e.Fields))
	}
	requireMarker(t, doc, diag.SynMissingKey)
}

func TestParseParenDelimiters(t *testing.T) {
	doc, _ := parse(t, `@article(key, title = {X})`)
	if len(doc.Markers) != 0 {
		t.Fatalf("unexpected markers: %v", doc.Markers)
	}
	e := regulars(doc)[0]
	if !e.Paren || e.Key != "key" {
		t.Errorf("paren=%v key=%q", e.Paren, e.Key)
	}
}

func TestParseInterEntryJunk(t *testing.T) {
	doc, _ := parse(t, `This line is ignored.
@misc{a}
% also ignored
@misc{b}`)
	if len(doc.Markers) != 0 {
		t.Fatalf("unexpected markers: %v", doc.Markers)
	}
	var comments int
	for _, e := range doc.Entries {
		if c, ok := e.(*bib.CommentEntry); ok && !c.Explicit {
			comments++
		}
	}
	if comments != 2 {
		t.Errorf("got %d junk comments, want 2", comments)
	}
	if got := len(regulars(doc)); got != 2 {
		t.Errorf("got %d entries, want 2", got)
	}
}

func TestParseExplicitComment(t *testing.T) {
	doc, _ := parse(t, `@comment{jabref meta {nested} data}`)
	if len(doc.Entries) != 1 {
		t.Fatalf("got %d entries", len(doc.Entries))
	}
	c, ok := doc.Entries[0].(*bib.CommentEntry)
	if !ok || !c.Explicit {
		t.Fatalf("entry is %T", doc.Entries[0])
	}
	if c.Text != "jabref meta {nested} data" {
		t.Errorf("comment text %q", c.Text)
	}
}

func TestParsePreamble(t *testing.T) {
	doc, _ := parse(t, `@preamble{ "\def\cprime{$'$}" }`)
	if len(doc.Markers) != 0 {
		t.Fatalf("unexpected markers: %v", doc.Markers)
	}
	pre, ok := doc.Entries[0].(*bib.PreambleEntry)
	if !ok {
		t.Fatalf("entry is %T", doc.Entries[0])
	}
	if got := pre.Value.Resolve(doc.Macros); got != `\def\cprime{$'$}` {
		t.Errorf("preamble resolved to %q", got)
	}
}

func TestParseUnclosedEntryResync(t *testing.T) {
	doc, _ := parse(t, `@article{broken, title = {X}
@misc{next, year = 2020}`)
	entries := regulars(doc)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, recovery must keep both", len(entries))
	}
	if entries[0].Key != "broken" || entries[1].Key != "next" {
		t.Errorf("keys %q, %q", entries[0].Key, entries[1].Key)
	}
	requireMarker(t, doc, diag.SynUnclosedEntry)
	if countMarkers(doc) != 1 {
		t.Errorf("got %d markers, want exactly one per malformed entry", countMarkers(doc))
	}
}

func TestParseGarbageBetweenFields(t *testing.T) {
	doc, _ := parse(t, `@article{k, = = =, year = 2020}`)
	e := regulars(doc)[0]
	year, _ := e.Field("year")
	if year == nil {
		t.Fatal("field after the malformed run must survive when the skip resyncs on the close")
	}
	_ = year
}

func TestParseSkippedGarbageSingleMarker(t *testing.T) {
	doc, _ := parse(t, `@article{k, } } }
@misc{ok, year = 2020}`)
	if got := len(regulars(doc)); got != 2 {
		t.Fatalf("got %d entries, want 2", got)
	}
}

func TestParseMissingValue(t *testing.T) {
	doc, _ := parse(t, `@article{k, title = , year = 2020}`)
	e := regulars(doc)[0]
	if len(e.Fields) != 2 {
		t.Fatalf("got %d fields, want both", len(e.Fields))
	}
	title, _ := e.Field("title")
	if len(title.Value.Parts) != 0 {
		t.Errorf("empty value has %d parts", len(title.Value.Parts))
	}
	if !title.Value.Full.Empty() {
		t.Errorf("empty value span %v should be zero-width", title.Value.Full)
	}
	requireMarker(t, doc, diag.SynExpectValue)
}

func TestParseInsertionPoint(t *testing.T) {
	input := `@article{k, year = 2020}`
	doc, _ := parse(t, input)
	e := regulars(doc)[0]
	ip := e.InsertionPoint()
	if !ip.Empty() {
		t.Errorf("insertion point %v should be zero-width", ip)
	}
	if int(ip.Start) != strings.LastIndexByte(input, '}') {
		t.Errorf("insertion point at %d, want the closing brace offset", ip.Start)
	}
}

func TestParseDuplicateFieldSpans(t *testing.T) {
	doc, _ := parse(t, `@article{k, year = 2020, year = 2021}`)
	e := regulars(doc)[0]
	if len(e.Fields) != 2 {
		t.Fatalf("both occurrences must be kept, got %d", len(e.Fields))
	}
	if e.Fields[0].KeySpan.Start >= e.Fields[1].KeySpan.Start {
		t.Error("field spans must preserve source order")
	}
}

func TestParseTotalityOnGarbage(t *testing.T) {
	inputs := []string{
		"", "@", "@@", "@{", "@article", "@article{",
		"@article{k", "{}{}{}", "@string{", "@preamble{",
		"\x00\xff@misc{k}", "@comment{never closed",
		"@article{k, title = {a{b{c}",
	}
	for _, in := range inputs {
		doc, _ := parse(t, in)
		if doc == nil {
			t.Fatalf("Parse(%q) returned nil", in)
		}
	}
}

func TestParseUnterminatedQuoteSalvaged(t *testing.T) {
	doc, _ := parse(t, `@article{k, title = "no closing quote
, year = 2020}`)
	e := regulars(doc)[0]
	title, _ := e.Field("title")
	if title == nil {
		t.Fatal("title field missing")
	}
	if got := title.Value.Resolve(doc.Macros); !strings.Contains(got, "no closing quote") {
		t.Errorf("salvaged value %q", got)
	}
	requireMarker(t, doc, diag.LexUnterminatedQuote)
}

func TestParseNestedBracesVerbatim(t *testing.T) {
	doc, _ := parse(t, `@article{k, title = {a {b {c} d} e}}`)
	e := regulars(doc)[0]
	title, _ := e.Field("title")
	if got := title.Value.Raw(); got != "{a {b {c} d} e}" {
		t.Errorf("raw %q", got)
	}
	if got := title.Value.Resolve(doc.Macros); got != "a {b {c} d} e" {
		t.Errorf("resolved %q", got)
	}
}

func requireMarker(t *testing.T, doc *bib.Document, code diag.Code) {
	t.Helper()
	for _, m := range doc.Markers {
		if m.Code == code {
			return
		}
	}
	t.Errorf("no marker with code %v in %v", code, doc.Markers)
}

func countMarkers(doc *bib.Document) int {
	return len(doc.Markers)
}
