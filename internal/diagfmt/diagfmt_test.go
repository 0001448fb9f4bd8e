package diagfmt_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"bibadac/internal/diag"
	"bibadac/internal/diagfmt"
	"bibadac/internal/source"
)

func makeBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("refs.bib", []byte("@article{k, year = {bad}}\n"))
	bag := diag.NewBag(10)
	sp := source.Span{File: id, Start: 20, End: 23}
	d := diag.New(diag.SevWarning, diag.RuleMalformedYear, sp, "year 'bad' is not a 4-digit year")
	d = d.WithNote(source.Span{File: id, Start: 12, End: 16}, "field declared here")
	d = d.WithFix("replace value", diag.FixEdit{Span: sp, NewText: "2020"})
	bag.Add(d)
	return bag, fs
}

func TestPretty(t *testing.T) {
	bag, fs := makeBag(t)
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{ShowNotes: true, ShowFixes: true})
	out := buf.String()

	if !strings.Contains(out, "refs.bib:1:21: WARNING malformed-year:") {
		t.Errorf("header missing or wrong:\n%s", out)
	}
	if !strings.Contains(out, "@article{k, year = {bad}}") {
		t.Errorf("source line missing:\n%s", out)
	}
	if !strings.Contains(out, "^~~") {
		t.Errorf("caret underline missing:\n%s", out)
	}
	if !strings.Contains(out, "note: field declared here") {
		t.Errorf("note missing:\n%s", out)
	}
	if !strings.Contains(out, "fix: replace value") {
		t.Errorf("fix missing:\n%s", out)
	}
}

func TestPrettyCaretAlignment(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("u.bib", []byte("@misc{k, note = {日本}}\n"))
	b := diag.NewBag(10)
	// span covers the two wide runes
	b.Add(diag.New(diag.SevInfo, diag.RuleUnescapedUnicode,
		source.Span{File: id, Start: 17, End: 23}, "non-ASCII"))
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, b, fs, diagfmt.PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("short output:\n%s", buf.String())
	}
	marker := lines[2]
	// two wide runes occupy four columns
	if !strings.Contains(marker, "^~~~") {
		t.Errorf("wide runes not widened in %q", marker)
	}
}

func TestJSON(t *testing.T) {
	bag, fs := makeBag(t)
	var buf bytes.Buffer
	err := diagfmt.JSON(&buf, bag, fs, diagfmt.JSONOpts{
		IncludePositions: true,
		IncludeNotes:     true,
		IncludeFixes:     true,
	})
	if err != nil {
		t.Fatal(err)
	}

	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count %d, diagnostics %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Code != "malformed-year" || d.Severity != "WARNING" {
		t.Errorf("diagnostic %+v", d)
	}
	if d.Location.StartLine != 1 || d.Location.StartCol != 21 {
		t.Errorf("location %+v", d.Location)
	}
	if len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Errorf("notes %d fixes %d", len(d.Notes), len(d.Fixes))
	}
	if d.Fixes[0].Edits[0].NewText != "2020" {
		t.Errorf("fix edit %+v", d.Fixes[0])
	}
}

func TestJSONMaxTruncates(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.bib", []byte("abc\n"))
	bag := diag.NewBag(10)
	for i := 0; i < 5; i++ {
		bag.Add(diag.New(diag.SevInfo, diag.RuleEmptyValue,
			source.Span{File: id, Start: 0, End: 1}, "x"))
	}
	var buf bytes.Buffer
	if err := diagfmt.JSON(&buf, bag, fs, diagfmt.JSONOpts{Max: 2}); err != nil {
		t.Fatal(err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Diagnostics) != 2 || out.Count != 5 {
		t.Errorf("got %d emitted of %d total", len(out.Diagnostics), out.Count)
	}
}
