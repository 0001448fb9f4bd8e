package fix_test

import (
	"context"
	"testing"

	"bibadac/internal/diag"
	"bibadac/internal/fix"
	"bibadac/internal/parser"
	"bibadac/internal/rules"
	"bibadac/internal/source"
)

func fileOf(t *testing.T, input string) *source.File {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.bib", []byte(input))
	return fs.Get(id)
}

func TestApplyReplace(t *testing.T) {
	file := fileOf(t, `@misc{k, autor = {X}}`)
	d := diag.New(diag.SevWarning, diag.RuleUnknownField,
		source.Span{File: file.ID, Start: 9, End: 14}, "unknown field")
	d = d.WithFix("rename", diag.FixEdit{
		Span:    source.Span{File: file.ID, Start: 9, End: 14},
		NewText: "author",
	})

	res, err := fix.Apply(file, []diag.Diagnostic{d})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(res.Content); got != `@misc{k, author = {X}}` {
		t.Errorf("got %q", got)
	}
	if res.Applied != 1 {
		t.Errorf("applied %d", res.Applied)
	}
}

func TestApplyMultipleInsertsSamePoint(t *testing.T) {
	input := `@article{k,title={T}}`
	file := fileOf(t, input)
	doc := parser.Parse(file, parser.Options{})
	bag, err := rules.Evaluate(context.Background(), doc, file, nil)
	if err != nil {
		t.Fatal(err)
	}

	var missing []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Code == diag.RuleMissingField {
			missing = append(missing, d)
		}
	}
	if len(missing) != 3 {
		t.Fatalf("got %d missing-field diagnostics", len(missing))
	}

	res, err := fix.Apply(file, missing)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied != 3 {
		t.Errorf("applied %d, want 3", res.Applied)
	}
	got := string(res.Content)
	// The first insert supplies the comma the existing field lacks; later
	// inserts chain with their own, so the result is plain valid BibTeX.
	want := "@article{k,title={T},\n  author = {},\n  journal = {},\n  year = {}}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	// The result must still parse to a single well-formed entry.
	fixed := fileOf(t, got)
	fixedDoc := parser.Parse(fixed, parser.Options{})
	if len(fixedDoc.Markers) != 0 {
		t.Errorf("fixed output does not parse cleanly: %v", fixedDoc.Markers)
	}
}

func TestApplySkipsOverlapping(t *testing.T) {
	file := fileOf(t, `abcdef`)
	mk := func(start, end uint32, text string) diag.Diagnostic {
		d := diag.New(diag.SevWarning, diag.RuleEmptyValue,
			source.Span{File: file.ID, Start: start, End: end}, "x")
		return d.WithFix("t", diag.FixEdit{
			Span:    source.Span{File: file.ID, Start: start, End: end},
			NewText: text,
		})
	}
	res, err := fix.Apply(file, []diag.Diagnostic{mk(0, 4, "AAAA"), mk(2, 6, "BBBB")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied != 1 || res.Skipped != 1 {
		t.Errorf("applied %d skipped %d", res.Applied, res.Skipped)
	}
	if got := string(res.Content); got != "AAAAef" {
		t.Errorf("got %q", got)
	}
}

func TestApplyNoFixes(t *testing.T) {
	file := fileOf(t, `abc`)
	d := diag.New(diag.SevWarning, diag.RuleEmptyValue,
		source.Span{File: file.ID, Start: 0, End: 1}, "no fix attached")
	if _, err := fix.Apply(file, []diag.Diagnostic{d}); err != fix.ErrNoFixes {
		t.Errorf("err = %v, want ErrNoFixes", err)
	}
}
