package rules

import (
	"context"
	"strings"
	"testing"

	"bibadac/internal/bib"
	"bibadac/internal/diag"
	"bibadac/internal/parser"
	"bibadac/internal/source"
)

type panickingRule struct{}

func (panickingRule) Name() string { return "panicking-rule" }

func (panickingRule) Check(*Context, *bib.RegularEntry) []diag.Diagnostic {
	panic("boom")
}

func TestEvaluateRecoversRulePanic(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.bib", []byte(`@misc{k, title = {T}}`))
	file := fs.Get(id)
	doc := parser.Parse(file, parser.Options{})

	_, err := evaluate(context.Background(), doc, file, nil,
		[]EntryRule{panickingRule{}}, nil)
	if err == nil {
		t.Fatal("a panicking rule should surface as an error, not crash")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("panic value lost: %v", err)
	}
	if !strings.Contains(err.Error(), `"k"`) {
		t.Errorf("entry key missing from error: %v", err)
	}
}
