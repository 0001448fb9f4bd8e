package diag

import (
	"testing"

	"bibadac/internal/source"
)

func span(start, end uint32) source.Span {
	return source.Span{File: 0, Start: start, End: end}
}

func TestBagCap(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(RuleDuplicateKey, span(0, 1), "one")) {
		t.Fatal("first Add rejected")
	}
	if !b.Add(NewError(RuleDuplicateKey, span(1, 2), "two")) {
		t.Fatal("second Add rejected")
	}
	if b.Add(NewError(RuleDuplicateKey, span(2, 3), "three")) {
		t.Error("Add beyond cap should return false")
	}
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
}

func TestBagReporter(t *testing.T) {
	b := NewBag(4)
	r := BagReporter{Bag: b}
	r.Report(LexStrayByte, SevError, span(3, 4), "stray byte", nil, nil)
	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	got := b.Items()[0]
	if got.Code != LexStrayByte || got.Severity != SevError || got.Message != "stray byte" {
		t.Errorf("reported diagnostic mangled: %+v", got)
	}

	// A nil bag drops reports instead of panicking.
	BagReporter{}.Report(LexStrayByte, SevError, span(0, 1), "dropped", nil, nil)
}

func TestBagSortOrder(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, RuleUnknownField, span(30, 31), "later"))
	b.Add(New(SevInfo, RuleUnescapedUnicode, span(10, 12), "mid-b"))
	b.Add(New(SevError, RuleDuplicateKey, span(10, 12), "mid-a"))
	b.Add(NewError(RuleParserMarker, span(0, 4), "first"))
	b.Sort()

	items := b.Items()
	wantOrder := []Code{RuleParserMarker, RuleDuplicateKey, RuleUnescapedUnicode, RuleUnknownField}
	for i, want := range wantOrder {
		if items[i].Code != want {
			t.Errorf("items[%d].Code = %s, want %s", i, items[i].Code, want)
		}
	}
}

func TestBagSortIsStableAcrossRuns(t *testing.T) {
	build := func() *Bag {
		b := NewBag(10)
		b.Add(New(SevWarning, RuleMalformedYear, span(5, 9), "year"))
		b.Add(New(SevError, RuleDuplicateField, span(5, 9), "dup"))
		b.Add(New(SevInfo, RuleUncheckable, span(2, 3), "uncheckable"))
		b.Sort()
		return b
	}
	a, c := build(), build()
	for i := range a.Items() {
		if a.Items()[i].Code != c.Items()[i].Code {
			t.Fatalf("run difference at %d: %s vs %s", i, a.Items()[i].Code, c.Items()[i].Code)
		}
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(10)
	d := NewError(RuleDuplicateKey, span(4, 8), "duplicate citation key")
	b.Add(d)
	b.Add(d)
	b.Add(NewError(RuleDuplicateKey, span(4, 8), "different message"))
	b.Dedup()
	if b.Len() != 2 {
		t.Errorf("Len after Dedup = %d, want 2", b.Len())
	}
}

func TestHasErrors(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, RuleUnknownField, span(0, 1), "w"))
	if b.HasErrors() {
		t.Error("warning-only bag reports errors")
	}
	b.Add(NewError(RuleParserMarker, span(0, 1), "e"))
	if !b.HasErrors() {
		t.Error("bag with an error reports none")
	}
}

func TestCodeIDRoundTrip(t *testing.T) {
	for _, c := range []Code{
		RuleMissingField, RuleUnknownField, RuleDuplicateKey, RuleDuplicateField,
		RuleMalformedYear, RuleUnescapedUnicode, RuleUnusedMacro, RuleParserMarker,
	} {
		got, ok := CodeByID(c.ID())
		if !ok || got != c {
			t.Errorf("CodeByID(%q) = %v, %v", c.ID(), got, ok)
		}
	}
}
