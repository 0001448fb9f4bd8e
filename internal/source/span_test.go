package source

import "testing"

func TestSpanEmptyAndLen(t *testing.T) {
	s := Span{File: 0, Start: 3, End: 3}
	if !s.Empty() {
		t.Error("zero-width span should be Empty")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}

	s = Span{File: 0, Start: 3, End: 8}
	if s.Empty() {
		t.Error("non-empty span reported Empty")
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 6}
	b := Span{File: 1, Start: 2, End: 5}
	got := a.Cover(b)
	if got.Start != 2 || got.End != 6 {
		t.Errorf("Cover = %v, want 1:2-6", got)
	}

	other := Span{File: 2, Start: 0, End: 100}
	got = a.Cover(other)
	if got != a {
		t.Errorf("Cover across files should be a no-op, got %v", got)
	}
}

func TestSpanCollapse(t *testing.T) {
	s := Span{File: 3, Start: 10, End: 20}
	at := s.Collapse(15)
	if at.File != 3 || at.Start != 15 || at.End != 15 {
		t.Errorf("Collapse = %v, want 3:15-15", at)
	}
	if !at.Empty() {
		t.Error("collapsed span should be empty")
	}
}
