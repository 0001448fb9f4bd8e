package arxiv

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		id      string
		version int
		ok      bool
	}{
		{"2301.00001v2", "2301.00001", 2, true},
		{"2301.00001", "2301.00001", 0, true},
		{"hep-th/9901001", "hep-th/9901001", 0, true},
		{"2301.00001vX", "", 0, false},
		{"2301.00001v", "", 0, false},
		{"", "", 0, false},
	}
	for _, c := range cases {
		got, ok := Parse(c.in)
		if ok != c.ok || got.ID != c.id || got.Version != c.version {
			t.Errorf("Parse(%q) = %+v, %v", c.in, got, ok)
		}
	}
}

func TestString(t *testing.T) {
	id, _ := Parse("2301.00001v3")
	if id.String() != "2301.00001v3" {
		t.Errorf("String() = %q", id.String())
	}
	id, _ = Parse("2301.00001")
	if id.String() != "2301.00001" {
		t.Errorf("String() = %q", id.String())
	}
}

func TestURLs(t *testing.T) {
	id, _ := Parse("2301.00001v2")
	if id.AbsURL() != "https://arxiv.org/abs/2301.00001" {
		t.Errorf("AbsURL() = %q", id.AbsURL())
	}
	if id.PDFURL() != "https://arxiv.org/pdf/2301.00001" {
		t.Errorf("PDFURL() = %q", id.PDFURL())
	}
}

func TestCompare(t *testing.T) {
	v1, _ := Parse("xv1")
	v2, _ := Parse("xv2")
	bare, _ := Parse("x")
	other, _ := Parse("y")

	if cmp, ok := Compare(v1, v2); !ok || cmp >= 0 {
		t.Errorf("v1 vs v2 = %d, %v", cmp, ok)
	}
	if cmp, ok := Compare(v2, bare); !ok || cmp <= 0 {
		t.Errorf("pinned version must be newer than unversioned: %d, %v", cmp, ok)
	}
	if _, ok := Compare(v1, other); ok {
		t.Error("different papers are not comparable")
	}
}
