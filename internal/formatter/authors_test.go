package formatter

import "testing"

func TestFormatAuthors(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Author1 and Author2 and Author3", "Author1 and Author2 and Author3"},
		{"Author1 and A B and Author3", "Author1 and B, A and Author3"},
		{"Author1 and A, B and Author3", "Author1 and A, B and Author3"},
		{"A B C and D E F and G H I", "C, A B and F, D E and I, G H"},
		{"Michael Kaminski and Nissim Francez", "Kaminski, Michael and Francez, Nissim"},
		{"DONALD E. KNUTH and PETER B. BENDIX", "KNUTH, DONALD E. and BENDIX, PETER B."},
	}
	for _, c := range cases {
		if got := FormatAuthors(c.in); got != c.want {
			t.Errorf("FormatAuthors(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidAuthors(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Author1 and A B C and Author3", false},
		{"Author1 and A, B C and Author3", true},
		{"Author1 and A , B C and Author3", false},
		{"Knuth, Donald E.", true},
		{"Knuth", true},
	}
	for _, c := range cases {
		if got := ValidAuthors(c.in); got != c.want {
			t.Errorf("ValidAuthors(%q) = %v", c.in, got)
		}
	}
}
