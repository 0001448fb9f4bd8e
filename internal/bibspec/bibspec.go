// Package bibspec carries the static BibTeX/BibLaTeX vocabulary: known entry
// types, known field keys, per-type required-field sets, and "did you mean"
// suggestions for near-miss spellings.
package bibspec

import "strings"

// EntryTypes is the accepted entry type vocabulary, BibTeX plus the BibLaTeX
// extensions in common circulation.
var EntryTypes = []string{
	"article",
	"book",
	"booklet",
	"conference",
	"inbook",
	"incollection",
	"inproceedings",
	"manual",
	"mastersthesis",
	"misc",
	"phdthesis",
	"proceedings",
	"techreport",
	"unpublished",
	"patent",
	"bookinbook",
	"suppbook",
	"suppcollection",
	"suppperiodical",
	"mvbook",
	"mvcollection",
	"mvproceedings",
	"talk",
	"mapping",
}

// Fields is the known field key vocabulary.
var Fields = []string{
	"address",
	"annote",
	"author",
	"booktitle",
	"chapter",
	"crossref",
	"edition",
	"editor",
	"howpublished",
	"institution",
	"journal",
	"key",
	"month",
	"note",
	"number",
	"organization",
	"pages",
	"publisher",
	"school",
	"series",
	"title",
	"type",
	"volume",
	"year",
	"eprint",
	"archiveprefix",
	"primaryclass",
	"keywords",
}

// requiredFields maps lower-cased entry types to the field keys an entry of
// that type must carry. Types absent from the map require nothing.
var requiredFields = map[string][]string{
	"article":       {"author", "title", "journal", "year"},
	"book":          {"author", "title", "publisher", "year"},
	"booklet":       {"title"},
	"conference":    {"author", "title", "booktitle", "year"},
	"inbook":        {"author", "title", "chapter", "publisher", "year"},
	"incollection":  {"author", "title", "booktitle", "publisher", "year"},
	"inproceedings": {"author", "title", "booktitle", "year"},
	"manual":        {"title"},
	"mastersthesis": {"author", "title", "school", "year"},
	"phdthesis":     {"author", "title", "school", "year"},
	"proceedings":   {"title", "year"},
	"techreport":    {"author", "title", "institution", "year"},
	"unpublished":   {"author", "title", "note"},
}

var (
	entryTypeSet = makeSet(EntryTypes)
	fieldSet     = makeSet(Fields)
)

func makeSet(ss []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		m[s] = struct{}{}
	}
	return m
}

// KnownEntryType reports whether the type is in the vocabulary,
// case-insensitively.
func KnownEntryType(typ string) bool {
	_, ok := entryTypeSet[strings.ToLower(typ)]
	return ok
}

// KnownField reports whether the field key is in the vocabulary,
// case-insensitively.
func KnownField(key string) bool {
	_, ok := fieldSet[strings.ToLower(key)]
	return ok
}

// Required returns the required-field set for the entry type, or nil when
// the type has none (including unknown types).
func Required(typ string) []string {
	return requiredFields[strings.ToLower(typ)]
}

// SuggestEntryType returns the known entry types within edit distance one of
// the given spelling, in vocabulary order. An exact match suggests itself.
func SuggestEntryType(typ string) []string {
	return suggest(strings.ToLower(typ), EntryTypes)
}

// SuggestField returns the known field keys within edit distance one of the
// given spelling, in vocabulary order.
func SuggestField(key string) []string {
	return suggest(strings.ToLower(key), Fields)
}

func suggest(s string, vocab []string) []string {
	var out []string
	for _, w := range vocab {
		if withinOneEdit(s, w) {
			out = append(out, w)
		}
	}
	return out
}

// withinOneEdit reports whether a and b differ by at most one insertion,
// deletion or substitution. Both operands are expected lower-cased; the
// comparison is byte-wise.
func withinOneEdit(a, b string) bool {
	la, lb := len(a), len(b)
	if la > lb {
		a, b = b, a
		la, lb = lb, la
	}
	if lb-la > 1 {
		return false
	}
	// Find the first mismatch; the remainder must match either directly
	// (substitution, equal lengths) or shifted by one (insertion).
	i := 0
	for i < la && a[i] == b[i] {
		i++
	}
	if i == la {
		return true // a is a prefix of b, lengths differ by at most one
	}
	if la == lb {
		return a[i+1:] == b[i+1:]
	}
	return a[i:] == b[i+1:]
}
