package formatter_test

import (
	"strings"
	"testing"

	"bibadac/internal/bib"
	"bibadac/internal/bibdb"
	"bibadac/internal/formatter"
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

func format(t *testing.T, input string, style formatter.Style) string {
	t.Helper()
	doc, file := parse(t, input)
	return string(formatter.Format(doc, file, style))
}

func TestFormatCanonical(t *testing.T) {
	got := format(t, `@ARTICLE{Knuth84,YEAR=1984,title={The {TeX}book},author={Knuth, Donald E.}}`,
		formatter.DefaultStyle())
	want := `@article{Knuth84,
  author = {Knuth, Donald E.},
  title = {The {TeX}book},
  year = 1984,
}
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatQuoteDelimiter(t *testing.T) {
	style := formatter.DefaultStyle()
	style.Delimiter = formatter.DelimQuote
	got := format(t, `@misc{k, title = {Plain}, note = {has "quotes"}}`, style)
	if !strings.Contains(got, `title = "Plain"`) {
		t.Errorf("title not quoted:\n%s", got)
	}
	// Values that cannot round-trip through quotes fall back to braces.
	if !strings.Contains(got, `note = {has "quotes"}`) {
		t.Errorf("note not brace-protected:\n%s", got)
	}
}

func TestFormatAlignEquals(t *testing.T) {
	style := formatter.DefaultStyle()
	style.AlignEquals = true
	got := format(t, `@misc{k, author = {A}, howpublished = {web}}`, style)
	if !strings.Contains(got, "author       = {A}") {
		t.Errorf("author not padded:\n%s", got)
	}
	if !strings.Contains(got, "howpublished = {web}") {
		t.Errorf("howpublished misaligned:\n%s", got)
	}
}

func TestFormatSortByKey(t *testing.T) {
	style := formatter.DefaultStyle()
	style.SortEntries = formatter.SortByKey
	got := format(t, `@misc{zebra, note={z}}
@misc{Alpha, note={a}}`, style)
	if strings.Index(got, "Alpha") > strings.Index(got, "zebra") {
		t.Errorf("entries not sorted by key:\n%s", got)
	}
}

func TestFormatKeepAndDrop(t *testing.T) {
	style := formatter.DefaultStyle()
	style.KeepFields = []string{"title", "year"}
	got := format(t, `@misc{k, title={T}, note={N}, year=2020}`, style)
	if strings.Contains(got, "note") {
		t.Errorf("dropped field survived:\n%s", got)
	}
	if !strings.Contains(got, "title") || !strings.Contains(got, "year") {
		t.Errorf("kept fields missing:\n%s", got)
	}
}

func TestFormatMacroRefsPreserved(t *testing.T) {
	input := `@string{jan = "January"}
@misc{k, month = jan # " extra"}`
	got := format(t, input, formatter.DefaultStyle())
	if !strings.Contains(got, "month = jan # ") {
		t.Errorf("macro reference inlined:\n%s", got)
	}

	style := formatter.DefaultStyle()
	style.ResolveMacros = true
	got = format(t, input, style)
	if !strings.Contains(got, "month = {January extra}") {
		t.Errorf("macros not resolved:\n%s", got)
	}
}

func TestFormatAuthorsStyle(t *testing.T) {
	style := formatter.DefaultStyle()
	style.FormatAuthors = true
	got := format(t, `@misc{k, author = {Michael Kaminski and Nissim Francez}}`, style)
	if !strings.Contains(got, "author = {Kaminski, Michael and Francez, Nissim}") {
		t.Errorf("authors not canonicalized:\n%s", got)
	}
}

func TestFormatEmptyInput(t *testing.T) {
	// Whitespace-only input has no entries; the output is empty but never
	// nil, so callers can tell "formatted to nothing" from "not loaded".
	doc, file := parse(t, "\n\n")
	out := formatter.Format(doc, file, formatter.DefaultStyle())
	if out == nil {
		t.Fatal("empty document formatted to nil")
	}
	if len(out) != 0 {
		t.Errorf("empty document formatted to %q", out)
	}
}

func TestFormatMissingKeySurvives(t *testing.T) {
	got := format(t, `@article{, title = {X}}`, formatter.DefaultStyle())
	if !strings.HasPrefix(got, "@article{,") {
		t.Errorf("entry with missing key dropped:\n%s", got)
	}
}

func TestFormatJunkPreserved(t *testing.T) {
	got := format(t, `Some stray prose.
@misc{k, note = {x}}`, formatter.DefaultStyle())
	if !strings.HasPrefix(got, "Some stray prose.\n\n@misc{k,") {
		t.Errorf("junk text lost:\n%s", got)
	}
}

func TestFormatWrapWidth(t *testing.T) {
	style := formatter.DefaultStyle()
	style.WrapWidth = 40
	long := strings.Repeat("word ", 15)
	got := format(t, `@misc{k, note = {`+long+`}}`, style)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 40+1 { // trailing comma may exceed by one
			t.Errorf("line %q exceeds wrap width", line)
		}
	}
}

func TestFormatIdempotent(t *testing.T) {
	inputs := []string{
		`@ARTICLE{Knuth84,YEAR=1984,title={The {TeX}book},author={Knuth, Donald E.}}`,
		`@string{jan = "January"}
@misc{k, month = jan # " " # 2024, note = "quoted {with "} braces"}`,
		`stray junk
@article{, title = {X}}
@preamble{ "\def\x{1}" }
@comment{jabref {stuff}}`,
		`@article{broken, title = {unclosed
@misc{next, year = 2020}`,
		`@misc{k, note = {  lots   of
   whitespace   }}`,
	}
	styles := map[string]formatter.Style{
		"default": formatter.DefaultStyle(),
		"quote": func() formatter.Style {
			s := formatter.DefaultStyle()
			s.Delimiter = formatter.DelimQuote
			return s
		}(),
		"sorted-aligned": func() formatter.Style {
			s := formatter.DefaultStyle()
			s.SortEntries = formatter.SortByKey
			s.AlignEquals = true
			return s
		}(),
		"wrapped": func() formatter.Style {
			s := formatter.DefaultStyle()
			s.WrapWidth = 50
			return s
		}(),
		"resolved": func() formatter.Style {
			s := formatter.DefaultStyle()
			s.ResolveMacros = true
			s.FormatAuthors = true
			return s
		}(),
	}
	for name, style := range styles {
		for _, input := range inputs {
			once := format(t, input, style)
			twice := format(t, once, style)
			if once != twice {
				t.Errorf("style %s not idempotent for %q:\nfirst:\n%s\nsecond:\n%s",
					name, input, once, twice)
			}
		}
	}
}

func TestFormatFillFrom(t *testing.T) {
	db := bibdb.NewLocal()
	dbDoc, _ := parse(t, `@article{src,
  doi = {10.1/x},
  title = {T},
  author = {Knuth, Donald E.},
  year = {1984},
}`)
	db.ImportDocument(dbDoc)

	style := formatter.DefaultStyle()
	style.FillFrom = db
	input := `@article{k, title = {T}, doi = {10.1/x}}`

	once := format(t, input, style)
	if !strings.Contains(once, "author = {Knuth, Donald E.},") {
		t.Errorf("author not filled:\n%s", once)
	}
	if !strings.Contains(once, "year = {1984},") {
		t.Errorf("year not filled:\n%s", once)
	}
	// Existing values win over the database.
	if !strings.Contains(once, "title = {T},") {
		t.Errorf("title replaced:\n%s", once)
	}

	twice := format(t, once, style)
	if once != twice {
		t.Errorf("fill not idempotent:\nfirst:\n%s\nsecond:\n%s", once, twice)
	}
}
