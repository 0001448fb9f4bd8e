package formatter

// Completer supplies values for fields an entry lacks. Keys are lowercase
// field names, values are plain resolved text. bibdb.Local satisfies this.
type Completer interface {
	Complete(partial map[string]string) map[string]string
}

// Delim selects the value delimiter the printer emits.
type Delim uint8

const (
	// DelimBrace writes values as {text}.
	DelimBrace Delim = iota
	// DelimQuote writes values as "text", falling back to braces when the
	// text cannot round-trip through quotes.
	DelimQuote
)

// SortMode selects entry ordering.
type SortMode uint8

const (
	// SortNone keeps document order.
	SortNone SortMode = iota
	// SortByKey orders bibliographic records by citation key; comments,
	// preambles and macro definitions keep their positions.
	SortByKey
)

// Style is the complete formatting configuration. The zero value is the
// default style: two-space indent, brace delimiters, document order.
type Style struct {
	// Indent prefixes each field line. Empty means two spaces.
	Indent string

	Delimiter   Delim
	SortEntries SortMode

	// FieldOrder lists field keys emitted first, in this order; fields not
	// listed follow in their original order.
	FieldOrder []string

	// DropFields are removed from every entry. KeepFields, when non-empty,
	// keeps only the listed fields; DropFields still applies.
	DropFields []string
	KeepFields []string

	// AlignEquals pads field keys so the '=' signs line up per entry.
	AlignEquals bool

	// WrapWidth re-wraps braced literal values at this column; zero turns
	// wrapping off. Wrapped values get their whitespace runs collapsed
	// first, so wrapping is stable under reformatting.
	WrapWidth int

	// ResolveMacros inlines macro references into literal text.
	ResolveMacros bool

	// FormatAuthors canonicalizes the author field into "Last, First" form.
	FormatAuthors bool

	// FillFrom, when set, adds fields the completion database knows for this
	// entry and the entry itself lacks. Existing values are never replaced.
	FillFrom Completer
}

// DefaultFieldOrder is the canonical field ordering used when a style does
// not specify one of its own.
var DefaultFieldOrder = []string{
	"author", "title", "journal", "booktitle", "editor",
	"publisher", "institution", "school", "organization",
	"volume", "number", "series", "chapter", "pages", "edition",
	"month", "year", "address", "howpublished",
	"doi", "eprint", "archiveprefix", "primaryclass", "url",
	"note", "annote", "key", "crossref", "type", "keywords",
}

// DefaultStyle returns the canonical style.
func DefaultStyle() Style {
	return Style{
		Indent:     "  ",
		FieldOrder: DefaultFieldOrder,
	}
}

func (s *Style) indent() string {
	if s.Indent == "" {
		return "  "
	}
	return s.Indent
}

func (s *Style) fieldOrder() []string {
	if s.FieldOrder == nil {
		return DefaultFieldOrder
	}
	return s.FieldOrder
}
