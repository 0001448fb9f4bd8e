package rules

import (
	"regexp"
	"strings"

	"bibadac/internal/bib"
	"bibadac/internal/bibspec"
	"bibadac/internal/diag"
	"bibadac/internal/formatter"
)

type missingFieldRule struct{}

func (missingFieldRule) Name() string { return diag.RuleMissingField.ID() }

func (missingFieldRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	var out []diag.Diagnostic
	ip := entry.InsertionPoint()
	// The first inserted field must supply the comma the last existing
	// field may lack; later inserts always follow one of ours.
	sep := ",\n  "
	if b, ok := lastContentByte(ctx.File.Content, ip.Start); ok && (b == ',' || b == '{') {
		sep = "\n  "
	}
	for _, req := range bibspec.Required(entry.Type) {
		if _, ok := entry.Field(req); ok {
			continue
		}
		d := diag.NewError(diag.RuleMissingField, ip,
			"entry of type '"+entry.TypeLower()+"' is missing required field '"+req+"'")
		d = d.WithFix("add empty '"+req+"' field", diag.FixEdit{
			Span:    ip,
			NewText: sep + req + " = {}",
		})
		out = append(out, d)
		sep = ",\n  "
	}
	return out
}

// lastContentByte returns the last non-whitespace byte before off.
func lastContentByte(content []byte, off uint32) (byte, bool) {
	for i := int(off) - 1; i >= 0; i-- {
		switch content[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return content[i], true
		}
	}
	return 0, false
}

type unknownFieldRule struct{}

func (unknownFieldRule) Name() string { return diag.RuleUnknownField.ID() }

func (unknownFieldRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range entry.Fields {
		if bibspec.KnownField(f.Key) || ctx.Cfg.fieldAllowed(f.Key) {
			continue
		}
		d := diag.New(diag.SevWarning, diag.RuleUnknownField, f.KeySpan,
			"unknown field '"+f.Key+"'")
		if sugg := bibspec.SuggestField(f.Key); len(sugg) > 0 {
			d = d.WithNote(f.KeySpan, "did you mean '"+strings.Join(sugg, "', '")+"'?")
			if len(sugg) == 1 {
				d = d.WithFix("rename to '"+sugg[0]+"'", diag.FixEdit{
					Span:    f.KeySpan,
					NewText: sugg[0],
				})
			}
		}
		out = append(out, d)
	}
	return out
}

type duplicateFieldRule struct{}

func (duplicateFieldRule) Name() string { return diag.RuleDuplicateField.ID() }

func (duplicateFieldRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	var out []diag.Diagnostic
	first := make(map[string]*bib.Field, len(entry.Fields))
	for _, f := range entry.Fields {
		key := f.KeyLower()
		if prev, ok := first[key]; ok {
			d := diag.NewError(diag.RuleDuplicateField, f.KeySpan,
				"duplicate field '"+f.Key+"' in entry '"+entry.Key+"'")
			d = d.WithNote(prev.KeySpan, "first occurrence is here")
			out = append(out, d)
			continue
		}
		first[key] = f
	}
	return out
}

// yearPattern accepts a 4-digit year with an optional disambiguation letter.
var yearPattern = regexp.MustCompile(`^[0-9]{4}[a-zA-Z]?$`)

type malformedYearRule struct{}

func (malformedYearRule) Name() string { return diag.RuleMalformedYear.ID() }

func (malformedYearRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	f, ok := entry.Field("year")
	if !ok {
		return nil
	}
	resolved := strings.TrimSpace(f.Resolved(ctx.Doc.Macros))
	if resolved == "" || yearPattern.MatchString(resolved) {
		return nil
	}
	return []diag.Diagnostic{diag.New(diag.SevWarning, diag.RuleMalformedYear,
		f.Value.Full, "year '"+resolved+"' is not a 4-digit year")}
}

type unescapedUnicodeRule struct{}

func (unescapedUnicodeRule) Name() string { return diag.RuleUnescapedUnicode.ID() }

func (unescapedUnicodeRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range entry.Fields {
		resolved := f.Resolved(ctx.Doc.Macros)
		if isASCII(resolved) {
			continue
		}
		d := diag.New(diag.SevInfo, diag.RuleUnescapedUnicode, f.Value.Full,
			"field '"+f.Key+"' contains non-ASCII characters")
		if escaped, ok := escapeTeX(resolved); ok && singleLiteral(f.Value) {
			d = d.WithFix("replace with TeX escapes", diag.FixEdit{
				Span:    f.Value.Full,
				NewText: "{" + escaped + "}",
			})
		}
		out = append(out, d)
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// singleLiteral reports whether the value is one literal segment, the only
// shape a span-replacing fix can rewrite without losing macro references.
func singleLiteral(v *bib.Value) bool {
	return len(v.Parts) == 1 && v.Parts[0].Kind == bib.PartLiteral
}

type unknownEntryTypeRule struct{}

func (unknownEntryTypeRule) Name() string { return diag.RuleUnknownEntryType.ID() }

func (unknownEntryTypeRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	if bibspec.KnownEntryType(entry.Type) {
		return nil
	}
	d := diag.New(diag.SevWarning, diag.RuleUnknownEntryType, entry.TypeSpan,
		"unknown entry type '"+entry.Type+"'")
	if sugg := bibspec.SuggestEntryType(entry.Type); len(sugg) > 0 {
		d = d.WithNote(entry.TypeSpan, "did you mean '"+strings.Join(sugg, "', '")+"'?")
		if len(sugg) == 1 {
			d = d.WithFix("rename to '"+sugg[0]+"'", diag.FixEdit{
				Span:    entry.TypeSpan,
				NewText: sugg[0],
			})
		}
	}
	return []diag.Diagnostic{d}
}

type authorFormatRule struct{}

func (authorFormatRule) Name() string { return diag.RuleAuthorFormat.ID() }

func (authorFormatRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	f, ok := entry.Field("author")
	if !ok {
		return nil
	}
	resolved := f.Resolved(ctx.Doc.Macros)
	if resolved == "" || formatter.ValidAuthors(resolved) {
		return nil
	}
	d := diag.New(diag.SevWarning, diag.RuleAuthorFormat, f.Value.Full,
		"author list is not in 'Last, First' form")
	if singleLiteral(f.Value) {
		d = d.WithFix("rewrite as 'Last, First'", diag.FixEdit{
			Span:    f.Value.Full,
			NewText: "{" + formatter.FormatAuthors(resolved) + "}",
		})
	}
	return []diag.Diagnostic{d}
}

// doiRule covers both misuses of the doi field: stuffing an arXiv reference
// into it and spelling it as a resolver URL.
type doiRule struct{}

func (doiRule) Name() string { return diag.RuleDoiIsURL.ID() }

func (doiRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	f, ok := entry.Field("doi")
	if !ok {
		return nil
	}
	resolved := f.Resolved(ctx.Doc.Macros)
	var out []diag.Diagnostic
	if strings.Contains(strings.ToLower(resolved), "arxiv") {
		out = append(out, diag.New(diag.SevWarning, diag.RuleDoiIsArxiv, f.Value.Full,
			"doi field holds an arXiv reference; use the eprint field instead"))
	}
	if strings.HasPrefix(resolved, "http") {
		d := diag.New(diag.SevWarning, diag.RuleDoiIsURL, f.Value.Full,
			"doi field holds a URL; use the bare identifier")
		if bare, ok := stripDoiResolver(resolved); ok && singleLiteral(f.Value) {
			d = d.WithFix("strip the resolver prefix", diag.FixEdit{
				Span:    f.Value.Full,
				NewText: "{" + bare + "}",
			})
		}
		out = append(out, d)
	}
	return out
}

func stripDoiResolver(s string) (string, bool) {
	for _, prefix := range []string{
		"https://doi.org/", "http://doi.org/",
		"https://dx.doi.org/", "http://dx.doi.org/",
	} {
		if rest, ok := strings.CutPrefix(s, prefix); ok && rest != "" {
			return rest, true
		}
	}
	return "", false
}

// checkableFields are the identifiers that let a record be verified against
// an external source.
var checkableFields = []string{"url", "doi", "isbn", "issn", "eprint", "arxiv", "pmid"}

type uncheckableRule struct{}

func (uncheckableRule) Name() string { return diag.RuleUncheckable.ID() }

func (uncheckableRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	for _, key := range checkableFields {
		if _, ok := entry.Field(key); ok {
			return nil
		}
	}
	return []diag.Diagnostic{diag.New(diag.SevInfo, diag.RuleUncheckable, entry.KeySpan,
		"entry '"+entry.Key+"' has no verifiable identifier (url, doi, isbn, issn, eprint, pmid)")}
}

type emptyValueRule struct{}

func (emptyValueRule) Name() string { return diag.RuleEmptyValue.ID() }

func (emptyValueRule) Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range entry.Fields {
		if strings.TrimSpace(f.Resolved(ctx.Doc.Macros)) != "" {
			continue
		}
		out = append(out, diag.New(diag.SevWarning, diag.RuleEmptyValue, f.Value.Full,
			"field '"+f.Key+"' is empty"))
	}
	return out
}
