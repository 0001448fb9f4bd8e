// Package formatter serializes a parsed document back to canonical text.
// Format is a pure function of the document and the style: it never consults
// diagnostics, never fails, and is idempotent, so formatting already
// formatted output is a no-op. Unparseable constructs are re-emitted
// verbatim from their source spans.
package formatter

import (
	"sort"
	"strings"

	"bibadac/internal/bib"
	"bibadac/internal/source"
)

// Format renders the document with the given style.
func Format(doc *bib.Document, file *source.File, style Style) []byte {
	p := &printer{doc: doc, file: file, style: style}
	entries := p.plan()
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, p.entry(e))
	}
	// An empty document formats to empty output, never to nil; callers use
	// nil Content to mean the file could not be read at all.
	if len(blocks) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(blocks, "\n\n") + "\n")
}

type printer struct {
	doc   *bib.Document
	file  *source.File
	style Style
}

// plan returns the emission order. SortByKey reorders bibliographic records
// among their own slots; everything else keeps its position, so a sorted
// document resorts to itself.
func (p *printer) plan() []bib.Entry {
	entries := p.doc.Entries
	if p.style.SortEntries != SortByKey {
		return entries
	}
	var slots []int
	var regs []*bib.RegularEntry
	for i, e := range entries {
		if r, ok := e.(*bib.RegularEntry); ok {
			slots = append(slots, i)
			regs = append(regs, r)
		}
	}
	sort.SliceStable(regs, func(i, j int) bool {
		return strings.ToLower(regs[i].Key) < strings.ToLower(regs[j].Key)
	})
	out := make([]bib.Entry, len(entries))
	copy(out, entries)
	for i, slot := range slots {
		out[slot] = regs[i]
	}
	return out
}

func (p *printer) entry(e bib.Entry) string {
	switch e := e.(type) {
	case *bib.RegularEntry:
		return p.regular(e)
	case *bib.CommentEntry:
		return p.comment(e)
	case *bib.PreambleEntry:
		return "@preamble{" + p.value(e.Value, "", 0) + "}"
	case *bib.MacroDef:
		return "@string{" + e.NameLower() + " = " + p.value(e.Value, "", 0) + "}"
	}
	return p.verbatim(e.Span())
}

func (p *printer) comment(e *bib.CommentEntry) string {
	if !e.Explicit {
		return e.Text
	}
	if braceSafe(e.Text) {
		return "@comment{" + e.Text + "}"
	}
	// A truncated or unbalanced comment cannot be re-delimited; keep the
	// original bytes so the output reparses to the same document.
	return p.verbatim(e.Full)
}

func (p *printer) regular(e *bib.RegularEntry) string {
	fields := p.selectFields(e.Fields)
	fields = p.fillMissing(fields)
	ordered := orderFields(fields, p.style.fieldOrder())

	keyWidth := 0
	if p.style.AlignEquals {
		for _, f := range ordered {
			if n := len(f.KeyLower()); n > keyWidth {
				keyWidth = n
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(e.TypeLower())
	sb.WriteString("{")
	sb.WriteString(e.Key)
	sb.WriteString(",\n")
	for _, f := range ordered {
		key := f.KeyLower()
		sb.WriteString(p.style.indent())
		sb.WriteString(key)
		if keyWidth > len(key) {
			sb.WriteString(strings.Repeat(" ", keyWidth-len(key)))
		}
		sb.WriteString(" = ")
		prefix := len(p.style.indent()) + max(keyWidth, len(key)) + 3
		sb.WriteString(p.value(f.Value, key, prefix))
		sb.WriteString(",\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// selectFields applies the keep-list and drop-list. Duplicate fields are
// preserved; filtering is the rule engine's concern, not the printer's.
func (p *printer) selectFields(fields []*bib.Field) []*bib.Field {
	keep := p.style.KeepFields
	drop := p.style.DropFields
	if len(keep) == 0 && len(drop) == 0 {
		return fields
	}
	out := make([]*bib.Field, 0, len(fields))
	for _, f := range fields {
		if len(keep) > 0 && !containsFold(keep, f.Key) {
			continue
		}
		if containsFold(drop, f.Key) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// fillMissing asks the completion database for fields the entry lacks and
// appends them as synthesized fields. Added keys are sorted, so a filled
// entry formats the same on every pass. Keep and drop lists apply to the
// additions too.
func (p *printer) fillMissing(fields []*bib.Field) []*bib.Field {
	if p.style.FillFrom == nil {
		return fields
	}
	partial := make(map[string]string, len(fields))
	for _, f := range fields {
		key := f.KeyLower()
		if _, ok := partial[key]; !ok {
			partial[key] = f.Value.Resolve(p.doc.Macros)
		}
	}

	completed := p.style.FillFrom.Complete(partial)
	var added []string
	for key := range completed {
		if _, ok := partial[key]; ok {
			continue
		}
		if len(p.style.KeepFields) > 0 && !containsFold(p.style.KeepFields, key) {
			continue
		}
		if containsFold(p.style.DropFields, key) {
			continue
		}
		added = append(added, key)
	}
	sort.Strings(added)

	for _, key := range added {
		fields = append(fields, &bib.Field{
			Key: key,
			Value: bib.NewValue([]bib.Part{{
				Kind: bib.PartLiteral,
				Text: completed[key],
			}}, source.Span{}),
		})
	}
	return fields
}

func containsFold(list []string, key string) bool {
	for _, s := range list {
		if strings.EqualFold(s, key) {
			return true
		}
	}
	return false
}

// orderFields puts canonically ordered keys first, the rest in original
// order. Duplicates of a canonical key stay adjacent in original order.
func orderFields(fields []*bib.Field, order []string) []*bib.Field {
	out := make([]*bib.Field, 0, len(fields))
	taken := make([]bool, len(fields))
	for _, key := range order {
		for i, f := range fields {
			if !taken[i] && strings.EqualFold(f.Key, key) {
				out = append(out, f)
				taken[i] = true
			}
		}
	}
	for i, f := range fields {
		if !taken[i] {
			out = append(out, f)
		}
	}
	return out
}

// value renders a field value. prefix is the column where the value starts,
// used by the wrapper.
func (p *printer) value(v *bib.Value, fieldKey string, prefix int) string {
	if v == nil || len(v.Parts) == 0 {
		return p.emptyValue()
	}

	parts := v.Parts
	if p.style.ResolveMacros && v.HasMacroRef() {
		parts = []bib.Part{{
			Kind: bib.PartLiteral,
			Text: v.Resolve(p.doc.Macros),
		}}
	}

	if p.style.FormatAuthors && fieldKey == "author" &&
		len(parts) == 1 && parts[0].Kind == bib.PartLiteral {
		parts = []bib.Part{{
			Kind: bib.PartLiteral,
			Text: FormatAuthors(parts[0].Text),
			Raw:  parts[0].Raw,
		}}
	}

	rendered := make([]string, len(parts))
	for i, part := range parts {
		rendered[i] = p.part(part, prefix, len(parts) == 1)
	}
	return strings.Join(rendered, " # ")
}

func (p *printer) emptyValue() string {
	if p.style.Delimiter == DelimQuote {
		return `""`
	}
	return "{}"
}

func (p *printer) part(part bib.Part, prefix int, wrappable bool) string {
	if part.Kind == bib.PartMacroRef {
		return part.Text
	}
	text := part.Text
	if isBareNumber(text) {
		return text
	}

	useQuote := p.style.Delimiter == DelimQuote
	switch {
	case useQuote && quoteSafe(text):
		return `"` + text + `"`
	case braceSafe(text):
		if p.style.WrapWidth > 0 && wrappable {
			text = p.wrap(text, prefix)
		}
		return "{" + text + "}"
	case quoteSafe(text):
		return `"` + text + `"`
	case part.Raw != "":
		// Neither delimiter can round-trip this text; keep the original.
		return part.Raw
	default:
		return "{" + text + "}"
	}
}

// wrap collapses whitespace runs and re-wraps the text at the configured
// width. Collapsing first makes wrapping a fixed point: wrapped output
// collapses back to the same word sequence.
func (p *printer) wrap(text string, prefix int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	width := p.style.WrapWidth
	cont := p.style.indent() + p.style.indent()

	var sb strings.Builder
	col := prefix + 1 // past the opening brace
	for i, w := range words {
		if i == 0 {
			sb.WriteString(w)
			col += len(w)
			continue
		}
		if col+1+len(w) > width {
			sb.WriteString("\n")
			sb.WriteString(cont)
			sb.WriteString(w)
			col = len(cont) + len(w)
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(w)
		col += 1 + len(w)
	}
	return sb.String()
}

func (p *printer) verbatim(sp source.Span) string {
	if p.file == nil || int(sp.End) > len(p.file.Content) {
		return ""
	}
	return string(p.file.Content[sp.Start:sp.End])
}

func isBareNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// braceSafe reports whether the text can sit between braces: its own braces
// must balance and never go negative.
func braceSafe(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// quoteSafe reports whether the text can sit between quotes: no bare '"' or
// newline outside braced sub-ranges, and braces must balance.
func quoteSafe(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		case '"', '\n':
			if depth == 0 {
				return false
			}
		}
	}
	return depth == 0
}
