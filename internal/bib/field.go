package bib

import (
	"strings"

	"bibadac/internal/source"
)

// Field is one `key = value` pair inside a regular entry. The key is stored
// as written and compared case-insensitively.
type Field struct {
	Key     string
	KeySpan source.Span
	Value   *Value
	Full    source.Span
}

// KeyLower returns the key folded for case-insensitive comparison.
func (f *Field) KeyLower() string { return strings.ToLower(f.Key) }

// Resolved returns the field's resolved value text.
func (f *Field) Resolved(macros *MacroTable) string {
	if f.Value == nil {
		return ""
	}
	return f.Value.Resolve(macros)
}
