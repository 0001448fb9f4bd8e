package bib

import (
	"strings"
	"sync/atomic"

	"bibadac/internal/source"
)

// PartKind discriminates raw value segments.
type PartKind uint8

const (
	// PartLiteral is a braced, quoted or bare literal segment.
	PartLiteral PartKind = iota
	// PartMacroRef is a reference to a @string macro by name.
	PartMacroRef
)

// Part is one segment of an unresolved field value. Segments are joined by
// the '#' concatenation operator in source.
type Part struct {
	Kind PartKind
	// Text is the segment content without delimiters for PartLiteral, or the
	// macro name for PartMacroRef.
	Text string
	// Raw is the verbatim source slice, delimiters included.
	Raw  string
	Span source.Span
}

// Value is a field value: ordered raw segments plus a lazily computed,
// memoized resolved form.
type Value struct {
	Parts []Part
	Full  source.Span

	resolved atomic.Pointer[string]
}

// NewValue constructs a value from raw segments.
func NewValue(parts []Part, full source.Span) *Value {
	return &Value{Parts: parts, Full: full}
}

// Raw returns the verbatim source text of the whole value.
func (v *Value) Raw() string {
	if len(v.Parts) == 1 {
		return v.Parts[0].Raw
	}
	var sb strings.Builder
	for i, p := range v.Parts {
		if i > 0 {
			sb.WriteString(" # ")
		}
		sb.WriteString(p.Raw)
	}
	return sb.String()
}

// Resolve substitutes macro references through the table and concatenates the
// segments. The result is memoized; redundant concurrent computation is
// harmless because resolution is deterministic (single-writer-wins).
// Undefined macros contribute their own name, so the text stays readable.
func (v *Value) Resolve(macros *MacroTable) string {
	if cached := v.resolved.Load(); cached != nil {
		return *cached
	}
	out := v.resolve(macros, 0)
	v.resolved.CompareAndSwap(nil, &out)
	return *v.resolved.Load()
}

// maxMacroDepth bounds expansion of macros that reference macros, so that a
// definition cycle terminates with the macro name left in place.
const maxMacroDepth = 16

func (v *Value) resolve(macros *MacroTable, depth int) string {
	var sb strings.Builder
	for _, p := range v.Parts {
		switch p.Kind {
		case PartLiteral:
			sb.WriteString(p.Text)
		case PartMacroRef:
			if depth >= maxMacroDepth || macros == nil {
				sb.WriteString(p.Text)
				continue
			}
			if def, ok := macros.Lookup(p.Text); ok && def.Value != nil {
				sb.WriteString(def.Value.resolve(macros, depth+1))
			} else {
				sb.WriteString(p.Text)
			}
		}
	}
	return sb.String()
}

// HasMacroRef reports whether any segment references a macro.
func (v *Value) HasMacroRef() bool {
	for _, p := range v.Parts {
		if p.Kind == PartMacroRef {
			return true
		}
	}
	return false
}
