package bib

import (
	"strings"

	"bibadac/internal/source"
)

// Entry is one top-level element of a document: a bibliographic record, a
// comment, a preamble or a macro (@string) definition.
type Entry interface {
	// Span covers the whole element, '@' through closing delimiter (or the
	// full text range for comments).
	Span() source.Span
	entryNode()
}

// RegularEntry is a bibliographic record: @type{key, field = value, ...}.
type RegularEntry struct {
	// Type is the entry type as written; compare with TypeLower.
	Type     string
	TypeSpan source.Span

	// Key is the citation key, verbatim. A missing key is synthesized as ""
	// with a zero-width KeySpan at the expected position.
	Key     string
	KeySpan source.Span

	// Fields in insertion order.
	Fields []*Field

	// Paren records whether the body was delimited with parentheses
	// instead of braces.
	Paren bool

	// CloseOff is the byte offset of the closing delimiter, used as the
	// insertion point for missing-field diagnostics. For an unclosed entry
	// it is the recovery offset.
	CloseOff uint32

	Full source.Span
}

func (e *RegularEntry) Span() source.Span { return e.Full }
func (e *RegularEntry) entryNode()        {}

// TypeLower returns the entry type folded for case-insensitive matching.
func (e *RegularEntry) TypeLower() string { return strings.ToLower(e.Type) }

// Field returns the first field whose key matches case-insensitively.
func (e *RegularEntry) Field(key string) (*Field, bool) {
	for _, f := range e.Fields {
		if strings.EqualFold(f.Key, key) {
			return f, true
		}
	}
	return nil, false
}

// InsertionPoint returns the zero-width span at the closing delimiter.
func (e *RegularEntry) InsertionPoint() source.Span {
	return source.Span{File: e.Full.File, Start: e.CloseOff, End: e.CloseOff}
}

// CommentEntry is either an explicit @comment{...} or a run of inter-entry
// text the grammar ignores.
type CommentEntry struct {
	// Explicit is true for @comment{...} constructs.
	Explicit bool
	Text     string
	Full     source.Span
}

func (e *CommentEntry) Span() source.Span { return e.Full }
func (e *CommentEntry) entryNode()        {}

// PreambleEntry is an @preamble{...} construct; Value keeps the raw segments.
type PreambleEntry struct {
	Value *Value
	Full  source.Span
}

func (e *PreambleEntry) Span() source.Span { return e.Full }
func (e *PreambleEntry) entryNode()        {}

// MacroDef is an @string{name = value} definition.
type MacroDef struct {
	Name     string
	NameSpan source.Span
	Value    *Value
	Full     source.Span
}

func (e *MacroDef) Span() source.Span { return e.Full }
func (e *MacroDef) entryNode()        {}

// NameLower returns the macro name folded for table lookup.
func (e *MacroDef) NameLower() string { return strings.ToLower(e.Name) }
