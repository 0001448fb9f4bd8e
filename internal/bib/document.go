package bib

import (
	"bibadac/internal/diag"
	"bibadac/internal/source"
)

// Marker is a lexical or parse-level malformation recorded during parsing.
// Markers are always surfaced as Error diagnostics by the rule engine,
// regardless of strictness configuration.
type Marker struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

// Document is the parse result for one source file: entries in source order,
// the macro table and the error markers. It is immutable after parsing.
type Document struct {
	File    source.FileID
	Entries []Entry
	Macros  *MacroTable
	Markers []Marker
}

// RegularEntries returns the bibliographic records in source order.
func (d *Document) RegularEntries() []*RegularEntry {
	out := make([]*RegularEntry, 0, len(d.Entries))
	for _, e := range d.Entries {
		if re, ok := e.(*RegularEntry); ok {
			out = append(out, re)
		}
	}
	return out
}

// HasMarkers reports whether parsing recorded any malformation.
func (d *Document) HasMarkers() bool {
	return len(d.Markers) > 0
}
