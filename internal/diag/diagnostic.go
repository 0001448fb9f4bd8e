package diag

import (
	"bibadac/internal/source"
)

// Note is a secondary span/message attached to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit is a single replacement: Span is replaced by NewText.
// A zero-width span inserts at that point.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested textual repair composed of one or more edits.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is one reported issue.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// New constructs a diagnostic without notes or fixes.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

// NewError is shorthand for a SevError diagnostic.
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy with an extra note.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// WithFix returns a copy with an extra suggested fix.
func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}
