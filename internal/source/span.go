package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) into one file.
type Span struct {
	File  FileID
	Start uint32 // inclusive
	End   uint32 // exclusive
}

// Empty reports whether the span covers zero bytes. Zero-width spans are used
// as insertion points (for example, missing-field diagnostics anchored at an
// entry's closing brace).
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover extends the span to include other. Spans from different files are
// returned unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Collapse returns the zero-width span at the given offset inside s's file.
func (s Span) Collapse(at uint32) Span {
	return Span{File: s.File, Start: at, End: at}
}
