// Package arxiv parses and compares arXiv identifiers.
package arxiv

import (
	"strconv"
	"strings"
)

// ID is an arXiv identifier with an optional version. Version 0 means the
// identifier is unversioned (arXiv versions start at 1).
type ID struct {
	ID      string
	Version int
}

// Parse splits an identifier like "2301.00001v2" into id and version. An
// identifier without a 'v' suffix is unversioned. Text after the last 'v'
// that is not an integer makes the whole parse fail.
func Parse(s string) (ID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, false
	}
	i := strings.LastIndexByte(s, 'v')
	if i < 0 {
		return ID{ID: s}, true
	}
	ver, err := strconv.Atoi(s[i+1:])
	if err != nil || ver <= 0 {
		return ID{}, false
	}
	return ID{ID: s[:i], Version: ver}, true
}

// Versioned reports whether the identifier pins a version.
func (id ID) Versioned() bool { return id.Version > 0 }

func (id ID) String() string {
	if !id.Versioned() {
		return id.ID
	}
	return id.ID + "v" + strconv.Itoa(id.Version)
}

// AbsURL returns the abstract page URL.
func (id ID) AbsURL() string { return "https://arxiv.org/abs/" + id.ID }

// PDFURL returns the PDF download URL.
func (id ID) PDFURL() string { return "https://arxiv.org/pdf/" + id.ID }

// Compare orders two identifiers of the same paper: higher versions are
// newer, and any pinned version is newer than the unversioned form. ok is
// false when the identifiers name different papers.
func Compare(a, b ID) (cmp int, ok bool) {
	if a.ID != b.ID {
		return 0, false
	}
	switch {
	case a.Version == b.Version:
		return 0, true
	case a.Version < b.Version:
		return -1, true
	default:
		return 1, true
	}
}
