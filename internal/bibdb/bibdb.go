// Package bibdb is a local completion database. It collects flattened
// bibliographic records from parsed documents and fills missing fields on
// partial entries that describe the same work.
package bibdb

import (
	"strings"

	"bibadac/internal/bib"
)

// Props is one flattened record: lowercase field keys mapped to resolved
// values, no delimiters.
type Props = map[string]string

// identity lists the fields two records must agree on to be treated as
// descriptions of the same work. Fields outside this set never block a
// match; they only contribute values during the merge.
var identity = map[string]bool{
	"title":  true,
	"sha256": true,
	"doi":    true,
	"eprint": true,
	"url":    true,
}

// extends reports whether entry agrees with partial on every identity field
// partial carries. A partial without identity fields matches everything.
func extends(entry, partial Props) bool {
	for k, v := range partial {
		if !identity[k] {
			continue
		}
		if entry[k] != v {
			return false
		}
	}
	return true
}

// merge copies entry values into dst for keys dst does not have yet.
// Existing values always win.
func merge(dst, entry Props) {
	for k, v := range entry {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

// DB answers completion queries.
type DB interface {
	GetDoi(doi string) (Props, bool)
	GetEprint(eprint string) (Props, bool)
	// Complete merges every compatible record into a copy of partial and
	// returns it. The partial's own values are never overwritten.
	Complete(partial Props) Props
}

// Local is an in-memory DB fed from parsed bibliography files.
type Local struct {
	entries []Props
}

// NewLocal returns an empty database.
func NewLocal() *Local {
	return &Local{}
}

// Len returns the number of stored records.
func (db *Local) Len() int { return len(db.entries) }

// ImportDocument flattens every bibliographic record of a parsed document
// into the database. Macro references are resolved through the document's
// own table; duplicates are kept, later records simply never win a merge.
func (db *Local) ImportDocument(doc *bib.Document) {
	for _, e := range doc.RegularEntries() {
		props := make(Props, len(e.Fields))
		for _, f := range e.Fields {
			key := strings.ToLower(f.Key)
			if _, ok := props[key]; ok {
				continue
			}
			props[key] = f.Value.Resolve(doc.Macros)
		}
		db.entries = append(db.entries, props)
	}
}

// ImportRecords adds pre-flattened records, typically from the disk cache.
func (db *Local) ImportRecords(records []Props) {
	db.entries = append(db.entries, records...)
}

// Records returns the stored records for cache serialization.
func (db *Local) Records() []Props { return db.entries }

// GetDoi returns the first record with the given doi.
func (db *Local) GetDoi(doi string) (Props, bool) {
	return db.find("doi", doi)
}

// GetEprint returns the first record with the given eprint.
func (db *Local) GetEprint(eprint string) (Props, bool) {
	return db.find("eprint", eprint)
}

func (db *Local) find(key, want string) (Props, bool) {
	for _, e := range db.entries {
		if e[key] == want {
			return clone(e), true
		}
	}
	return nil, false
}

// Complete implements DB. Every record that agrees with partial on its
// identity fields contributes the fields partial lacks, in storage order.
func (db *Local) Complete(partial Props) Props {
	out := clone(partial)
	for _, e := range db.entries {
		if extends(e, partial) {
			merge(out, e)
		}
	}
	return out
}

func clone(p Props) Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
