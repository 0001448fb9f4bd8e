package driver

import (
	"strings"

	"bibadac/internal/arxiv"
	"bibadac/internal/bib"
)

// IdentifierKind classifies a download identifier found in an entry.
type IdentifierKind uint8

const (
	// IdentArxiv is an eprint field carrying a parseable arXiv id.
	IdentArxiv IdentifierKind = iota
	// IdentDoi is a doi field.
	IdentDoi
	// IdentURL is a url field.
	IdentURL
)

func (k IdentifierKind) String() string {
	switch k {
	case IdentArxiv:
		return "arxiv"
	case IdentDoi:
		return "doi"
	case IdentURL:
		return "url"
	}
	return "unknown"
}

// Identifier is one downloadable reference extracted from a checked file.
type Identifier struct {
	Kind     IdentifierKind
	Value    string
	EntryKey string
	Path     string
	// DownloadURL is a resolvable location for the identifier, when one can
	// be derived without network access.
	DownloadURL string
}

// CollectIdentifiers extracts arXiv, doi and url identifiers from checked
// documents, in document order, first occurrence wins per kind and value.
func CollectIdentifiers(results []CheckResult) []Identifier {
	seen := make(map[string]bool)
	var out []Identifier
	add := func(id Identifier) {
		key := id.Kind.String() + "\x00" + id.Value
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, id)
	}

	for _, res := range results {
		if res.Doc == nil {
			continue
		}
		for _, entry := range res.Doc.RegularEntries() {
			collectEntry(res, entry, add)
		}
	}
	return out
}

func collectEntry(res CheckResult, entry *bib.RegularEntry, add func(Identifier)) {
	if f, ok := entry.Field("eprint"); ok {
		text := strings.TrimSpace(f.Resolved(res.Doc.Macros))
		if id, ok := arxiv.Parse(text); ok {
			add(Identifier{
				Kind:        IdentArxiv,
				Value:       id.String(),
				EntryKey:    entry.Key,
				Path:        res.Path,
				DownloadURL: id.PDFURL(),
			})
		}
	}
	if f, ok := entry.Field("doi"); ok {
		if text := strings.TrimSpace(f.Resolved(res.Doc.Macros)); text != "" {
			add(Identifier{
				Kind:        IdentDoi,
				Value:       text,
				EntryKey:    entry.Key,
				Path:        res.Path,
				DownloadURL: "https://dx.doi.org/" + text,
			})
		}
	}
	if f, ok := entry.Field("url"); ok {
		if text := strings.TrimSpace(f.Resolved(res.Doc.Macros)); text != "" {
			add(Identifier{
				Kind:        IdentURL,
				Value:       text,
				EntryKey:    entry.Key,
				Path:        res.Path,
				DownloadURL: text,
			})
		}
	}
}
