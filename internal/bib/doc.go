// Package bib defines the in-memory document model for BibTeX/BibLaTeX
// sources: entries, fields, raw and resolved values, the macro table and the
// lexical/parse error markers collected during parsing.
//
// A Document is built once by internal/parser and is immutable afterwards.
// The rule engine and the formatter are independent read-only projections of
// the same Document; neither mutates it. The only deferred computation is
// value resolution, which is memoized with single-writer-wins atomics;
// concurrent readers may compute it redundantly but always produce the same
// bytes.
package bib
