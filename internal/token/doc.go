// Package token defines lexical token kinds for BibTeX/BibLaTeX source.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Brace-delimited values never appear as a single token; the parser
//     assembles them from LBrace/RBrace pairs so inner braces stay verbatim.
//   - Quoted tokens keep their delimiters in Text; embedded braced sub-ranges
//     make inner '"' characters literal.
//   - Comment tokens cover inter-entry text; there is no escape scheme for
//     '@' outside entries.
package token
