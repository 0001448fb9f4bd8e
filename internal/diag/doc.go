// Package diag defines the diagnostic model shared by the lexer, parser,
// rule engine and CLI rendering layers.
//
// Diagnostic is the central record: severity, a stable code, a message, the
// primary source.Span, optional notes and optional suggested fixes (structured
// Span -> text edits). Bag collects diagnostics with a cap and provides the
// deterministic ordering (file, span start, code) that the rule engine and
// renderers rely on.
//
// Package diag performs no formatting and no IO. Rendering lives in
// internal/diagfmt; applying fixes lives in internal/fix.
package diag
