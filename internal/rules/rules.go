// Package rules evaluates lint rules over a parsed document. Rules come in
// two shapes: entry-level rules see one bibliographic record at a time and
// are pure, so the engine runs them in parallel across entries;
// document-level rules need the whole entry sequence and run afterwards.
// Parser and lexer markers pass through as Error diagnostics that no
// configuration can demote or disable.
package rules

import (
	"strings"

	"bibadac/internal/bib"
	"bibadac/internal/diag"
	"bibadac/internal/source"
)

// Context is the read-only state shared by every rule invocation.
type Context struct {
	Doc  *bib.Document
	File *source.File
	Cfg  *Config
}

// EntryRule inspects one bibliographic record.
type EntryRule interface {
	Name() string
	Check(ctx *Context, entry *bib.RegularEntry) []diag.Diagnostic
}

// DocumentRule inspects the whole document after entry rules finish.
type DocumentRule interface {
	Name() string
	Check(ctx *Context) []diag.Diagnostic
}

// Config is the strictness configuration threaded into evaluation. The zero
// value means default severities, nothing disabled, no allow-list.
type Config struct {
	// Severity overrides by rule ID; parser-error-marker cannot be overridden.
	Severity map[string]diag.Severity
	// Disabled rules by ID; only disableable rules honour this.
	Disabled map[string]bool
	// AllowedFields are extra field keys the unknown-field rule accepts.
	AllowedFields []string
	// MaxDiagnostics caps the result bag. Zero means DefaultMaxDiagnostics.
	MaxDiagnostics int
	// Jobs bounds entry-rule parallelism. Zero means GOMAXPROCS.
	Jobs int
}

// DefaultMaxDiagnostics bounds the diagnostics kept per evaluation when the
// configuration does not say otherwise.
const DefaultMaxDiagnostics = 1000

// disableable lists the rules a configuration may switch off entirely.
// Core structural rules and the marker passthrough always run.
var disableable = map[string]bool{
	diag.RuleUnknownField.ID():     true,
	diag.RuleUnescapedUnicode.ID(): true,
	diag.RuleAuthorFormat.ID():     true,
	diag.RuleDoiIsArxiv.ID():       true,
	diag.RuleDoiIsURL.ID():         true,
	diag.RuleUncheckable.ID():      true,
	diag.RuleEmptyValue.ID():       true,
	diag.RuleUnknownEntryType.ID(): true,
	diag.RuleUndefinedMacro.ID():   true,
}

func (c *Config) disabled(id string) bool {
	if c == nil || c.Disabled == nil {
		return false
	}
	return disableable[id] && c.Disabled[id]
}

// severityFor maps a rule's default severity through the configured
// overrides. The marker passthrough is pinned to Error.
func (c *Config) severityFor(code diag.Code, def diag.Severity) diag.Severity {
	if code == diag.RuleParserMarker {
		return diag.SevError
	}
	if c == nil || c.Severity == nil {
		return def
	}
	if sev, ok := c.Severity[code.ID()]; ok {
		return sev
	}
	return def
}

func (c *Config) fieldAllowed(key string) bool {
	if c == nil {
		return false
	}
	for _, a := range c.AllowedFields {
		if strings.EqualFold(a, key) {
			return true
		}
	}
	return false
}
