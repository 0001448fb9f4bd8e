package diag

import "fmt"

// Code is a compact numeric diagnostic identifier with a stable string form.
// Ranges: 1000-1999 lexical, 2000-2999 parse, 3000-3999 lint rules,
// 4000-4999 IO.
type Code uint16

const (
	// UnknownCode is the zero value fallback.
	UnknownCode Code = 0

	// Lexical error markers.
	LexUnterminatedQuote Code = 1001
	LexUnbalancedBrace   Code = 1002
	LexDepthExceeded     Code = 1003
	LexStrayByte         Code = 1004

	// Parse error markers.
	SynUnexpectedToken Code = 2001
	SynMissingKey      Code = 2002
	SynUnclosedEntry   Code = 2003
	SynExpectValue     Code = 2004
	SynSkippedEntry    Code = 2005
	SynUnclosedValue   Code = 2006

	// Lint rules. These are the codes the strictness configuration can
	// promote, demote or disable (except RuleParserMarker).
	RuleParserMarker     Code = 3000
	RuleMissingField     Code = 3001
	RuleUnknownField     Code = 3002
	RuleDuplicateKey     Code = 3003
	RuleDuplicateField   Code = 3004
	RuleMalformedYear    Code = 3005
	RuleUnescapedUnicode Code = 3006
	RuleUnusedMacro      Code = 3007
	RuleMacroRedefined   Code = 3008
	RuleUndefinedMacro   Code = 3009
	RuleUnknownEntryType Code = 3010
	RuleAuthorFormat     Code = 3011
	RuleDoiIsArxiv       Code = 3012
	RuleDoiIsURL         Code = 3013
	RuleUncheckable      Code = 3014
	RuleEmptyValue       Code = 3015
	RuleDupIdentifier    Code = 3016

	// IO failures reported by the driver, not the core.
	IOLoadFileError Code = 4001
)

// ruleIDs maps codes to the stable identifiers used in configuration,
// reports and documentation.
var ruleIDs = map[Code]string{
	LexUnterminatedQuote: "lex-unterminated-quote",
	LexUnbalancedBrace:   "lex-unbalanced-brace",
	LexDepthExceeded:     "lex-depth-exceeded",
	LexStrayByte:         "lex-stray-byte",

	SynUnexpectedToken: "parse-unexpected-token",
	SynMissingKey:      "parse-missing-key",
	SynUnclosedEntry:   "parse-unclosed-entry",
	SynExpectValue:     "parse-expect-value",
	SynSkippedEntry:    "parse-skipped-entry",
	SynUnclosedValue:   "parse-unclosed-value",

	RuleParserMarker:     "parser-error-marker",
	RuleMissingField:     "missing-required-field",
	RuleUnknownField:     "unknown-field",
	RuleDuplicateKey:     "duplicate-key",
	RuleDuplicateField:   "duplicate-field",
	RuleMalformedYear:    "malformed-year",
	RuleUnescapedUnicode: "unescaped-unicode",
	RuleUnusedMacro:      "unused-macro",
	RuleMacroRedefined:   "macro-redefined",
	RuleUndefinedMacro:   "undefined-macro",
	RuleUnknownEntryType: "unknown-entry-type",
	RuleAuthorFormat:     "author-format",
	RuleDoiIsArxiv:       "doi-is-arxiv",
	RuleDoiIsURL:         "doi-is-url",
	RuleUncheckable:      "uncheckable-entry",
	RuleEmptyValue:       "empty-value",
	RuleDupIdentifier:    "duplicate-identifier",

	IOLoadFileError: "io-load-file",
}

// ID returns the stable string identifier for the code.
func (c Code) ID() string {
	if id, ok := ruleIDs[c]; ok {
		return id
	}
	return fmt.Sprintf("diag-%04d", uint16(c))
}

// CodeByID resolves a stable identifier back to its Code.
func CodeByID(id string) (Code, bool) {
	for c, s := range ruleIDs {
		if s == id {
			return c, true
		}
	}
	return UnknownCode, false
}

func (c Code) String() string {
	return c.ID()
}
