package rules

import (
	"strings"

	"bibadac/internal/bib"
	"bibadac/internal/diag"
)

type duplicateKeyRule struct{}

func (duplicateKeyRule) Name() string { return diag.RuleDuplicateKey.ID() }

func (duplicateKeyRule) Check(ctx *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	first := make(map[string]*bib.RegularEntry)
	for _, entry := range ctx.Doc.RegularEntries() {
		if entry.Key == "" {
			continue
		}
		key := strings.ToLower(entry.Key)
		if prev, ok := first[key]; ok {
			d := diag.NewError(diag.RuleDuplicateKey, entry.KeySpan,
				"duplicate citation key '"+entry.Key+"'")
			d = d.WithNote(prev.KeySpan, "first defined here")
			out = append(out, d)
			continue
		}
		first[key] = entry
	}
	return out
}

// duplicateIdentifierRule flags entries that carry the same doi, eprint and
// sha256 as an earlier one: two fully-identified records for one work. A
// triple with any empty member is never compared, so partially identified
// entries do not alias each other.
type duplicateIdentifierRule struct{}

func (duplicateIdentifierRule) Name() string { return diag.RuleDupIdentifier.ID() }

func (duplicateIdentifierRule) Check(ctx *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	first := make(map[[3]string]*bib.RegularEntry)
	for _, entry := range ctx.Doc.RegularEntries() {
		triple := [3]string{
			identifierField(ctx, entry, "doi"),
			identifierField(ctx, entry, "eprint"),
			identifierField(ctx, entry, "sha256"),
		}
		if triple[0] == "" || triple[1] == "" || triple[2] == "" {
			continue
		}
		if prev, ok := first[triple]; ok {
			d := diag.New(diag.SevWarning, diag.RuleDupIdentifier, entry.KeySpan,
				"entry '"+entry.Key+"' has the same doi, eprint and sha256 as '"+prev.Key+"'")
			d = d.WithNote(prev.KeySpan, "first entry with these identifiers")
			out = append(out, d)
			continue
		}
		first[triple] = entry
	}
	return out
}

func identifierField(ctx *Context, entry *bib.RegularEntry, key string) string {
	f, ok := entry.Field(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(f.Resolved(ctx.Doc.Macros))
}

type macroRedefinedRule struct{}

func (macroRedefinedRule) Name() string { return diag.RuleMacroRedefined.ID() }

func (macroRedefinedRule) Check(ctx *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	prev := make(map[string]*bib.MacroDef)
	for _, def := range ctx.Doc.Macros.Defs() {
		name := def.NameLower()
		if earlier, ok := prev[name]; ok {
			d := diag.New(diag.SevWarning, diag.RuleMacroRedefined, def.NameSpan,
				"macro '"+def.Name+"' is redefined; the new value shadows the old one")
			d = d.WithNote(earlier.NameSpan, "previously defined here")
			out = append(out, d)
		}
		prev[name] = def
	}
	return out
}

type unusedMacroRule struct{}

func (unusedMacroRule) Name() string { return diag.RuleUnusedMacro.ID() }

func (unusedMacroRule) Check(ctx *Context) []diag.Diagnostic {
	used := referencedMacros(ctx.Doc)
	var out []diag.Diagnostic
	reported := make(map[string]bool)
	for _, def := range ctx.Doc.Macros.Defs() {
		name := def.NameLower()
		if used[name] || reported[name] {
			continue
		}
		reported[name] = true
		winner, _ := ctx.Doc.Macros.Lookup(name)
		out = append(out, diag.New(diag.SevWarning, diag.RuleUnusedMacro, winner.NameSpan,
			"macro '"+winner.Name+"' is never used"))
	}
	return out
}

type undefinedMacroRule struct{}

func (undefinedMacroRule) Name() string { return diag.RuleUndefinedMacro.ID() }

func (undefinedMacroRule) Check(ctx *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	forEachValue(ctx.Doc, func(v *bib.Value) {
		for _, part := range v.Parts {
			if part.Kind != bib.PartMacroRef {
				continue
			}
			if _, ok := ctx.Doc.Macros.Lookup(part.Text); ok {
				continue
			}
			out = append(out, diag.New(diag.SevWarning, diag.RuleUndefinedMacro, part.Span,
				"macro '"+part.Text+"' is not defined; it resolves to its own name"))
		}
	})
	return out
}

// referencedMacros collects every macro name referenced from field values,
// macro definitions and preambles, lower-cased.
func referencedMacros(doc *bib.Document) map[string]bool {
	used := make(map[string]bool)
	forEachValue(doc, func(v *bib.Value) {
		for _, part := range v.Parts {
			if part.Kind == bib.PartMacroRef {
				used[strings.ToLower(part.Text)] = true
			}
		}
	})
	return used
}

func forEachValue(doc *bib.Document, fn func(*bib.Value)) {
	for _, e := range doc.Entries {
		switch e := e.(type) {
		case *bib.RegularEntry:
			for _, f := range e.Fields {
				if f.Value != nil {
					fn(f.Value)
				}
			}
		case *bib.MacroDef:
			if e.Value != nil {
				fn(e.Value)
			}
		case *bib.PreambleEntry:
			if e.Value != nil {
				fn(e.Value)
			}
		}
	}
}
