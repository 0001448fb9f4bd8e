package bib

import "strings"

// MacroTable maps lower-cased macro names to their latest definition.
// It records every definition in document order so the redefinition and
// unused-macro rules can inspect shadowed entries; lookups always see the
// last definition (last-write-wins).
type MacroTable struct {
	byName map[string]*MacroDef
	defs   []*MacroDef
}

// NewMacroTable creates an empty table.
func NewMacroTable() *MacroTable {
	return &MacroTable{byName: make(map[string]*MacroDef)}
}

// Define records a definition and returns the definition it shadows, if any.
func (t *MacroTable) Define(def *MacroDef) (prev *MacroDef) {
	name := def.NameLower()
	prev = t.byName[name]
	t.byName[name] = def
	t.defs = append(t.defs, def)
	return prev
}

// Lookup returns the winning definition for the name.
func (t *MacroTable) Lookup(name string) (*MacroDef, bool) {
	def, ok := t.byName[strings.ToLower(name)]
	return def, ok
}

// Defs returns all definitions in document order, shadowed ones included.
func (t *MacroTable) Defs() []*MacroDef {
	return t.defs
}

// Len returns the number of distinct macro names defined.
func (t *MacroTable) Len() int {
	return len(t.byName)
}
