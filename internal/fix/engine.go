// Package fix applies the suggested edits attached to diagnostics.
package fix

import (
	"errors"
	"sort"

	"bibadac/internal/diag"
	"bibadac/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// Result summarises one application pass over a file.
type Result struct {
	Content []byte
	Applied int
	Skipped int
}

type candidate struct {
	edits []diag.FixEdit
	order int
}

// Apply takes the first fix of every diagnostic pointing into file and
// applies the non-conflicting subset, earliest span first. Overlapping
// candidates after the first are skipped, not reordered; a second check run
// picks up whatever remains.
func Apply(file *source.File, diags []diag.Diagnostic) (Result, error) {
	res := Result{Content: file.Content}

	var cands []candidate
	for i, d := range diags {
		if len(d.Fixes) == 0 {
			continue
		}
		edits := d.Fixes[0].Edits
		if len(edits) == 0 || !editsInFile(file, edits) {
			continue
		}
		cands = append(cands, candidate{edits: edits, order: i})
	}
	if len(cands) == 0 {
		return res, ErrNoFixes
	}

	sort.SliceStable(cands, func(i, j int) bool {
		si, sj := cands[i].edits[0].Span, cands[j].edits[0].Span
		if si.Start != sj.Start {
			return si.Start < sj.Start
		}
		return cands[i].order < cands[j].order
	})

	var edits []diag.FixEdit
	lastEnd := uint32(0)
	taken := false
	for _, c := range cands {
		if conflicts(c.edits, lastEnd, taken) {
			res.Skipped++
			continue
		}
		edits = append(edits, c.edits...)
		for _, e := range c.edits {
			if e.Span.End > lastEnd {
				lastEnd = e.Span.End
			}
		}
		taken = true
		res.Applied++
	}
	if res.Applied == 0 {
		return res, ErrNoFixes
	}

	res.Content = applyEdits(file.Content, edits)
	return res, nil
}

func editsInFile(file *source.File, edits []diag.FixEdit) bool {
	for _, e := range edits {
		if e.Span.File != file.ID || int(e.Span.End) > len(file.Content) || e.Span.Start > e.Span.End {
			return false
		}
	}
	return true
}

// conflicts reports whether any edit starts before the already claimed
// region ends. Inserts exactly at the boundary are fine; several
// missing-field fixes share one insertion point.
func conflicts(edits []diag.FixEdit, lastEnd uint32, taken bool) bool {
	for _, e := range edits {
		if taken && e.Span.Start < lastEnd {
			return true
		}
	}
	return false
}

// applyEdits rewrites content back to front so earlier offsets stay valid.
// Ties at the same offset apply last-first, which keeps same-point inserts
// in their original order in the output.
func applyEdits(content []byte, edits []diag.FixEdit) []byte {
	type indexed struct {
		diag.FixEdit
		idx int
	}
	sorted := make([]indexed, len(edits))
	for i, e := range edits {
		sorted[i] = indexed{e, i}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start > sorted[j].Span.Start
		}
		return sorted[i].idx > sorted[j].idx
	})

	out := make([]byte, len(content))
	copy(out, content)
	for _, e := range sorted {
		var next []byte
		next = append(next, out[:e.Span.Start]...)
		next = append(next, e.NewText...)
		next = append(next, out[e.Span.End:]...)
		out = next
	}
	return out
}
