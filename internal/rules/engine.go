package rules

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"bibadac/internal/bib"
	"bibadac/internal/diag"
	"bibadac/internal/source"
)

// DefaultEntryRules returns the entry-level rule set in evaluation order.
func DefaultEntryRules() []EntryRule {
	return []EntryRule{
		missingFieldRule{},
		unknownFieldRule{},
		duplicateFieldRule{},
		malformedYearRule{},
		unescapedUnicodeRule{},
		unknownEntryTypeRule{},
		authorFormatRule{},
		doiRule{},
		uncheckableRule{},
		emptyValueRule{},
	}
}

// DefaultDocumentRules returns the document-level rule set.
func DefaultDocumentRules() []DocumentRule {
	return []DocumentRule{
		duplicateKeyRule{},
		duplicateIdentifierRule{},
		macroRedefinedRule{},
		unusedMacroRule{},
		undefinedMacroRule{},
	}
}

// Evaluate runs the full rule set over one document and returns the sorted
// diagnostics. Entry rules run in parallel across entries; document rules
// and the marker passthrough run after them on the collecting goroutine.
// The error is non-nil only when a rule itself fails, which is a bug in the
// rule, not a property of the input.
func Evaluate(ctx context.Context, doc *bib.Document, file *source.File, cfg *Config) (*diag.Bag, error) {
	return evaluate(ctx, doc, file, cfg, DefaultEntryRules(), DefaultDocumentRules())
}

func evaluate(ctx context.Context, doc *bib.Document, file *source.File, cfg *Config,
	entryRules []EntryRule, docRules []DocumentRule) (*diag.Bag, error) {
	maxDiag := DefaultMaxDiagnostics
	if cfg != nil && cfg.MaxDiagnostics > 0 {
		maxDiag = cfg.MaxDiagnostics
	}
	bag := diag.NewBag(maxDiag)

	rctx := &Context{Doc: doc, File: file, Cfg: cfg}
	entries := doc.RegularEntries()

	// Each entry gets its own result slot, so workers never share state and
	// the merged order stays deterministic whatever the scheduling.
	perEntry := make([][]diag.Diagnostic, len(entries))
	jobs := runtime.GOMAXPROCS(0)
	if cfg != nil && cfg.Jobs > 0 {
		jobs = cfg.Jobs
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(entries), 1)))
	for i, entry := range entries {
		g.Go(func() (err error) {
			// A panicking rule must not take down the process; it
			// surfaces as the run's internal error instead.
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("rule panic on entry %q: %v", entry.Key, r)
				}
			}()
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			var ds []diag.Diagnostic
			for _, rule := range entryRules {
				ds = append(ds, rule.Check(rctx, entry)...)
			}
			perEntry[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return bag, err
	}

	for _, ds := range perEntry {
		bag.AddAll(applyConfig(cfg, ds))
	}

	for _, rule := range docRules {
		bag.AddAll(applyConfig(cfg, rule.Check(rctx)))
	}

	// Lexer/parser markers surface as Error regardless of configuration.
	for _, m := range doc.Markers {
		bag.Add(diag.NewError(diag.RuleParserMarker, m.Span, m.Msg))
	}

	bag.Sort()
	return bag, nil
}

// applyConfig drops disabled diagnostics and remaps severities.
func applyConfig(cfg *Config, ds []diag.Diagnostic) []diag.Diagnostic {
	out := ds[:0]
	for _, d := range ds {
		id := d.Code.ID()
		if cfg.disabled(id) {
			continue
		}
		d.Severity = cfg.severityFor(d.Code, d.Severity)
		out = append(out, d)
	}
	return out
}
