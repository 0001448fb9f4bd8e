package driver

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"bibadac/internal/bib"
	"bibadac/internal/diag"
	"bibadac/internal/observ"
	"bibadac/internal/parser"
	"bibadac/internal/rules"
	"bibadac/internal/source"
)

// CheckResult is the outcome of checking one file.
type CheckResult struct {
	Path   string
	FileID source.FileID
	Doc    *bib.Document
	Bag    *diag.Bag
	Timing *observ.Report
}

// CheckPaths loads, parses and lints every bibliography file reachable from
// paths, in parallel across files. Results come back in sorted path order
// whatever the scheduling. A file that fails to load yields an IO diagnostic
// in its result, not a run error; the error return is for cancellation and
// internal failures only.
func CheckPaths(ctx context.Context, paths []string, opts Options) (*source.FileSet, []CheckResult, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// Preload serially; the FileSet is not safe for concurrent mutation.
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = id
	}

	// One result slot per file: workers never share state and the merged
	// order stays deterministic.
	results := make([]CheckResult, len(files))
	cfg := opts.rulesConfig()

	// Set once a file finishes with error diagnostics; later files are
	// skipped instead of checked when FailFast is on.
	var stop atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(files)))
	for i, path := range files {
		g.Go(func() (err error) {
			defer recoverWorker(path, &err)
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if opts.FailFast && stop.Load() {
				return nil
			}

			if loadErr, failed := loadErrors[path]; failed {
				bag := diag.NewBag(opts.maxDiagnostics())
				bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
					"failed to load file: "+loadErr.Error()))
				results[i] = CheckResult{Path: path, Bag: bag}
				emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusError})
				return nil
			}

			file := fileSet.Get(fileIDs[path])
			var tm *observ.Timer
			if opts.Timings {
				tm = observ.NewTimer()
			}

			emit(opts.Sink, Event{File: path, Stage: StageParse, Status: StatusWorking})
			phase := tm.Begin("parse")
			doc := parser.Parse(file, parser.Options{MaxDepth: opts.MaxDepth})
			tm.End(phase, fmt.Sprintf("%d entries", len(doc.Entries)))

			emit(opts.Sink, Event{File: path, Stage: StageLint, Status: StatusWorking})
			phase = tm.Begin("lint")
			bag, rerr := rules.Evaluate(gctx, doc, file, cfg)
			if rerr != nil {
				return &InternalError{Path: path, Cause: rerr}
			}
			tm.End(phase, fmt.Sprintf("%d diagnostics", bag.Len()))

			res := CheckResult{Path: path, FileID: file.ID, Doc: doc, Bag: bag}
			if tm != nil {
				report := tm.Report()
				res.Timing = &report
			}
			results[i] = res

			status := StatusDone
			if bag.HasErrors() {
				status = StatusError
				stop.Store(true)
			}
			emit(opts.Sink, Event{File: path, Stage: StageLint, Status: status})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, compactResults(results), nil
}

// compactResults drops the empty slots left by files skipped after a
// fail-fast stop, preserving the order of the rest.
func compactResults(results []CheckResult) []CheckResult {
	out := results[:0]
	for _, res := range results {
		if res.Bag != nil {
			out = append(out, res)
		}
	}
	return out
}

// rulesConfig threads the driver's diagnostic cap into the rule engine
// configuration without mutating the caller's.
func (o Options) rulesConfig() *rules.Config {
	if o.MaxDiagnostics <= 0 {
		return o.Rules
	}
	var cfg rules.Config
	if o.Rules != nil {
		cfg = *o.Rules
	}
	cfg.MaxDiagnostics = o.MaxDiagnostics
	return &cfg
}
