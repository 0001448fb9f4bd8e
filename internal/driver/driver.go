// Package driver runs the per-file pipeline over sets of paths: load, parse,
// lint and format, in parallel across files with deterministic result order.
package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"bibadac/internal/rules"
)

// Options configures a run.
type Options struct {
	// MaxDiagnostics caps the bag per file. Zero means the rules default.
	MaxDiagnostics int
	// Jobs bounds file-level parallelism. Zero means GOMAXPROCS.
	Jobs int
	// MaxDepth overrides the lexer's brace nesting limit when positive.
	MaxDepth int
	// Rules is the strictness configuration; nil means defaults.
	Rules *rules.Config
	// Sink receives progress events; nil disables them.
	Sink ProgressSink
	// Timings enables per-file phase reports.
	Timings bool
	// FailFast stops scheduling new files once one finishes with error
	// diagnostics. Files already in flight still complete.
	FailFast bool
}

func (o Options) jobs(files int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return min(jobs, max(files, 1))
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return rules.DefaultMaxDiagnostics
}

// ExpandPaths resolves a mix of files and directories into a sorted,
// deduplicated list of bibliography files. Directories are walked
// recursively for *.bib; explicitly named files are taken as they are.
func ExpandPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(p, ".bib") {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// InternalError marks a pipeline fault that is a bug in this program rather
// than a problem with the input. Callers map it to a distinct exit code.
type InternalError struct {
	Path  string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error processing %s: %v", e.Path, e.Cause)
}

func (e *InternalError) Unwrap() error { return e.Cause }

// recoverWorker converts a worker panic into an InternalError, so one corrupt
// input aborts the run instead of crashing the process.
func recoverWorker(path string, err *error) {
	if r := recover(); r != nil {
		*err = &InternalError{Path: path, Cause: fmt.Errorf("%v", r)}
	}
}
