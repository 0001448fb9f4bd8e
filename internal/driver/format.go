package driver

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	"bibadac/internal/diag"
	"bibadac/internal/formatter"
	"bibadac/internal/parser"
	"bibadac/internal/source"
)

// FormatResult is the outcome of formatting one file.
type FormatResult struct {
	Path   string
	FileID source.FileID
	// Content is the canonical rendering; nil when loading failed.
	Content []byte
	// Changed reports whether Content differs from the source bytes.
	Changed bool
	// Bag carries load failures; formatting itself never fails.
	Bag *diag.Bag
}

// FormatPaths parses and renders every bibliography file reachable from
// paths. Writing the results anywhere is the caller's decision; the driver
// only computes them.
func FormatPaths(ctx context.Context, paths []string, style formatter.Style, opts Options) (*source.FileSet, []FormatResult, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}

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

	results := make([]FormatResult, len(files))

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

			if loadErr, failed := loadErrors[path]; failed {
				bag := diag.NewBag(opts.maxDiagnostics())
				bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
					"failed to load file: "+loadErr.Error()))
				results[i] = FormatResult{Path: path, Bag: bag}
				emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusError})
				return nil
			}

			file := fileSet.Get(fileIDs[path])
			emit(opts.Sink, Event{File: path, Stage: StageParse, Status: StatusWorking})
			doc := parser.Parse(file, parser.Options{MaxDepth: opts.MaxDepth})

			emit(opts.Sink, Event{File: path, Stage: StageFormat, Status: StatusWorking})
			content := formatter.Format(doc, file, style)
			results[i] = FormatResult{
				Path:    path,
				FileID:  file.ID,
				Content: content,
				Changed: !bytes.Equal(content, file.Content),
			}
			emit(opts.Sink, Event{File: path, Stage: StageFormat, Status: StatusDone})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
