package driver

import (
	"bibadac/internal/diag"
	"bibadac/internal/lexer"
	"bibadac/internal/source"
	"bibadac/internal/token"
)

// TokenizeResult is the token stream of one file, for the debug dump.
type TokenizeResult struct {
	Path   string
	FileID source.FileID
	Tokens []token.Token
	Bag    *diag.Bag
}

// bagSink adapts the lexer's narrow reporter contract onto the general one;
// lexer reports are always errors and carry no notes or fixes.
type bagSink struct{ r diag.Reporter }

func (s bagSink) Report(code diag.Code, sp source.Span, msg string) {
	s.r.Report(code, diag.SevError, sp, msg, nil, nil)
}

// TokenizePaths lexes every bibliography file reachable from paths. The
// dump is a debugging surface, so files run serially; parallelism buys
// nothing against terminal output.
func TokenizePaths(paths []string, opts Options) (*source.FileSet, []TokenizeResult, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()

	results := make([]TokenizeResult, 0, len(files))
	for _, path := range files {
		bag := diag.NewBag(opts.maxDiagnostics())
		id, err := fileSet.Load(path)
		if err != nil {
			bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
				"failed to load file: "+err.Error()))
			results = append(results, TokenizeResult{Path: path, Bag: bag})
			continue
		}
		file := fileSet.Get(id)

		lx := lexer.New(file, lexer.Options{
			Reporter: bagSink{r: diag.BagReporter{Bag: bag}},
			MaxDepth: opts.MaxDepth,
		})
		var tokens []token.Token
		for {
			tok := lx.Next()
			tokens = append(tokens, tok)
			if tok.IsEOF() {
				break
			}
		}
		results = append(results, TokenizeResult{
			Path:   path,
			FileID: id,
			Tokens: tokens,
			Bag:    bag,
		})
	}
	return fileSet, results, nil
}
