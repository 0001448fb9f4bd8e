package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bibadac/internal/bibdb"
	"bibadac/internal/config"
	"bibadac/internal/driver"
	"bibadac/internal/parser"
	"bibadac/internal/source"
)

// rootOptions are the persistent flags every subcommand resolves.
type rootOptions struct {
	quiet          bool
	timings        bool
	maxDiagnostics int
	jobs           int
}

func readRootOptions(cmd *cobra.Command) (rootOptions, error) {
	flags := cmd.Root().PersistentFlags()
	var opts rootOptions
	var err error
	if opts.quiet, err = flags.GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.timings, err = flags.GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return opts, err
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, err
	}
	return opts, nil
}

// loadConfig discovers bibadac.toml from the working directory.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, path, err := config.Load(".")
	if err != nil {
		return config.Config{}, err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if path != "" && !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "using %s\n", path)
	}
	return cfg, nil
}

// wrapRunError keeps the exit-code split: pipeline bugs exit 101 through
// errInternal, bad inputs such as missing paths stay ordinary errors.
func wrapRunError(err error) error {
	var internal *driver.InternalError
	if errors.As(err, &internal) {
		return fmt.Errorf("%w: %v", errInternal, err)
	}
	return err
}

func driverOptions(root rootOptions, cfg config.Config) driver.Options {
	return driver.Options{
		MaxDiagnostics: root.maxDiagnostics,
		Jobs:           root.jobs,
		Rules:          cfg.Rules(),
		Timings:        root.timings,
	}
}

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// buildCompletionDB parses the given bibliography files into a completion
// database, reusing the disk cache keyed by each file's content hash.
func buildCompletionDB(paths []string) (*bibdb.Local, error) {
	db := bibdb.NewLocal()
	if len(paths) == 0 {
		return db, nil
	}
	cache, err := bibdb.OpenCache("bibadac")
	if err != nil {
		// A read-only home directory disables the cache, not the feature.
		cache = nil
	}

	files, err := driver.ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	fileSet := source.NewFileSet()
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			return nil, fmt.Errorf("completion database: %w", err)
		}
		file := fileSet.Get(id)

		if records, ok, err := cache.Get(file.Hash); err == nil && ok {
			db.ImportRecords(records)
			continue
		}
		imported := bibdb.NewLocal()
		imported.ImportDocument(parser.Parse(file, parser.Options{}))
		db.ImportRecords(imported.Records())
		_ = cache.Put(file.Hash, imported.Records())
	}
	return db, nil
}
