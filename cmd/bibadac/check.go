package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bibadac/internal/diag"
	"bibadac/internal/diagfmt"
	"bibadac/internal/driver"
	"bibadac/internal/fix"
	"bibadac/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.bib|directory>...",
	Short: "Check bibliography files and report diagnostics",
	Long: "Parse the given files, run the lint rules and print diagnostics.\n" +
		"Exits 0 when no errors were found, 1 when error diagnostics exist\n" +
		"and 101 on an internal failure.",
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
	checkCmd.Flags().Bool("fix", false, "apply suggested fixes in place")
	checkCmd.Flags().Bool("fail-fast", false, "stop checking new files after the first one with errors")
	checkCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, err := readRootOptions(cmd)
	if err != nil {
		return err
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	applyFixes, err := cmd.Flags().GetBool("fix")
	if err != nil {
		return err
	}
	failFast, err := cmd.Flags().GetBool("fail-fast")
	if err != nil {
		return err
	}
	ui, err := readUIMode(cmd.Flags().Lookup("ui").Value.String())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := driverOptions(root, cfg)
	opts.FailFast = failFast
	colorize := useColor(cmd) && !jsonOut

	useTUI := shouldUseTUI(ui) && !root.quiet && !jsonOut
	fs, results, err := runCheckPipeline(cmd.Context(), args, opts, useTUI)
	if err != nil {
		return wrapRunError(err)
	}

	if applyFixes {
		if err := applyAllFixes(cmd, fs, results, root.quiet); err != nil {
			return err
		}
	}

	hasErrors := false
	if jsonOut {
		combined := diag.NewBag(totalDiagnostics(results))
		for _, res := range results {
			combined.Merge(res.Bag)
		}
		combined.Sort()
		hasErrors = combined.HasErrors()
		if err := diagfmt.JSON(cmd.OutOrStdout(), combined, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			IncludeFixes:     true,
			Max:              root.maxDiagnostics,
		}); err != nil {
			return fmt.Errorf("%w: %v", errInternal, err)
		}
	} else {
		for _, res := range results {
			if res.Bag.HasErrors() {
				hasErrors = true
			}
			diagfmt.Pretty(cmd.OutOrStdout(), res.Bag, fs, diagfmt.PrettyOpts{
				Color:     colorize,
				ShowNotes: true,
				ShowFixes: !root.quiet,
			})
			if root.timings && res.Timing != nil && !root.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s", res.Path, res.Timing.Summary())
			}
		}
		if !root.quiet {
			files, problems := len(results), totalDiagnostics(results)
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d file(s), %d diagnostic(s)\n", files, problems)
		}
	}

	if hasErrors {
		exitCode = 1
	}
	return nil
}

func totalDiagnostics(results []driver.CheckResult) int {
	total := 0
	for _, res := range results {
		total += res.Bag.Len()
	}
	return total
}

// applyAllFixes rewrites each checked file with its suggested fixes applied.
func applyAllFixes(cmd *cobra.Command, fs *source.FileSet, results []driver.CheckResult, quiet bool) error {
	for _, res := range results {
		if res.Doc == nil {
			continue
		}
		file := fs.Get(res.FileID)
		applied, err := fix.Apply(file, res.Bag.Items())
		if err != nil {
			if errors.Is(err, fix.ErrNoFixes) {
				continue
			}
			return fmt.Errorf("%w: %v", errInternal, err)
		}
		if applied.Applied == 0 {
			continue
		}
		if err := os.WriteFile(res.Path, applied.Content, 0o644); err != nil {
			return fmt.Errorf("%w: %v", errInternal, err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: applied %d fix(es), skipped %d\n",
				res.Path, applied.Applied, applied.Skipped)
		}
	}
	return nil
}
