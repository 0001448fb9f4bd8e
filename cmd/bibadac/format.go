package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format [flags] <file.bib|directory>...",
	Short: "Rewrite bibliography files in canonical form",
	Long: "Parse the given files and print (or write back) their canonical\n" +
		"rendering. Formatting never fails on malformed input; unparseable\n" +
		"regions are kept verbatim.",
	Args: cobra.MinimumNArgs(1),
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().BoolP("in-place", "i", false, "rewrite files instead of printing")
	formatCmd.Flags().StringP("output", "o", "", "write the result to this file ('-' for stdout)")
	formatCmd.Flags().Bool("check", false, "exit 1 when any file is not canonically formatted")
	formatCmd.Flags().StringSlice("db", nil, "bibliography files used as a completion database")
	formatCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func runFormat(cmd *cobra.Command, args []string) error {
	root, err := readRootOptions(cmd)
	if err != nil {
		return err
	}
	inPlace, err := cmd.Flags().GetBool("in-place")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	checkOnly, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	dbPaths, err := cmd.Flags().GetStringSlice("db")
	if err != nil {
		return err
	}
	ui, err := readUIMode(cmd.Flags().Lookup("ui").Value.String())
	if err != nil {
		return err
	}

	if inPlace && output != "" {
		return fmt.Errorf("--in-place and --output are mutually exclusive")
	}
	if output != "" && output != "-" && len(args) > 1 {
		return fmt.Errorf("--output needs a single input file")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	style := cfg.Style()
	if len(dbPaths) > 0 {
		db, err := buildCompletionDB(dbPaths)
		if err != nil {
			return err
		}
		style.FillFrom = db
	}

	opts := driverOptions(root, cfg)
	useTUI := shouldUseTUI(ui) && !root.quiet && inPlace
	_, results, err := runFormatPipeline(cmd.Context(), args, style, opts, useTUI)
	if err != nil {
		return wrapRunError(err)
	}

	changed := 0
	for _, res := range results {
		if res.Content == nil {
			// Load failure; the diagnostics say why. The input is at
			// fault, not the tool, so this is an ordinary failure.
			for _, d := range res.Bag.Items() {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", res.Path, d.Message)
			}
			exitCode = 1
			continue
		}
		if res.Changed {
			changed++
		}

		switch {
		case checkOnly:
			if res.Changed && !root.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not canonically formatted\n", res.Path)
			}
		case inPlace:
			if !res.Changed {
				continue
			}
			if err := os.WriteFile(res.Path, res.Content, 0o644); err != nil {
				return fmt.Errorf("%w: %v", errInternal, err)
			}
		case output != "" && output != "-":
			if err := os.WriteFile(output, res.Content, 0o644); err != nil {
				return fmt.Errorf("%w: %v", errInternal, err)
			}
		default:
			if _, err := cmd.OutOrStdout().Write(res.Content); err != nil {
				return fmt.Errorf("%w: %v", errInternal, err)
			}
		}
	}

	if checkOnly && changed > 0 {
		if !root.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) would be reformatted\n", changed)
		}
		exitCode = 1
	}
	return nil
}
