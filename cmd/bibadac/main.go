// Command bibadac checks, formats and sets up BibTeX/BibLaTeX bibliographies.
package main

import (
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bibadac/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "bibadac",
	Short: "BibTeX/BibLaTeX checker and formatter",
	Long:  "bibadac parses bibliography files, reports semantic problems and rewrites them in a canonical form.",
}

// errInternal marks failures of the tool itself, as opposed to problems in
// the checked files. They exit with code 101.
var errInternal = errors.New("internal error")

// exitCode is set by subcommands that finished but found problems.
var exitCode int

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics per file (0 = default)")
	rootCmd.PersistentFlags().Int("jobs", 0, "number of files processed in parallel (0 = all CPUs)")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errInternal) {
			os.Exit(101)
		}
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color flag against the terminal and configures the
// global color state.
func useColor(cmd *cobra.Command) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		mode = "auto"
	}
	var enabled bool
	switch mode {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		enabled = isTerminal(os.Stdout)
	}
	color.NoColor = !enabled
	return enabled
}
