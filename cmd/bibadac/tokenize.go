package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bibadac/internal/diagfmt"
	"bibadac/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <file.bib>...",
	Short: "Dump the token stream of bibliography files",
	Long:  "Tokenize breaks the given files into their lexical tokens, one per line.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTokenize,
}

func runTokenize(cmd *cobra.Command, args []string) error {
	root, err := readRootOptions(cmd)
	if err != nil {
		return err
	}
	colorize := useColor(cmd)

	fs, results, err := driver.TokenizePaths(args, driver.Options{
		MaxDiagnostics: root.maxDiagnostics,
	})
	if err != nil {
		return wrapRunError(err)
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		if len(results) > 1 {
			fmt.Fprintf(out, "== %s\n", res.Path)
		}
		for _, tok := range res.Tokens {
			if tok.IsEOF() {
				break
			}
			text := tok.Text
			if len(text) > 40 {
				text = text[:37] + "..."
			}
			fmt.Fprintf(out, "%-10s %-14s %q\n", tok.Kind, tok.Span, text)
		}
		if res.Bag.Len() > 0 {
			diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, fs, diagfmt.PrettyOpts{Color: colorize})
		}
	}
	return nil
}
