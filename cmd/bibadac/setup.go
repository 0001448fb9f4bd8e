package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bibadac/internal/driver"
)

var setupCmd = &cobra.Command{
	Use:   "setup [flags] <file.bib|directory>...",
	Short: "List the download identifiers a bibliography references",
	Long: "Parse the given files and enumerate every arXiv id, DOI and URL\n" +
		"they reference, with a resolvable download location for each.\n" +
		"Nothing is downloaded; the output feeds external fetchers.",
	Args: cobra.MinimumNArgs(1),
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().Bool("urls-only", false, "print one download URL per line")
}

func runSetup(cmd *cobra.Command, args []string) error {
	root, err := readRootOptions(cmd)
	if err != nil {
		return err
	}
	urlsOnly, err := cmd.Flags().GetBool("urls-only")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, results, err := driver.CheckPaths(cmd.Context(), args, driverOptions(root, cfg))
	if err != nil {
		return wrapRunError(err)
	}

	ids := driver.CollectIdentifiers(results)
	out := cmd.OutOrStdout()
	if urlsOnly {
		for _, id := range ids {
			fmt.Fprintln(out, id.DownloadURL)
		}
		return nil
	}

	for _, id := range ids {
		fmt.Fprintf(out, "%-6s %-40s %-20s %s\n", id.Kind, id.Value, id.EntryKey, id.DownloadURL)
	}
	if !root.quiet {
		fmt.Fprintf(out, "%d identifier(s)\n", len(ids))
	}
	return nil
}
