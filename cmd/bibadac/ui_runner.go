package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"bibadac/internal/driver"
	"bibadac/internal/formatter"
	"bibadac/internal/source"
	"bibadac/internal/ui"
)

type checkOutcome struct {
	fs      *source.FileSet
	results []driver.CheckResult
	err     error
}

type formatOutcome struct {
	fs      *source.FileSet
	results []driver.FormatResult
	err     error
}

// runCheckPipeline runs CheckPaths, with a progress display when the output
// is a terminal.
func runCheckPipeline(ctx context.Context, paths []string, opts driver.Options, useTUI bool) (*source.FileSet, []driver.CheckResult, error) {
	if !useTUI {
		return driver.CheckPaths(ctx, paths, opts)
	}
	files, err := driver.ExpandPaths(paths)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)
	go func() {
		optsCopy := opts
		optsCopy.Sink = driver.ChannelSink{Ch: events}
		fs, results, err := driver.CheckPaths(ctx, paths, optsCopy)
		outcomeCh <- checkOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("check", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}

// runFormatPipeline runs FormatPaths, with a progress display when the
// output is a terminal.
func runFormatPipeline(ctx context.Context, paths []string, style formatter.Style, opts driver.Options, useTUI bool) (*source.FileSet, []driver.FormatResult, error) {
	if !useTUI {
		return driver.FormatPaths(ctx, paths, style, opts)
	}
	files, err := driver.ExpandPaths(paths)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)
	go func() {
		optsCopy := opts
		optsCopy.Sink = driver.ChannelSink{Ch: events}
		fs, results, err := driver.FormatPaths(ctx, paths, style, optsCopy)
		outcomeCh <- formatOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("format", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
