package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bibadac/internal/diag"
	"bibadac/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	noteColor    = color.New(color.FgBlue)
	gutterColor  = color.New(color.FgHiBlack)
)

// Pretty renders diagnostics in a human-readable form, one header line per
// diagnostic followed by the source line with a caret underline. The bag is
// expected to be sorted already.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)

	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		formatPath(file, fs, opts.PathMode), start.Line, start.Col,
		severityLabel(d.Severity, opts.Color), d.Code.ID(), d.Message)

	writeContext(w, file, d.Primary, start, opts)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nStart, _ := fs.Resolve(n.Span)
			label := "note"
			if opts.Color {
				label = noteColor.Sprint(label)
			}
			fmt.Fprintf(w, "  %s: %s (%s:%d:%d)\n",
				label, n.Msg, formatPath(fs.Get(n.Span.File), fs, opts.PathMode),
				nStart.Line, nStart.Col)
		}
	}
	if opts.ShowFixes {
		for _, f := range d.Fixes {
			label := "fix"
			if opts.Color {
				label = noteColor.Sprint(label)
			}
			fmt.Fprintf(w, "  %s: %s\n", label, f.Title)
		}
	}
}

// writeContext prints the source line with a gutter and a caret underline
// that covers the span's extent on its first line.
func writeContext(w io.Writer, file *source.File, sp source.Span, start source.LineCol, opts PrettyOpts) {
	if file == nil {
		return
	}
	line := file.GetLine(start.Line)
	if line == "" && sp.Empty() && int(sp.Start) >= len(file.Content) {
		return
	}

	gutter := fmt.Sprintf("%4d | ", start.Line)
	blank := strings.Repeat(" ", len(gutter)-2) + "| "
	if opts.Color {
		fmt.Fprintf(w, "%s%s\n", gutterColor.Sprint(gutter), line)
		fmt.Fprintf(w, "%s%s\n", gutterColor.Sprint(blank), underline(line, sp, start, opts.Color))
	} else {
		fmt.Fprintf(w, "%s%s\n", gutter, line)
		fmt.Fprintf(w, "%s%s\n", blank, underline(line, sp, start, false))
	}
}

// underline builds the ^~~~ marker. Column accounting uses display widths,
// so tabs and wide runes keep the caret aligned.
func underline(line string, sp source.Span, start source.LineCol, colorize bool) string {
	col := int(start.Col)
	if col < 1 {
		col = 1
	}
	prefixBytes := col - 1
	if prefixBytes > len(line) {
		prefixBytes = len(line)
	}
	pad := displayWidth(line[:prefixBytes])

	spanLen := int(sp.Len())
	remaining := len(line) - prefixBytes
	if spanLen > remaining {
		spanLen = remaining
	}
	width := 1
	if spanLen > 0 {
		width = displayWidth(line[prefixBytes : prefixBytes+spanLen])
		if width < 1 {
			width = 1
		}
	}

	marker := "^" + strings.Repeat("~", width-1)
	if colorize {
		marker = errorColor.Sprint(marker)
	}
	return strings.Repeat(" ", pad) + marker
}

func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r == '\t' {
			w += 4
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}

func severityLabel(sev diag.Severity, colorize bool) string {
	s := sev.String()
	if !colorize {
		return s
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(s)
	case diag.SevWarning:
		return warningColor.Sprint(s)
	default:
		return infoColor.Sprint(s)
	}
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
