package reporter

import (
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/ppiankov/procspectre/internal/analyzer"
)

// writeText renders findings the way shell pipelines expect them:
// one procedure name per line for unused procedures, and a file path line
// followed by the raw source line for each not-implemented call site.
// Nothing is written when there are no findings.
func writeText(w io.Writer, report *Report) error {
	name := color.New(color.FgYellow)
	path := color.New(color.FgCyan, color.Bold)
	source := color.New(color.FgRed)
	if !isTTY(w) {
		for _, c := range []*color.Color{name, path, source} {
			c.DisableColor()
		}
	}

	for _, f := range report.Findings {
		var err error
		switch f.Type {
		case analyzer.FindingNotImplemented:
			if _, err = path.Fprintln(w, f.File); err == nil {
				_, err = source.Fprintln(w, f.SourceLine)
			}
		default:
			_, err = name.Fprintln(w, f.Procedure)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// isTTY returns true if the writer is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
