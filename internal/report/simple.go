package report

import (
	"fmt"
	"io"

	"github.com/rodaine/table"

	"github.com/nozomi-k/webharvest/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Plain text with an ASCII table rather than ANSI color: it works in
// every terminal and pipes cleanly into files and other tools.
type SimpleWriter struct {
	baseWriter

	// maxListed caps how many entries of each list section are printed.
	maxListed int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithMaxListed caps the entries printed per list section.
func WithMaxListed(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maxListed = n
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		maxListed:  25,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable form.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	cw := &countingWriter{w: w.output}

	fmt.Fprintf(cw, "webharvest run report\n")
	fmt.Fprintf(cw, "=====================\n\n")
	fmt.Fprintf(cw, "Seed:          %s\n", report.Seed)
	fmt.Fprintf(cw, "Mode:          %s\n", report.Mode)
	if report.TargetPhrase != "" {
		fmt.Fprintf(cw, "Target phrase: %q\n", report.TargetPhrase)
	}
	fmt.Fprintf(cw, "Started:       %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(cw, "Duration:      %s\n", report.Duration.Round(1e6))
	fmt.Fprintf(cw, "Pages visited: %d\n", report.PagesVisited)
	fmt.Fprintf(cw, "Pages failed:  %d\n\n", report.PagesFailed)

	if len(report.Pages) > 0 {
		tbl := table.New("URL", "Status", "Title").WithWriter(cw)
		for i, page := range report.Pages {
			if i >= w.maxListed {
				break
			}
			tbl.AddRow(page.URL, page.StatusCode, page.Title)
		}
		tbl.Print()
		if len(report.Pages) > w.maxListed {
			fmt.Fprintf(cw, "... and %d more pages\n", len(report.Pages)-w.maxListed)
		}
		fmt.Fprintln(cw)
	}

	w.writeList(cw, "Pages matching target phrase", report.PagesMatched)
	w.writeList(cw, "Emails found", report.Emails)
	w.writeList(cw, "robots.txt disallowed paths", report.DisallowedPaths)
	w.writeList(cw, "Open directories", report.OpenDirectories)
	w.writeList(cw, "Errors", report.Errors)

	return cw.n, cw.err
}

// writeList prints one titled list section, capped at maxListed entries.
func (w *SimpleWriter) writeList(out io.Writer, title string, entries []string) {
	if len(entries) == 0 {
		return
	}

	fmt.Fprintf(out, "%s (%d):\n", title, len(entries))
	for i, entry := range entries {
		if i >= w.maxListed {
			fmt.Fprintf(out, "  ... and %d more\n", len(entries)-w.maxListed)
			break
		}
		fmt.Fprintf(out, "  - %s\n", entry)
	}
	fmt.Fprintln(out)
}

// countingWriter tracks bytes written and the first error.
type countingWriter struct {
	w   io.Writer
	n   int
	err error
}

// Write implements io.Writer.
func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += n
	c.err = err
	return n, err
}
