package report

import (
	"io"

	"github.com/nozomi-k/webharvest/internal/model"
)

// Writer defines the interface for run report output.
// Implementations render a RunReport in a particular format.
//
// Design decision: We use an interface so the CLI can pick text, JSON, or
// Markdown output with the same wiring, and tests can write to a buffer.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)
}

// baseWriter provides the shared output destination for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
