package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nozomi-k/webharvest/internal/model"
)

// JSONWriter outputs the complete run report as indented JSON.
// This is the machine-readable format: everything the run collected is
// included, nothing is summarized away.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report as JSON.
func (w *JSONWriter) Write(report *model.RunReport) (int, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return 0, err
	}

	n, err := w.output.Write(buf.Bytes())
	return n, err
}
