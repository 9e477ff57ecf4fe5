package report

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/nozomi-k/webharvest/internal/model"
)

// pageRow is one CSV line describing a visited page.
type pageRow struct {
	URL         string `csv:"url"`
	StatusCode  int    `csv:"status_code"`
	ContentType string `csv:"content_type"`
	Title       string `csv:"title"`
	BodyHash    string `csv:"body_hash"`
	Matched     bool   `csv:"matched"`
}

// CSVWriter outputs the visited pages as CSV, one row per page.
// Spreadsheet-friendly: the row carries the fetch result and whether the
// page contained the target phrase, not the page body itself.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report's visited pages as CSV.
func (w *CSVWriter) Write(report *model.RunReport) (int, error) {
	matched := make(map[string]bool, len(report.PagesMatched))
	for _, url := range report.PagesMatched {
		matched[url] = true
	}

	rows := make([]pageRow, 0, len(report.Pages))
	for _, page := range report.Pages {
		rows = append(rows, pageRow{
			URL:         page.URL,
			StatusCode:  page.StatusCode,
			ContentType: page.ContentType,
			Title:       page.Title,
			BodyHash:    page.Hash,
			Matched:     matched[page.URL],
		})
	}

	var buf strings.Builder
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		return 0, err
	}

	return w.output.Write([]byte(buf.String()))
}
