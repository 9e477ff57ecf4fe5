package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nozomi-k/webharvest/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeMatches(md, report)
	w.writeEmails(md, report)
	w.writeSiteNotes(md, report)
	w.writeErrors(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("webharvest Run Report")
	md.PlainText("")

	rows := [][]string{
		{"Seed URL", "`" + report.Seed + "`"},
		{"Mode", report.Mode},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", report.Duration.String()},
	}
	if report.TargetPhrase != "" {
		rows = append(rows, []string{"Target Phrase", "`" + report.TargetPhrase + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the page counters and an alert reflecting run health.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Pages visited", strconv.Itoa(report.PagesVisited)},
			{"Pages failed", strconv.Itoa(report.PagesFailed)},
			{"Phrase matches", strconv.Itoa(len(report.PagesMatched))},
			{"Emails found", strconv.Itoa(len(report.Emails))},
		},
	})
	md.PlainText("")

	switch {
	case report.PagesVisited == 0:
		md.Cautionf("No pages could be fetched from %s.", report.Seed)
	case report.PagesFailed > report.PagesVisited:
		md.Warningf("More pages failed (%d) than succeeded (%d).", report.PagesFailed, report.PagesVisited)
	default:
		md.Note("Run completed.")
	}
	md.PlainText("")
}

// writePages writes the visited page table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Visited Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages were visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Pages))
	for i, page := range report.Pages {
		title := page.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			truncateString(page.URL, 60),
			strconv.Itoa(page.StatusCode),
			truncateString(title, 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Title"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMatches writes the pages containing the target phrase.
func (w *MarkdownWriter) writeMatches(md *markdown.Markdown, report *model.RunReport) {
	if report.TargetPhrase == "" {
		return
	}

	md.H2("Phrase Matches")
	md.PlainText("")

	if len(report.PagesMatched) == 0 {
		md.PlainText("No pages contained the target phrase.")
		md.PlainText("")
		return
	}

	md.BulletList(report.PagesMatched...)
	md.PlainText("")
}

// writeEmails writes the discovered email addresses.
func (w *MarkdownWriter) writeEmails(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Emails) == 0 {
		return
	}

	md.H2("Email Addresses")
	md.PlainText("")
	md.BulletList(report.Emails...)
	md.PlainText("")
}

// writeSiteNotes writes the robots.txt and open directory findings.
func (w *MarkdownWriter) writeSiteNotes(md *markdown.Markdown, report *model.RunReport) {
	if len(report.DisallowedPaths) == 0 && len(report.OpenDirectories) == 0 {
		return
	}

	md.H2("Site Notes")
	md.PlainText("")

	if len(report.DisallowedPaths) > 0 {
		md.PlainText("Paths disallowed by robots.txt:")
		md.PlainText("")
		md.BulletList(report.DisallowedPaths...)
		md.PlainText("")
	}

	if len(report.OpenDirectories) > 0 {
		md.PlainText("Directories answering successfully:")
		md.PlainText("")
		md.BulletList(report.OpenDirectories...)
		md.PlainText("")
	}
}

// writeErrors writes the errors collected during the run.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Errors) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")
	md.BulletList(report.Errors...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webharvest](https://github.com/nozomi-k/webharvest)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
