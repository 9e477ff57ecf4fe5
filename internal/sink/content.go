package sink

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nozomi-k/webharvest/internal/crawler"
	"github.com/nozomi-k/webharvest/internal/fetcher"
	"github.com/nozomi-k/webharvest/internal/model"
)

// MediaFetcher downloads raw bytes for media files.
// Satisfied by *fetcher.Fetcher.
type MediaFetcher interface {
	FetchBytes(ctx context.Context, url string, opts fetcher.RequestOptions) ([]byte, error)
}

// Harvester is the content sink: it receives each fetched page from the
// traversal engine and writes the extracted content to per-domain
// artifacts on disk.
//
// Per domain it maintains:
//
//	<outputDir>/<domain>/content.txt   headings, paragraphs, meta tags, forms
//	<outputDir>/<domain>/emails.txt    email-like substrings
//	<outputDir>/<domain>/js/           saved external scripts
//	<outputDir>/<domain>/<file>        downloaded media
//
// Every failure inside the Harvester is logged and swallowed. The
// traversal engine treats this sink as fire-and-forget.
type Harvester struct {
	// outputDir is the root artifact directory.
	outputDir string

	// media downloads referenced images and videos. Nil disables downloads.
	media MediaFetcher

	// downloadMedia toggles media downloading.
	downloadMedia bool

	// scanJS toggles JavaScript keyword scanning.
	scanJS bool

	// jsKeywords are the substrings the script scanner reports.
	jsKeywords []string

	// logger is used for structured logging.
	logger *slog.Logger
}

// HarvesterOption configures a Harvester.
type HarvesterOption func(*Harvester)

// WithMediaFetcher enables media downloads through the given fetcher.
func WithMediaFetcher(media MediaFetcher) HarvesterOption {
	return func(h *Harvester) {
		h.media = media
		h.downloadMedia = true
	}
}

// WithJSKeywords enables JavaScript scanning for the given keywords.
func WithJSKeywords(keywords []string) HarvesterOption {
	return func(h *Harvester) {
		h.scanJS = len(keywords) > 0
		h.jsKeywords = keywords
	}
}

// WithHarvesterLogger sets a custom logger.
func WithHarvesterLogger(logger *slog.Logger) HarvesterOption {
	return func(h *Harvester) {
		h.logger = logger
	}
}

// NewHarvester creates a Harvester writing under outputDir.
func NewHarvester(outputDir string, opts ...HarvesterOption) *Harvester {
	h := &Harvester{
		outputDir: outputDir,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// HandlePage writes all extracted content for one page.
// It implements crawler.ContentSink.
func (h *Harvester) HandlePage(ctx context.Context, page *model.Page, result *crawler.ExtractResult) {
	dir := filepath.Join(h.outputDir, domainOf(page.URL))
	if err := os.MkdirAll(dir, 0750); err != nil {
		h.logger.Error("failed to create artifact directory", "dir", dir, "error", err)
		return
	}

	h.writeContent(dir, page, result)
	h.writeEmails(dir, result.Emails)

	if h.scanJS {
		h.scanScripts(ctx, dir, page.URL, result)
	}
	h.scanForErrors(page)

	if h.downloadMedia && h.media != nil {
		for _, mediaURL := range append(result.Images, result.Videos...) {
			h.downloadOne(ctx, dir, mediaURL)
		}
	}
}

// writeContent appends the page's textual content to content.txt.
func (h *Harvester) writeContent(dir string, page *model.Page, result *crawler.ExtractResult) {
	f, err := os.OpenFile(filepath.Join(dir, "content.txt"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		h.logger.Error("failed to open content file", "dir", dir, "error", err)
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "== %s\n", page.URL)
	for _, heading := range result.Headings {
		fmt.Fprintf(f, "Header: %s\n", heading)
	}
	for _, paragraph := range result.Paragraphs {
		fmt.Fprintf(f, "Paragraph: %s\n", paragraph)
	}
	for name, content := range result.MetaTags {
		fmt.Fprintf(f, "Meta Tag - Name: %s, Content: %s\n", name, content)
	}
	for _, form := range result.Forms {
		fmt.Fprintf(f, "Form - Action: %s, Method: %s\n", form.Action, form.Method)
		for _, field := range form.Fields {
			fmt.Fprintf(f, "Input - Name: %s, Type: %s\n", field.Name, field.Type)
		}
	}
}

// writeEmails appends found email addresses to emails.txt.
func (h *Harvester) writeEmails(dir string, emails []string) {
	if len(emails) == 0 {
		return
	}

	f, err := os.OpenFile(filepath.Join(dir, "emails.txt"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		h.logger.Error("failed to open email file", "dir", dir, "error", err)
		return
	}
	defer f.Close()

	for _, email := range emails {
		fmt.Fprintln(f, email)
	}
}

// scanForErrors flags pages that look like leaked error output.
func (h *Harvester) scanForErrors(page *model.Page) {
	if strings.Contains(page.Body, "Exception") || strings.Contains(page.Body, "Stack trace") {
		h.logger.Warn("potential error output or stack trace on page", "url", page.URL)
	}
}

// domainOf extracts the host from a URL for the per-domain directory name.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown_domain"
	}
	return u.Hostname()
}
