package probe

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nozomi-k/webharvest/internal/fetcher"
	"github.com/nozomi-k/webharvest/internal/model"
)

// PageFetcher is the subset of the fetcher the probes need.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, opts fetcher.RequestOptions) (*model.Page, error)
}

// Prober runs the informational pre-crawl checks: the robots.txt report
// and the open-directory scan. Neither gates the traversal engine in any
// way; their findings are recorded in the run report for the operator.
type Prober struct {
	// fetch retrieves pages.
	fetch PageFetcher

	// logger is used for structured logging.
	logger *slog.Logger
}

// NewProber creates a Prober using the given fetcher.
func NewProber(fetch PageFetcher, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{fetch: fetch, logger: logger}
}

// RobotsDisallows fetches {base}/robots.txt and returns the value of
// every Disallow line found, one entry per line, in file order.
//
// This is a line-level report, not a robots matcher: group structure
// (User-agent sections) is deliberately ignored because the output is
// informational logging only.
func (p *Prober) RobotsDisallows(ctx context.Context, baseURL string) []string {
	robotsURL := strings.TrimRight(baseURL, "/") + "/robots.txt"

	page, err := p.fetch.Fetch(ctx, robotsURL, fetcher.RequestOptions{})
	if err != nil {
		p.logger.Debug("robots.txt fetch failed", "url", robotsURL, "error", err)
		return nil
	}
	if !page.IsSuccess() {
		p.logger.Debug("robots.txt not available", "url", robotsURL, "status", page.StatusCode)
		return nil
	}

	var disallowed []string
	for _, line := range strings.Split(page.Body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Disallow") {
			continue
		}

		value := "/"
		if _, after, ok := strings.Cut(line, ":"); ok {
			if v := strings.TrimSpace(after); v != "" {
				value = v
			}
		}
		disallowed = append(disallowed, value)
		p.logger.Info("disallowed path found", "base", baseURL, "path", value)
	}

	return disallowed
}
