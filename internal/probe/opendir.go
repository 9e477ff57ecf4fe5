package probe

import (
	"context"
	"strings"

	"github.com/nozomi-k/webharvest/internal/fetcher"
)

// commonDirectories are paths frequently left browsable on
// misconfigured servers.
var commonDirectories = []string{"/backup", "/config", "/logs", "/uploads"}

// OpenDirectories probes the base URL for commonly exposed directories
// and returns the full URLs of those that answered with a success status.
// Transport errors and non-success statuses are the expected case and are
// only logged at debug level.
func (p *Prober) OpenDirectories(ctx context.Context, baseURL string) []string {
	base := strings.TrimRight(baseURL, "/")

	var open []string
	for _, dir := range commonDirectories {
		if err := ctx.Err(); err != nil {
			return open
		}

		fullURL := base + dir
		page, err := p.fetch.Fetch(ctx, fullURL, fetcher.RequestOptions{})
		if err != nil {
			p.logger.Debug("directory probe failed", "url", fullURL, "error", err)
			continue
		}

		if page.IsSuccess() {
			open = append(open, fullURL)
			p.logger.Info("open directory found", "url", fullURL)
		}
	}

	return open
}
