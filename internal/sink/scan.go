package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nozomi-k/webharvest/internal/crawler"
	"github.com/nozomi-k/webharvest/internal/fetcher"
)

// scanScripts checks inline and external JavaScript for the configured
// keywords. External scripts are fetched, scanned, and saved under the
// domain's js/ directory. Hits land in js_findings.txt and the log.
func (h *Harvester) scanScripts(ctx context.Context, dir, pageURL string, result *crawler.ExtractResult) {
	for _, script := range result.InlineScripts {
		for _, keyword := range h.jsKeywords {
			if strings.Contains(script, keyword) {
				h.recordJSFinding(dir, pageURL, keyword, "inline")
			}
		}
	}

	if h.media == nil || len(result.ScriptSources) == 0 {
		return
	}

	jsDir := filepath.Join(dir, "js")
	if err := os.MkdirAll(jsDir, 0750); err != nil {
		h.logger.Error("failed to create js directory", "dir", jsDir, "error", err)
		return
	}

	for _, src := range result.ScriptSources {
		content, err := h.media.FetchBytes(ctx, src, fetcher.RequestOptions{})
		if err != nil {
			h.logger.Warn("failed to fetch external script", "url", src, "error", err)
			continue
		}

		for _, keyword := range h.jsKeywords {
			if strings.Contains(string(content), keyword) {
				h.recordJSFinding(dir, src, keyword, "external")
			}
		}

		path := filepath.Join(jsDir, mediaFileName(src))
		if err := os.WriteFile(path, content, 0600); err != nil {
			h.logger.Error("failed to save script", "path", path, "error", err)
		}
	}
}

// recordJSFinding appends one keyword hit to js_findings.txt.
func (h *Harvester) recordJSFinding(dir, srcURL, keyword, kind string) {
	h.logger.Info("keyword found in JavaScript",
		"source", srcURL,
		"keyword", keyword,
		"kind", kind,
	)

	f, err := os.OpenFile(filepath.Join(dir, "js_findings.txt"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		h.logger.Error("failed to open js findings file", "dir", dir, "error", err)
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "%s script %s contains %q\n", kind, srcURL, keyword)
}
