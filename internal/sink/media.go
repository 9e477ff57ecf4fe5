package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/nozomi-k/webharvest/internal/fetcher"
)

// downloadOne downloads a single media file into the domain directory.
// The file name is the URL's last path segment; query strings and empty
// segments fall back to a generic name so a download never fails on
// naming alone.
func (h *Harvester) downloadOne(ctx context.Context, dir, mediaURL string) {
	data, err := h.media.FetchBytes(ctx, mediaURL, fetcher.RequestOptions{})
	if err != nil {
		h.logger.Warn("failed to download media", "url", mediaURL, "error", err)
		return
	}

	path := filepath.Join(dir, mediaFileName(mediaURL))
	if err := os.WriteFile(path, data, 0600); err != nil {
		h.logger.Error("failed to save media file", "path", path, "error", err)
		return
	}

	h.logger.Debug("saved media file", "url", mediaURL, "path", path)
}

// mediaFileName derives a local file name from a media URL.
func mediaFileName(mediaURL string) string {
	trimmed := mediaURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}

	segments := strings.Split(trimmed, "/")
	name := segments[len(segments)-1]
	if name == "" {
		return "media.bin"
	}
	return filepath.Base(name)
}
