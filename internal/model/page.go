package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MaxBodySize is the maximum size of a page body kept in memory.
// Larger bodies are truncated to this size before any processing.
const MaxBodySize = 5 * 1024 * 1024 // 5 MB

// Page represents a single fetched web page.
// It holds the raw HTTP response data plus anything the parser pulled out
// of it. Pages are transient values: they live for one traversal step and
// optionally end up as a row in the crawl history database.
type Page struct {
	// URL is the absolute URL the page was fetched from.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers in canonical form.
	Headers map[string][]string `json:"headers,omitempty"`

	// ContentType is the MIME type from the Content-Type header,
	// without parameters such as charset.
	ContentType string `json:"content_type"`

	// Title is the page title from the <title> tag. Empty for non-HTML.
	Title string `json:"title,omitempty"`

	// Body is the decoded response body. Always UTF-8: the fetcher
	// transcodes legacy charsets before constructing the Page.
	Body string `json:"-"`

	// Hash is the SHA-256 hash of the body, used for change detection
	// in the crawl history database.
	Hash string `json:"hash,omitempty"`
}

// ComputeHash calculates and sets the SHA-256 hash of the page body.
// Call after the Body field is final.
func (p *Page) ComputeHash() {
	if p.Body == "" {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256([]byte(p.Body))
	p.Hash = hex.EncodeToString(sum[:])
}

// TruncateBody enforces the MaxBodySize limit on the body.
func (p *Page) TruncateBody() {
	if len(p.Body) > MaxBodySize {
		p.Body = p.Body[:MaxBodySize]
	}
}

// GetHeader returns the first value of the named header, or "" if absent.
// Header names must be in canonical form (e.g. "Content-Type").
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// IsHTML reports whether the content type indicates an HTML document.
// Only HTML pages are parsed for links; everything else is treated as an
// opaque leaf during traversal.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" ||
		p.ContentType == "application/xhtml+xml" ||
		strings.HasPrefix(p.ContentType, "text/html;")
}

// IsSuccess reports whether the status code is in the 2xx range.
func (p *Page) IsSuccess() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}
