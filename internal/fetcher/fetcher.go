package fetcher

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/nozomi-k/webharvest/internal/model"
)

// Fetcher performs single HTTP GET requests and classifies their failures.
// It never retries and never follows its own redirect policy: whatever the
// underlying http.Client does is what happens. Retry policy belongs to the
// caller, and the traversal engine deliberately has none.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgent is the configured User-Agent header. When empty, a random
	// browser User-Agent is attached per request.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// logger is used for structured logging.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets a fixed User-Agent header, disabling rotation.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithClient sets a custom HTTP client.
// Useful in tests and for callers that need proxy or TLS configuration.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// New creates a Fetcher with the given options.
func New(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: timeout},
		maxBodySize: model.MaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// RequestOptions carries per-request header overrides.
// Values here are merged over the Fetcher's defaults.
type RequestOptions struct {
	// Headers are extra HTTP headers for this request.
	Headers map[string]string

	// Cookie is the Cookie header value, if any.
	Cookie string

	// UserAgent overrides the Fetcher's User-Agent for this request.
	UserAgent string
}

// Fetch performs one GET request against the given absolute URL.
//
// It returns the page for any HTTP response, including non-success
// statuses: the caller decides whether a 404 is a failure or merely a leaf.
// A *NetworkError is returned when no response was received at all, and a
// *BodyReadError when the response body could not be read or decoded.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, opts RequestOptions) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: pageURL, Err: err}
	}

	req.Header.Set("User-Agent", f.resolveUserAgent(opts))
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if opts.Cookie != "" {
		req.Header.Set("Cookie", opts.Cookie)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := f.readBody(resp)
	if err != nil {
		return nil, &BodyReadError{URL: pageURL, Err: err}
	}

	contentType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		contentType = resp.Header.Get("Content-Type")
	}

	page := &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: contentType,
		Body:        body,
	}
	page.TruncateBody()
	page.ComputeHash()

	f.logger.Debug("fetched page",
		"url", pageURL,
		"status", resp.StatusCode,
		"bytes", len(body),
	)

	return page, nil
}

// FetchBytes performs one GET request and returns the raw body bytes.
// Used for media downloads where no charset decoding must happen.
// A non-success status is reported as *HTTPError.
func (f *Fetcher) FetchBytes(ctx context.Context, rawURL string, opts RequestOptions) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.resolveUserAgent(opts))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &BodyReadError{URL: rawURL, Err: err}
	}

	return data, nil
}

// resolveUserAgent picks the User-Agent for one request: the per-request
// override wins, then the configured value, then a random browser string.
func (f *Fetcher) resolveUserAgent(opts RequestOptions) string {
	if opts.UserAgent != "" {
		return opts.UserAgent
	}
	if f.userAgent != "" {
		return f.userAgent
	}
	return RandomUserAgent()
}

// readBody reads the response body, transcoding legacy charsets to UTF-8.
// Pages served with an unknown or unsupported charset are returned as-is
// rather than failing the fetch.
func (f *Fetcher) readBody(resp *http.Response) (string, error) {
	var reader io.Reader = io.LimitReader(resp.Body, f.maxBodySize)

	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err == nil {
		if charset, ok := params["charset"]; ok && charset != "" && charset != "utf-8" && charset != "UTF-8" {
			if enc, err := htmlindex.Get(charset); err == nil {
				reader = transform.NewReader(reader, enc.NewDecoder())
			}
		}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
