// Package fetcher performs single HTTP GET requests for the crawler.
//
// A Fetcher issues exactly one request per call: no retries, no custom
// redirect handling, no timeout beyond the HTTP client's own. Failures are
// classified into the crawl error taxonomy (NetworkError, BodyReadError,
// HTTPError) so the traversal engine can log each kind precisely and move
// on.
//
// When no User-Agent is configured, a random browser User-Agent from a
// small pool is attached to each request. Response bodies declared in a
// legacy charset are transcoded to UTF-8 via golang.org/x/text.
package fetcher
