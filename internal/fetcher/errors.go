package fetcher

import "fmt"

// The fetch error taxonomy. Every failure during a single page fetch is
// classified into one of these kinds so the traversal engine can log it
// precisely and continue. None of them ever propagates out of a run.
//
// Design decision: We use typed errors rather than sentinel values because
// callers need the URL and underlying cause for the error log, and
// errors.As gives them the classification without string matching.

// NetworkError indicates a connection, DNS, or transport-level failure.
// The request never produced an HTTP response.
type NetworkError struct {
	// URL is the URL the request was made to.
	URL string

	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to request %q: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// BodyReadError indicates the response arrived but its body could not be
// read or decoded.
type BodyReadError struct {
	// URL is the URL whose body failed to read.
	URL string

	// Err is the underlying read or decode error.
	Err error
}

// Error implements the error interface.
func (e *BodyReadError) Error() string {
	return fmt.Sprintf("failed to read body from %q: %v", e.URL, e.Err)
}

// Unwrap returns the underlying read error.
func (e *BodyReadError) Unwrap() error { return e.Err }

// HTTPError indicates a response with a non-success status code.
// The fetcher itself returns non-success pages as values; this type exists
// for collaborators (media download, open-directory probe) that require a
// 2xx response to proceed.
type HTTPError struct {
	// URL is the URL that answered with the non-success status.
	URL string

	// StatusCode is the HTTP status code received.
	StatusCode int
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %q", e.StatusCode, e.URL)
}
