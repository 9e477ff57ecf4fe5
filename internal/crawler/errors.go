package crawler

import "fmt"

// ParseError indicates markup or a URL that could not be parsed.
// Like every other error in the crawl taxonomy it is handled at the point
// of occurrence: the affected node stops expanding and the run continues.
type ParseError struct {
	// URL is the page whose content failed to parse, if known.
	URL string

	// Err is the underlying parse error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("failed to parse content: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse content from %q: %v", e.URL, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *ParseError) Unwrap() error { return e.Err }
