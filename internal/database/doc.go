// Package database provides SQLite-based persistence for crawl history.
//
// Visited pages are stored keyed by (url, domain) so re-crawls update in
// place, discovered emails are deduplicated per domain, and complete run
// reports are kept as JSON for the history command. The database lives in
// the XDG data directory by default and uses modernc.org/sqlite, a pure
// Go driver, so no cgo is required.
package database
