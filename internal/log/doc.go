// Package log provides secure logging with automatic sanitization of
// sensitive information, built on top of the standard slog package.
//
// The crawler regularly handles values that must not end up in logs:
// session cookies configured for authenticated crawling, Authorization
// headers from site configurations, and token-looking strings scraped out
// of page content. The SecureHandler masks these before the record reaches
// the underlying handler, so even verbose debug logs are safe to share.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("request sent",
//	    "cookie", "session=abc123", // masked in output
//	    "url", "https://example.com",
//	)
package log
