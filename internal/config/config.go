package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The traversal defaults mirror the scraper's documented behavior:
// links are followed, hunts stop after three expansion waves, and no
// explicit User-Agent is configured (a randomized browser string is
// attached per request instead).
const (
	// DefaultFollowLinks controls whether phrase-gated hunts expand
	// matching pages at all. Disabling it turns a hunt into a single-page
	// check plus whatever was already queued.
	DefaultFollowLinks = true

	// DefaultMaxDepth is the number of expansion waves a phrase-gated
	// hunt performs before it stops enqueueing new links.
	DefaultMaxDepth = 3

	// DefaultTimeout is the per-request connection timeout. 30 seconds is
	// generous enough for slow shared hosting without hanging a run on a
	// dead host.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB covers real-world HTML while bounding memory per request.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultMaxPages caps pages fetched in one run. Unconditional
	// scraping has no depth limit, so this is the safety net against
	// calendar-style infinite URL spaces.
	DefaultMaxPages = 1000

	// DefaultMinRunDelay and DefaultMaxRunDelay bound the randomized
	// politeness sleep inserted between full traversal runs. The delay is
	// per run, not per request; it must not be mistaken for a rate limiter.
	DefaultMinRunDelay = 2 * time.Second
	DefaultMaxRunDelay = 5 * time.Second

	// DefaultBatchSize is the number of seeds crawled concurrently when
	// multiple seed URLs are given.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "webharvest"

	// DefaultOutputDirName is the directory scraped artifacts are written
	// under, relative to the working directory. Each domain gets its own
	// subdirectory.
	DefaultOutputDirName = "scraped_data"

	// DefaultErrorLogName is the append-only error log file name.
	DefaultErrorLogName = "error.log"
)

// DefaultJSKeywords are the substrings the JavaScript scanner looks for
// in inline and external scripts.
var DefaultJSKeywords = []string{"apiKey", "token"}

// Config holds all configuration options for webharvest.
// It is populated from CLI flags once, validated, and then passed through
// the application by value semantics: nothing mutates it after a run starts.
//
// Design decision: a Config is always fully constructed via NewConfig
// and then selectively overridden, so downstream code never has to
// distinguish a zero value from an absent setting.
type Config struct {
	// Seeds is the list of URLs to start traversal from.
	Seeds []string

	// FollowLinks controls link expansion in phrase-gated hunt mode.
	FollowLinks bool

	// MaxDepth is the maximum number of expansion waves in hunt mode.
	// Zero means the frontier never grows beyond the seed.
	MaxDepth int

	// TargetPhrase is the phrase that gates expansion in hunt mode.
	TargetPhrase string

	// UserAgent is the User-Agent header for all requests. When empty,
	// the fetcher picks a random browser User-Agent per request.
	UserAgent string

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// MaxPages caps the number of pages fetched in one traversal run.
	MaxPages int

	// OutputDir is the root directory for scraped artifacts
	// (per-domain content.txt, emails.txt, downloaded media).
	OutputDir string

	// ErrorLogPath is the append-only error log file.
	ErrorLogPath string

	// DownloadMedia enables downloading of referenced images and videos.
	DownloadMedia bool

	// ScanJS enables keyword scanning of inline and external JavaScript.
	ScanJS bool

	// JSKeywords are the substrings the JavaScript scanner reports.
	JSKeywords []string

	// MinRunDelay and MaxRunDelay bound the randomized politeness delay
	// inserted after each full traversal run.
	MinRunDelay time.Duration
	MaxRunDelay time.Duration

	// BatchSize is the number of seeds processed concurrently.
	BatchSize int

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport and MarkdownReport select the report format.
	// Mutually exclusive; the default is a human-readable text report.
	JSONReport     bool
	MarkdownReport bool

	// CSVExport, when set, writes the visited-page records to this CSV file.
	CSVExport string

	// ReportFile, when set, writes the report there instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the YAML site configuration file.
	// If empty, .webharvest is searched in the current directory and
	// the XDG config directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory for the SQLite crawl history database.
	// Empty disables persistence.
	DBDir string

	// SaveToDB indicates whether visited pages are recorded in the
	// history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
// All fields are set to safe defaults; callers override what they need.
func NewConfig() *Config {
	return &Config{
		FollowLinks:   DefaultFollowLinks,
		MaxDepth:      DefaultMaxDepth,
		Timeout:       DefaultTimeout,
		MaxBodySize:   DefaultMaxBodySize,
		MaxPages:      DefaultMaxPages,
		OutputDir:     DefaultOutputDirName,
		ErrorLogPath:  DefaultErrorLogName,
		DownloadMedia: true,
		ScanJS:        true,
		JSKeywords:    DefaultJSKeywords,
		MinRunDelay:   DefaultMinRunDelay,
		MaxRunDelay:   DefaultMaxRunDelay,
		BatchSize:     DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for webharvest.
// On Linux: ~/.local/share/webharvest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webharvest.
// On Linux: ~/.config/webharvest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found; fixing one error often makes the
// rest irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MinRunDelay < 0 || c.MaxRunDelay < c.MinRunDelay {
		return ErrInvalidRunDelay
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
