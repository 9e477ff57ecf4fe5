package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nozomi-k/webharvest/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl history.
// Every visited page and every completed run can be recorded, keyed by
// (url, domain), which makes re-crawls cheap to compare and gives the
// history command something to show.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "webharvest.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to refuse creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Page records store individual fetches
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		domain TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		body_hash TEXT,
		UNIQUE(url, domain)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_domain ON pages(domain);
	CREATE INDEX IF NOT EXISTS idx_pages_timestamp ON pages(timestamp);

	-- Emails discovered per domain
	CREATE TABLE IF NOT EXISTS emails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		email TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(domain, email)
	);

	CREATE INDEX IF NOT EXISTS idx_emails_domain ON emails(domain);

	-- Run reports store complete traversal results as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		mode TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		pages_visited INTEGER,
		pages_failed INTEGER,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord represents a stored page fetch.
type PageRecord struct {
	ID          int64
	URL         string
	Domain      string
	Timestamp   time.Time
	StatusCode  int
	ContentType string
	Title       string
	BodyHash    string
}

// InsertPage inserts or updates a page record.
// Re-crawling the same URL for the same domain updates the existing row.
func (cdb *CrawlDB) InsertPage(ctx context.Context, record *PageRecord) error {
	query := `
	INSERT INTO pages (url, domain, status_code, content_type, title, body_hash)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, domain) DO UPDATE SET
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		body_hash = excluded.body_hash,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err := cdb.db.ExecContext(ctx, query,
		record.URL,
		record.Domain,
		record.StatusCode,
		record.ContentType,
		record.Title,
		record.BodyHash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page record: %w", err)
	}

	return nil
}

// InsertEmails records discovered email addresses for a domain.
// Duplicates are ignored.
func (cdb *CrawlDB) InsertEmails(ctx context.Context, domain string, emails []string) error {
	query := `INSERT OR IGNORE INTO emails (domain, email) VALUES (?, ?)`

	for _, email := range emails {
		if _, err := cdb.db.ExecContext(ctx, query, domain, email); err != nil {
			return fmt.Errorf("failed to insert email record: %w", err)
		}
	}

	return nil
}

// SaveRunReport stores a complete run report as JSON plus its headline
// counters for cheap listing.
func (cdb *CrawlDB) SaveRunReport(ctx context.Context, report *model.RunReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO runs (seed, mode, pages_visited, pages_failed, report_json)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		report.Seed,
		report.Mode,
		report.PagesVisited,
		report.PagesFailed,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}

	return nil
}

// RunSummary is one row of the run history listing.
type RunSummary struct {
	ID           int64
	Seed         string
	Mode         string
	Timestamp    time.Time
	PagesVisited int
	PagesFailed  int
}

// RecentRuns returns the most recent runs, newest first.
func (cdb *CrawlDB) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, seed, mode, timestamp, pages_visited, pages_failed
	FROM runs
	ORDER BY timestamp DESC
	LIMIT ?
	`

	rows, err := cdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var run RunSummary
		var timestamp string

		if err := rows.Scan(
			&run.ID,
			&run.Seed,
			&run.Mode,
			&timestamp,
			&run.PagesVisited,
			&run.PagesFailed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = parseTimestamp(timestamp)
		results = append(results, run)
	}

	return results, rows.Err()
}

// GetLatestRunReport retrieves the most recent run report for a seed URL.
// Returns nil with no error when the seed has never been crawled.
func (cdb *CrawlDB) GetLatestRunReport(ctx context.Context, seed string) (*model.RunReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE seed = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, seed).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run report: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}

	return &report, nil
}

// parseTimestamp parses the timestamp formats SQLite may return.
func parseTimestamp(s string) time.Time {
	formats := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05Z",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
