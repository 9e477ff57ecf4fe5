package model

import "time"

// RunReport accumulates the results of one traversal run.
// Both traversal modes fill the shared fields; the phrase-gated mode
// additionally records which pages matched the target phrase.
//
// Design decision: We keep one report type for both modes rather than two
// because:
//  1. Report writers and the history database only need one schema
//  2. The fields are a superset, and empty slices are omitted from JSON
//  3. Callers can switch modes without changing their output handling
type RunReport struct {
	// Seed is the URL the traversal started from.
	Seed string `json:"seed"`

	// Mode names the traversal mode ("scrape" or "hunt").
	Mode string `json:"mode"`

	// TargetPhrase is the phrase that gated expansion (hunt mode only).
	TargetPhrase string `json:"target_phrase,omitempty"`

	// StartedAt is the wall-clock time the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total run time.
	Duration time.Duration `json:"duration"`

	// PagesVisited counts pages that were fetched successfully.
	PagesVisited int `json:"pages_visited"`

	// PagesFailed counts URLs whose fetch or body read failed.
	// Failed pages stop their own expansion but never abort the run.
	PagesFailed int `json:"pages_failed"`

	// PagesMatched lists URLs whose content contained the target phrase.
	// Empty in unconditional scrape mode.
	PagesMatched []string `json:"pages_matched,omitempty"`

	// Pages holds the visited pages in visitation order.
	Pages []*Page `json:"pages,omitempty"`

	// Emails lists unique email addresses found across all pages.
	Emails []string `json:"emails,omitempty"`

	// DisallowedPaths lists robots.txt Disallow values reported by the
	// robots probe. Informational only; traversal is not gated by them.
	DisallowedPaths []string `json:"disallowed_paths,omitempty"`

	// OpenDirectories lists probe paths that answered with a 2xx status.
	OpenDirectories []string `json:"open_directories,omitempty"`

	// Errors holds human-readable failure lines collected during the run.
	Errors []string `json:"errors,omitempty"`

	// StepsRun lists the workflow steps executed for this run, in order.
	StepsRun []string `json:"steps_run,omitempty"`
}

// NewRunReport creates a RunReport for the given seed URL and mode.
func NewRunReport(seed, mode string) *RunReport {
	return &RunReport{
		Seed:      seed,
		Mode:      mode,
		StartedAt: time.Now(),
	}
}

// AddPage records a visited page.
func (r *RunReport) AddPage(p *Page) {
	r.Pages = append(r.Pages, p)
	r.PagesVisited++
}

// AddError records a non-fatal failure line.
func (r *RunReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddEmails merges the given addresses into the report, deduplicated.
func (r *RunReport) AddEmails(emails []string) {
	seen := make(map[string]bool, len(r.Emails))
	for _, e := range r.Emails {
		seen[e] = true
	}
	for _, e := range emails {
		if !seen[e] {
			seen[e] = true
			r.Emails = append(r.Emails, e)
		}
	}
}

// Finish sets the run duration relative to StartedAt.
func (r *RunReport) Finish() {
	r.Duration = time.Since(r.StartedAt)
}
