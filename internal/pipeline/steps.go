package pipeline

import (
	"context"
	"log/slog"
	"math/rand"
	"net/url"
	"time"

	"github.com/nozomi-k/webharvest/internal/config"
	"github.com/nozomi-k/webharvest/internal/crawler"
	"github.com/nozomi-k/webharvest/internal/database"
	"github.com/nozomi-k/webharvest/internal/model"
	"github.com/nozomi-k/webharvest/internal/probe"
)

// RobotsStep reports the Disallow lines of the seed's robots.txt.
// The result is informational; nothing downstream is gated by it.
type RobotsStep struct {
	// prober runs the robots.txt fetch.
	prober *probe.Prober
}

// NewRobotsStep creates a robots.txt reporting step.
func NewRobotsStep(prober *probe.Prober) *RobotsStep {
	return &RobotsStep{prober: prober}
}

// Name returns the step name.
func (s *RobotsStep) Name() string {
	return "robots_report"
}

// Do executes the robots.txt reporting step.
func (s *RobotsStep) Do(ctx context.Context, report *model.RunReport) error {
	report.DisallowedPaths = s.prober.RobotsDisallows(ctx, report.Seed)
	return nil
}

// OpenDirStep probes the seed for commonly exposed directories.
type OpenDirStep struct {
	// prober runs the directory probes.
	prober *probe.Prober
}

// NewOpenDirStep creates an open-directory probing step.
func NewOpenDirStep(prober *probe.Prober) *OpenDirStep {
	return &OpenDirStep{prober: prober}
}

// Name returns the step name.
func (s *OpenDirStep) Name() string {
	return "open_directories"
}

// Do executes the open-directory probing step.
func (s *OpenDirStep) Do(ctx context.Context, report *model.RunReport) error {
	report.OpenDirectories = s.prober.OpenDirectories(ctx, report.Seed)
	return nil
}

// ScrapeStep runs the unconditional depth-first traversal.
//
// Design decision: The traversal is a step rather than inlined in the CLI
// so the probe steps, the crawl, and persistence share one execution and
// cancellation model.
type ScrapeStep struct {
	// spider is the configured traversal engine.
	spider *crawler.Spider
}

// NewScrapeStep creates a step running the spider in scrape mode.
func NewScrapeStep(spider *crawler.Spider) *ScrapeStep {
	return &ScrapeStep{spider: spider}
}

// Name returns the step name.
func (s *ScrapeStep) Name() string {
	return "scrape"
}

// Do executes the scrape traversal.
func (s *ScrapeStep) Do(ctx context.Context, report *model.RunReport) error {
	s.spider.Scrape(ctx, report.Seed, report)
	return nil
}

// HuntStep runs the depth-bounded, phrase-gated traversal.
type HuntStep struct {
	// spider is the configured traversal engine.
	spider *crawler.Spider

	// targetPhrase gates link expansion.
	targetPhrase string
}

// NewHuntStep creates a step running the spider in hunt mode.
func NewHuntStep(spider *crawler.Spider, targetPhrase string) *HuntStep {
	return &HuntStep{spider: spider, targetPhrase: targetPhrase}
}

// Name returns the step name.
func (s *HuntStep) Name() string {
	return "hunt"
}

// Do executes the hunt traversal.
func (s *HuntStep) Do(ctx context.Context, report *model.RunReport) error {
	s.spider.Hunt(ctx, report.Seed, s.targetPhrase, report)
	return nil
}

// PersistStep saves the run's pages, emails, and the report itself to the
// crawl history database.
type PersistStep struct {
	// db is the open crawl history database.
	db *database.CrawlDB

	// logger for structured logging.
	logger *slog.Logger
}

// NewPersistStep creates a persistence step writing to the given database.
func NewPersistStep(db *database.CrawlDB, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persistence step.
// Individual page insert failures are logged and recorded but do not stop
// the remaining inserts; only the report save itself is a step failure.
func (s *PersistStep) Do(ctx context.Context, report *model.RunReport) error {
	seedDomain := domainOf(report.Seed)

	for _, page := range report.Pages {
		record := &database.PageRecord{
			URL:         page.URL,
			Domain:      domainOf(page.URL),
			StatusCode:  page.StatusCode,
			ContentType: page.ContentType,
			Title:       page.Title,
			BodyHash:    page.Hash,
		}
		if err := s.db.InsertPage(ctx, record); err != nil {
			s.logger.Warn("failed to persist page", "url", page.URL, "error", err)
			report.AddError("persist: " + err.Error())
		}
	}

	if len(report.Emails) > 0 {
		if err := s.db.InsertEmails(ctx, seedDomain, report.Emails); err != nil {
			s.logger.Warn("failed to persist emails", "domain", seedDomain, "error", err)
			report.AddError("persist: " + err.Error())
		}
	}

	return s.db.SaveRunReport(ctx, report)
}

// domainOf extracts the host part of a URL, falling back to the raw
// string when it does not parse.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// DelayStep sleeps for a random duration between a minimum and maximum.
// Placed between per-seed runs it spreads load and makes the request
// cadence less regular.
type DelayStep struct {
	// minDelay and maxDelay bound the random sleep.
	minDelay time.Duration
	maxDelay time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// NewDelayStep creates a randomized delay step.
// Zero or inverted bounds fall back to the configured defaults.
func NewDelayStep(minDelay, maxDelay time.Duration, logger *slog.Logger) *DelayStep {
	if minDelay <= 0 || maxDelay < minDelay {
		minDelay = config.DefaultMinRunDelay
		maxDelay = config.DefaultMaxRunDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DelayStep{minDelay: minDelay, maxDelay: maxDelay, logger: logger}
}

// Name returns the step name.
func (s *DelayStep) Name() string {
	return "delay"
}

// Do sleeps for the randomized duration, waking early on cancellation.
func (s *DelayStep) Do(ctx context.Context, _ *model.RunReport) error {
	delay := s.minDelay
	if span := s.maxDelay - s.minDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}

	s.logger.Debug("sleeping between runs", "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
