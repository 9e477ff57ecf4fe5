package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nozomi-k/webharvest/internal/fetcher"
	"github.com/nozomi-k/webharvest/internal/model"
)

// PageFetcher retrieves a single page. It is satisfied by *fetcher.Fetcher
// and by test doubles that never touch the network.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, opts fetcher.RequestOptions) (*model.Page, error)
}

// ContentSink receives each successfully fetched page for side-effecting
// extraction (writing text artifacts, downloading media, scanning
// scripts). Sink failures are the sink's own problem: implementations log
// and swallow them, and the traversal never learns about them.
//
// Design decision: The sink is an injected capability rather than direct
// file I/O inside the spider so the traversal engine is testable without
// touching the filesystem or network.
type ContentSink interface {
	HandlePage(ctx context.Context, page *model.Page, result *ExtractResult)
}

// ErrorSink receives human-readable failure lines. Implementations never
// return errors to the caller.
type ErrorSink interface {
	Log(msg string)
}

// Spider is the traversal engine. It owns the visited set and work list
// for one run and orchestrates the fetch/extract/decide loop in one of two
// modes:
//
//   - Scrape: unconditional expansion, depth-first, no depth limit.
//     Termination relies on the visited set and the finiteness of the
//     reachable URL space (plus the maxPages safety cap).
//   - Hunt: breadth-first, gated by a target phrase and bounded by an
//     expansion-wave budget.
//
// Both modes guarantee at most one fetch per distinct absolute URL within
// a run, and neither lets a single page's failure abort the traversal.
//
// A Spider is single-use relative to its run: each call to Scrape or Hunt
// starts with fresh state. Traversal is strictly sequential, one URL fully
// processed before the next; that is a politeness trade-off, not an
// accident.
type Spider struct {
	// fetch retrieves pages.
	fetch PageFetcher

	// contentSink receives fetched pages for extraction side effects.
	// May be nil, in which case no side effects run.
	contentSink ContentSink

	// errorSink receives failure lines. May be nil.
	errorSink ErrorSink

	// followLinks gates link expansion in hunt mode.
	followLinks bool

	// maxDepth is the expansion-wave budget in hunt mode.
	maxDepth int

	// maxPages caps fetches per run in either mode.
	maxPages int

	// requestOpts carries the configured headers, cookie, and User-Agent.
	requestOpts fetcher.RequestOptions

	// logger is used for structured logging.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithContentSink sets the content sink invoked per fetched page.
func WithContentSink(sink ContentSink) SpiderOption {
	return func(s *Spider) {
		s.contentSink = sink
	}
}

// WithErrorSink sets the sink receiving failure lines.
func WithErrorSink(sink ErrorSink) SpiderOption {
	return func(s *Spider) {
		s.errorSink = sink
	}
}

// WithFollowLinks controls whether hunt mode expands matching pages.
func WithFollowLinks(follow bool) SpiderOption {
	return func(s *Spider) {
		s.followLinks = follow
	}
}

// WithMaxDepth sets the hunt-mode expansion-wave budget.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages caps the number of fetches per run.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithRequestOptions sets headers, cookie, and User-Agent for all requests.
func WithRequestOptions(opts fetcher.RequestOptions) SpiderOption {
	return func(s *Spider) {
		s.requestOpts = opts
	}
}

// WithSpiderLogger sets a custom logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider using the given fetcher.
func NewSpider(fetch PageFetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetch:       fetch,
		followLinks: true,
		maxDepth:    3,
		maxPages:    1000,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scrape performs unconditional depth-first expansion from the seed URL.
//
// Recursion is expressed as an explicit work stack: a child's
// whole subtree is processed before its next sibling, call-stack depth
// stays constant, and the loop remains cancellable between pages. Each
// fetched page goes to the content sink; every extracted link not yet
// visited is pushed. A page whose fetch or parse fails is a terminal
// failure for that node only.
//
// Results accumulate into the given report, which the caller owns.
func (s *Spider) Scrape(ctx context.Context, seed string, report *model.RunReport) {
	visited := NewVisitedSet()
	var stack workStack
	stack.push(seed)

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("scrape cancelled", "seed", seed, "reason", err)
			return
		}

		current, ok := stack.pop()
		if !ok {
			return
		}

		// The stack may hold duplicates pushed before a URL was visited
		// via another path; the pop site is where dedup happens.
		if !visited.MarkVisited(current) {
			continue
		}

		if report.PagesVisited+report.PagesFailed >= s.maxPages {
			s.logger.Warn("page cap reached, stopping expansion",
				"seed", seed,
				"maxPages", s.maxPages,
			)
			return
		}

		page, err := s.fetch.Fetch(ctx, current, s.requestOpts)
		if err != nil {
			s.recordFailure(report, err)
			continue
		}

		s.logger.Info("scraping", "url", current, "status", page.StatusCode)

		result, err := NewExtractor(current).Extract(strings.NewReader(page.Body))
		if err != nil {
			s.recordFailure(report, &ParseError{URL: current, Err: err})
			continue
		}

		page.Title = result.Title
		report.AddPage(page)
		report.AddEmails(result.Emails)

		if s.contentSink != nil {
			s.contentSink.HandlePage(ctx, page, result)
		}

		// Push in reverse so the first link on the page is expanded first,
		// matching the order a recursive walk would visit them in.
		for i := len(result.Links) - 1; i >= 0; i-- {
			if !visited.Contains(result.Links[i]) {
				stack.push(result.Links[i])
			}
		}
	}
}

// Hunt performs depth-bounded, phrase-gated breadth-first expansion.
//
// A dequeued page's links are enqueued only when its content contains the
// target phrase, link-following is enabled, and the depth budget is not
// exhausted. The depth counter advances once per page whose expansion
// succeeds - it is a global expansion-wave counter, not a per-URL graph
// distance. Pages that fail to fetch or answer non-2xx are skipped exactly
// like non-matching pages; already-queued entries still drain.
//
// Results accumulate into the given report, which the caller owns.
func (s *Spider) Hunt(ctx context.Context, seed, targetPhrase string, report *model.RunReport) {
	report.TargetPhrase = targetPhrase

	visited := NewVisitedSet()
	frontier := NewFrontier(seed)
	depth := 0

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("hunt cancelled", "seed", seed, "reason", err)
			return
		}

		current, ok := frontier.Dequeue()
		if !ok {
			return
		}

		// Lazy dedup: the frontier may contain entries enqueued before the
		// URL was visited via a sibling page.
		if !visited.MarkVisited(current) {
			continue
		}

		if report.PagesVisited+report.PagesFailed >= s.maxPages {
			s.logger.Warn("page cap reached, draining stopped",
				"seed", seed,
				"maxPages", s.maxPages,
			)
			return
		}

		s.logger.Info("visiting", "url", current)

		page, err := s.fetch.Fetch(ctx, current, s.requestOpts)
		if err != nil {
			// Indistinguishable from a non-match as far as expansion goes.
			s.recordFailure(report, err)
			continue
		}

		if !page.IsSuccess() {
			s.recordFailure(report, &fetcher.HTTPError{URL: current, StatusCode: page.StatusCode})
			continue
		}

		report.AddPage(page)

		if !Matches(page.Body, targetPhrase) {
			s.logger.Debug("target phrase not found", "url", current)
			continue
		}

		report.PagesMatched = append(report.PagesMatched, current)
		s.logger.Info("target phrase found", "url", current)

		if !s.followLinks || depth >= s.maxDepth {
			continue
		}

		for _, link := range NewExtractor(current).ExtractLinks(page.Body) {
			if !visited.Contains(link) {
				frontier.Enqueue(link)
			}
		}
		depth++
	}
}

// recordFailure logs a failure line to the logger, the error sink, and the
// run report. Failures are never propagated: the traversal continues.
func (s *Spider) recordFailure(report *model.RunReport, err error) {
	msg := fmt.Sprintf("crawl: %v", err)
	s.logger.Warn("page failed", "error", err)
	if s.errorSink != nil {
		s.errorSink.Log(msg)
	}
	report.PagesFailed++
	report.AddError(msg)
}
