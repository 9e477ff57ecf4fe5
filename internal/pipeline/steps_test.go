package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nozomi-k/webharvest/internal/crawler"
	"github.com/nozomi-k/webharvest/internal/database"
	"github.com/nozomi-k/webharvest/internal/fetcher"
	"github.com/nozomi-k/webharvest/internal/model"
	"github.com/nozomi-k/webharvest/internal/probe"
)

// fakeFetcher serves canned pages by URL.
type fakeFetcher struct {
	pages map[string]*model.Page
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ fetcher.RequestOptions) (*model.Page, error) {
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return &model.Page{URL: url, StatusCode: 404, ContentType: "text/html"}, nil
}

// TestProbeSteps tests the robots and open-directory steps.
func TestProbeSteps(t *testing.T) {
	t.Parallel()

	fake := &fakeFetcher{pages: map[string]*model.Page{
		"http://example.com/robots.txt": {
			URL:        "http://example.com/robots.txt",
			StatusCode: 200,
			Body:       "User-agent: *\nDisallow: /admin\n",
		},
		"http://example.com/backup": {
			URL:        "http://example.com/backup",
			StatusCode: 200,
		},
	}}
	prober := probe.NewProber(fake, nil)

	t.Run("robots step fills disallowed paths", func(t *testing.T) {
		t.Parallel()

		step := NewRobotsStep(prober)
		if step.Name() != "robots_report" {
			t.Errorf("unexpected step name %q", step.Name())
		}

		report := model.NewRunReport("http://example.com", "scrape")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.DisallowedPaths) != 1 || report.DisallowedPaths[0] != "/admin" {
			t.Errorf("expected /admin reported, got %v", report.DisallowedPaths)
		}
	})

	t.Run("open directory step fills findings", func(t *testing.T) {
		t.Parallel()

		step := NewOpenDirStep(prober)
		report := model.NewRunReport("http://example.com", "scrape")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.OpenDirectories) != 1 || report.OpenDirectories[0] != "http://example.com/backup" {
			t.Errorf("expected backup directory reported, got %v", report.OpenDirectories)
		}
	})
}

// TestTraversalSteps tests the scrape and hunt pipeline steps.
func TestTraversalSteps(t *testing.T) {
	t.Parallel()

	fake := &fakeFetcher{pages: map[string]*model.Page{
		"http://example.com": {
			URL:         "http://example.com",
			StatusCode:  200,
			ContentType: "text/html",
			Body:        `<html><body><p>needle</p><a href="/a">a</a></body></html>`,
		},
		"http://example.com/a": {
			URL:         "http://example.com/a",
			StatusCode:  200,
			ContentType: "text/html",
			Body:        "<html><body><p>leaf needle</p></body></html>",
		},
	}}

	t.Run("scrape step walks the graph", func(t *testing.T) {
		t.Parallel()

		step := NewScrapeStep(crawler.NewSpider(fake))
		report := model.NewRunReport("http://example.com", "scrape")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.PagesVisited != 2 {
			t.Errorf("expected 2 pages visited, got %d", report.PagesVisited)
		}
	})

	t.Run("hunt step records matches", func(t *testing.T) {
		t.Parallel()

		step := NewHuntStep(crawler.NewSpider(fake), "needle")
		report := model.NewRunReport("http://example.com", "hunt")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.TargetPhrase != "needle" {
			t.Errorf("expected phrase recorded, got %q", report.TargetPhrase)
		}
		if len(report.PagesMatched) != 2 {
			t.Errorf("expected 2 matches, got %v", report.PagesMatched)
		}
	})
}

// TestPersistStep tests database persistence.
func TestPersistStep(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	report := model.NewRunReport("http://example.com", "scrape")
	report.AddPage(&model.Page{
		URL:         "http://example.com/a",
		StatusCode:  200,
		ContentType: "text/html",
		Title:       "A",
		Hash:        "h1",
	})
	report.AddEmails([]string{"a@example.com"})
	report.Finish()

	step := NewPersistStep(db, nil)
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runs, err := db.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run saved, got %d", len(runs))
	}
	if runs[0].PagesVisited != 1 {
		t.Errorf("expected 1 page visited in summary, got %d", runs[0].PagesVisited)
	}
}

// TestDelayStep tests the randomized politeness delay.
func TestDelayStep(t *testing.T) {
	t.Parallel()

	t.Run("sleeps within the configured bounds", func(t *testing.T) {
		t.Parallel()

		step := NewDelayStep(time.Millisecond, 5*time.Millisecond, nil)

		start := time.Now()
		if err := step.Do(context.Background(), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed < time.Millisecond {
			t.Errorf("expected at least the minimum delay, slept %v", elapsed)
		}
	})

	t.Run("wakes early on cancellation", func(t *testing.T) {
		t.Parallel()

		step := NewDelayStep(time.Minute, time.Minute, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := step.Do(ctx, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("invalid bounds fall back to defaults", func(t *testing.T) {
		t.Parallel()

		step := NewDelayStep(-1, -5, nil)
		if step.minDelay <= 0 || step.maxDelay < step.minDelay {
			t.Errorf("expected sane defaults, got min=%v max=%v", step.minDelay, step.maxDelay)
		}
	})
}
