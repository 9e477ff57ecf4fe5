package config

import (
	"errors"
	"testing"
	"time"
)

// validConfig returns a config that passes validation.
func validConfig() *Config {
	cfg := NewConfig()
	cfg.Seeds = []string{"http://example.com"}
	return cfg
}

// TestNewConfig tests default construction.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if !cfg.FollowLinks {
		t.Error("expected link following enabled by default")
	}
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("expected default max depth %d, got %d", DefaultMaxDepth, cfg.MaxDepth)
	}
	if cfg.UserAgent != "" {
		t.Errorf("expected no configured User-Agent by default, got %q", cfg.UserAgent)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("expected default batch size %d, got %d", DefaultBatchSize, cfg.BatchSize)
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()

		if err := validConfig().Validate(); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})

	t.Run("missing seeds", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := cfg.Validate(); !errors.Is(err, ErrNoSeed) {
			t.Errorf("expected ErrNoSeed, got %v", err)
		}
	})

	t.Run("negative max depth", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.MaxDepth = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxDepth) {
			t.Errorf("expected ErrInvalidMaxDepth, got %v", err)
		}
	})

	t.Run("zero depth is allowed", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.MaxDepth = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected zero depth to validate, got %v", err)
		}
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Timeout = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("non-positive batch size", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.BatchSize = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("expected ErrInvalidBatchSize, got %v", err)
		}
	})

	t.Run("inverted run delay range", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.MinRunDelay = 5 * time.Second
		cfg.MaxRunDelay = 2 * time.Second
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRunDelay) {
			t.Errorf("expected ErrInvalidRunDelay, got %v", err)
		}
	})

	t.Run("conflicting report formats", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true
		if err := cfg.Validate(); !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

// TestGetSiteConfig tests per-site override merging.
func TestGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{
			UserAgent: "default-agent",
			Headers:   map[string]string{"X-Base": "1"},
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				Cookie: "session=abc",
				Depth:  7,
				Headers: map[string]string{
					"X-Extra": "2",
				},
			},
		},
	}

	t.Run("site overrides merge over defaults", func(t *testing.T) {
		t.Parallel()

		got := cf.GetSiteConfig("example.com")
		if got.Cookie != "session=abc" {
			t.Errorf("expected site cookie, got %q", got.Cookie)
		}
		if got.UserAgent != "default-agent" {
			t.Errorf("expected default User-Agent retained, got %q", got.UserAgent)
		}
		if got.Depth != 7 {
			t.Errorf("expected site depth, got %d", got.Depth)
		}
		if got.Headers["X-Base"] != "1" || got.Headers["X-Extra"] != "2" {
			t.Errorf("expected merged headers, got %v", got.Headers)
		}
	})

	t.Run("unknown domain gets defaults", func(t *testing.T) {
		t.Parallel()

		got := cf.GetSiteConfig("other.org")
		if got.UserAgent != "default-agent" {
			t.Errorf("expected defaults, got %+v", got)
		}
		if got.Cookie != "" {
			t.Errorf("expected no cookie for unknown domain, got %q", got.Cookie)
		}
	})

	t.Run("merging one site never alters another site's headers", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{"X-Base": "1"},
			},
			Sites: map[string]SiteConfig{
				"a.com": {
					Headers: map[string]string{"Authorization": "Bearer site-a-secret"},
				},
			},
		}

		a := cf.GetSiteConfig("a.com")
		if a.Headers["Authorization"] != "Bearer site-a-secret" {
			t.Fatalf("expected a.com's own header, got %v", a.Headers)
		}

		b := cf.GetSiteConfig("b.com")
		if _, leaked := b.Headers["Authorization"]; leaked {
			t.Errorf("b.com inherited a.com's Authorization header: %v", b.Headers)
		}
		if cf.Defaults.Headers["Authorization"] != "" {
			t.Errorf("defaults mutated by site merge: %v", cf.Defaults.Headers)
		}
		if b.Headers["X-Base"] != "1" {
			t.Errorf("expected default header preserved, got %v", b.Headers)
		}
	})
}
