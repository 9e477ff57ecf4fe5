package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nozomi-k/webharvest/internal/crawler"
	"github.com/nozomi-k/webharvest/internal/fetcher"
	"github.com/nozomi-k/webharvest/internal/model"
)

// fakeMedia serves canned media bytes by URL.
type fakeMedia struct {
	files map[string][]byte
}

func (f *fakeMedia) FetchBytes(_ context.Context, url string, _ fetcher.RequestOptions) ([]byte, error) {
	if data, ok := f.files[url]; ok {
		return data, nil
	}
	return nil, errors.New("not found")
}

// testPage returns a page and extract result for one fake URL.
func testPage() (*model.Page, *crawler.ExtractResult) {
	page := &model.Page{
		URL:        "http://example.com/page",
		StatusCode: 200,
		Body:       "<html>irrelevant</html>",
	}
	result := &crawler.ExtractResult{
		Headings:   []string{"Welcome"},
		Paragraphs: []string{"Some text."},
		MetaTags:   map[string]string{"description": "a page"},
		Forms: []crawler.FormInfo{{
			Action: "http://example.com/login",
			Method: "POST",
			Fields: []crawler.FormField{{Name: "user", Type: "text"}},
		}},
		Emails: []string{"a@example.com"},
	}
	return page, result
}

// TestHarvesterHandlePage tests the per-domain artifact writing.
func TestHarvesterHandlePage(t *testing.T) {
	t.Parallel()

	t.Run("writes content artifact in line format", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		h := NewHarvester(dir)
		page, result := testPage()

		h.HandlePage(context.Background(), page, result)

		data, err := os.ReadFile(filepath.Join(dir, "example.com", "content.txt"))
		if err != nil {
			t.Fatalf("failed to read content file: %v", err)
		}

		content := string(data)
		for _, want := range []string{
			"== http://example.com/page",
			"Header: Welcome",
			"Paragraph: Some text.",
			"Meta Tag - Name: description, Content: a page",
			"Form - Action: http://example.com/login, Method: POST",
			"Input - Name: user, Type: text",
		} {
			if !strings.Contains(content, want) {
				t.Errorf("expected content to contain %q, got:\n%s", want, content)
			}
		}
	})

	t.Run("writes emails artifact", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		h := NewHarvester(dir)
		page, result := testPage()

		h.HandlePage(context.Background(), page, result)

		data, err := os.ReadFile(filepath.Join(dir, "example.com", "emails.txt"))
		if err != nil {
			t.Fatalf("failed to read email file: %v", err)
		}
		if !strings.Contains(string(data), "a@example.com") {
			t.Errorf("expected email in file, got %q", string(data))
		}
	})

	t.Run("appends across pages of the same domain", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		h := NewHarvester(dir)
		page, result := testPage()

		h.HandlePage(context.Background(), page, result)
		h.HandlePage(context.Background(), page, result)

		data, err := os.ReadFile(filepath.Join(dir, "example.com", "content.txt"))
		if err != nil {
			t.Fatalf("failed to read content file: %v", err)
		}
		if got := strings.Count(string(data), "== http://example.com/page"); got != 2 {
			t.Errorf("expected 2 page sections, got %d", got)
		}
	})

	t.Run("downloads referenced media", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		media := &fakeMedia{files: map[string][]byte{
			"http://example.com/logo.png": {0x89, 'P', 'N', 'G'},
		}}
		h := NewHarvester(dir, WithMediaFetcher(media))

		page, result := testPage()
		result.Images = []string{"http://example.com/logo.png"}

		h.HandlePage(context.Background(), page, result)

		data, err := os.ReadFile(filepath.Join(dir, "example.com", "logo.png"))
		if err != nil {
			t.Fatalf("failed to read downloaded media: %v", err)
		}
		if len(data) != 4 {
			t.Errorf("expected 4 media bytes, got %d", len(data))
		}
	})

	t.Run("records JS keyword findings", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		media := &fakeMedia{files: map[string][]byte{
			"http://example.com/app.js": []byte(`const token = "xyz";`),
		}}
		h := NewHarvester(dir,
			WithMediaFetcher(media),
			WithJSKeywords([]string{"apiKey", "token"}),
		)

		page, result := testPage()
		result.InlineScripts = []string{`var apiKey = "abc";`}
		result.ScriptSources = []string{"http://example.com/app.js"}

		h.HandlePage(context.Background(), page, result)

		data, err := os.ReadFile(filepath.Join(dir, "example.com", "js_findings.txt"))
		if err != nil {
			t.Fatalf("failed to read findings file: %v", err)
		}

		findings := string(data)
		if !strings.Contains(findings, `"apiKey"`) {
			t.Errorf("expected inline apiKey finding, got %q", findings)
		}
		if !strings.Contains(findings, `"token"`) {
			t.Errorf("expected external token finding, got %q", findings)
		}

		if _, err := os.Stat(filepath.Join(dir, "example.com", "js", "app.js")); err != nil {
			t.Errorf("expected external script saved: %v", err)
		}
	})

	t.Run("unparseable URL lands in fallback domain", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		h := NewHarvester(dir)
		page, result := testPage()
		page.URL = "not a url"

		h.HandlePage(context.Background(), page, result)

		if _, err := os.Stat(filepath.Join(dir, "unknown_domain", "content.txt")); err != nil {
			t.Errorf("expected fallback domain directory: %v", err)
		}
	})
}

// TestMediaFileName tests local name derivation.
func TestMediaFileName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want string
	}{
		{"http://example.com/a/logo.png", "logo.png"},
		{"http://example.com/clip.mp4?size=hd", "clip.mp4"},
		{"http://example.com/pic.jpg#frag", "pic.jpg"},
		{"http://example.com/dir/", "media.bin"},
	}

	for _, tc := range cases {
		if got := mediaFileName(tc.url); got != tc.want {
			t.Errorf("mediaFileName(%q): expected %q, got %q", tc.url, tc.want, got)
		}
	}
}

// TestErrorLog tests the append-only error log.
func TestErrorLog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "error.log")
	e := NewErrorLog(path, nil)

	e.Log("fetch failed: http://example.com/a")
	e.Log("fetch failed: http://example.com/b")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read error log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "fetch failed") {
			t.Errorf("expected failure line, got %q", line)
		}
	}
}
