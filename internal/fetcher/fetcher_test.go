package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestFetch tests single-GET page retrieval.
func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns page for success status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>hello</body></html>"))
		}))
		defer server.Close()

		f := New(5 * time.Second)
		page, err := f.Fetch(context.Background(), server.URL, RequestOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", page.StatusCode)
		}
		if page.ContentType != "text/html" {
			t.Errorf("expected parsed media type, got %q", page.ContentType)
		}
		if !strings.Contains(page.Body, "hello") {
			t.Errorf("expected body content, got %q", page.Body)
		}
		if page.Hash == "" {
			t.Error("expected body hash to be computed")
		}
	})

	t.Run("returns page for non-success status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not here", http.StatusNotFound)
		}))
		defer server.Close()

		f := New(5 * time.Second)
		page, err := f.Fetch(context.Background(), server.URL, RequestOptions{})
		if err != nil {
			t.Fatalf("expected no error for 404, got %v", err)
		}
		if page.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", page.StatusCode)
		}
		if page.IsSuccess() {
			t.Error("expected IsSuccess to be false for 404")
		}
	})

	t.Run("unreachable host returns NetworkError", func(t *testing.T) {
		t.Parallel()

		f := New(500 * time.Millisecond)
		_, err := f.Fetch(context.Background(), "http://127.0.0.1:1", RequestOptions{})
		if err == nil {
			t.Fatal("expected error for unreachable host")
		}

		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			t.Errorf("expected *NetworkError, got %T", err)
		}
	})

	t.Run("configured user agent is sent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		f := New(5*time.Second, WithUserAgent("custom-agent/1.0"))
		if _, err := f.Fetch(context.Background(), server.URL, RequestOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotUA != "custom-agent/1.0" {
			t.Errorf("expected configured User-Agent, got %q", gotUA)
		}
	})

	t.Run("random user agent attached when none configured", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		f := New(5 * time.Second)
		if _, err := f.Fetch(context.Background(), server.URL, RequestOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(gotUA, "Mozilla/5.0") {
			t.Errorf("expected a browser User-Agent, got %q", gotUA)
		}
	})

	t.Run("per-request options override configured values", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotCookie, gotHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotCookie = r.Header.Get("Cookie")
			gotHeader = r.Header.Get("X-Custom")
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		f := New(5*time.Second, WithUserAgent("global/1.0"))
		opts := RequestOptions{
			UserAgent: "override/2.0",
			Cookie:    "session=abc",
			Headers:   map[string]string{"X-Custom": "yes"},
		}
		if _, err := f.Fetch(context.Background(), server.URL, opts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotUA != "override/2.0" {
			t.Errorf("expected per-request User-Agent, got %q", gotUA)
		}
		if gotCookie != "session=abc" {
			t.Errorf("expected cookie header, got %q", gotCookie)
		}
		if gotHeader != "yes" {
			t.Errorf("expected custom header, got %q", gotHeader)
		}
	})

	t.Run("body larger than limit is truncated", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
		}))
		defer server.Close()

		f := New(5*time.Second, WithMaxBodySize(100))
		page, err := f.Fetch(context.Background(), server.URL, RequestOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Body) != 100 {
			t.Errorf("expected body truncated to 100 bytes, got %d", len(page.Body))
		}
	})

	t.Run("legacy charset is transcoded to UTF-8", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			// 0xE9 is e-acute in Latin-1.
			_, _ = w.Write([]byte{'c', 'a', 'f', 0xE9})
		}))
		defer server.Close()

		f := New(5 * time.Second)
		page, err := f.Fetch(context.Background(), server.URL, RequestOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Body != "café" {
			t.Errorf("expected transcoded body, got %q", page.Body)
		}
	})
}

// TestFetchBytes tests raw media retrieval.
func TestFetchBytes(t *testing.T) {
	t.Parallel()

	t.Run("returns raw bytes on success", func(t *testing.T) {
		t.Parallel()

		payload := []byte{0x89, 'P', 'N', 'G'}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(payload)
		}))
		defer server.Close()

		f := New(5 * time.Second)
		data, err := f.FetchBytes(context.Background(), server.URL, RequestOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != string(payload) {
			t.Errorf("expected raw payload, got %v", data)
		}
	})

	t.Run("non-success status is an HTTPError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer server.Close()

		f := New(5 * time.Second)
		_, err := f.FetchBytes(context.Background(), server.URL, RequestOptions{})

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("expected *HTTPError, got %T", err)
		}
		if httpErr.StatusCode != http.StatusForbidden {
			t.Errorf("expected status 403 in error, got %d", httpErr.StatusCode)
		}
	})
}

// TestRandomUserAgent tests the rotation pool.
func TestRandomUserAgent(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		ua := RandomUserAgent()
		if !strings.Contains(ua, "Mozilla/5.0") {
			t.Fatalf("expected a browser User-Agent, got %q", ua)
		}
	}
}
