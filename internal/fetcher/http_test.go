package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(config.DefaultConfig(), testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestHTTPFetcherSuccess(t *testing.T) {
	const body = "<html><body><h1>hello</h1></body></html>"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Error("expected a User-Agent header")
		}
		w.Write([]byte(body))
	}))
	defer ts.Close()

	f := newTestFetcher(t)
	page, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if page.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", page.StatusCode)
	}
	if string(page.Body) != body {
		t.Errorf("body mismatch: %q", page.Body)
	}

	doc, err := page.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if got := doc.Find("h1").Text(); got != "hello" {
		t.Errorf("parsed document wrong: %q", got)
	}
}

func TestHTTPFetcherNon2xx(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"rate limited", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			f := newTestFetcher(t)
			_, err := f.Fetch(context.Background(), ts.URL)
			if err == nil {
				t.Fatal("expected fetch error")
			}

			var fe *types.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *types.FetchError, got %T", err)
			}
			if fe.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", fe.StatusCode, tt.status)
			}
		})
	}
}

func TestHTTPFetcherNetworkFailure(t *testing.T) {
	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1")
	if err == nil {
		t.Fatal("expected error for unreachable host")
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *types.FetchError, got %T", err)
	}
}

func TestHTTPFetcherGzip(t *testing.T) {
	const body = "<html><body>compressed content</body></html>"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			t.Error("expected gzip in Accept-Encoding")
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte(body))
		gz.Close()
	}))
	defer ts.Close()

	f := newTestFetcher(t)
	page, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(page.Body) != body {
		t.Errorf("decompressed body mismatch: %q", page.Body)
	}
}

func TestHTTPFetcherEmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), ts.URL)
	if !errors.Is(err, types.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestHTTPFetcherContextCancel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	f := newTestFetcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, ts.URL); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestUserAgentRotation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fetcher.UserAgents = []string{"ua-one", "ua-two"}
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	first := f.nextUserAgent()
	second := f.nextUserAgent()
	if first == second {
		t.Errorf("expected rotation, got %q twice", first)
	}
}

func TestNewSelectsFetcherType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fetcher.Type = "http"
	f, err := New(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if f.Type() != "http" {
		t.Errorf("type = %q, want http", f.Type())
	}

	cfg.Fetcher.Type = "smoke-signal"
	if _, err := New(cfg, testLogger); err == nil {
		t.Error("expected error for unknown fetcher type")
	}
}
