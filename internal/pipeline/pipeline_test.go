package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/fetcher"
	"github.com/sammyzayn123/review-scraper/internal/observability"
	"github.com/sammyzayn123/review-scraper/internal/report"
	"github.com/sammyzayn123/review-scraper/internal/storage"
	"github.com/sammyzayn123/review-scraper/internal/types"
	"github.com/sammyzayn123/review-scraper/internal/wordcloud"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// testSite serves a listing page with n product cards and one detail page
// per product. Products listed in failing get a 500 instead of a page.
func testSite(t *testing.T, n int, failing map[int]bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString("<html><body>")
		for i := 1; i <= n; i++ {
			fmt.Fprintf(&b, `<div class="_1AtVbE col-12-12"><a href="/product-%d/p/itm%d"><img alt="Product %d" src="p%d.jpg"></a></div>`, i, i, i, i)
		}
		b.WriteString("</body></html>")
		w.Write([]byte(b.String()))
	})
	for i := 1; i <= n; i++ {
		i := i
		mux.HandleFunc(fmt.Sprintf("/product-%d/p/itm%d", i, i), func(w http.ResponseWriter, r *http.Request) {
			if failing[i] {
				http.Error(w, "upstream error", http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, `<html><body>
<div class="_30jeq3 _16Jk6d">₹%d,999</div>
<div class="_16PBlm">
  <p class="_2sc7ZR _2V5EHH">Reviewer %d</p>
  <div class="_3LWZlK">5</div>
  <p class="_2-N8zT">Heading %d</p>
  <div class="t-ZTKy">Comment for product %d.</div>
</div>
<div class="_16PBlm">
  <div class="t-ZTKy">Second thought on product %d.</div>
</div>
</body></html>`, i, i, i, i, i)
		})
	}

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func testOrchestrator(t *testing.T, baseURL string) (*Orchestrator, *config.Config) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Site.BaseURL = baseURL
	root := t.TempDir()
	cfg.Storage.CSVDir = filepath.Join(root, "csvs")
	cfg.Storage.ImageDir = filepath.Join(root, "images")
	cfg.Storage.ReportDir = filepath.Join(root, "reports")

	f, err := fetcher.New(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })

	store, err := storage.NewFileStore(&cfg.Storage, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	reporter, err := report.NewWriter(testLogger)
	if err != nil {
		t.Fatal(err)
	}

	return New(cfg, f, store, wordcloud.NewSVGRenderer(testLogger), reporter, testLogger), cfg
}

func TestRunTruncatesToMaxProducts(t *testing.T) {
	ts := testSite(t, 5, nil)
	o, cfg := testOrchestrator(t, ts.URL)

	res, err := o.Run(context.Background(), "wireless mouse")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.TotalFound != 5 {
		t.Errorf("TotalFound = %d, want 5", res.TotalFound)
	}
	if !res.Truncated {
		t.Error("expected Truncated")
	}
	// Each product contributes two rows; only MaxProducts are scraped.
	if want := cfg.Scraper.MaxProducts * 2; res.Table.Len() != want {
		t.Errorf("rows = %d, want %d", res.Table.Len(), want)
	}
	if res.EmptyProducts != 0 {
		t.Errorf("EmptyProducts = %d, want 0", res.EmptyProducts)
	}

	for _, path := range []string{res.CSVPath, res.ImagePath, res.ReportPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("artifact missing: %v", err)
		}
	}
	if filepath.Base(res.CSVPath) != "wireless_mouse.csv" {
		t.Errorf("csv name = %q", filepath.Base(res.CSVPath))
	}

	// Row order follows listing order, not fetch completion order.
	products := res.Table.Column("Product")
	if products[0] != "Product 1" || products[len(products)-1] != "Product 4" {
		t.Errorf("merge order wrong: %v", products)
	}
}

func TestRunNoTruncationUnderLimit(t *testing.T) {
	ts := testSite(t, 2, nil)
	o, _ := testOrchestrator(t, ts.URL)

	res, err := o.Run(context.Background(), "mouse")
	if err != nil {
		t.Fatal(err)
	}
	if res.Truncated || res.TotalFound != 2 {
		t.Errorf("Truncated=%v TotalFound=%d, want false/2", res.Truncated, res.TotalFound)
	}
}

func TestRunIsolatesFailingProduct(t *testing.T) {
	ts := testSite(t, 3, map[int]bool{2: true})
	o, _ := testOrchestrator(t, ts.URL)
	metrics := observability.NewMetrics(testLogger)
	o.SetMetrics(metrics)

	res, err := o.Run(context.Background(), "keyboard")
	if err != nil {
		t.Fatalf("one failing product must not fail the run: %v", err)
	}

	if res.EmptyProducts != 1 {
		t.Errorf("EmptyProducts = %d, want 1", res.EmptyProducts)
	}
	if res.Table.Len() != 4 {
		t.Errorf("rows = %d, want 4 (two surviving products)", res.Table.Len())
	}
	for _, p := range res.Table.Column("Product") {
		if p == "Product 2" {
			t.Error("failed product must contribute no rows")
		}
	}

	snap := metrics.Snapshot()
	if snap["fetches_failed"] != 1 {
		t.Errorf("fetches_failed = %d, want 1", snap["fetches_failed"])
	}
	// The listing page plus the two surviving detail pages.
	if snap["pages_fetched"] != 3 {
		t.Errorf("pages_fetched = %d, want 3", snap["pages_fetched"])
	}
	if snap["products_failed"] != 1 || snap["products_scraped"] != 2 {
		t.Errorf("product counters wrong: %v", snap)
	}
}

func TestRunListingFailureFatal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer ts.Close()
	o, cfg := testOrchestrator(t, ts.URL)

	_, err := o.Run(context.Background(), "mouse")
	if err == nil {
		t.Fatal("expected run failure when the listing page cannot be fetched")
	}

	var pe *types.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *types.PipelineError, got %T", err)
	}
	if pe.Stage != "listing" {
		t.Errorf("stage = %q, want listing", pe.Stage)
	}

	// A failed run persists nothing.
	entries, readErr := os.ReadDir(cfg.Storage.CSVDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("csv dir should be empty after a failed run, found %d entries", len(entries))
	}
}

func TestRunEmptyListingSucceeds(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>no results</p></body></html>"))
	}))
	defer ts.Close()
	o, _ := testOrchestrator(t, ts.URL)

	res, err := o.Run(context.Background(), "nonexistent gadget")
	if err != nil {
		t.Fatalf("empty listing is a valid result: %v", err)
	}
	if res.Table.Len() != 0 || res.TotalFound != 0 {
		t.Errorf("expected empty table, got %d rows / %d found", res.Table.Len(), res.TotalFound)
	}
	if _, err := os.Stat(res.CSVPath); err != nil {
		t.Errorf("header-only csv should still be written: %v", err)
	}
}

func TestRunWhitespaceOnlyTerm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "" {
			t.Errorf("query = %q, want empty", got)
		}
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer ts.Close()
	o, _ := testOrchestrator(t, ts.URL)

	res, err := o.Run(context.Background(), "   ")
	if err != nil {
		t.Fatalf("whitespace-only term must not crash the run: %v", err)
	}
	if res.Table.Len() != 0 {
		t.Errorf("rows = %d, want 0", res.Table.Len())
	}
	if filepath.Base(res.CSVPath) != "search.csv" {
		t.Errorf("csv name = %q, want search.csv", filepath.Base(res.CSVPath))
	}
}

func TestRunDeterministicCSV(t *testing.T) {
	ts := testSite(t, 4, nil)
	o, _ := testOrchestrator(t, ts.URL)

	first, err := o.Run(context.Background(), "monitor")
	if err != nil {
		t.Fatal(err)
	}
	a, err := os.ReadFile(first.CSVPath)
	if err != nil {
		t.Fatal(err)
	}

	second, err := o.Run(context.Background(), "monitor")
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second.CSVPath)
	if err != nil {
		t.Fatal(err)
	}

	if string(a) != string(b) {
		t.Error("two runs over identical pages must produce byte-identical CSV")
	}
}

func TestRunCleanBeforeRun(t *testing.T) {
	ts := testSite(t, 1, nil)
	o, cfg := testOrchestrator(t, ts.URL)
	cfg.Storage.CleanBeforeRun = true

	if _, err := o.Run(context.Background(), "old search"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Run(context.Background(), "new search"); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(cfg.Storage.CSVDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "new_search.csv" {
		t.Errorf("expected only the latest csv, got %v", entries)
	}
}

func TestRunName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"wireless mouse", "wireless_mouse"},
		{"  gaming   laptop  ", "gaming_laptop"},
		{"tv", "tv"},
		{"   ", "search"},
		{"", "search"},
	}
	for _, tt := range tests {
		if got := runName(tt.in); got != tt.want {
			t.Errorf("runName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
