package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational metrics for the scraper.
type Metrics struct {
	// Run metrics
	RunsTotal  atomic.Int64
	RunsFailed atomic.Int64

	// Fetch metrics
	PagesFetched    atomic.Int64
	FetchesFailed   atomic.Int64
	BytesDownloaded atomic.Int64

	// Extraction metrics
	ProductsListed   atomic.Int64
	ProductsScraped  atomic.Int64
	ProductsFailed   atomic.Int64
	ReviewsExtracted atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"reviewscraper_runs_total", "Total scrape runs started", m.RunsTotal.Load()},
		{"reviewscraper_runs_failed_total", "Total scrape runs that failed", m.RunsFailed.Load()},
		{"reviewscraper_pages_fetched_total", "Total pages fetched", m.PagesFetched.Load()},
		{"reviewscraper_fetches_failed_total", "Total failed page fetches", m.FetchesFailed.Load()},
		{"reviewscraper_bytes_downloaded_total", "Total bytes downloaded", m.BytesDownloaded.Load()},
		{"reviewscraper_products_listed_total", "Total products found on listing pages", m.ProductsListed.Load()},
		{"reviewscraper_products_scraped_total", "Total products whose reviews were extracted", m.ProductsScraped.Load()},
		{"reviewscraper_products_failed_total", "Total products abandoned during extraction", m.ProductsFailed.Load()},
		{"reviewscraper_reviews_extracted_total", "Total review records extracted", m.ReviewsExtracted.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"runs_total":        m.RunsTotal.Load(),
		"runs_failed":       m.RunsFailed.Load(),
		"pages_fetched":     m.PagesFetched.Load(),
		"fetches_failed":    m.FetchesFailed.Load(),
		"bytes_downloaded":  m.BytesDownloaded.Load(),
		"products_listed":   m.ProductsListed.Load(),
		"products_scraped":  m.ProductsScraped.Load(),
		"products_failed":   m.ProductsFailed.Load(),
		"reviews_extracted": m.ReviewsExtracted.Load(),
	}
}
