// Package pipeline drives the end-to-end flow for one search term: listing
// extraction, per-product review extraction, aggregation, and artifact
// persistence.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/fetcher"
	"github.com/sammyzayn123/review-scraper/internal/observability"
	"github.com/sammyzayn123/review-scraper/internal/report"
	"github.com/sammyzayn123/review-scraper/internal/scraper"
	"github.com/sammyzayn123/review-scraper/internal/storage"
	"github.com/sammyzayn123/review-scraper/internal/types"
	"github.com/sammyzayn123/review-scraper/internal/wordcloud"
)

// Result is what a successful run hands back to the caller: the finalized
// table, the persisted artifact paths, and truncation metadata.
type Result struct {
	Table      *types.ReviewTable
	CSVPath    string
	ImagePath  string
	ReportPath string

	// TotalFound is how many products the listing page yielded before
	// the MaxProducts bound was applied.
	TotalFound int

	// Truncated reports whether products beyond MaxProducts were
	// dropped.
	Truncated bool

	// EmptyProducts counts selected products that contributed zero rows,
	// whether because they had no reviews or because their extraction
	// failed. The log carries the distinction.
	EmptyProducts int

	Duration time.Duration
}

// Orchestrator wires the extractors, the blob store, and the visualization
// collaborators together. All configuration is passed in at construction;
// there is no ambient state.
type Orchestrator struct {
	cfg      *config.Config
	listings *scraper.ListingExtractor
	reviews  *scraper.ReviewExtractor
	store    storage.BlobStore
	renderer wordcloud.Renderer
	reporter *report.Writer
	archive  *storage.MongoArchive
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates an Orchestrator for the given configuration and fetcher.
func New(cfg *config.Config, f fetcher.Fetcher, store storage.BlobStore, renderer wordcloud.Renderer, reporter *report.Writer, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		store:    store,
		renderer: renderer,
		reporter: reporter,
		metrics:  observability.NewMetrics(logger),
		logger:   logger.With("component", "pipeline"),
	}
	mf := &meteredFetcher{inner: f, o: o}
	o.listings = scraper.NewListingExtractor(mf, &cfg.Site, logger)
	o.reviews = scraper.NewReviewExtractor(mf, &cfg.Site, logger)
	return o
}

// meteredFetcher counts fetches against the orchestrator's current metrics
// instance, which SetMetrics may replace after construction.
type meteredFetcher struct {
	inner fetcher.Fetcher
	o     *Orchestrator
}

func (m *meteredFetcher) Fetch(ctx context.Context, url string) (*types.Page, error) {
	page, err := m.inner.Fetch(ctx, url)
	if err != nil {
		m.o.metrics.FetchesFailed.Add(1)
		return nil, err
	}
	m.o.metrics.PagesFetched.Add(1)
	m.o.metrics.BytesDownloaded.Add(int64(len(page.Body)))
	return page, nil
}

func (m *meteredFetcher) Close() error { return m.inner.Close() }
func (m *meteredFetcher) Type() string { return m.inner.Type() }

// SetArchive attaches the optional review-record archive.
func (o *Orchestrator) SetArchive(a *storage.MongoArchive) {
	o.archive = a
}

// SetMetrics replaces the orchestrator's metrics instance, so the caller
// can expose the same counters over HTTP.
func (o *Orchestrator) SetMetrics(m *observability.Metrics) {
	o.metrics = m
}

// Run scrapes reviews for one search term.
//
// The caller receives either a complete table plus artifact paths, or an
// error; a failed run persists nothing. Per-product failures are contained
// inside the review extractor and surface only as zero contributed rows.
func (o *Orchestrator) Run(ctx context.Context, searchTerm string) (*Result, error) {
	start := time.Now()
	o.metrics.RunsTotal.Add(1)

	products, err := o.listings.Products(ctx, searchTerm)
	if err != nil {
		o.metrics.RunsFailed.Add(1)
		return nil, &types.PipelineError{Stage: "listing", Err: err}
	}
	o.metrics.ProductsListed.Add(int64(len(products)))

	totalFound := len(products)
	maxProducts := o.cfg.Scraper.MaxProducts
	truncated := totalFound > maxProducts
	if truncated {
		products = products[:maxProducts]
	}

	table, empty := o.extract(ctx, products)

	if o.cfg.Storage.CleanBeforeRun {
		for _, kind := range []storage.Kind{storage.KindCSV, storage.KindImage, storage.KindReport} {
			if err := o.store.Clean(kind); err != nil {
				o.logger.Warn("artifact cleanup failed", "kind", kind, "error", err)
			}
		}
	}

	name := runName(searchTerm)

	csvBytes, err := storage.EncodeCSV(table)
	if err != nil {
		o.metrics.RunsFailed.Add(1)
		return nil, &types.PipelineError{Stage: "encode", Err: err}
	}
	csvPath, err := o.store.Save(storage.KindCSV, name+".csv", csvBytes)
	if err != nil {
		o.metrics.RunsFailed.Add(1)
		return nil, &types.PipelineError{Stage: "persist", Err: err}
	}

	// Word-cloud input is the concatenation of every comment.
	image, err := o.renderer.Render(strings.Join(table.Column("Comment"), " "))
	if err != nil {
		o.metrics.RunsFailed.Add(1)
		return nil, &types.PipelineError{Stage: "render", Err: err}
	}
	imagePath, err := o.store.Save(storage.KindImage, name+".svg", image)
	if err != nil {
		o.metrics.RunsFailed.Add(1)
		return nil, &types.PipelineError{Stage: "persist", Err: err}
	}

	reportBytes, err := o.reporter.Render(searchTerm, table, csvPath, imagePath)
	if err != nil {
		o.metrics.RunsFailed.Add(1)
		return nil, &types.PipelineError{Stage: "report", Err: err}
	}
	reportPath, err := o.store.Save(storage.KindReport, name+".html", reportBytes)
	if err != nil {
		o.metrics.RunsFailed.Add(1)
		return nil, &types.PipelineError{Stage: "persist", Err: err}
	}

	if o.archive != nil {
		if err := o.archive.Archive(ctx, searchTerm, table); err != nil {
			// The archive is history, not the deliverable; a failed
			// insert does not fail the run.
			o.logger.Warn("archive write failed", "term", searchTerm, "error", err)
		}
	}

	duration := time.Since(start)
	o.logger.Info("run complete",
		"term", searchTerm,
		"products_found", totalFound,
		"products_scraped", len(products),
		"rows", table.Len(),
		"truncated", truncated,
		"duration", duration,
	)

	return &Result{
		Table:         table,
		CSVPath:       csvPath,
		ImagePath:     imagePath,
		ReportPath:    reportPath,
		TotalFound:    totalFound,
		Truncated:     truncated,
		EmptyProducts: empty,
		Duration:      duration,
	}, nil
}

// extract runs review extraction for the selected products over a bounded
// worker pool and merges the results in listing order, so row order (and
// therefore CSV output) is deterministic regardless of fetch timing.
func (o *Orchestrator) extract(ctx context.Context, products []types.ProductRef) (*types.ReviewTable, int) {
	results := make([][]types.ReviewRecord, len(products))

	workers := o.cfg.Scraper.Concurrency
	if workers > o.cfg.Scraper.MaxProducts {
		workers = o.cfg.Scraper.MaxProducts
	}
	if workers > len(products) {
		workers = len(products)
	}

	if workers > 0 {
		jobs := make(chan int)
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = o.reviews.Reviews(ctx, products[i].DetailURL, products[i].Name)
				}
			}()
		}
		for i := range products {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	table := types.NewReviewTable()
	empty := 0
	for i, recs := range results {
		if len(recs) == 0 {
			empty++
			o.metrics.ProductsFailed.Add(1)
			o.logger.Debug("product contributed no rows",
				"product", products[i].Name, "url", products[i].DetailURL)
			continue
		}
		o.metrics.ProductsScraped.Add(1)
		o.metrics.ReviewsExtracted.Add(int64(len(recs)))
		for _, rec := range recs {
			table.Append(rec)
		}
	}

	return table, empty
}

// runName derives the artifact base name from the search term: whitespace
// runs collapse to "_", mirroring the search URL's space mapping.
func runName(term string) string {
	fields := strings.Fields(term)
	if len(fields) == 0 {
		return "search"
	}
	return strings.Join(fields, "_")
}
