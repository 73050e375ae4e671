package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/types"
)

// Fetcher retrieves a single page over HTTP or through a headless browser.
type Fetcher interface {
	// Fetch retrieves the content at the given URL. It does not retry:
	// a fetch failure is fatal to the extraction step that issued it.
	Fetch(ctx context.Context, url string) (*types.Page, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New creates the fetcher selected by the configuration.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "http":
		return NewHTTPFetcher(cfg, logger)
	case "browser":
		return NewBrowserFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported fetcher type: %s", cfg.Fetcher.Type)
	}
}
