package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod. The
// target site renders listings with JavaScript when it suspects a bot, so
// the browser fetcher is the fallback when plain HTTP pages come back empty.
type BrowserFetcher struct {
	browser *rod.Browser
	timeout time.Duration
	logger  *slog.Logger
}

// NewBrowserFetcher launches a headless Chromium and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &BrowserFetcher{
		browser: browser,
		timeout: cfg.Scraper.RequestTimeout,
		logger:  logger.With("component", "browser_fetcher"),
	}, nil
}

// Fetch navigates to a URL and returns the rendered page content.
func (bf *BrowserFetcher) Fetch(ctx context.Context, url string) (*types.Page, error) {
	start := time.Now()

	page, err := stealth.Page(bf.browser)
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: fmt.Errorf("stealth page: %w", err)}
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Timeout(bf.timeout).Navigate(url); err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}

	if err := page.Timeout(bf.timeout).WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", url, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}
	if len(html) == 0 {
		return nil, &types.FetchError{URL: url, Err: types.ErrEmptyResponse}
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	bf.logger.Debug("browser fetch complete",
		"url", url,
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return types.NewBrowserPage(url, []byte(html), finalURL, duration), nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
