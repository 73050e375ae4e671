package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if err := ValidateURL(cfg.Site.BaseURL); err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	for _, role := range RequiredRoles {
		sel, ok := cfg.Site.Selectors[role]
		if !ok {
			return fmt.Errorf("site.selectors is missing role %q", role)
		}
		if sel.Query == "" {
			return fmt.Errorf("site.selectors.%s.query must not be empty", role)
		}
		if sel.Type != "" && sel.Type != "css" && sel.Type != "xpath" {
			return fmt.Errorf("site.selectors.%s.type must be 'css' or 'xpath', got %q", role, sel.Type)
		}
	}

	if cfg.Scraper.MaxProducts < 1 {
		return fmt.Errorf("scraper.max_products must be >= 1, got %d", cfg.Scraper.MaxProducts)
	}
	if cfg.Scraper.Concurrency < 1 {
		return fmt.Errorf("scraper.concurrency must be >= 1, got %d", cfg.Scraper.Concurrency)
	}
	if cfg.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be > 0")
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}

	if cfg.Storage.CSVDir == "" || cfg.Storage.ImageDir == "" || cfg.Storage.ReportDir == "" {
		return fmt.Errorf("storage directories must all be set")
	}
	if cfg.Storage.Mongo.Enabled && cfg.Storage.Mongo.URI == "" {
		return fmt.Errorf("storage.mongo.uri must be set when the mongo archive is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is valid for scraping.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
