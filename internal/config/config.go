package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Semantic roles resolved through the site selector configuration. Markup
// drift on the target site is handled by editing the selector for a role,
// not by touching extraction code.
const (
	RoleProductCard     = "product_card"
	RoleProductName     = "product_name"
	RoleProductLink     = "product_link"
	RolePrice           = "price"
	RoleReviewContainer = "review_container"
	RoleReviewerName    = "reviewer_name"
	RoleRating          = "rating"
	RoleCommentHeading  = "comment_heading"
	RoleComment         = "comment"
)

// RequiredRoles lists every role the extractors resolve at runtime.
var RequiredRoles = []string{
	RoleProductCard,
	RoleProductName,
	RoleProductLink,
	RolePrice,
	RoleReviewContainer,
	RoleReviewerName,
	RoleRating,
	RoleCommentHeading,
	RoleComment,
}

// Config is the root configuration for the review scraper.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"    yaml:"site"`
	Scraper ScraperConfig `mapstructure:"scraper" yaml:"scraper"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// Selector is a structural marker: how to locate one semantic element within
// a document tree.
type Selector struct {
	// Type is the matcher language: "css" (default) or "xpath".
	Type string `mapstructure:"type" yaml:"type"`

	// Query is the CSS selector or XPath expression.
	Query string `mapstructure:"query" yaml:"query"`

	// Attribute names the attribute to read instead of the node text
	// (e.g. "alt", "href"). Empty means text content.
	Attribute string `mapstructure:"attribute" yaml:"attribute"`
}

// SiteConfig is the brittle contract with the scraped site: base URL, search
// URL shape, and one structural marker per semantic role.
type SiteConfig struct {
	BaseURL    string              `mapstructure:"base_url"    yaml:"base_url"`
	SearchPath string              `mapstructure:"search_path" yaml:"search_path"`
	Selectors  map[string]Selector `mapstructure:"selectors"   yaml:"selectors"`
}

// Selector returns the configured selector for a semantic role.
func (s *SiteConfig) Selector(role string) (Selector, bool) {
	sel, ok := s.Selectors[role]
	return sel, ok
}

// ScraperConfig controls the extraction pipeline.
type ScraperConfig struct {
	// MaxProducts bounds the number of products scraped per run.
	MaxProducts int `mapstructure:"max_products" yaml:"max_products"`

	// Concurrency is the product-level worker pool size. It is clamped
	// to MaxProducts.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
}

// StorageConfig controls run artifact storage.
type StorageConfig struct {
	CSVDir    string `mapstructure:"csv_dir"    yaml:"csv_dir"`
	ImageDir  string `mapstructure:"image_dir"  yaml:"image_dir"`
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`

	// CleanBeforeRun removes artifacts from previous runs before a new
	// run writes its own.
	CleanBeforeRun bool `mapstructure:"clean_before_run" yaml:"clean_before_run"`

	Mongo MongoConfig `mapstructure:"mongo" yaml:"mongo"`
}

// MongoConfig controls the optional review-record archive.
type MongoConfig struct {
	Enabled    bool   `mapstructure:"enabled"    yaml:"enabled"`
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults. The default
// selectors match the target site's markup as of this writing.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:    "https://www.flipkart.com",
			SearchPath: "/search",
			Selectors: map[string]Selector{
				RoleProductCard:     {Type: "css", Query: "div._1AtVbE.col-12-12"},
				RoleProductName:     {Type: "css", Query: "a img", Attribute: "alt"},
				RoleProductLink:     {Type: "css", Query: "a", Attribute: "href"},
				RolePrice:           {Type: "css", Query: "div._30jeq3._16Jk6d"},
				RoleReviewContainer: {Type: "css", Query: "div._16PBlm"},
				RoleReviewerName:    {Type: "css", Query: "p._2sc7ZR._2V5EHH"},
				RoleRating:          {Type: "css", Query: "div._3LWZlK"},
				RoleCommentHeading:  {Type: "css", Query: "p._2-N8zT"},
				RoleComment:         {Type: "css", Query: "div.t-ZTKy"},
			},
		},
		Scraper: ScraperConfig{
			MaxProducts:    4,
			Concurrency:    4,
			RequestTimeout: 30 * time.Second,
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Storage: StorageConfig{
			CSVDir:    "static/CSVs",
			ImageDir:  "static/images",
			ReportDir: "static/reports",
			Mongo: MongoConfig{
				Database:   "reviewscraper",
				Collection: "reviews",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
