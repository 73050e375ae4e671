package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sammyzayn123/review-scraper/internal/api"
	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/fetcher"
	"github.com/sammyzayn123/review-scraper/internal/observability"
	"github.com/sammyzayn123/review-scraper/internal/pipeline"
	"github.com/sammyzayn123/review-scraper/internal/report"
	"github.com/sammyzayn123/review-scraper/internal/storage"
	"github.com/sammyzayn123/review-scraper/internal/wordcloud"
)

var (
	cfgFile     string
	verbose     bool
	maxProducts int
	concurrency int
	fetcherType string
	timeout     string
	port        int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reviewscraper",
		Short: "E-commerce review scraper and word-cloud generator",
		Long: `reviewscraper fetches an e-commerce search-result page for a term,
scrapes the reviews of the top products, and writes three artifacts:
a CSV of structured review records, a word-cloud image of the review
text, and an HTML report.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand for one-shot runs.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [search term]",
		Short: "Scrape reviews for a search term",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().IntVarP(&maxProducts, "max-products", "m", 0, "max products scraped per run (0 = config default)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 0, "product-level worker pool size (0 = config default)")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http or browser")
	cmd.Flags().StringVar(&timeout, "timeout", "", "per-request timeout, e.g. 30s")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := setupLogger(&cfg.Logging)

	orch, cleanup, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	searchTerm := joinArgs(args)
	logger.Info("starting scrape",
		"term", searchTerm,
		"max_products", cfg.Scraper.MaxProducts,
		"fetcher", cfg.Fetcher.Type,
	)

	result, err := orch.Run(cmd.Context(), searchTerm)
	if err != nil {
		return err
	}

	fmt.Printf("Rows extracted:  %d\n", result.Table.Len())
	fmt.Printf("Products found:  %d", result.TotalFound)
	if result.Truncated {
		fmt.Printf(" (truncated to %d)", cfg.Scraper.MaxProducts)
	}
	fmt.Println()
	fmt.Printf("CSV:             %s\n", result.CSVPath)
	fmt.Printf("Word cloud:      %s\n", result.ImagePath)
	fmt.Printf("Report:          %s\n", result.ReportPath)
	fmt.Printf("Elapsed:         %s\n", result.Duration)
	return nil
}

// serveCmd creates the "serve" subcommand exposing the HTTP API.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scraping pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			logger := setupLogger(&cfg.Logging)

			orch, cleanup, err := buildOrchestrator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := api.NewServer(port, orch, logger)
			if cfg.Metrics.Enabled {
				metrics := observability.NewMetrics(logger)
				orch.SetMetrics(metrics)
				srv.SetMetrics(metrics)
			}
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port")
	return cmd
}

// buildOrchestrator wires the pipeline's collaborators from configuration.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger) (*pipeline.Orchestrator, func(), error) {
	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create fetcher: %w", err)
	}

	store, err := storage.NewFileStore(&cfg.Storage, logger)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("create file store: %w", err)
	}

	reporter, err := report.NewWriter(logger)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("create report writer: %w", err)
	}

	orch := pipeline.New(cfg, f, store, wordcloud.NewSVGRenderer(logger), reporter, logger)

	cleanup := func() { f.Close() }

	if cfg.Storage.Mongo.Enabled {
		archive, err := storage.NewMongoArchive(&cfg.Storage.Mongo, logger)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("create mongo archive: %w", err)
		}
		orch.SetArchive(archive)
		cleanup = func() {
			archive.Close()
			f.Close()
		}
	}

	return orch, cleanup, nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("reviewscraper %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Site:\n")
			fmt.Printf("  Base URL:         %s\n", cfg.Site.BaseURL)
			fmt.Printf("  Search Path:      %s\n", cfg.Site.SearchPath)
			fmt.Printf("  Selectors:        %d roles configured\n", len(cfg.Site.Selectors))
			fmt.Printf("\nScraper:\n")
			fmt.Printf("  Max Products:     %d\n", cfg.Scraper.MaxProducts)
			fmt.Printf("  Concurrency:      %d\n", cfg.Scraper.Concurrency)
			fmt.Printf("  Request Timeout:  %s\n", cfg.Scraper.RequestTimeout)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:             %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Follow Redirects: %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("  Max Body Size:    %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  User Agents:      %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  CSV Dir:          %s\n", cfg.Storage.CSVDir)
			fmt.Printf("  Image Dir:        %s\n", cfg.Storage.ImageDir)
			fmt.Printf("  Report Dir:       %s\n", cfg.Storage.ReportDir)
			fmt.Printf("  Mongo Archive:    %v\n", cfg.Storage.Mongo.Enabled)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:          %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:             %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config. The
// --verbose flag forces debug level regardless of config.
func setupLogger(cfg *config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	out := os.Stderr
	if cfg.Output == "stdout" {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if maxProducts > 0 {
		cfg.Scraper.MaxProducts = maxProducts
	}
	if concurrency > 0 {
		cfg.Scraper.Concurrency = concurrency
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = fetcherType
	}
	if timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Scraper.RequestTimeout = d
		}
	}
}

// joinArgs joins multi-word search terms given as separate arguments.
func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
