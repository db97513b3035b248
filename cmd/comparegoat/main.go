package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/CompareGoat/internal/catalog"
	"github.com/IshaanNene/CompareGoat/internal/compare"
	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/fetcher"
	"github.com/IshaanNene/CompareGoat/internal/observability"
	"github.com/IshaanNene/CompareGoat/internal/storage"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "comparegoat",
		Short: "Compare a product with similar catalog listings",
		Long: `CompareGoat looks up a product by name, id or link, finds similar
products on the same catalog and ranks them by value.

Features:
  • Input resolution by name, product id or product link
  • Related products from the product page and broadened keyword searches
  • Relevance scoring on title, brand, rating and popularity
  • Value ranking on rating and price, with pros/cons and a recommendation
  • Price, rating and review filters
  • CSV, JSON, JSONL and MongoDB output
  • JSON HTTP API and Prometheus metrics endpoint`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// loadConfig loads and validates the configuration, applying overrides
// before validation.
func loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app holds the wired components shared by compare and serve.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	fetcher fetcher.Fetcher
	store   storage.Storage
	service *compare.Service
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		if err := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	f, err := fetcher.New(cfg, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	cat, err := catalog.NewClient(cfg, f, metrics, logger)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create catalog client: %w", err)
	}

	store, err := storage.NewFromConfig(&cfg.Storage, logger)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create storage: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		fetcher: f,
		store:   store,
		service: compare.NewService(cat, cfg, store, metrics, logger),
	}, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("storage close failed", "backend", a.store.Name(), "error", err)
		}
	}
	if err := a.fetcher.Close(); err != nil {
		a.logger.Warn("fetcher close failed", "error", err)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "CompareGoat %s\n", config.Version)
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
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Catalog:\n")
	fmt.Fprintf(w, "  Base URL:          %s\n", cfg.Catalog.BaseURL)
	fmt.Fprintf(w, "  Domain:            %s\n", cfg.Catalog.Domain)
	fmt.Fprintf(w, "  Currency:          %s\n", cfg.Catalog.CurrencySymbol)
	fmt.Fprintf(w, "  Max RPS:           %v\n", cfg.Catalog.MaxRPS)
	fmt.Fprintf(w, "\nFetcher:\n")
	fmt.Fprintf(w, "  Type:              %s\n", cfg.Fetcher.Type)
	fmt.Fprintf(w, "  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
	fmt.Fprintf(w, "  Attempts:          %d\n", cfg.Fetcher.RetryCount)
	fmt.Fprintf(w, "  Backoff Base:      %s\n", cfg.Fetcher.BackoffBase)
	fmt.Fprintf(w, "  Pause:             %s - %s\n", cfg.Fetcher.DelayMin, cfg.Fetcher.DelayMax)
	fmt.Fprintf(w, "  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
	fmt.Fprintf(w, "\nDiscovery:\n")
	fmt.Fprintf(w, "  Max Related:       %d\n", cfg.Discovery.MaxRelated)
	fmt.Fprintf(w, "  Per Query Max:     %d\n", cfg.Discovery.PerQueryMax)
	fmt.Fprintf(w, "  Short Keyword:     %d words\n", cfg.Discovery.ShortKeywordWords)
	fmt.Fprintf(w, "\nScoring:\n")
	fmt.Fprintf(w, "  Weights:           title %.2f, brand %.2f, rating %.2f, popularity %.2f\n",
		cfg.Scoring.TitleWeight, cfg.Scoring.BrandWeight, cfg.Scoring.RatingWeight, cfg.Scoring.PopularityWeight)
	fmt.Fprintf(w, "  Popularity Mode:   %s\n", cfg.Scoring.PopularityMode)
	fmt.Fprintf(w, "  Thresholds:        %.2f / %.2f\n", cfg.Scoring.StrongThreshold, cfg.Scoring.WeakThreshold)
	fmt.Fprintf(w, "  Value Rating Share: %.2f\n", cfg.Scoring.ValueRatingShare)
	fmt.Fprintf(w, "\nStorage:\n")
	fmt.Fprintf(w, "  Type:              %s\n", cfg.Storage.Type)
	fmt.Fprintf(w, "  Output Path:       %s\n", cfg.Storage.OutputPath)
	fmt.Fprintf(w, "\nMetrics:\n")
	fmt.Fprintf(w, "  Enabled:           %v\n", cfg.Metrics.Enabled)
	fmt.Fprintf(w, "  Port:              %d\n", cfg.Metrics.Port)
	fmt.Fprintf(w, "\nAPI:\n")
	fmt.Fprintf(w, "  Port:              %d\n", cfg.API.Port)
	fmt.Fprintf(w, "  Recent Runs:       %d\n", cfg.API.RecentRuns)
}
