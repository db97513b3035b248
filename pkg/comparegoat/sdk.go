// Package comparegoat provides a public SDK for embedding CompareGoat as a
// library.
//
// Example usage:
//
//	c, err := comparegoat.New(
//	    comparegoat.WithMaxRelated(4),
//	    comparegoat.WithOutput("jsonl", "./output"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	report, err := c.Compare(ctx, "Sony WH-1000XM5",
//	    comparegoat.MaxPrice(25000),
//	    comparegoat.MinRating(4.0),
//	)
//	fmt.Println(report.Recommendation)
package comparegoat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/CompareGoat/internal/catalog"
	"github.com/IshaanNene/CompareGoat/internal/compare"
	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/fetcher"
	"github.com/IshaanNene/CompareGoat/internal/observability"
	"github.com/IshaanNene/CompareGoat/internal/storage"
)

// Report is the result of one comparison.
type Report = compare.Report

// Row is one line of the comparison table.
type Row = compare.Row

// Comparer is the high-level API for running comparisons.
type Comparer struct {
	cfg     *config.Config
	logger  *slog.Logger
	fetcher fetcher.Fetcher
	store   storage.Storage
	metrics *observability.Metrics
	service *compare.Service
}

// Option configures a Comparer.
type Option func(*config.Config)

// WithConfig replaces the defaults with cfg. Later options still apply on top.
func WithConfig(cfg *config.Config) Option {
	return func(c *config.Config) { *c = *cfg }
}

// WithCatalog points the comparer at another storefront.
func WithCatalog(baseURL, domain string) Option {
	return func(c *config.Config) {
		c.Catalog.BaseURL = baseURL
		c.Catalog.Domain = domain
	}
}

// WithCurrency sets the symbol used in prices and recommendation text.
func WithCurrency(symbol string) Option {
	return func(c *config.Config) { c.Catalog.CurrencySymbol = symbol }
}

// WithMaxRelated sets how many related products are selected by default.
func WithMaxRelated(n int) Option {
	return func(c *config.Config) { c.Discovery.MaxRelated = n }
}

// WithBrowser renders pages in a headless browser instead of plain HTTP.
func WithBrowser() Option {
	return func(c *config.Config) { c.Fetcher.Type = "browser" }
}

// WithRetries sets the total fetch attempts and the linear backoff base.
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(c *config.Config) {
		c.Fetcher.RetryCount = attempts
		c.Fetcher.BackoffBase = backoff
	}
}

// WithDelay sets the random pause range between candidate fetches.
func WithDelay(min, max time.Duration) Option {
	return func(c *config.Config) {
		c.Fetcher.DelayMin = min
		c.Fetcher.DelayMax = max
	}
}

// WithMaxRPS caps the request rate against the catalog.
func WithMaxRPS(rps float64) Option {
	return func(c *config.Config) { c.Catalog.MaxRPS = rps }
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *config.Config) { c.Fetcher.UserAgents = []string{ua} }
}

// WithOutput persists every report with the given storage type and path.
func WithOutput(format, path string) Option {
	return func(c *config.Config) {
		c.Storage.Type = format
		c.Storage.OutputPath = path
	}
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Logging.Level = "debug" }
}

// New creates a Comparer with the given options.
func New(opts ...Option) (*Comparer, error) {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := observability.NewLogger(&cfg.Logging, os.Stderr, false)
	metrics := observability.NewMetrics(logger)

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

	return &Comparer{
		cfg:     cfg,
		logger:  logger,
		fetcher: f,
		store:   store,
		metrics: metrics,
		service: compare.NewService(cat, cfg, store, metrics, logger),
	}, nil
}

// CompareOption adjusts a single comparison.
type CompareOption func(*compare.Request)

// ByName forces the input to be looked up with a catalog search.
func ByName() CompareOption {
	return func(r *compare.Request) { r.Method = catalog.MethodName }
}

// ByID forces the input to be treated as a product id.
func ByID() CompareOption {
	return func(r *compare.Request) { r.Method = catalog.MethodID }
}

// ByURL forces the input to be treated as a product link.
func ByURL() CompareOption {
	return func(r *compare.Request) { r.Method = catalog.MethodURL }
}

// MaxRelated overrides how many related products to select.
func MaxRelated(n int) CompareOption {
	return func(r *compare.Request) { r.MaxRelated = n }
}

// MaxPrice hides products priced above p. Products without a price stay.
func MaxPrice(p int) CompareOption {
	return func(r *compare.Request) { r.Filters.MaxPrice = &p }
}

// MinRating hides products rated below v.
func MinRating(v float64) CompareOption {
	return func(r *compare.Request) { r.Filters.MinRating = &v }
}

// MinReviews hides products with fewer than n reviews.
func MinReviews(n int) CompareOption {
	return func(r *compare.Request) { r.Filters.MinReviews = &n }
}

// Compare resolves input (a product name, id or link) and compares it with
// related products from the catalog.
func (c *Comparer) Compare(ctx context.Context, input string, opts ...CompareOption) (*Report, error) {
	req := compare.Request{Input: input, Method: catalog.MethodAuto}
	for _, opt := range opts {
		opt(&req)
	}
	return c.service.Compare(ctx, req)
}

// WriteCSV exports the filtered comparison table of report.
func (c *Comparer) WriteCSV(w io.Writer, report *Report) error {
	return storage.WriteCSV(w, report.Filtered, report.Currency)
}

// Stats returns the operational counters.
func (c *Comparer) Stats() map[string]int64 {
	return c.metrics.Snapshot()
}

// Close flushes storage and releases the fetcher.
func (c *Comparer) Close() error {
	var firstErr error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.fetcher.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
