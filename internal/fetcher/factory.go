package fetcher

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/observability"
)

// New builds the configured fetcher wrapped in the retry policy.
func New(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (Fetcher, error) {
	var (
		base Fetcher
		err  error
	)
	switch cfg.Fetcher.Type {
	case "", "http":
		base, err = NewHTTPFetcher(cfg, logger)
	case "browser":
		base, err = NewBrowserFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", cfg.Fetcher.Type)
	}
	if err != nil {
		return nil, err
	}
	return NewRetrier(base, &cfg.Fetcher, metrics, logger), nil
}
