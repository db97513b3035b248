package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied by the caller afterwards.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("COMPAREGOAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("comparegoat")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".comparegoat"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides apply to every key.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("catalog.base_url", cfg.Catalog.BaseURL)
	v.SetDefault("catalog.domain", cfg.Catalog.Domain)
	v.SetDefault("catalog.search_path", cfg.Catalog.SearchPath)
	v.SetDefault("catalog.currency_symbol", cfg.Catalog.CurrencySymbol)
	v.SetDefault("catalog.max_rps", cfg.Catalog.MaxRPS)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.retry_count", cfg.Fetcher.RetryCount)
	v.SetDefault("fetcher.backoff_base", cfg.Fetcher.BackoffBase)
	v.SetDefault("fetcher.delay_min", cfg.Fetcher.DelayMin)
	v.SetDefault("fetcher.delay_max", cfg.Fetcher.DelayMax)
	v.SetDefault("fetcher.user_agents", cfg.Fetcher.UserAgents)
	v.SetDefault("fetcher.accept_language", cfg.Fetcher.AcceptLanguage)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)

	v.SetDefault("discovery.max_related", cfg.Discovery.MaxRelated)
	v.SetDefault("discovery.per_query_max", cfg.Discovery.PerQueryMax)
	v.SetDefault("discovery.short_keyword_words", cfg.Discovery.ShortKeywordWords)
	v.SetDefault("discovery.name_search_results", cfg.Discovery.NameSearchResults)

	v.SetDefault("scoring.title_weight", cfg.Scoring.TitleWeight)
	v.SetDefault("scoring.brand_weight", cfg.Scoring.BrandWeight)
	v.SetDefault("scoring.rating_weight", cfg.Scoring.RatingWeight)
	v.SetDefault("scoring.popularity_weight", cfg.Scoring.PopularityWeight)
	v.SetDefault("scoring.popularity_mode", cfg.Scoring.PopularityMode)
	v.SetDefault("scoring.strong_threshold", cfg.Scoring.StrongThreshold)
	v.SetDefault("scoring.weak_threshold", cfg.Scoring.WeakThreshold)
	v.SetDefault("scoring.value_rating_share", cfg.Scoring.ValueRatingShare)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_db", cfg.Storage.MongoDB)
	v.SetDefault("storage.collection", cfg.Storage.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)

	v.SetDefault("api.port", cfg.API.Port)
	v.SetDefault("api.recent_runs", cfg.API.RecentRuns)
	v.SetDefault("api.request_timeout", cfg.API.RequestTimeout)
}
