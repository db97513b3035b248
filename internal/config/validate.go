package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Catalog.BaseURL); err != nil {
		return fmt.Errorf("catalog.base_url: %w", err)
	}
	if cfg.Catalog.Domain == "" {
		return fmt.Errorf("catalog.domain must not be empty")
	}
	if cfg.Catalog.MaxRPS < 0 {
		return fmt.Errorf("catalog.max_rps must be >= 0, got %v", cfg.Catalog.MaxRPS)
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.RetryCount < 1 || cfg.Fetcher.RetryCount > 10 {
		return fmt.Errorf("fetcher.retry_count must be 1-10, got %d", cfg.Fetcher.RetryCount)
	}
	if cfg.Fetcher.BackoffBase < 0 {
		return fmt.Errorf("fetcher.backoff_base must be >= 0")
	}
	if cfg.Fetcher.DelayMin < 0 || cfg.Fetcher.DelayMax < cfg.Fetcher.DelayMin {
		return fmt.Errorf("fetcher delay range invalid: min=%s max=%s", cfg.Fetcher.DelayMin, cfg.Fetcher.DelayMax)
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Discovery.MaxRelated < 1 {
		return fmt.Errorf("discovery.max_related must be >= 1, got %d", cfg.Discovery.MaxRelated)
	}
	if cfg.Discovery.PerQueryMax < cfg.Discovery.MaxRelated {
		return fmt.Errorf("discovery.per_query_max (%d) must be >= discovery.max_related (%d)",
			cfg.Discovery.PerQueryMax, cfg.Discovery.MaxRelated)
	}
	if cfg.Discovery.ShortKeywordWords < 1 {
		return fmt.Errorf("discovery.short_keyword_words must be >= 1")
	}
	if cfg.Discovery.NameSearchResults < 1 {
		return fmt.Errorf("discovery.name_search_results must be >= 1")
	}

	if cfg.Scoring.PopularityMode != "self" && cfg.Scoring.PopularityMode != "set" {
		return fmt.Errorf("scoring.popularity_mode must be 'self' or 'set', got %q", cfg.Scoring.PopularityMode)
	}
	if cfg.Scoring.WeakThreshold > cfg.Scoring.StrongThreshold {
		return fmt.Errorf("scoring.weak_threshold (%v) must not exceed scoring.strong_threshold (%v)",
			cfg.Scoring.WeakThreshold, cfg.Scoring.StrongThreshold)
	}
	if cfg.Scoring.ValueRatingShare < 0 || cfg.Scoring.ValueRatingShare > 1 {
		return fmt.Errorf("scoring.value_rating_share must be within [0,1], got %v", cfg.Scoring.ValueRatingShare)
	}
	for name, w := range map[string]float64{
		"title_weight":      cfg.Scoring.TitleWeight,
		"brand_weight":      cfg.Scoring.BrandWeight,
		"rating_weight":     cfg.Scoring.RatingWeight,
		"popularity_weight": cfg.Scoring.PopularityWeight,
	} {
		if w < 0 {
			return fmt.Errorf("scoring.%s must be >= 0, got %v", name, w)
		}
	}

	validStorageTypes := map[string]bool{
		"none": true, "json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	for _, t := range strings.Split(cfg.Storage.Type, ",") {
		if !validStorageTypes[strings.ToLower(strings.TrimSpace(t))] {
			return fmt.Errorf("storage.type %q is not supported (valid: none, json, jsonl, csv, mongodb)", t)
		}
	}
	if slices.Contains(StorageTypes(cfg.Storage.Type), "mongodb") && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
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
	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("api.port must be 1-65535, got %d", cfg.API.Port)
	}
	if cfg.API.RecentRuns < 1 {
		return fmt.Errorf("api.recent_runs must be >= 1, got %d", cfg.API.RecentRuns)
	}

	return nil
}

// ValidateURL checks if a URL string is an absolute http(s) URL.
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
