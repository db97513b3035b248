package config

import (
	"strings"
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for CompareGoat.
type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"   yaml:"catalog"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   yaml:"fetcher"`
	Discovery DiscoveryConfig `mapstructure:"discovery" yaml:"discovery"`
	Scoring   ScoringConfig   `mapstructure:"scoring"   yaml:"scoring"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
}

// CatalogConfig describes the retail site being compared against.
type CatalogConfig struct {
	BaseURL        string  `mapstructure:"base_url"        yaml:"base_url"`
	Domain         string  `mapstructure:"domain"          yaml:"domain"`
	SearchPath     string  `mapstructure:"search_path"     yaml:"search_path"`
	CurrencySymbol string  `mapstructure:"currency_symbol" yaml:"currency_symbol"`
	MaxRPS         float64 `mapstructure:"max_rps"         yaml:"max_rps"` // 0 = no ceiling
}

// FetcherConfig controls page retrieval and the retry/pause policy.
type FetcherConfig struct {
	Type           string        `mapstructure:"type"            yaml:"type"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RetryCount     int           `mapstructure:"retry_count"     yaml:"retry_count"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"    yaml:"backoff_base"`
	DelayMin       time.Duration `mapstructure:"delay_min"       yaml:"delay_min"`
	DelayMax       time.Duration `mapstructure:"delay_max"       yaml:"delay_max"`
	UserAgents     []string      `mapstructure:"user_agents"     yaml:"user_agents"`
	AcceptLanguage string        `mapstructure:"accept_language" yaml:"accept_language"`
	MaxBodySize    int64         `mapstructure:"max_body_size"   yaml:"max_body_size"`
	MaxRedirects   int           `mapstructure:"max_redirects"   yaml:"max_redirects"`
}

// DiscoveryConfig controls related-product discovery.
type DiscoveryConfig struct {
	MaxRelated        int `mapstructure:"max_related"         yaml:"max_related"`
	PerQueryMax       int `mapstructure:"per_query_max"       yaml:"per_query_max"`
	ShortKeywordWords int `mapstructure:"short_keyword_words" yaml:"short_keyword_words"`
	NameSearchResults int `mapstructure:"name_search_results" yaml:"name_search_results"`
}

// ScoringConfig holds relevance and value weights.
type ScoringConfig struct {
	TitleWeight      float64 `mapstructure:"title_weight"      yaml:"title_weight"`
	BrandWeight      float64 `mapstructure:"brand_weight"      yaml:"brand_weight"`
	RatingWeight     float64 `mapstructure:"rating_weight"     yaml:"rating_weight"`
	PopularityWeight float64 `mapstructure:"popularity_weight" yaml:"popularity_weight"`
	PopularityMode   string  `mapstructure:"popularity_mode"   yaml:"popularity_mode"` // self, set
	StrongThreshold  float64 `mapstructure:"strong_threshold"  yaml:"strong_threshold"`
	WeakThreshold    float64 `mapstructure:"weak_threshold"    yaml:"weak_threshold"`
	ValueRatingShare float64 `mapstructure:"value_rating_share" yaml:"value_rating_share"`
}

// StorageConfig controls where comparison reports are kept.
type StorageConfig struct {
	Type       string `mapstructure:"type"        yaml:"type"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	MongoURI   string `mapstructure:"mongo_uri"   yaml:"mongo_uri"`
	MongoDB    string `mapstructure:"mongo_db"    yaml:"mongo_db"`
	Collection string `mapstructure:"collection"  yaml:"collection"`
}

// StorageTypes splits a comma-separated storage.type into its backends,
// dropping blanks, "none" and repeats.
func StorageTypes(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range strings.Split(s, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || t == "none" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus-style metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// APIConfig controls the JSON HTTP server.
type APIConfig struct {
	Port           int           `mapstructure:"port"            yaml:"port"`
	RecentRuns     int           `mapstructure:"recent_runs"     yaml:"recent_runs"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // 0 = no limit
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:        "https://www.amazon.in",
			Domain:         "amazon.in",
			SearchPath:     "/s",
			CurrencySymbol: "₹",
		},
		Fetcher: FetcherConfig{
			Type:           "http",
			RequestTimeout: 15 * time.Second,
			RetryCount:     3,
			BackoffBase:    1 * time.Second,
			DelayMin:       1 * time.Second,
			DelayMax:       2 * time.Second,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
			AcceptLanguage: "en-IN,en;q=0.9",
			MaxBodySize:    10 * 1024 * 1024, // 10MB
			MaxRedirects:   10,
		},
		Discovery: DiscoveryConfig{
			MaxRelated:        4,
			PerQueryMax:       15,
			ShortKeywordWords: 4,
			NameSearchResults: 5,
		},
		Scoring: ScoringConfig{
			TitleWeight:      0.55,
			BrandWeight:      0.20,
			RatingWeight:     0.15,
			PopularityWeight: 0.10,
			PopularityMode:   "self",
			StrongThreshold:  0.30,
			WeakThreshold:    0.15,
			ValueRatingShare: 0.7,
		},
		Storage: StorageConfig{
			Type:       "none",
			OutputPath: "./output",
			MongoDB:    "comparegoat",
			Collection: "comparisons",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		API: APIConfig{
			Port:           8080,
			RecentRuns:     50,
			RequestTimeout: 5 * time.Minute,
		},
	}
}
