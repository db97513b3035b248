package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational counters for comparison runs.
type Metrics struct {
	// Fetch metrics
	PagesFetched  atomic.Int64
	FetchRetries  atomic.Int64
	FetchFailures atomic.Int64
	ParseFailures atomic.Int64
	BytesFetched  atomic.Int64

	// Discovery metrics
	SourceFailures     atomic.Int64
	CandidatesGathered atomic.Int64
	CandidatesFetched  atomic.Int64
	CandidatesRejected atomic.Int64
	RelatedSelected    atomic.Int64
	BroadeningSearches atomic.Int64
	CacheHits          atomic.Int64

	// Run metrics
	ComparisonsCompleted atomic.Int64
	ComparisonsFailed    atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

type metricLine struct {
	name  string
	help  string
	kind  string
	value int64
}

func (m *Metrics) lines() []metricLine {
	return []metricLine{
		{"comparegoat_pages_fetched_total", "Catalog pages fetched successfully", "counter", m.PagesFetched.Load()},
		{"comparegoat_fetch_retries_total", "Fetch attempts retried after a transient error", "counter", m.FetchRetries.Load()},
		{"comparegoat_fetch_failures_total", "Fetches that failed after all attempts", "counter", m.FetchFailures.Load()},
		{"comparegoat_parse_failures_total", "Pages with no usable product fields", "counter", m.ParseFailures.Load()},
		{"comparegoat_bytes_fetched_total", "Response bytes downloaded", "counter", m.BytesFetched.Load()},
		{"comparegoat_source_failures_total", "Candidate source queries that soft-failed", "counter", m.SourceFailures.Load()},
		{"comparegoat_candidates_gathered_total", "Candidate references gathered", "counter", m.CandidatesGathered.Load()},
		{"comparegoat_candidates_fetched_total", "Candidate records fetched", "counter", m.CandidatesFetched.Load()},
		{"comparegoat_candidates_rejected_total", "Candidates dropped before scoring", "counter", m.CandidatesRejected.Load()},
		{"comparegoat_related_selected_total", "Related products selected", "counter", m.RelatedSelected.Load()},
		{"comparegoat_broadening_searches_total", "Broadened keyword searches run", "counter", m.BroadeningSearches.Load()},
		{"comparegoat_cache_hits_total", "Product records served from the run cache", "counter", m.CacheHits.Load()},
		{"comparegoat_comparisons_completed_total", "Comparisons completed", "counter", m.ComparisonsCompleted.Load()},
		{"comparegoat_comparisons_failed_total", "Comparisons that failed on the seed lookup", "counter", m.ComparisonsFailed.Load()},
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for _, metric := range m.lines() {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", metric.name, metric.kind)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// Handler returns a mux serving metrics on path plus a /health probe.
func (m *Metrics) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	return mux
}

// StartServer starts the metrics HTTP server in the background.
func (m *Metrics) StartServer(port int, path string) error {
	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, m.Handler(path)); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Snapshot returns all metrics as a map keyed by short name.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"pages_fetched":         m.PagesFetched.Load(),
		"fetch_retries":         m.FetchRetries.Load(),
		"fetch_failures":        m.FetchFailures.Load(),
		"parse_failures":        m.ParseFailures.Load(),
		"bytes_fetched":         m.BytesFetched.Load(),
		"source_failures":       m.SourceFailures.Load(),
		"candidates_gathered":   m.CandidatesGathered.Load(),
		"candidates_fetched":    m.CandidatesFetched.Load(),
		"candidates_rejected":   m.CandidatesRejected.Load(),
		"related_selected":      m.RelatedSelected.Load(),
		"broadening_searches":   m.BroadeningSearches.Load(),
		"cache_hits":            m.CacheHits.Load(),
		"comparisons_completed": m.ComparisonsCompleted.Load(),
		"comparisons_failed":    m.ComparisonsFailed.Load(),
	}
}
