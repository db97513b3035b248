// Package api exposes comparisons over a small JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/IshaanNene/CompareGoat/internal/catalog"
	"github.com/IshaanNene/CompareGoat/internal/compare"
	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/observability"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// Comparer runs one comparison.
type Comparer interface {
	Compare(ctx context.Context, req compare.Request) (*compare.Report, error)
}

// History looks up reports that are no longer held in memory.
type History interface {
	Find(ctx context.Context, runID string) (*compare.Report, error)
}

// Server provides the comparison REST API.
type Server struct {
	mux     *http.ServeMux
	srv     *http.Server
	port    int
	timeout time.Duration
	logger  *slog.Logger

	comparer Comparer
	history  History
	metrics  *observability.Metrics
	runs     *recentRuns

	maxRelated int // 0 = unchecked
}

// NewServer creates a new API server. metrics may be nil.
func NewServer(cfg *config.APIConfig, comparer Comparer, metrics *observability.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		port:     cfg.Port,
		timeout:  cfg.RequestTimeout,
		logger:   logger.With("component", "api_server"),
		comparer: comparer,
		metrics:  metrics,
		runs:     newRecentRuns(cfg.RecentRuns),
	}

	s.registerRoutes()
	return s
}

// SetHistory sets the store consulted for runs missing from memory.
func (s *Server) SetHistory(h History) {
	s.history = h
}

// SetMaxRelated sets the largest max_related a request may ask for.
func (s *Server) SetMaxRelated(n int) {
	s.maxRelated = n
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.mux }

// Start starts the API server in the background.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)

	s.srv = &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Shutdown stops the server, waiting for in-flight comparisons until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("GET /api/compare", s.handleCompareQuery)
	s.mux.HandleFunc("POST /api/compare", s.handleCompareJSON)

	s.mux.HandleFunc("GET /api/runs", s.handleListRuns)
	s.mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)

	s.mux.HandleFunc("GET /api/stats", s.handleStats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleCompareQuery(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	s.runCompare(w, r, req)
}

func (s *Server) handleCompareJSON(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Input      string          `json:"input"`
		Method     string          `json:"method"`
		MaxRelated int             `json:"max_related"`
		Filters    compare.Filters `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	method, err := catalog.ParseMethod(body.Method)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	s.runCompare(w, r, compare.Request{
		Input:      body.Input,
		Method:     method,
		MaxRelated: body.MaxRelated,
		Filters:    body.Filters,
	})
}

func (s *Server) runCompare(w http.ResponseWriter, r *http.Request, req compare.Request) {
	if req.Input == "" {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "missing product input"})
		return
	}
	if req.MaxRelated < 0 {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "max_related must be >= 0"})
		return
	}
	if s.maxRelated > 0 && req.MaxRelated > s.maxRelated {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("max_related must be <= %d", s.maxRelated),
		})
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.comparer.Compare(ctx, req)
	if err != nil {
		s.errorResponse(w, statusFor(err), err)
		return
	}
	s.runs.add(report)
	s.jsonResponse(w, http.StatusOK, report)
}

// RunSummary is the listing entry for a recent run.
type RunSummary struct {
	RunID     string         `json:"run_id"`
	Input     string         `json:"input"`
	Method    catalog.Method `json:"method"`
	SeedTitle string         `json:"seed_title"`
	Related   int            `json:"related"`
	CreatedAt time.Time      `json:"created_at"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reports := s.runs.list()
	out := make([]RunSummary, 0, len(reports))
	for _, rep := range reports {
		sum := RunSummary{
			RunID:     rep.RunID,
			Input:     rep.Input,
			Method:    rep.Method,
			Related:   len(rep.Related),
			CreatedAt: rep.CreatedAt,
		}
		if rep.Seed != nil {
			sum.SeedTitle = rep.Seed.Title
		}
		out = append(out, sum)
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if report, ok := s.runs.get(id); ok {
		s.jsonResponse(w, http.StatusOK, report)
		return
	}
	if s.history != nil {
		report, err := s.history.Find(r.Context(), id)
		if err == nil {
			s.jsonResponse(w, http.StatusOK, report)
			return
		}
		if !types.IsNotFound(err) {
			s.logger.Warn("run history lookup failed", "run_id", id, "error", err)
			s.errorResponse(w, http.StatusInternalServerError, err)
			return
		}
	}
	s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "run not found"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "metrics not enabled"})
		return
	}
	s.jsonResponse(w, http.StatusOK, s.metrics.Snapshot())
}

// requestFromQuery reads q, method, max_related, max_price, min_rating and
// min_reviews from the query string.
func requestFromQuery(r *http.Request) (compare.Request, error) {
	q := r.URL.Query()
	req := compare.Request{Input: q.Get("q")}

	method, err := catalog.ParseMethod(q.Get("method"))
	if err != nil {
		return req, err
	}
	req.Method = method

	if v := q.Get("max_related"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("max_related: %w", err)
		}
		req.MaxRelated = n
	}
	if v := q.Get("max_price"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("max_price: %w", err)
		}
		req.Filters.MaxPrice = &n
	}
	if v := q.Get("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("min_rating: %w", err)
		}
		req.Filters.MinRating = &f
	}
	if v := q.Get("min_reviews"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("min_reviews: %w", err)
		}
		req.Filters.MinReviews = &n
	}
	return req, nil
}

// statusFor maps a comparison error to an HTTP status.
func statusFor(err error) int {
	var lookup *types.LookupError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &lookup):
		if types.IsNotFound(err) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, err error) {
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("response encode failed", "error", err)
	}
}
