// Package compare runs a full comparison: resolve the seed product, find
// related products, then build the table, value ranking, pros/cons and
// recommendation for the set.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/CompareGoat/internal/catalog"
	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/discovery"
	"github.com/IshaanNene/CompareGoat/internal/observability"
	"github.com/IshaanNene/CompareGoat/internal/scoring"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// Request describes one comparison.
type Request struct {
	Input      string         `json:"input"       bson:"input"`
	Method     catalog.Method `json:"method"      bson:"method"`
	MaxRelated int            `json:"max_related" bson:"max_related"`
	Filters    Filters        `json:"filters"     bson:"filters"`
}

// Report is the outcome of a comparison.
type Report struct {
	RunID           string           `json:"run_id"           bson:"run_id"`
	Input           string           `json:"input"            bson:"input"`
	RequestedMethod catalog.Method   `json:"requested_method" bson:"requested_method"`
	Method          catalog.Method   `json:"method"           bson:"method"`
	Seed            *types.Product   `json:"seed"             bson:"seed"`
	Related         []scoring.Scored `json:"related"          bson:"related"`
	Table           []Row            `json:"table"            bson:"table"`
	Filters         Filters          `json:"filters"          bson:"filters"`
	Filtered        []Row            `json:"filtered"         bson:"filtered"`
	FiltersReset    bool             `json:"filters_reset"    bson:"filters_reset"`
	Ranking         []scoring.Valued `json:"ranking"          bson:"ranking"`
	Best            *scoring.Valued  `json:"best,omitempty"   bson:"best,omitempty"`
	ProsCons        []ProsCons       `json:"pros_cons"        bson:"pros_cons"`
	Recommendation  string           `json:"recommendation"   bson:"recommendation"`
	Currency        string           `json:"currency"         bson:"currency"`
	CreatedAt       time.Time        `json:"created_at"       bson:"created_at"`
	Duration        time.Duration    `json:"duration"         bson:"duration"`
}

// Products returns the seed followed by the related products.
func (r *Report) Products() []*types.Product {
	out := make([]*types.Product, 0, 1+len(r.Related))
	if r.Seed != nil {
		out = append(out, r.Seed)
	}
	for _, s := range r.Related {
		out = append(out, s.Product)
	}
	return out
}

// Store persists finished reports.
type Store interface {
	Store(ctx context.Context, report *Report) error
}

// Service runs comparisons against a catalog.
type Service struct {
	catalog *catalog.Client
	cfg     *config.Config
	ranker  scoring.Ranker
	store   Store
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a comparison service. store may be nil.
func NewService(cat *catalog.Client, cfg *config.Config, store Store, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	return &Service{
		catalog: cat,
		cfg:     cfg,
		ranker:  scoring.Ranker{RatingShare: cfg.Scoring.ValueRatingShare},
		store:   store,
		metrics: metrics,
		logger:  logger.With("component", "compare"),
		now:     time.Now,
	}
}

// Compare resolves the seed for req, discovers related products and builds
// the report. A seed that cannot be fetched fails with *types.LookupError;
// every later failure is soft and only shrinks the related set.
func (s *Service) Compare(ctx context.Context, req Request) (*Report, error) {
	start := s.now()
	maxRelated := req.MaxRelated
	if maxRelated <= 0 {
		maxRelated = s.cfg.Discovery.MaxRelated
	}
	if limit := s.cfg.Discovery.PerQueryMax; maxRelated > limit {
		return nil, fmt.Errorf("%w: max_related %d exceeds discovery.per_query_max %d",
			types.ErrInvalidRequest, maxRelated, limit)
	}
	requested := req.Method
	if requested == "" {
		requested = catalog.MethodAuto
	}

	run := s.catalog.Fork()
	logger := s.logger.With("input", req.Input)

	seed, method, err := run.Resolve(ctx, req.Input, requested)
	if err != nil {
		s.metrics.ComparisonsFailed.Add(1)
		logger.Error("seed lookup failed", "method", method, "error", err)
		return nil, err
	}
	logger.Info("seed resolved", "id", seed.ID, "title", seed.Title, "method", method)

	finder := discovery.NewFinder(run, s.cfg, s.metrics, s.logger)
	related, err := finder.FindRelated(ctx, seed, req.Input, maxRelated)
	if err != nil {
		s.metrics.ComparisonsFailed.Add(1)
		return nil, err
	}

	report := &Report{
		RunID:           uuid.NewString(),
		Input:           req.Input,
		RequestedMethod: requested,
		Method:          method,
		Seed:            seed,
		Related:         related,
		Filters:         req.Filters,
		Currency:        s.cfg.Catalog.CurrencySymbol,
		CreatedAt:       start.UTC(),
	}
	if report.Related == nil {
		report.Related = []scoring.Scored{}
	}

	all := report.Products()
	report.Table = BuildTable(seed, related)

	kept, reset := req.Filters.Apply(all)
	report.FiltersReset = reset
	if reset {
		logger.Warn("no products match the filters, showing all products")
	}
	report.Filtered = KeepRows(report.Table, kept)

	report.Ranking = s.ranker.Rank(kept)
	if report.Ranking == nil {
		report.Ranking = []scoring.Valued{}
	}
	if len(report.Ranking) > 0 {
		best := report.Ranking[0]
		report.Best = &best
	}
	report.ProsCons = DeriveProsCons(all, report.Currency)
	report.Recommendation = Recommend(report.Best, report.Currency)
	report.Duration = s.now().Sub(start)

	s.metrics.ComparisonsCompleted.Add(1)
	logger.Info("comparison complete",
		"run_id", report.RunID,
		"related", len(related),
		"ranked", len(report.Ranking),
		"duration", report.Duration,
	)

	if s.store != nil {
		if err := s.store.Store(ctx, report); err != nil {
			logger.Warn("failed to store report", "run_id", report.RunID, "error", err)
		}
	}
	return report, nil
}
