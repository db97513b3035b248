package discovery

import (
	"context"
	"log/slog"
	"strings"

	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/observability"
	"github.com/IshaanNene/CompareGoat/internal/scoring"
	"github.com/IshaanNene/CompareGoat/internal/textnorm"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// Catalog is the subset of the catalog client used for discovery.
type Catalog interface {
	RelatedFromPage(ctx context.Context, seed *types.Product, max int) []types.Ref
	SearchCandidates(ctx context.Context, keyword string, max int) []types.Ref
	FetchByURL(ctx context.Context, rawURL string) (*types.Product, error)
	Cached(rawURL string) bool
	Normalize(rawURL string) string
	Pause(ctx context.Context) error
}

// Finder discovers related products for a seed.
type Finder struct {
	catalog Catalog
	scorer  *scoring.Scorer
	policy  scoring.Policy
	cfg     config.DiscoveryConfig
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewFinder creates a Finder.
func NewFinder(cat Catalog, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Finder {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	return &Finder{
		catalog: cat,
		scorer:  scoring.NewScorerFromConfig(&cfg.Scoring),
		policy:  scoring.PolicyFromConfig(&cfg.Scoring),
		cfg:     cfg.Discovery,
		metrics: metrics,
		logger:  logger.With("component", "discovery"),
	}
}

// Gather collects candidate references for seed: first from the seed's own
// page, then from a search for keyword, each source capped at 2*maxCount.
// maxCount is bounded by the configured per-query maximum.
// References are deduplicated by canonical URL with the first occurrence
// kept; the seed itself is never returned. A failing source contributes
// nothing.
func (f *Finder) Gather(ctx context.Context, seed *types.Product, keyword string, maxCount int) []types.Ref {
	maxCount = min(maxCount, f.cfg.PerQueryMax)
	perSource := 2 * maxCount
	set := NewCandidateSet(f.catalog.Normalize, 0)
	if seed.URL != "" || seed.ID != "" {
		set.Exclude(types.Ref{URL: seed.URL, ID: seed.ID})
	}

	fromPage := f.catalog.RelatedFromPage(ctx, seed, perSource)
	set.AddAll(capRefs(fromPage, perSource))

	fromSearch := f.catalog.SearchCandidates(ctx, keyword, perSource)
	set.AddAll(capRefs(fromSearch, perSource))

	refs := set.Refs()
	f.metrics.CandidatesGathered.Add(int64(len(refs)))
	f.logger.Debug("gathered candidates",
		"keyword", keyword,
		"from_page", len(fromPage),
		"from_search", len(fromSearch),
		"unique", len(refs),
	)
	return refs
}

// SearchSimilar gathers candidates for keyword, fetches them one at a time
// in discovery order, scores them against seed and applies the selection
// policy. Candidates that fail to fetch or have no title are skipped.
// It returns an error only when ctx is done.
func (f *Finder) SearchSimilar(ctx context.Context, seed *types.Product, keyword string, maxCount int) ([]scoring.Scored, error) {
	refs := f.Gather(ctx, seed, keyword, maxCount)
	if len(refs) == 0 {
		return nil, ctx.Err()
	}

	var products []*types.Product
	for _, ref := range refs {
		if !f.catalog.Cached(ref.URL) {
			if err := f.catalog.Pause(ctx); err != nil {
				return nil, err
			}
		}
		p, err := f.catalog.FetchByURL(ctx, ref.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.metrics.CandidatesRejected.Add(1)
			f.logger.Warn("candidate fetch failed", "url", ref.URL, "error", err)
			continue
		}
		if p.Title == "" {
			f.metrics.CandidatesRejected.Add(1)
			continue
		}
		f.metrics.CandidatesFetched.Add(1)
		products = append(products, p)
	}

	scored := f.scorer.ScoreAll(seed, products)
	return f.policy.Select(scored, maxCount, seed.ID), nil
}

// FindRelated returns up to maxRelated products related to seed. It searches
// by keyword (the seed title, or fallback when the title is empty), then,
// while short, by the first few words of the keyword and by brand plus
// those words. Results are merged keeping the first record per id and per
// normalized title; the seed's id and title are never accepted.
func (f *Finder) FindRelated(ctx context.Context, seed *types.Product, fallback string, maxRelated int) ([]scoring.Scored, error) {
	keyword := seed.Title
	if keyword == "" {
		keyword = fallback
	}
	perQuery := f.cfg.PerQueryMax
	if perQuery < maxRelated {
		perQuery = maxRelated
	}

	acc := newAccepted(seed, maxRelated)

	res, err := f.SearchSimilar(ctx, seed, keyword, perQuery)
	if err != nil {
		return acc.items, err
	}
	acc.addAll(res)

	short := textnorm.FirstWords(keyword, f.cfg.ShortKeywordWords)
	if !acc.full() && short != "" && !strings.EqualFold(short, keyword) {
		f.metrics.BroadeningSearches.Add(1)
		f.logger.Info("broadening search", "keyword", short, "have", len(acc.items))
		res, err = f.SearchSimilar(ctx, seed, short, perQuery)
		if err != nil {
			return acc.items, err
		}
		acc.addAll(res)
	}

	brand := strings.TrimSpace(seed.Brand)
	if !acc.full() && brand != "" {
		base := short
		if base == "" {
			base = keyword
		}
		combo := brand + " " + base
		f.metrics.BroadeningSearches.Add(1)
		f.logger.Info("broadening search", "keyword", combo, "have", len(acc.items))
		res, err = f.SearchSimilar(ctx, seed, combo, perQuery)
		if err != nil {
			return acc.items, err
		}
		acc.addAll(res)
	}

	f.metrics.RelatedSelected.Add(int64(len(acc.items)))
	if len(acc.items) == 0 {
		f.logger.Warn("no related products found", "keyword", keyword)
	}
	return acc.items, nil
}

// accepted is the running related-product list of one FindRelated call.
type accepted struct {
	max    int
	items  []scoring.Scored
	ids    map[string]bool
	titles map[string]bool
}

func newAccepted(seed *types.Product, max int) *accepted {
	a := &accepted{
		max:    max,
		ids:    map[string]bool{seed.ID: true},
		titles: map[string]bool{seed.NormalizedTitle(): true},
	}
	return a
}

func (a *accepted) full() bool { return len(a.items) >= a.max }

func (a *accepted) addAll(res []scoring.Scored) {
	for _, r := range res {
		if a.full() {
			return
		}
		id, title := r.Product.ID, r.Product.NormalizedTitle()
		if id != "" && a.ids[id] {
			continue
		}
		if title != "" && a.titles[title] {
			continue
		}
		a.items = append(a.items, r)
		a.ids[id] = true
		a.titles[title] = true
	}
}

func capRefs(refs []types.Ref, n int) []types.Ref {
	if n > 0 && len(refs) > n {
		return refs[:n]
	}
	return refs
}
