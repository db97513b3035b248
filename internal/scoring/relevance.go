// Package scoring ranks candidate products against a seed product and
// ranks a comparison set by value for money.
package scoring

import (
	"math"
	"strings"

	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/textnorm"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// Weights are the coefficients of the relevance formula.
type Weights struct {
	Title      float64
	Brand      float64
	Rating     float64
	Popularity float64
}

// DefaultWeights returns 0.55 title, 0.20 brand, 0.15 rating, 0.10 popularity.
func DefaultWeights() Weights {
	return Weights{Title: 0.55, Brand: 0.20, Rating: 0.15, Popularity: 0.10}
}

// PopularityMode selects how the review-count term is normalized.
type PopularityMode string

const (
	// PopularitySelf normalizes each candidate against its own review
	// count, so the term is 1 for any reviewed product and 0 otherwise.
	PopularitySelf PopularityMode = "self"
	// PopularitySet normalizes against the most-reviewed candidate.
	PopularitySet PopularityMode = "set"
)

// Scored pairs a product with its relevance to the seed.
type Scored struct {
	Product *types.Product `json:"product" bson:"product"`
	Score   float64        `json:"score"   bson:"score"`
}

// Scorer computes relevance scores. It is stateless and safe for
// concurrent use.
type Scorer struct {
	weights Weights
	mode    PopularityMode
}

// NewScorer creates a scorer with explicit weights and popularity mode.
func NewScorer(w Weights, mode PopularityMode) *Scorer {
	if mode == "" {
		mode = PopularitySelf
	}
	return &Scorer{weights: w, mode: mode}
}

// NewScorerFromConfig creates a scorer from the scoring section.
func NewScorerFromConfig(cfg *config.ScoringConfig) *Scorer {
	return NewScorer(Weights{
		Title:      cfg.TitleWeight,
		Brand:      cfg.BrandWeight,
		Rating:     cfg.RatingWeight,
		Popularity: cfg.PopularityWeight,
	}, PopularityMode(cfg.PopularityMode))
}

// Score returns the relevance of cand to seed with the popularity term
// normalized against the candidate's own review count.
func (s *Scorer) Score(seed, cand *types.Product) float64 {
	r := cand.ReviewsOr(0)
	return s.score(seed, cand, r)
}

// ScoreAll scores every candidate in order. Neither the seed nor the
// candidates are modified.
func (s *Scorer) ScoreAll(seed *types.Product, cands []*types.Product) []Scored {
	maxReviews := 0
	if s.mode == PopularitySet {
		for _, c := range cands {
			if r := c.ReviewsOr(0); r > maxReviews {
				maxReviews = r
			}
		}
	}

	out := make([]Scored, 0, len(cands))
	for _, c := range cands {
		norm := c.ReviewsOr(0)
		if s.mode == PopularitySet {
			norm = maxReviews
		}
		out = append(out, Scored{Product: c, Score: s.score(seed, c, norm)})
	}
	return out
}

func (s *Scorer) score(seed, cand *types.Product, normReviews int) float64 {
	w := s.weights
	return w.Title*textnorm.TitleSimilarity(seed.Title, cand.Title) +
		w.Brand*BrandMatch(seed.Brand, cand.Brand) +
		w.Rating*(cand.RatingOr(0)/5) +
		w.Popularity*Popularity(cand.ReviewsOr(0), normReviews)
}

// BrandMatch is 1 when the seed brand, lowercased and non-empty, occurs in
// the candidate brand.
func BrandMatch(seedBrand, candBrand string) float64 {
	seedBrand = strings.ToLower(strings.TrimSpace(seedBrand))
	if seedBrand == "" {
		return 0
	}
	if strings.Contains(strings.ToLower(candBrand), seedBrand) {
		return 1
	}
	return 0
}

// Popularity is log(1+reviews) / log(1+max(1, norm)).
func Popularity(reviews, norm int) float64 {
	if reviews <= 0 {
		return 0
	}
	if norm < 1 {
		norm = 1
	}
	return math.Log1p(float64(reviews)) / math.Log1p(float64(norm))
}
