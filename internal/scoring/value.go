package scoring

import (
	"math"
	"sort"

	"github.com/IshaanNene/CompareGoat/internal/types"
)

// Valued holds a product's value-for-money score and its components.
type Valued struct {
	Product    *types.Product `json:"product"     bson:"product"`
	RatingNorm float64        `json:"rating_norm" bson:"rating_norm"`
	PriceNorm  float64        `json:"price_norm"  bson:"price_norm"`
	Value      float64        `json:"value"       bson:"value"`
}

// Ranker scores a comparison set by normalized rating and price.
// RatingShare is the weight of the rating term; price gets the rest.
type Ranker struct {
	RatingShare float64
}

// DefaultRanker weighs rating 0.7 and price 0.3.
func DefaultRanker() Ranker {
	return Ranker{RatingShare: 0.7}
}

// Rank returns the priced and rated records sorted by value, best first.
// Records missing price or rating are left out. Ties keep input order.
func (r Ranker) Rank(records []*types.Product) []Valued {
	var eligible []*types.Product
	for _, p := range records {
		if p != nil && p.Price != nil && p.Rating != nil {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	minR, maxR := *eligible[0].Rating, *eligible[0].Rating
	minP, maxP := *eligible[0].Price, *eligible[0].Price
	for _, p := range eligible[1:] {
		minR = math.Min(minR, *p.Rating)
		maxR = math.Max(maxR, *p.Rating)
		minP = min(minP, *p.Price)
		maxP = max(maxP, *p.Price)
	}

	out := make([]Valued, 0, len(eligible))
	for _, p := range eligible {
		v := Valued{Product: p, RatingNorm: 1, PriceNorm: 1}
		if maxR != minR {
			v.RatingNorm = (*p.Rating - minR) / (maxR - minR)
		}
		if maxP != minP {
			v.PriceNorm = float64(maxP-*p.Price) / float64(maxP-minP)
		}
		v.Value = (r.RatingShare*v.RatingNorm + (1-r.RatingShare)*v.PriceNorm) * 100
		out = append(out, v)
	}

	// Compare rounded values so float noise does not break input-order ties.
	sort.SliceStable(out, func(i, j int) bool {
		return round6(out[i].Value) > round6(out[j].Value)
	})
	return out
}

// PickBest returns the highest-valued record, or false when no record is
// both priced and rated.
func (r Ranker) PickBest(records []*types.Product) (Valued, bool) {
	ranked := r.Rank(records)
	if len(ranked) == 0 {
		return Valued{}, false
	}
	return ranked[0], true
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
