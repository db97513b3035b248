package compare

import (
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// Filters are the user-chosen thresholds applied to the comparison set.
// Nil fields are not applied.
type Filters struct {
	MaxPrice   *int     `json:"max_price,omitempty"   bson:"max_price,omitempty"`
	MinRating  *float64 `json:"min_rating,omitempty"  bson:"min_rating,omitempty"`
	MinReviews *int     `json:"min_reviews,omitempty" bson:"min_reviews,omitempty"`
}

// Empty reports whether no threshold is set.
func (f Filters) Empty() bool {
	return f.MaxPrice == nil && f.MinRating == nil && f.MinReviews == nil
}

// Match reports whether p passes every threshold. A missing price passes
// the price ceiling; missing rating and review counts count as zero.
func (f Filters) Match(p *types.Product) bool {
	if f.MaxPrice != nil && p.Price != nil && *p.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && p.RatingOr(0) < *f.MinRating {
		return false
	}
	if f.MinReviews != nil && p.ReviewsOr(0) < *f.MinReviews {
		return false
	}
	return true
}

// Apply returns the products passing the filters in input order. When
// nothing passes, the full set is returned and reset is true.
func (f Filters) Apply(products []*types.Product) (kept []*types.Product, reset bool) {
	for _, p := range products {
		if f.Match(p) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 && len(products) > 0 {
		return append([]*types.Product(nil), products...), true
	}
	return kept, false
}
