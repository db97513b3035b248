package compare

import (
	"sort"

	"github.com/IshaanNene/CompareGoat/internal/types"
)

// ProsCons lists short observations about one product.
type ProsCons struct {
	ID    string   `json:"id"    bson:"id"`
	Title string   `json:"title" bson:"title"`
	URL   string   `json:"url"   bson:"url"`
	Pros  []string `json:"pros"  bson:"pros"`
	Cons  []string `json:"cons"  bson:"cons"`
}

// DeriveProsCons describes each product relative to the medians of the
// whole set, in input order.
func DeriveProsCons(products []*types.Product, currency string) []ProsCons {
	var prices, ratings []float64
	for _, p := range products {
		if p.Price != nil {
			prices = append(prices, float64(*p.Price))
		}
		if p.Rating != nil {
			ratings = append(ratings, *p.Rating)
		}
	}
	medianPrice, havePrice := median(prices)
	medianRating, haveRating := median(ratings)

	out := make([]ProsCons, 0, len(products))
	for _, p := range products {
		pc := ProsCons{ID: p.ID, Title: p.Title, URL: p.URL}
		rating := p.RatingOr(0)
		reviews := p.ReviewsOr(0)

		switch {
		case rating >= 4.4:
			pc.Pros = append(pc.Pros, "Highly rated by buyers")
		case rating >= 4.0:
			pc.Pros = append(pc.Pros, "Good overall rating")
		}
		switch {
		case reviews >= 5000:
			pc.Pros = append(pc.Pros, "Very popular (5K+ reviews)")
		case reviews >= 1000:
			pc.Pros = append(pc.Pros, "Reasonable number of reviews")
		}
		if p.Price != nil {
			pc.Pros = append(pc.Pros, "Price around "+FormatPrice(currency, p.Price))
		}

		if haveRating && rating > 0 && medianRating > 0 && rating < medianRating {
			pc.Cons = append(pc.Cons, "Rating is lower than some alternatives")
		}
		if havePrice && p.Price != nil && *p.Price > 0 && medianPrice > 0 && float64(*p.Price) > medianPrice {
			pc.Cons = append(pc.Cons, "Relatively expensive compared to similar options")
		}
		if len(pc.Cons) == 0 {
			pc.Cons = append(pc.Cons, "No major drawbacks identified from available data")
		}
		if pc.Pros == nil {
			pc.Pros = []string{}
		}
		out = append(out, pc)
	}
	return out
}

func median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], true
	}
	return (s[mid-1] + s[mid]) / 2, true
}
