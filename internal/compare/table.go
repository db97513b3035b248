package compare

import (
	"math"
	"sort"
	"strings"

	"github.com/IshaanNene/CompareGoat/internal/scoring"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// keyFeatureCount is how many features the table shows per product.
const keyFeatureCount = 3

// Row is one line of the comparison table.
type Row struct {
	ID          string   `json:"id"                   bson:"id"`
	Title       string   `json:"title"                bson:"title"`
	Brand       string   `json:"brand"                bson:"brand"`
	Price       *int     `json:"price"                bson:"price"`
	Rating      *float64 `json:"rating"               bson:"rating"`
	Reviews     *int     `json:"reviews"              bson:"reviews"`
	KeyFeatures string   `json:"key_features"         bson:"key_features"`
	KeyFeature  string   `json:"key_feature"          bson:"key_feature"`
	URL         string   `json:"url"                  bson:"url"`
	Similarity  *float64 `json:"similarity,omitempty" bson:"similarity,omitempty"`
	Seed        bool     `json:"seed"                 bson:"seed"`

	product *types.Product
}

// BuildTable lays out the seed and related products as rows sorted by
// rating (desc), reviews (desc) then price (asc). Missing ratings and
// review counts sort as 0 and missing prices as the highest table price.
// Similarity is rounded to two decimals and absent for the seed.
func BuildTable(seed *types.Product, related []scoring.Scored) []Row {
	rows := make([]Row, 0, 1+len(related))
	rows = append(rows, newRow(seed, nil))
	for _, r := range related {
		score := math.Round(r.Score*100) / 100
		rows = append(rows, newRow(r.Product, &score))
	}
	rows[0].Seed = true

	maxPrice := 0
	for _, r := range rows {
		if r.Price != nil && *r.Price > maxPrice {
			maxPrice = *r.Price
		}
	}
	priceOf := func(r Row) int {
		if r.Price == nil {
			return maxPrice
		}
		return *r.Price
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if ra, rb := a.product.RatingOr(0), b.product.RatingOr(0); ra != rb {
			return ra > rb
		}
		if va, vb := a.product.ReviewsOr(0), b.product.ReviewsOr(0); va != vb {
			return va > vb
		}
		return priceOf(a) < priceOf(b)
	})
	return rows
}

func newRow(p *types.Product, similarity *float64) Row {
	features := p.Features
	if len(features) > keyFeatureCount {
		features = features[:keyFeatureCount]
	}
	first := ""
	if len(p.Features) > 0 {
		first = p.Features[0]
	}
	return Row{
		ID:          p.ID,
		Title:       p.Title,
		Brand:       p.Brand,
		Price:       p.Price,
		Rating:      p.Rating,
		Reviews:     p.Reviews,
		KeyFeatures: strings.Join(features, " • "),
		KeyFeature:  first,
		URL:         p.URL,
		Similarity:  similarity,
		product:     p,
	}
}

// Product returns the record the row was built from.
func (r Row) Product() *types.Product { return r.product }

// KeepRows returns the rows whose product is in keep, preserving order.
func KeepRows(rows []Row, keep []*types.Product) []Row {
	set := make(map[*types.Product]bool, len(keep))
	for _, p := range keep {
		set[p] = true
	}
	var out []Row
	for _, r := range rows {
		if set[r.product] {
			out = append(out, r)
		}
	}
	return out
}
