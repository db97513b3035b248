package types

import "strings"

// Caps applied to list fields when a product is created.
const (
	MaxFeatures = 5
	MaxVariants = 6
)

// Product is one catalog listing as parsed from its detail page.
// It is built once per successful fetch and not modified afterwards.
type Product struct {
	ID       string   `json:"id"                 bson:"id"`
	URL      string   `json:"url"                bson:"url"`
	Title    string   `json:"title"              bson:"title"`
	Brand    string   `json:"brand"              bson:"brand"`
	PriceRaw string   `json:"price_raw,omitempty" bson:"price_raw,omitempty"`
	Price    *int     `json:"price"              bson:"price"`
	Rating   *float64 `json:"rating"             bson:"rating"`
	Reviews  *int     `json:"reviews"            bson:"reviews"`
	Features []string `json:"features"           bson:"features"`
	Variants []string `json:"variants"           bson:"variants"`
}

// ProductFields carries parsed values into NewProduct.
type ProductFields struct {
	ID       string
	URL      string
	Title    string
	Brand    string
	PriceRaw string
	Price    *int
	Rating   *float64
	Reviews  *int
	Features []string
	Variants []string
}

// NewProduct builds a Product, enforcing the field invariants: rating is
// dropped when outside [0,5], negative price and review counts are dropped,
// and features/variants are truncated to their caps.
func NewProduct(f ProductFields) *Product {
	p := &Product{
		ID:       strings.TrimSpace(f.ID),
		URL:      f.URL,
		Title:    f.Title,
		Brand:    f.Brand,
		PriceRaw: f.PriceRaw,
		Features: truncate(f.Features, MaxFeatures),
		Variants: truncate(f.Variants, MaxVariants),
	}
	if f.Price != nil && *f.Price >= 0 {
		v := *f.Price
		p.Price = &v
	}
	if f.Rating != nil && *f.Rating >= 0 && *f.Rating <= 5 {
		v := *f.Rating
		p.Rating = &v
	}
	if f.Reviews != nil && *f.Reviews >= 0 {
		v := *f.Reviews
		p.Reviews = &v
	}
	return p
}

// Usable reports whether at least one of title, price or rating is present.
func (p *Product) Usable() bool {
	return p.Title != "" || p.Price != nil || p.Rating != nil
}

// RatingOr returns the rating, or def when absent.
func (p *Product) RatingOr(def float64) float64 {
	if p.Rating == nil {
		return def
	}
	return *p.Rating
}

// ReviewsOr returns the review count, or def when absent.
func (p *Product) ReviewsOr(def int) int {
	if p.Reviews == nil {
		return def
	}
	return *p.Reviews
}

// NormalizedTitle is the trimmed, lowercased title used for duplicate checks.
func (p *Product) NormalizedTitle() string {
	return strings.ToLower(strings.TrimSpace(p.Title))
}

func truncate(items []string, n int) []string {
	if len(items) == 0 {
		return []string{}
	}
	if len(items) > n {
		items = items[:n]
	}
	return append([]string(nil), items...)
}

// Ref points at a product that has been discovered but not yet fetched.
type Ref struct {
	URL string `json:"url"`
	ID  string `json:"id,omitempty"`
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
