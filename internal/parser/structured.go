package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/CompareGoat/internal/textnorm"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// productJSONLD returns the first schema.org Product object found in the
// page's <script type="application/ld+json"> blocks.
func productJSONLD(doc *goquery.Document) (map[string]any, bool) {
	var found map[string]any

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		// Try parsing as single object
		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err == nil {
			if graph, ok := data["@graph"].([]any); ok {
				for _, g := range graph {
					if m, ok := g.(map[string]any); ok && isProductType(m) {
						found = m
						return false
					}
				}
			}
			if isProductType(data) {
				found = data
				return false
			}
			return true
		}

		// Try parsing as array
		var dataArr []map[string]any
		if err := json.Unmarshal([]byte(raw), &dataArr); err == nil {
			for _, d := range dataArr {
				if isProductType(d) {
					found = d
					return false
				}
			}
		}
		return true
	})

	return found, found != nil
}

func isProductType(m map[string]any) bool {
	switch t := m["@type"].(type) {
	case string:
		return t == "Product"
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// fillFromJSONLD sets the fields the page markup did not provide.
func fillFromJSONLD(f *types.ProductFields, ld map[string]any) {
	if f.Title == "" {
		f.Title = textnorm.Clean(asString(ld["name"]))
	}
	if f.Brand == "" {
		switch b := ld["brand"].(type) {
		case string:
			f.Brand = textnorm.Clean(b)
		case map[string]any:
			f.Brand = textnorm.Clean(asString(b["name"]))
		}
	}
	if f.Price == nil {
		offers := ld["offers"]
		if list, ok := offers.([]any); ok && len(list) > 0 {
			offers = list[0]
		}
		if m, ok := offers.(map[string]any); ok {
			price := asString(m["price"])
			if price == "" {
				price = asString(m["lowPrice"])
			}
			if price != "" {
				if f.PriceRaw == "" {
					f.PriceRaw = price
				}
				f.Price = ParsePriceToInt(price)
			}
		}
	}
	if agg, ok := ld["aggregateRating"].(map[string]any); ok {
		if f.Rating == nil {
			if v, err := strconv.ParseFloat(asString(agg["ratingValue"]), 64); err == nil {
				f.Rating = &v
			}
		}
		if f.Reviews == nil {
			count := asString(agg["reviewCount"])
			if count == "" {
				count = asString(agg["ratingCount"])
			}
			f.Reviews = parseCount(count)
		}
	}
}

// asString renders JSON scalars as text; objects and nulls give "".
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
