package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/CompareGoat/internal/textnorm"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// ParseProduct extracts a product record from a detail page. The id is
// supplied by the caller, who derives it from the canonical URL.
// A page with none of title, price or rating yields a *types.ParseError.
func (p *Parser) ParseProduct(resp *types.Response, id string) (*types.Product, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.URL(), Err: err}
	}

	f := types.ProductFields{
		ID:    id,
		URL:   resp.Request.URLString(),
		Title: textnorm.Clean(doc.Find(selTitle).First().Text()),
	}

	if byline := doc.Find(selByline).First(); byline.Length() > 0 {
		f.Brand = cleanByline(byline.Text())
	} else {
		f.Brand = p.specTableBrand(resp.Body)
	}

	if el := doc.Find(selPrice).First(); el.Length() > 0 {
		f.PriceRaw = textnorm.Clean(el.Text())
	} else {
		for _, sel := range priceFallbacks {
			if el := doc.Find(sel).First(); el.Length() > 0 {
				f.PriceRaw = textnorm.Clean(el.Text())
				break
			}
		}
	}
	f.Price = ParsePriceToInt(f.PriceRaw)

	if el := doc.Find(selRating).First(); el.Length() > 0 {
		f.Rating = parseRating(el.Text())
	}
	if el := doc.Find(selReviews).First(); el.Length() > 0 {
		f.Reviews = parseCount(el.Text())
	}

	doc.Find(selFeatures).Each(func(_ int, s *goquery.Selection) {
		if text := textnorm.Clean(s.Text()); text != "" {
			f.Features = append(f.Features, text)
		}
	})

	seen := make(map[string]bool)
	doc.Find(selVariants).Each(func(_ int, s *goquery.Selection) {
		alt := textnorm.Clean(s.AttrOr("alt", ""))
		if alt != "" && !seen[alt] {
			seen[alt] = true
			f.Variants = append(f.Variants, alt)
		}
	})

	if f.Title == "" || f.Price == nil || f.Rating == nil || f.Brand == "" {
		if ld, ok := productJSONLD(doc); ok {
			fillFromJSONLD(&f, ld)
		}
	}

	product := types.NewProduct(f)
	if !product.Usable() {
		return nil, &types.ParseError{
			URL:      resp.URL(),
			Selector: selTitle,
			Err:      types.ErrNoUsableFields,
		}
	}

	p.logger.Debug("parsed product",
		"id", product.ID,
		"title", product.Title,
		"has_price", product.Price != nil,
		"has_rating", product.Rating != nil,
	)
	return product, nil
}

// ParsePriceToInt converts a price string such as "₹50,990.00" to 50990.
// Grouping separators and currency symbols are ignored and a trailing
// one- or two-digit fractional part is dropped. Returns nil when the text
// holds no digits.
func ParsePriceToInt(text string) *int {
	text = strings.TrimSpace(text)
	if i := strings.LastIndex(text, "."); i >= 0 {
		frac := strings.TrimRight(text[i+1:], " ")
		if len(frac) > 0 && len(frac) <= 2 && isDigits(frac) {
			text = text[:i]
		}
	}
	return parseCount(text)
}

// parseCount keeps only the digits of text, e.g. "12,345 ratings" -> 12345.
func parseCount(text string) *int {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return nil
	}
	return &n
}

// parseRating reads the leading number of "4.5 out of 5 stars".
// A comma decimal separator is accepted.
func parseRating(text string) *float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

// cleanByline reduces "Visit the Sony Store" or "Brand: Sony" to "Sony".
func cleanByline(text string) string {
	text = textnorm.Clean(text)
	text = strings.TrimPrefix(text, "Brand: ")
	if strings.HasPrefix(text, "Visit the ") && strings.HasSuffix(text, " Store") {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "Visit the "), " Store")
	}
	return strings.TrimSpace(text)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
