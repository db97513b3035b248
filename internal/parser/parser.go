package parser

import (
	"log/slog"
)

// Selectors for catalog product detail pages.
const (
	selTitle       = "#productTitle"
	selByline      = "#bylineInfo"
	selPrice       = "span.a-price span.a-offscreen"
	selRating      = "span.a-icon-alt"
	selReviews     = "#acrCustomerReviewText"
	selFeatures    = "#feature-bullets ul li span.a-list-item"
	selVariants    = "#variation_color_name li img"
	selSearchCard  = "div[data-component-type='s-search-result']"
	selSearchLink  = "a.a-link-normal.s-no-outline, a.a-link-normal.a-text-normal"
	selRelatedItem = "li[data-asin], div[data-asin]"

	xpathSpecBrand = "//table[@id='productDetails_techSpec_section_1']//th[contains(., 'Brand')]/following-sibling::td[1]"
)

// Legacy price blocks, tried in order when the main price element is missing.
var priceFallbacks = []string{
	"#priceblock_ourprice",
	"#priceblock_dealprice",
	"#priceblock_saleprice",
}

// Parser extracts product records, search results and related-item ids
// from fetched catalog pages. It holds no per-page state.
type Parser struct {
	logger *slog.Logger
}

// New creates a Parser.
func New(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger.With("component", "parser"),
	}
}
