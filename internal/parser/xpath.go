package parser

import (
	"bytes"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/CompareGoat/internal/textnorm"
)

// specTableBrand reads the Brand row of the technical details table.
// Used when the page carries no byline element.
func (p *Parser) specTableBrand(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		p.logger.Debug("parse html for xpath", "error", err)
		return ""
	}

	node, err := htmlquery.Query(doc, xpathSpecBrand)
	if err != nil {
		p.logger.Warn("invalid xpath", "selector", xpathSpecBrand, "error", err)
		return ""
	}
	if node == nil {
		return ""
	}
	return textnorm.Clean(htmlquery.InnerText(node))
}
