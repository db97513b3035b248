package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/CompareGoat/internal/types"
)

// ParseRelatedIDs returns the product ids found in recommendation regions
// of a product page (elements carrying data-asin), in page order. The
// excluded id and duplicates are skipped. At most max ids are returned;
// max <= 0 means no cap.
func (p *Parser) ParseRelatedIDs(resp *types.Response, exclude string, max int) ([]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.URL(), Err: err}
	}

	var ids []string
	seen := make(map[string]bool)

	doc.Find(selRelatedItem).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id := strings.TrimSpace(s.AttrOr("data-asin", ""))
		if id == "" || id == exclude || seen[id] {
			return true
		}
		seen[id] = true
		ids = append(ids, id)
		return max <= 0 || len(ids) < max
	})

	return ids, nil
}
