package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/CompareGoat/internal/types"
)

// ParseSearchResults returns product page URLs from a search results page
// in result order. Links are resolved against base with their query string
// stripped; links off the catalog host or without a /dp/ path are skipped.
// At most max URLs are returned; max <= 0 means no cap.
func (p *Parser) ParseSearchResults(resp *types.Response, base *url.URL, max int) ([]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.URL(), Err: err}
	}

	var urls []string
	seen := make(map[string]bool)

	doc.Find(selSearchCard).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		a := card.Find(selSearchLink).First()
		if a.Length() == 0 {
			return true
		}
		href := a.AttrOr("href", "")
		if href == "" || !strings.Contains(href, "/dp/") {
			return true
		}
		if i := strings.IndexAny(href, "?#"); i >= 0 {
			href = href[:i]
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		full := base.ResolveReference(ref)
		if !sameCatalogHost(full.Hostname(), base.Hostname()) {
			return true
		}

		u := full.String()
		if seen[u] {
			return true
		}
		seen[u] = true
		urls = append(urls, u)
		return max <= 0 || len(urls) < max
	})

	p.logger.Debug("parsed search results", "url", resp.URL(), "count", len(urls))
	return urls, nil
}

// sameCatalogHost accepts the base host itself and any subdomain of its
// registrable part, so www.example.in matches example.in and m.example.in.
func sameCatalogHost(host, baseHost string) bool {
	host = strings.ToLower(host)
	baseHost = strings.TrimPrefix(strings.ToLower(baseHost), "www.")
	return host == baseHost || strings.HasSuffix(host, "."+baseHost)
}
