package catalog

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/IshaanNene/CompareGoat/internal/config"
)

var (
	productPathID = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{8,12})`)
	looseID       = regexp.MustCompile(`(B0[A-Z0-9]{8,10})`)
)

// URLs builds and recognises catalog URLs for one configured site.
type URLs struct {
	base       *url.URL
	domain     string
	searchPath string
}

// NewURLs validates the catalog section and returns a URL helper for it.
func NewURLs(cfg *config.CatalogConfig) (*URLs, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog base URL %q", cfg.BaseURL)
	}
	domain := strings.ToLower(cfg.Domain)
	if domain == "" {
		domain = strings.TrimPrefix(strings.ToLower(base.Hostname()), "www.")
	}
	searchPath := cfg.SearchPath
	if searchPath == "" {
		searchPath = "/s"
	}
	return &URLs{base: base, domain: domain, searchPath: searchPath}, nil
}

// Base returns the catalog root URL.
func (u *URLs) Base() *url.URL {
	c := *u.base
	return &c
}

// ProductURL returns the canonical detail page URL for id.
func (u *URLs) ProductURL(id string) string {
	return u.base.String() + "/dp/" + strings.TrimSpace(id)
}

// SearchURL returns the search page URL for keyword.
func (u *URLs) SearchURL(keyword string) string {
	return u.base.String() + u.searchPath + "?k=" + url.QueryEscape(keyword)
}

// Normalize maps any product URL, with or without tracking segments and
// query parameters, to its canonical /dp/<id> form. URLs without a
// recognisable id are only canonicalized.
func (u *URLs) Normalize(rawURL string) string {
	if id := ExtractID(rawURL); id != "" {
		return u.ProductURL(id)
	}
	return CanonicalizeURL(rawURL)
}

// IsCatalogURL reports whether rawURL points at the configured site.
func (u *URLs) IsCatalogURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(parsed.Host), u.domain)
}

// LooksLikeProductURL is a rough check for pasted product links.
func (u *URLs) LooksLikeProductURL(input string) bool {
	text := strings.ToLower(strings.TrimSpace(input))
	return strings.HasPrefix(text, "http") &&
		strings.Contains(text, u.domain) &&
		strings.Contains(text, "/dp/")
}

// LooksLikeID reports whether input is 10 ASCII letters or digits.
func LooksLikeID(input string) bool {
	text := strings.TrimSpace(input)
	if len(text) != 10 {
		return false
	}
	for _, r := range text {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// ExtractID pulls the product id out of a URL such as
// https://host/Some-Title/dp/B0CHX6NQMD/ref=sr_1_1 or /gp/product/<id>.
// Returns "" when no id is present.
func ExtractID(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		path = parsed.Path
	}
	if m := productPathID.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	if m := looseID.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

// CanonicalizeURL normalizes a URL for deduplication:
// - lowercases scheme and host
// - removes fragment
// - sorts query parameters
// - removes trailing slash (except root)
// - removes default ports (80 for http, 443 for https)
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = host
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}
