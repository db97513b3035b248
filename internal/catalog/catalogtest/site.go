// Package catalogtest serves a small fake catalog site over httptest for
// fetch-layer and end-to-end tests.
package catalogtest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/IshaanNene/CompareGoat/internal/config"
)

// Item is one product page on the fake site.
type Item struct {
	ID       string
	Title    string
	Brand    string
	Price    string // as displayed, e.g. "₹29,990"
	Rating   string // e.g. "4.6"
	Reviews  string // e.g. "12,000"
	Features []string
	Related  []string // ids rendered in the recommendation carousel
	Status   int      // non-zero forces this status code
}

// Site is a fake catalog. Fields may be edited before the first request.
type Site struct {
	Items map[string]*Item
	// Search maps a keyword to the ids returned, in order.
	Search map[string][]string
	// SearchStatus forces a status code for every search request.
	SearchStatus int

	Server *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

// NewSite starts a server for the given items.
func NewSite(items ...*Item) *Site {
	s := &Site{
		Items:  make(map[string]*Item),
		Search: make(map[string][]string),
		hits:   make(map[string]int),
	}
	for _, it := range items {
		s.Items[it.ID] = it
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /dp/{id}", s.handleProduct)
	mux.HandleFunc("GET /s", s.handleSearch)
	s.Server = httptest.NewServer(mux)
	return s
}

// Close stops the server.
func (s *Site) Close() { s.Server.Close() }

// Config returns a configuration pointed at the site with pauses and
// retries disabled.
func (s *Site) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Catalog.BaseURL = s.Server.URL
	cfg.Catalog.Domain = "127.0.0.1"
	cfg.Fetcher.RetryCount = 1
	cfg.Fetcher.BackoffBase = time.Millisecond
	cfg.Fetcher.DelayMin = 0
	cfg.Fetcher.DelayMax = 0
	return cfg
}

// Hits returns how many times path was requested.
func (s *Site) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Site) record(path string) {
	s.mu.Lock()
	s.hits[path]++
	s.mu.Unlock()
}

func (s *Site) handleProduct(w http.ResponseWriter, r *http.Request) {
	s.record(r.URL.Path)
	it, ok := s.Items[r.PathValue("id")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if it.Status != 0 {
		w.WriteHeader(it.Status)
		fmt.Fprint(w, "<html><body>unavailable</body></html>")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, ProductPage(it))
}

func (s *Site) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("k")
	s.record("/s?k=" + keyword)
	if s.SearchStatus != 0 {
		w.WriteHeader(s.SearchStatus)
		fmt.Fprint(w, "<html><body>blocked</body></html>")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, SearchPage(s.Search[keyword]))
}

// ProductPage renders a detail page using the catalog's markup.
func ProductPage(it *Item) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body>\n")
	if it.Title != "" {
		fmt.Fprintf(&b, `<span id="productTitle"> %s </span>`+"\n", html.EscapeString(it.Title))
	}
	if it.Brand != "" {
		fmt.Fprintf(&b, `<a id="bylineInfo">Visit the %s Store</a>`+"\n", html.EscapeString(it.Brand))
	}
	if it.Price != "" {
		fmt.Fprintf(&b, `<span class="a-price"><span class="a-offscreen">%s</span></span>`+"\n", html.EscapeString(it.Price))
	}
	if it.Rating != "" {
		fmt.Fprintf(&b, `<span class="a-icon-alt">%s out of 5 stars</span>`+"\n", it.Rating)
	}
	if it.Reviews != "" {
		fmt.Fprintf(&b, `<span id="acrCustomerReviewText">%s ratings</span>`+"\n", it.Reviews)
	}
	if len(it.Features) > 0 {
		b.WriteString(`<div id="feature-bullets"><ul>`)
		for _, f := range it.Features {
			fmt.Fprintf(&b, `<li><span class="a-list-item">%s</span></li>`, html.EscapeString(f))
		}
		b.WriteString("</ul></div>\n")
	}
	if len(it.Related) > 0 {
		b.WriteString(`<ol class="a-carousel">`)
		for _, id := range it.Related {
			fmt.Fprintf(&b, `<li data-asin="%s"></li>`, id)
		}
		b.WriteString("</ol>\n")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// SearchPage renders a search results page listing ids in order.
func SearchPage(ids []string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body>\n")
	for i, id := range ids {
		fmt.Fprintf(&b,
			`<div data-component-type="s-search-result"><a class="a-link-normal s-no-outline" href="/Listing-%d/dp/%s/ref=sr_1_%d?keywords=x">item</a></div>`+"\n",
			i, id, i+1)
	}
	b.WriteString("</body></html>")
	return b.String()
}
