// Package catalog is the boundary to the retail site: it turns product
// ids, URLs and names into product records and discovers candidate
// references through the site's search and recommendation regions.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/fetcher"
	"github.com/IshaanNene/CompareGoat/internal/observability"
	"github.com/IshaanNene/CompareGoat/internal/parser"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// Client fetches and parses catalog pages. Records are cached by canonical
// URL for the lifetime of the client; use Fork to start a fresh cache for
// each comparison run.
type Client struct {
	fetcher     fetcher.Fetcher
	parser      *parser.Parser
	urls        *URLs
	limiter     *rate.Limiter
	pauser      *fetcher.Pauser
	nameResults int
	metrics     *observability.Metrics
	logger      *slog.Logger

	mu      sync.Mutex
	records map[string]*types.Product
	related map[string][]string
}

// NewClient creates a catalog client on top of f.
func NewClient(cfg *config.Config, f fetcher.Fetcher, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	urls, err := NewURLs(&cfg.Catalog)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}

	var limiter *rate.Limiter
	if cfg.Catalog.MaxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Catalog.MaxRPS), 1)
	}

	nameResults := cfg.Discovery.NameSearchResults
	if nameResults <= 0 {
		nameResults = 5
	}

	return &Client{
		fetcher:     f,
		parser:      parser.New(logger),
		urls:        urls,
		limiter:     limiter,
		pauser:      fetcher.NewPauser(cfg.Fetcher.DelayMin, cfg.Fetcher.DelayMax),
		nameResults: nameResults,
		metrics:     metrics,
		logger:      logger.With("component", "catalog"),
		records:     make(map[string]*types.Product),
		related:     make(map[string][]string),
	}, nil
}

// Fork returns a client sharing the fetcher and limiter but with an
// empty record cache.
func (c *Client) Fork() *Client {
	return &Client{
		fetcher:     c.fetcher,
		parser:      c.parser,
		urls:        c.urls,
		limiter:     c.limiter,
		pauser:      c.pauser,
		nameResults: c.nameResults,
		metrics:     c.metrics,
		logger:      c.logger,
		records:     make(map[string]*types.Product),
		related:     make(map[string][]string),
	}
}

// URLs returns the client's URL helper.
func (c *Client) URLs() *URLs { return c.urls }

// Normalize returns the canonical product URL for rawURL.
func (c *Client) Normalize(rawURL string) string { return c.urls.Normalize(rawURL) }

// Pause waits the randomized inter-request delay.
func (c *Client) Pause(ctx context.Context) error {
	return c.pauser.Pause(ctx)
}

// Cached reports whether the record for rawURL is already in the cache.
func (c *Client) Cached(rawURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.records[c.urls.Normalize(rawURL)]
	return ok
}

// FetchByURL normalizes rawURL to its canonical product form, fetches the
// page and parses it. Fails with *types.FetchError when the page cannot be
// retrieved and *types.ParseError when it holds no usable fields.
func (c *Client) FetchByURL(ctx context.Context, rawURL string) (*types.Product, error) {
	canonical := c.urls.Normalize(rawURL)

	c.mu.Lock()
	if p, ok := c.records[canonical]; ok {
		c.mu.Unlock()
		c.metrics.CacheHits.Add(1)
		return p, nil
	}
	c.mu.Unlock()

	resp, err := c.fetchPage(ctx, canonical, types.TagProduct)
	if err != nil {
		return nil, err
	}

	id := ExtractID(canonical)
	product, err := c.parser.ParseProduct(resp, id)
	if err != nil {
		c.metrics.ParseFailures.Add(1)
		return nil, err
	}

	// Recommendation regions are read now so the seed page is fetched once.
	related, err := c.parser.ParseRelatedIDs(resp, id, 0)
	if err != nil {
		c.logger.Debug("related ids unavailable", "url", canonical, "error", err)
	}

	c.mu.Lock()
	c.records[canonical] = product
	c.related[canonical] = related
	c.mu.Unlock()

	return product, nil
}

// FetchByID fetches the product with the given id. An id the site does not
// know fails with *types.NotFoundError; an unusable page with
// *types.ParseError.
func (c *Client) FetchByID(ctx context.Context, id string) (*types.Product, error) {
	product, err := c.FetchByURL(ctx, c.urls.ProductURL(id))
	if err != nil {
		var fe *types.FetchError
		if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
			return nil, &types.NotFoundError{Query: id, Err: err}
		}
		return nil, err
	}
	return product, nil
}

// FetchByName searches for name and returns the first result that parses.
// Fails with *types.NotFoundError when the search yields nothing usable.
func (c *Client) FetchByName(ctx context.Context, name string) (*types.Product, error) {
	urls, err := c.searchURLs(ctx, name, c.nameResults)
	if err != nil {
		return nil, &types.NotFoundError{Query: name, Err: err}
	}
	if len(urls) == 0 {
		return nil, &types.NotFoundError{Query: name, Err: types.ErrNoResults}
	}

	var lastErr error
	for _, u := range urls {
		product, err := c.FetchByURL(ctx, u)
		if err == nil {
			return product, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		c.logger.Warn("search result unusable", "url", u, "error", err)
	}
	return nil, &types.NotFoundError{Query: name, Err: lastErr}
}

// SearchCandidates returns up to max product references from a keyword
// search, in result order. Failures are logged and yield no references.
func (c *Client) SearchCandidates(ctx context.Context, keyword string, max int) []types.Ref {
	urls, err := c.searchURLs(ctx, keyword, max)
	if err != nil {
		c.metrics.SourceFailures.Add(1)
		c.logger.Warn("search source failed", "keyword", keyword, "error", err)
		return nil
	}

	refs := make([]types.Ref, 0, len(urls))
	for _, u := range urls {
		refs = append(refs, types.Ref{URL: u, ID: ExtractID(u)})
	}
	return refs
}

// RelatedFromPage returns up to max references from the recommendation
// regions of seed's detail page, excluding seed itself. Failures are
// logged and yield no references.
func (c *Client) RelatedFromPage(ctx context.Context, seed *types.Product, max int) []types.Ref {
	if seed == nil || seed.URL == "" {
		return nil
	}
	canonical := c.urls.Normalize(seed.URL)

	c.mu.Lock()
	ids, ok := c.related[canonical]
	c.mu.Unlock()

	if !ok {
		resp, err := c.fetchPage(ctx, canonical, types.TagRelated)
		if err != nil {
			c.metrics.SourceFailures.Add(1)
			c.logger.Warn("related source failed", "url", canonical, "error", err)
			return nil
		}
		ids, err = c.parser.ParseRelatedIDs(resp, seed.ID, 0)
		if err != nil {
			c.metrics.SourceFailures.Add(1)
			c.logger.Warn("related source failed", "url", canonical, "error", err)
			return nil
		}
		c.mu.Lock()
		c.related[canonical] = ids
		c.mu.Unlock()
	}

	var refs []types.Ref
	for _, id := range ids {
		if id == seed.ID {
			continue
		}
		refs = append(refs, types.Ref{URL: c.urls.ProductURL(id), ID: id})
		if max > 0 && len(refs) >= max {
			break
		}
	}
	return refs
}

func (c *Client) searchURLs(ctx context.Context, keyword string, max int) ([]string, error) {
	resp, err := c.fetchPage(ctx, c.urls.SearchURL(keyword), types.TagSearch)
	if err != nil {
		return nil, err
	}
	return c.parser.ParseSearchResults(resp, c.urls.Base(), max)
}

func (c *Client) fetchPage(ctx context.Context, rawURL, tag string) (*types.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &types.FetchError{URL: rawURL, Err: err}
		}
	}

	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	req.Tag = tag

	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &types.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return resp, nil
}
