package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sjsage522/listingscraper/config"
	"sjsage522/listingscraper/helpers"
	"sjsage522/listingscraper/logger"
	scrapeerrors "sjsage522/listingscraper/pkg/errors"
)

// Fetcher retrieves one page
type Fetcher interface {
	Fetch(ctx context.Context, req PageRequest) (*helpers.Response, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, req PageRequest) (*helpers.Response, error)

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, req PageRequest) (*helpers.Response, error) {
	return f(ctx, req)
}

// HTTPFetcher fetches pages over HTTP with helpers.Fetch
var HTTPFetcher = FetcherFunc(func(ctx context.Context, req PageRequest) (*helpers.Response, error) {
	return helpers.Fetch(ctx, req.URL, req.Headers)
})

// Walker follows next-page links from a region's search page until none is
// left, extracting every listing on the way.
//
// There is no page limit and no cycle detection: a site whose next link
// points back to a visited page is walked until ctx is canceled.
type Walker struct {
	fetcher   Fetcher
	parser    *Parser
	limiter   Limiter
	selectors Selectors
	log       *logger.Logger
}

// NewWalker creates a walker. A nil log uses logger.ForWalker().
func NewWalker(fetcher Fetcher, parser *Parser, limiter Limiter, selectors Selectors, log *logger.Logger) *Walker {
	if log == nil {
		log = logger.ForWalker()
	}
	return &Walker{
		fetcher:   fetcher,
		parser:    parser,
		limiter:   limiter,
		selectors: selectors,
		log:       log,
	}
}

// Walk scrapes every page reachable from region.BaseURL+searchPath. Any
// error aborts the region and the rows collected so far are dropped.
func (w *Walker) Walk(ctx context.Context, region config.Region, searchPath string, headers map[string]string) (*Dataset, error) {
	log := w.log.WithField("region", region.Slug)
	extractor := NewExtractor(w.selectors, region.Slug)
	collector := NewCollector(region.Slug)

	queue := []string{region.BaseURL + searchPath}
	pages := 0

	for len(queue) > 0 {
		pageURL := queue[0]
		queue = queue[1:]

		if err := w.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		log.Info().Str("url", pageURL).Int("page", pages+1).Msg("Fetching page")

		resp, err := w.fetcher.Fetch(ctx, PageRequest{URL: pageURL, Headers: headers})
		if err != nil {
			return nil, fetchError(region.Slug, pageURL, err)
		}

		doc, err := w.parser.Parse(resp.Body, resp.ContentType)
		if err != nil {
			return nil, scrapeerrors.NewParsing(region.Slug, "failed to parse "+pageURL, err)
		}
		pages++

		fragments := doc.FindAll(w.selectors.Listing)
		for _, fragment := range fragments {
			row, err := extractor.Extract(fragment)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", pageURL, err)
			}
			collector.Add(row)
		}

		next, err := w.nextPage(doc, region)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", pageURL, err)
		}
		if next != "" {
			queue = append(queue, next)
		}

		log.Debug().
			Str("url", pageURL).
			Int("listings", len(fragments)).
			Str("next", next).
			Msg("Page processed")
	}

	log.Info().
		Int("pages", pages).
		Int("rows", collector.Len()).
		Msg("Pagination exhausted")

	return collector.Dataset(), nil
}

// nextPage returns the resolved next-page location, or "" when there is none
func (w *Walker) nextPage(doc *Document, region config.Region) (string, error) {
	sel := doc.FindFirst(w.selectors.NextPage)
	if sel == nil {
		return "", nil
	}

	href, exists := sel.Attr("href")
	if !exists {
		return "", scrapeerrors.NewMalformedAttribute(region.Slug, w.selectors.NextPage.Selector(), "href")
	}
	if strings.TrimSpace(href) == "" {
		return "", nil
	}

	next, err := helpers.ResolveURL(region.BaseURL, href)
	if err != nil {
		return "", scrapeerrors.NewParsing(region.Slug, "invalid next page link", err)
	}
	return next, nil
}

func fetchError(region, pageURL string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var rle *helpers.RateLimitError
	if errors.As(err, &rle) {
		return scrapeerrors.NewRateLimit(region, rle.RetryAfter)
	}

	return scrapeerrors.NewNetwork(region, "failed to fetch "+pageURL, err)
}
