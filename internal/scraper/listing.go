package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/fetcher"
	"github.com/sammyzayn123/review-scraper/internal/types"
)

// ListingExtractor turns a search term into a list of product references by
// scraping the first search-result page.
type ListingExtractor struct {
	fetcher fetcher.Fetcher
	site    *config.SiteConfig
	match   *matcher
	logger  *slog.Logger
}

// NewListingExtractor creates a listing extractor bound to a site.
func NewListingExtractor(f fetcher.Fetcher, site *config.SiteConfig, logger *slog.Logger) *ListingExtractor {
	return &ListingExtractor{
		fetcher: f,
		site:    site,
		match:   newMatcher(logger),
		logger:  logger.With("component", "listing_extractor"),
	}
}

// SearchURL builds the search-result URL for a term. Spaces become "+" via
// query escaping; everything else is percent-encoded.
func (e *ListingExtractor) SearchURL(term string) string {
	q := url.QueryEscape(strings.TrimSpace(term))
	return strings.TrimRight(e.site.BaseURL, "/") + e.site.SearchPath + "?q=" + q
}

// Products fetches the listing page and extracts (name, detail URL) pairs
// from the product-card nodes, in document order. Cards missing either the
// name or the link node are skipped; they are malformed, not fatal. A fetch
// failure here is fatal to the whole run and is returned to the caller.
func (e *ListingExtractor) Products(ctx context.Context, term string) ([]types.ProductRef, error) {
	searchURL := e.SearchURL(term)

	page, err := e.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := page.Document()
	if err != nil {
		return nil, &types.ParseError{URL: searchURL, Err: err}
	}

	cardSel, _ := e.site.Selector(config.RoleProductCard)
	nameSel, _ := e.site.Selector(config.RoleProductName)
	linkSel, _ := e.site.Selector(config.RoleProductLink)

	base, err := url.Parse(e.site.BaseURL)
	if err != nil {
		return nil, types.ErrInvalidURL
	}

	var refs []types.ProductRef
	for _, card := range e.match.findAll(doc.Selection, cardSel) {
		name, okName := e.match.value(card, nameSel)
		link, okLink := e.match.value(card, linkSel)
		if !okName || !okLink || name == "" || link == "" {
			e.logger.Debug("skipping malformed product card", "url", searchURL)
			continue
		}

		ref, err := url.Parse(link)
		if err != nil {
			e.logger.Debug("skipping card with unparsable link", "link", link)
			continue
		}

		refs = append(refs, types.ProductRef{
			Name:      name,
			DetailURL: base.ResolveReference(ref).String(),
		})
	}

	e.logger.Info("listing extracted",
		"term", term,
		"url", searchURL,
		"products", len(refs),
	)

	return refs, nil
}
