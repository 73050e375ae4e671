package scraper

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/fetcher"
	"github.com/sammyzayn123/review-scraper/internal/types"
)

// ReviewExtractor scrapes a product detail page into review records.
//
// It never returns an error: the per-product fault isolation boundary lives
// here. Any failure for one product (fetch, missing price, bad markup)
// yields zero records and a log line, and leaves other products untouched.
type ReviewExtractor struct {
	fetcher fetcher.Fetcher
	site    *config.SiteConfig
	match   *matcher
	logger  *slog.Logger
}

// NewReviewExtractor creates a review extractor bound to a site.
func NewReviewExtractor(f fetcher.Fetcher, site *config.SiteConfig, logger *slog.Logger) *ReviewExtractor {
	return &ReviewExtractor{
		fetcher: f,
		site:    site,
		match:   newMatcher(logger),
		logger:  logger.With("component", "review_extractor"),
	}
}

// Reviews fetches a product page and extracts one record per review
// container. The label (the search term) and the product price are shared
// across the product's records; the four review sub-fields each fall back
// to their sentinel independently, because any one of them may legitimately
// be missing without invalidating the rest of the review.
func (e *ReviewExtractor) Reviews(ctx context.Context, detailURL, label string) []types.ReviewRecord {
	page, err := e.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		e.logger.Warn("product fetch failed, skipping product",
			"url", detailURL, "product", label, "error", err)
		return nil
	}

	doc, err := page.Document()
	if err != nil {
		e.logger.Warn("product page unparsable, skipping product",
			"url", detailURL, "product", label, "error", err)
		return nil
	}

	priceSel, _ := e.site.Selector(config.RolePrice)
	priceText, ok := e.match.value(doc.Selection, priceSel)
	if !ok {
		e.logger.Warn("skipping product",
			"url", detailURL, "product", label, "selector", priceSel.Query,
			"error", types.ErrNoPrice)
		return nil
	}
	price, err := ParsePrice(priceText)
	if err != nil {
		e.logger.Warn("price text unparsable, skipping product",
			"url", detailURL, "product", label, "text", priceText, "error", err)
		return nil
	}

	nameSel, _ := e.site.Selector(config.RoleReviewerName)
	ratingSel, _ := e.site.Selector(config.RoleRating)
	headingSel, _ := e.site.Selector(config.RoleCommentHeading)
	commentSel, _ := e.site.Selector(config.RoleComment)
	containerSel, _ := e.site.Selector(config.RoleReviewContainer)

	var records []types.ReviewRecord
	for _, box := range e.match.findAll(doc.Selection, containerSel) {
		rec := types.ReviewRecord{
			Product: label,
			Price:   price,
		}

		if v, ok := e.match.value(box, nameSel); ok && v != "" {
			rec.Name = v
		} else {
			rec.Name = types.NoName
		}
		if v, ok := e.match.value(box, ratingSel); ok && v != "" {
			rec.Rating = v
		} else {
			rec.Rating = types.NoRating
		}
		if v, ok := e.match.value(box, headingSel); ok && v != "" {
			rec.CommentHeading = v
		} else {
			rec.CommentHeading = types.NoCommentHeading
		}
		// Comment has no sentinel; a missing body is an empty comment.
		rec.Comment, _ = e.match.value(box, commentSel)

		records = append(records, rec)
	}

	e.logger.Debug("reviews extracted",
		"url", detailURL,
		"product", label,
		"price", price,
		"reviews", len(records),
	)

	return records
}

// currency markers stripped before numeric parsing
var priceStrip = []string{"₹", "Rs.", "Rs", "INR", ",", " "}

// ParsePrice converts a displayed price like "₹1,39,999" into a float.
func ParsePrice(text string) (float64, error) {
	s := strings.TrimSpace(text)
	for _, tok := range priceStrip {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, types.ErrBadPrice
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, types.ErrBadPrice
	}
	return v, nil
}
