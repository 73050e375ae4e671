package types

import (
	"bytes"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched HTML page. The parsed document tree is owned by the
// extractor that fetched it and is never mutated after parse.
type Page struct {
	// URL is the URL that was requested.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Headers are the response HTTP headers.
	Headers http.Header

	// Body is the raw response body bytes.
	Body []byte

	// FinalURL is the URL after any redirects.
	FinalURL string

	// FetchDuration is how long the fetch took.
	FetchDuration time.Duration

	// FetchedAt is when this page was received.
	FetchedAt time.Time

	doc *goquery.Document
}

// NewPage creates a Page from an http.Response.
func NewPage(url string, httpResp *http.Response, body []byte, duration time.Duration) *Page {
	return &Page{
		URL:           url,
		StatusCode:    httpResp.StatusCode,
		Headers:       httpResp.Header,
		Body:          body,
		FinalURL:      httpResp.Request.URL.String(),
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// NewBrowserPage creates a Page from headless browser output.
func NewBrowserPage(url string, body []byte, finalURL string, duration time.Duration) *Page {
	return &Page{
		URL:           url,
		StatusCode:    http.StatusOK,
		Headers:       make(http.Header),
		Body:          body,
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// Document returns the parsed document tree, lazily initializing it.
func (p *Page) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// IsSuccess returns true if the response status is 2xx.
func (p *Page) IsSuccess() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}
