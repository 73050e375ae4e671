package scraper

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/sammyzayn123/review-scraper/internal/config"
)

// matcher resolves configured structural markers against a document tree.
// Both CSS (goquery) and XPath (htmlquery) selector types are supported so
// a markup change on the site only ever means editing configuration.
type matcher struct {
	logger *slog.Logger
}

func newMatcher(logger *slog.Logger) *matcher {
	return &matcher{logger: logger.With("component", "selector_matcher")}
}

// findAll returns every node matching the selector within scope, in
// document order.
func (m *matcher) findAll(scope *goquery.Selection, sel config.Selector) []*goquery.Selection {
	switch sel.Type {
	case "", "css":
		var out []*goquery.Selection
		scope.Find(sel.Query).Each(func(_ int, s *goquery.Selection) {
			out = append(out, s)
		})
		return out
	case "xpath":
		return m.findAllXPath(scope, sel.Query)
	default:
		m.logger.Warn("unknown selector type", "type", sel.Type, "query", sel.Query)
		return nil
	}
}

// value returns the first match's text (or attribute) within scope. The
// second return reports whether the node was structurally present; callers
// substitute their sentinel when it is not.
func (m *matcher) value(scope *goquery.Selection, sel config.Selector) (string, bool) {
	switch sel.Type {
	case "", "css":
		found := scope.Find(sel.Query).First()
		if found.Length() == 0 {
			return "", false
		}
		if sel.Attribute != "" && sel.Attribute != "text" {
			attr, ok := found.Attr(sel.Attribute)
			return strings.TrimSpace(attr), ok
		}
		return strings.TrimSpace(found.Text()), true
	case "xpath":
		return m.valueXPath(scope, sel)
	default:
		m.logger.Warn("unknown selector type", "type", sel.Type, "query", sel.Query)
		return "", false
	}
}

// findAllXPath runs an XPath query over the scope's underlying nodes.
func (m *matcher) findAllXPath(scope *goquery.Selection, query string) []*goquery.Selection {
	var out []*goquery.Selection
	for _, root := range scope.Nodes {
		nodes, err := htmlquery.QueryAll(root, query)
		if err != nil {
			m.logger.Warn("invalid xpath", "query", query, "error", err)
			return nil
		}
		for _, n := range nodes {
			out = append(out, goquery.NewDocumentFromNode(n).Selection)
		}
	}
	return out
}

func (m *matcher) valueXPath(scope *goquery.Selection, sel config.Selector) (string, bool) {
	var first *html.Node
	for _, root := range scope.Nodes {
		n, err := htmlquery.Query(root, sel.Query)
		if err != nil {
			m.logger.Warn("invalid xpath", "query", sel.Query, "error", err)
			return "", false
		}
		if n != nil {
			first = n
			break
		}
	}
	if first == nil {
		return "", false
	}
	if sel.Attribute != "" && sel.Attribute != "text" {
		return strings.TrimSpace(htmlquery.SelectAttr(first, sel.Attribute)), true
	}
	return strings.TrimSpace(htmlquery.InnerText(first)), true
}
