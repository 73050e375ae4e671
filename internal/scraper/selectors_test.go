package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/sammyzayn123/review-scraper/internal/config"
)

const selectorHTML = `<html><body>
<div class="card" data-id="c1"><span class="title">First</span></div>
<div class="card" data-id="c2"><span class="title">  Second  </span></div>
<div class="other"><span class="title">Not a card</span></div>
</body></html>`

func selectorDoc(t *testing.T) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(selectorHTML))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestMatcherFindAllCSS(t *testing.T) {
	m := newMatcher(testLogger)
	doc := selectorDoc(t)

	cards := m.findAll(doc.Selection, config.Selector{Type: "css", Query: "div.card"})
	if len(cards) != 2 {
		t.Fatalf("got %d matches, want 2", len(cards))
	}
	if got, _ := m.value(cards[0], config.Selector{Query: "span.title"}); got != "First" {
		t.Errorf("first card title = %q", got)
	}
}

func TestMatcherFindAllXPath(t *testing.T) {
	m := newMatcher(testLogger)
	doc := selectorDoc(t)

	cards := m.findAll(doc.Selection, config.Selector{Type: "xpath", Query: `//div[@class="card"]`})
	if len(cards) != 2 {
		t.Fatalf("got %d matches, want 2", len(cards))
	}

	got, ok := m.value(cards[1], config.Selector{Type: "xpath", Query: `.//span[@class="title"]`})
	if !ok || got != "Second" {
		t.Errorf("second card title = %q, ok=%v", got, ok)
	}
}

func TestMatcherValue(t *testing.T) {
	m := newMatcher(testLogger)
	doc := selectorDoc(t)

	tests := []struct {
		name   string
		sel    config.Selector
		want   string
		wantOK bool
	}{
		{"css text trimmed", config.Selector{Type: "css", Query: "div.card span.title"}, "First", true},
		{"css attribute", config.Selector{Type: "css", Query: "div.card", Attribute: "data-id"}, "c1", true},
		{"css no match", config.Selector{Type: "css", Query: "div.missing"}, "", false},
		{"css attribute absent", config.Selector{Type: "css", Query: "div.other", Attribute: "data-id"}, "", false},
		{"xpath text", config.Selector{Type: "xpath", Query: `//div[@class="other"]/span`}, "Not a card", true},
		{"xpath attribute", config.Selector{Type: "xpath", Query: `//div[@class="card"]`, Attribute: "data-id"}, "c1", true},
		{"xpath no match", config.Selector{Type: "xpath", Query: `//article`}, "", false},
		{"unknown type", config.Selector{Type: "jq", Query: "div.card"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.value(doc.Selection, tt.sel)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("value = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
