// Package wordcloud renders review text into a word-cloud image. The
// pipeline treats it as an opaque text→image transform.
package wordcloud

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"
)

// Renderer turns free text into image bytes.
type Renderer interface {
	Render(text string) ([]byte, error)
}

const (
	canvasWidth  = 800
	canvasHeight = 400
	maxWords     = 40
	maxFontSize  = 72
	minFontSize  = 12
)

// palette cycles across terms, brightest first.
var palette = []string{
	"#38bdf8", "#4ade80", "#fbbf24", "#f87171", "#818cf8",
	"#e2e8f0", "#f472b6", "#34d399", "#fb923c", "#a78bfa",
}

// SVGRenderer lays out the most frequent terms on a dark canvas, scaled by
// occurrence count. Layout is deterministic for a given input.
type SVGRenderer struct {
	logger *slog.Logger
}

// NewSVGRenderer creates an SVG word-cloud renderer.
func NewSVGRenderer(logger *slog.Logger) *SVGRenderer {
	return &SVGRenderer{logger: logger.With("component", "wordcloud")}
}

type term struct {
	word  string
	count int
}

// Render tokenizes the text, ranks terms by frequency, and emits an SVG.
func (r *SVGRenderer) Render(text string) ([]byte, error) {
	terms := rankTerms(text)
	if len(terms) > maxWords {
		terms = terms[:maxWords]
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		canvasWidth, canvasHeight, canvasWidth, canvasHeight)
	buf.WriteString(`<rect width="100%" height="100%" fill="#0f172a"/>`)

	maxCount := 1
	if len(terms) > 0 {
		maxCount = terms[0].count
	}

	// Flow layout: left to right, wrapping rows sized to the largest
	// word in the row.
	x, y, rowHeight := 10, 10, 0
	for i, t := range terms {
		size := minFontSize
		if maxCount > 1 {
			size += (maxFontSize - minFontSize) * (t.count - 1) / (maxCount - 1)
		}

		// Rough glyph width estimate for layout purposes.
		width := int(float64(size) * 0.6 * float64(len(t.word)))
		if x+width > canvasWidth-10 {
			x = 10
			y += rowHeight + 8
			rowHeight = 0
		}
		if y+size > canvasHeight-10 {
			break
		}

		fmt.Fprintf(&buf,
			`<text x="%d" y="%d" font-family="sans-serif" font-size="%d" fill="%s">%s</text>`,
			x, y+size, size, palette[i%len(palette)], escapeXML(t.word))

		x += width + 12
		if size > rowHeight {
			rowHeight = size
		}
	}

	buf.WriteString(`</svg>`)
	r.logger.Debug("wordcloud rendered", "terms", len(terms), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// rankTerms tokenizes text and returns terms ordered by descending count,
// ties broken alphabetically so identical input yields identical output.
func rankTerms(text string) []term {
	counts := make(map[string]int)
	for _, w := range tokenize(text) {
		counts[w]++
	}

	terms := make([]term, 0, len(counts))
	for w, c := range counts {
		terms = append(terms, term{word: w, count: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].count != terms[j].count {
			return terms[i].count > terms[j].count
		}
		return terms[i].word < terms[j].word
	})
	return terms
}

// tokenize splits on non-letter runes, lowercases, and drops stopwords and
// one- or two-letter fragments.
func tokenize(text string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		w = strings.ToLower(w)
		if len(w) < 3 || stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}

// stopwords are common English words excluded from the cloud.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "was": true,
	"one": true, "our": true, "out": true, "has": true, "had": true,
	"have": true, "this": true, "that": true, "with": true, "they": true,
	"from": true, "its": true, "his": true, "her": true, "she": true,
	"him": true, "will": true, "would": true, "there": true, "their": true,
	"what": true, "about": true, "which": true, "when": true, "were": true,
	"been": true, "than": true, "then": true, "them": true, "these": true,
	"some": true, "very": true, "just": true, "also": true, "only": true,
	"into": true, "over": true, "after": true, "more": true, "most": true,
	"such": true, "your": true, "because": true, "could": true, "other": true,
}
