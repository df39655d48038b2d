package crawl

import "strings"

// defaultPlaceholderPhrases flag parked, for-sale, and stub sites. A match on
// the home page forces the session to score 0 without further fetching.
var defaultPlaceholderPhrases = []string{
	"buy this domain",
	"this domain is for sale",
	"domain for sale",
	"domain is parked",
	"domain parking",
	"parked page",
	"parked domain",
	"coming soon",
	"under construction",
	"website is for sale",
	"account suspended",
	"default web page",
	"future home of something quite cool",
}

// PlaceholderDetector classifies a page as a parked or stub site.
type PlaceholderDetector struct {
	phrases []string
}

// NewPlaceholderDetector builds a detector from the given phrase list, or
// the defaults when none are provided.
func NewPlaceholderDetector(phrases []string) *PlaceholderDetector {
	if len(phrases) == 0 {
		phrases = defaultPlaceholderPhrases
	}
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return &PlaceholderDetector{phrases: lowered}
}

// IsPlaceholder reports whether the page looks like a parked or stub site.
// Matching is checked against the title and the leading portion of the body
// text; for-sale banners live above the fold.
func (d *PlaceholderDetector) IsPlaceholder(title, text string) bool {
	haystack := strings.ToLower(title + "\n" + head(text, 2000))
	for _, p := range d.phrases {
		if strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
