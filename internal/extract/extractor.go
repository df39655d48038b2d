// Package extract turns raw page content into typed contact signals and
// merges them into deduplicated contact candidates.
package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

var (
	emailRe  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	mailtoRe = regexp.MustCompile(`(?i)href\s*=\s*["']mailto:([^"'?]+)`)
	telRe    = regexp.MustCompile(`(?i)href\s*=\s*["']tel:([^"']+)["']`)
	// US-style and international phone shapes in free text.
	phoneTextRe = regexp.MustCompile(`\+?\d{1,2}[\s.\-]?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	// Two to three capitalized tokens, optional middle initial.
	personNameRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z]\.?)?(?:\s+[A-Z][a-z]+){1,2})\b`)
	socialRe     = regexp.MustCompile(`(?i)href\s*=\s*["'](https?://(?:www\.)?(?:linkedin\.com|facebook\.com|twitter\.com|x\.com|instagram\.com)/[^"']+)["']`)
)

// Extractor produces ContactSignals from a fetched page. Structured markup
// is tried first and yields the structured tier; everything else goes through
// the plain-text heuristics at the direct tier. Extraction never returns an
// error: a page it cannot make sense of yields no signals.
type Extractor struct{}

// NewExtractor creates a signal extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns all signals found on the page.
func (e *Extractor) Extract(page model.FetchedPage) []model.ContactSignal {
	var signals []model.ContactSignal
	signals = append(signals, extractStructured(page)...)
	signals = append(signals, e.extractEmails(page)...)
	signals = append(signals, e.extractPhones(page)...)
	signals = append(signals, e.extractNames(page)...)
	signals = append(signals, e.extractSocialLinks(page)...)
	return signals
}

// extractEmails matches mailto: hrefs and free-text addresses. Generic
// local-parts are recorded like any other address; genericity is a
// downstream filter, not an extraction-time rejection.
func (e *Extractor) extractEmails(page model.FetchedPage) []model.ContactSignal {
	var signals []model.ContactSignal
	seen := map[string]bool{}

	add := func(raw string) {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" || seen[email] || !emailRe.MatchString(email) {
			return
		}
		// Image filenames and version strings sneak past the regex.
		if strings.HasSuffix(email, ".png") || strings.HasSuffix(email, ".jpg") ||
			strings.HasSuffix(email, ".gif") || strings.HasSuffix(email, ".webp") {
			return
		}
		seen[email] = true
		signals = append(signals, model.ContactSignal{
			Kind:      model.SignalEmail,
			Value:     email,
			Tier:      model.TierDirect,
			SourceURL: page.URL,
		})
	}

	for _, m := range mailtoRe.FindAllStringSubmatch(page.HTML, -1) {
		add(m[1])
	}
	for _, m := range emailRe.FindAllString(page.Text, -1) {
		add(m)
	}
	return signals
}

// extractPhones takes tel: hrefs first, then free-text numbers that have a
// business keyword within the context window.
func (e *Extractor) extractPhones(page model.FetchedPage) []model.ContactSignal {
	var signals []model.ContactSignal
	seen := map[string]bool{}

	add := func(norm string) {
		if norm == "" || seen[norm] {
			return
		}
		seen[norm] = true
		signals = append(signals, model.ContactSignal{
			Kind:      model.SignalPhone,
			Value:     norm,
			Tier:      model.TierDirect,
			SourceURL: page.URL,
		})
	}

	for _, m := range telRe.FindAllStringSubmatch(page.HTML, -1) {
		add(NormalizePhone(m[1]))
	}
	for _, loc := range phoneTextRe.FindAllStringIndex(page.Text, -1) {
		if !HasPhoneContext(page.Text, loc[0], loc[1]) {
			continue
		}
		add(NormalizePhone(page.Text[loc[0]:loc[1]]))
	}
	return signals
}

// extractNames matches capitalized name shapes that sit near a leadership
// title keyword. Free-floating capitalized pairs are rejected; they are
// usually navigation or brand text.
func (e *Extractor) extractNames(page model.FetchedPage) []model.ContactSignal {
	var signals []model.ContactSignal
	seen := map[string]bool{}

	for _, loc := range personNameRe.FindAllStringIndex(page.Text, -1) {
		name := strings.TrimSpace(page.Text[loc[0]:loc[1]])
		if !LooksLikePersonName(name) {
			continue
		}
		title := NearbyTitle(page.Text, loc[0], loc[1])
		if title == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		signals = append(signals, model.ContactSignal{
			Kind:      model.SignalPersonName,
			Value:     name,
			Tier:      model.TierDirect,
			SourceURL: page.URL,
			Title:     titleCase(title),
		})
	}
	return signals
}

func (e *Extractor) extractSocialLinks(page model.FetchedPage) []model.ContactSignal {
	var signals []model.ContactSignal
	seen := map[string]bool{}
	for _, m := range socialRe.FindAllStringSubmatch(page.HTML, -1) {
		link := strings.TrimSuffix(m[1], "/")
		key := strings.ToLower(link)
		if seen[key] {
			continue
		}
		seen[key] = true
		signals = append(signals, model.ContactSignal{
			Kind:      model.SignalSocialLink,
			Value:     link,
			Tier:      model.TierDirect,
			SourceURL: page.URL,
		})
	}
	return signals
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if len(w) <= 3 && (w == "ceo" || w == "cfo" || w == "coo" || w == "cto" || w == "vp") {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
