// Package predict asks an LLM backend for likely email addresses for a
// person at a company. Prediction is best-effort: a backend that fails or
// returns garbage yields no suggestions, never an error.
package predict

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// MaxSuggestions is the default cap on addresses one prediction returns.
const MaxSuggestions = 5

// EmailPredictor suggests candidate addresses. Implementations return nil on
// any failure; the cascade falls through to pattern generation.
type EmailPredictor interface {
	Suggest(ctx context.Context, req Request) []string
}

// Request identifies the person and company to predict addresses for.
type Request struct {
	PersonName  string
	CompanyName string
	Domain      string
	Context     string // optional free-form context (title, location)
	// Max caps the suggestions returned; zero or negative selects
	// MaxSuggestions.
	Max int
}

func (r Request) limit() int {
	if r.Max > 0 {
		return r.Max
	}
	return MaxSuggestions
}

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// parseEmails extracts addresses from LLM output, keeping only those at the
// requested domain, deduplicated, capped at max.
func parseEmails(text, domain string, max int) []string {
	domain = strings.ToLower(domain)
	seen := map[string]bool{}
	var out []string
	for _, m := range emailRe.FindAllString(text, -1) {
		email := strings.ToLower(strings.Trim(m, ".,;:"))
		if seen[email] {
			continue
		}
		if domain != "" && !strings.HasSuffix(email, "@"+domain) {
			continue
		}
		seen[email] = true
		out = append(out, email)
		if len(out) >= max {
			break
		}
	}
	return out
}

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Suggest the most likely work email addresses for ")
	b.WriteString(req.PersonName)
	if req.CompanyName != "" {
		b.WriteString(" at ")
		b.WriteString(req.CompanyName)
	}
	b.WriteString(" (domain: ")
	b.WriteString(req.Domain)
	b.WriteString(").")
	if req.Context != "" {
		b.WriteString(" Context: ")
		b.WriteString(req.Context)
		b.WriteString(".")
	}
	b.WriteString(" Reply with up to ")
	b.WriteString(strconv.Itoa(req.limit()))
	b.WriteString(" addresses at that domain, one per line, most likely first. No commentary.")
	return b.String()
}
