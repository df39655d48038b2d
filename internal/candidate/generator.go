// Package candidate deterministically enumerates email-address guesses for
// a named person at a domain.
package candidate

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxCandidates caps how many addresses one person yields.
const MaxCandidates = 10

// Generator produces ranked candidate addresses. Output is deterministic:
// the same name and domain always yield the same ordered list. Generic-inbox
// forms are never produced.
type Generator struct{}

// NewGenerator creates a candidate generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate enumerates up to MaxCandidates addresses for the person at the
// domain, in fixed priority order. A single known name token yields only the
// bare first-name form. Duplicates collapse while preserving priority order.
func (g *Generator) Generate(fullName, domain string) []string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil
	}

	tokens := nameTokens(fullName)
	if len(tokens) == 0 {
		return nil
	}

	first := tokens[0]
	if len(tokens) == 1 {
		return []string{first + "@" + domain}
	}

	last := tokens[len(tokens)-1]
	var middle string
	if len(tokens) > 2 {
		middle = tokens[1]
	}

	locals := []string{
		first,
		last,
		first + last,
		first[:1] + last,
		first + last[:1],
		last + first[:1],
		first + "." + last,
		first + "_" + last,
		first + "-" + last,
	}
	if middle != "" {
		locals = append(locals, first+middle[:1]+last)
	}

	seen := make(map[string]bool, len(locals))
	out := make([]string, 0, len(locals))
	for _, local := range locals {
		if local == "" || seen[local] {
			continue
		}
		seen[local] = true
		out = append(out, local+"@"+domain)
		if len(out) >= MaxCandidates {
			break
		}
	}
	return out
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// nameTokens lowercases, folds diacritics, and strips non-letter characters
// from each name token. Empty tokens drop out.
func nameTokens(fullName string) []string {
	folded, _, err := transform.String(deaccent, fullName)
	if err != nil {
		folded = fullName
	}

	var tokens []string
	for _, raw := range strings.Fields(folded) {
		var b strings.Builder
		for _, r := range strings.ToLower(raw) {
			if r >= 'a' && r <= 'z' {
				b.WriteRune(r)
			}
		}
		if tok := b.String(); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
