package extract

import (
	"regexp"
	"strings"
)

// DefaultGenericLocalParts are role-based inbox prefixes. Generic emails are
// still extracted as signals; genericity only matters downstream (scoring,
// candidate selection).
var DefaultGenericLocalParts = []string{
	"info", "contact", "hello", "admin", "office", "support",
	"sales", "team", "help", "hi", "enquiries", "enquiry", "general",
}

// IsGenericLocalPart reports whether an email's local-part is a role-based
// inbox rather than a named individual.
func IsGenericLocalPart(email string, denylist []string) bool {
	if len(denylist) == 0 {
		denylist = DefaultGenericLocalParts
	}
	local, _, found := strings.Cut(strings.ToLower(email), "@")
	if !found {
		local = strings.ToLower(email)
	}
	for _, g := range denylist {
		if local == g {
			return true
		}
	}
	return false
}

// phoneContextKeywords gate free-text phone matches. A bare number with no
// such keyword nearby is almost always a price, an ID, or layout junk.
var phoneContextRe = regexp.MustCompile(`(?i)\b(phone|call|contact|tel|reach)\b`)

// phoneContextWindow is how far around a match the keyword may sit.
const phoneContextWindow = 100

// HasPhoneContext reports whether a business-phone keyword appears within
// the window around text[start:end].
func HasPhoneContext(text string, start, end int) bool {
	lo := start - phoneContextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + phoneContextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return phoneContextRe.MatchString(text[lo:hi])
}

// leadershipTitles anchor person-name extraction. A capitalized two-word
// sequence with none of these nearby is treated as navigation or brand text.
var leadershipTitles = []string{
	"director", "owner", "manager", "founder", "co-founder", "president",
	"ceo", "cfo", "coo", "cto", "principal", "partner", "coordinator",
	"supervisor", "administrator", "chair", "vice president", "vp",
	"head of", "lead", "officer", "executive",
}

var titleAltern = func() *regexp.Regexp {
	parts := make([]string, len(leadershipTitles))
	for i, t := range leadershipTitles {
		parts[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(parts, "|") + `)\b`)
}()

// titleContextWindow is how far from a name a title keyword may sit.
const titleContextWindow = 80

// NearbyTitle returns the leadership-title keyword found within the window
// around text[start:end], or "" if none.
func NearbyTitle(text string, start, end int) string {
	lo := start - titleContextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + titleContextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return titleAltern.FindString(text[lo:hi])
}

// nonNameTokens filter obvious false-positive "names" coming from platform,
// ad-tech, and boilerplate strings.
var nonNameTokens = []string{
	"google", "facebook", "twitter", "instagram", "linkedin", "youtube",
	"analytics", "pixel", "adwords", "wordpress", "squarespace", "wix",
	"shopify", "cloudflare", "privacy", "policy", "terms", "cookie",
	"javascript", "copyright", "rights", "reserved", "webmaster",
}

// LooksLikePersonName applies the token denylist and basic shape checks to a
// candidate name.
func LooksLikePersonName(name string) bool {
	tokens := strings.Fields(name)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}
	lower := strings.ToLower(name)
	for _, bad := range nonNameTokens {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}

var phoneDigitsRe = regexp.MustCompile(`\d`)

// NormalizePhone strips everything but digits and a leading plus. Numbers
// with fewer than 10 digits are rejected (returns "").
func NormalizePhone(raw string) string {
	digits := strings.Join(phoneDigitsRe.FindAllString(raw, -1), "")
	if len(digits) < 10 || len(digits) > 15 {
		return ""
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "+") {
		return "+" + digits
	}
	return digits
}
