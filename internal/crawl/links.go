package crawl

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// contactKeywords mark a link as contact-indicative when found in its path
// or anchor text.
var contactKeywords = []string{
	"contact",
	"about",
	"team",
	"staff",
	"our-team",
	"meet",
	"people",
	"leadership",
	"location",
	"directions",
	"privacy",
}

// conventionalPaths are fetched even when the site never links to them.
var conventionalPaths = []string{
	"/contact",
	"/contact-us",
	"/contactus",
	"/about",
	"/about-us",
	"/team",
	"/our-team",
	"/staff",
	"/meet-the-team",
	"/location",
	"/directions",
	"/privacy",
}

// defaultExcludePatterns drop link categories that never carry contact
// signals worth a fetch.
var defaultExcludePatterns = []string{
	"/blog/*",
	"/news/*",
	"/press/*",
	"/careers/*",
	"/shop/*",
	"/products/*",
	"/cart/*",
	"/*.pdf",
	"/*.jpg",
	"/*.png",
	"/*.zip",
}

var anchorRe = regexp.MustCompile(`(?is)<a[^>]+href\s*=\s*["']([^"'#]+)["'][^>]*>(.*?)</a>`)

// LinkDiscoverer collects same-host candidate page URLs from a fetched page,
// ranking contact-indicative links ahead of everything else.
type LinkDiscoverer struct {
	keywords []string
	guesses  []string
	excludes *PathMatcher
}

// NewLinkDiscoverer builds a discoverer. Empty slices fall back to defaults.
func NewLinkDiscoverer(keywords, guesses, excludePatterns []string) *LinkDiscoverer {
	if len(keywords) == 0 {
		keywords = contactKeywords
	}
	if len(guesses) == 0 {
		guesses = conventionalPaths
	}
	return &LinkDiscoverer{
		keywords: keywords,
		guesses:  guesses,
		excludes: NewPathMatcher(excludePatterns),
	}
}

// Discover returns candidate URLs in visit order: contact-indicative links
// from the page first, then conventional guesses, then remaining same-host
// links. The base URL itself is never included.
func (d *LinkDiscoverer) Discover(baseURL string, html string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var contactLinks, otherLinks []string
	seen := map[string]bool{canonicalKey(base): true}

	for _, m := range anchorRe.FindAllStringSubmatch(html, -1) {
		href, anchorText := m[1], stripHTML(m[2])
		u := d.resolve(base, href)
		if u == nil {
			continue
		}
		key := canonicalKey(u)
		if seen[key] {
			continue
		}
		seen[key] = true

		if d.isContactLike(u.Path, anchorText) {
			contactLinks = append(contactLinks, u.String())
		} else {
			otherLinks = append(otherLinks, u.String())
		}
	}

	var guesses []string
	for _, p := range d.guesses {
		u := *base
		u.Path = p
		u.RawQuery = ""
		key := canonicalKey(&u)
		if seen[key] {
			continue
		}
		seen[key] = true
		guesses = append(guesses, u.String())
	}

	out := make([]string, 0, len(contactLinks)+len(guesses)+len(otherLinks))
	out = append(out, contactLinks...)
	out = append(out, guesses...)
	out = append(out, otherLinks...)
	return out
}

// IsContactLike reports whether a URL path looks contact-indicative. Used by
// the controller to count contact pages for the score bonus.
func (d *LinkDiscoverer) IsContactLike(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return d.isContactLike(u.Path, "")
}

func (d *LinkDiscoverer) isContactLike(urlPath, anchorText string) bool {
	p := strings.ToLower(urlPath)
	text := strings.ToLower(anchorText)
	for _, kw := range d.keywords {
		if strings.Contains(p, kw) || (text != "" && strings.Contains(text, kw)) {
			return true
		}
	}
	return false
}

// resolve makes href absolute and filters out off-host, non-HTTP, and
// excluded targets.
func (d *LinkDiscoverer) resolve(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "javascript:") {
		return nil
	}
	u, err := base.Parse(href)
	if err != nil {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	if !strings.EqualFold(stripWWW(u.Host), stripWWW(base.Host)) {
		return nil
	}
	if d.excludes.IsExcluded(u.String()) {
		return nil
	}
	u.Fragment = ""
	return u
}

func stripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func canonicalKey(u *url.URL) string {
	p := strings.TrimSuffix(u.Path, "/")
	return stripWWW(u.Host) + p + "?" + u.RawQuery
}

// PathMatcher filters URLs based on glob-style path patterns.
// Uses path.Match for proper glob matching, plus a segmented match so
// "/blog/*" matches multi-level paths like "/blog/deep/path".
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a PathMatcher from glob patterns (e.g. "/blog/*",
// "/*.pdf"). Falls back to default patterns if none are provided.
func NewPathMatcher(patterns []string) *PathMatcher {
	if len(patterns) == 0 {
		patterns = defaultExcludePatterns
	}
	return &PathMatcher{patterns: patterns}
}

// IsExcluded checks whether a URL matches any exclude pattern.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	urlPath := strings.ToLower(u.Path)
	for _, pattern := range m.patterns {
		if matchSegmented(strings.ToLower(pattern), urlPath) {
			return true
		}
	}
	return false
}

// matchSegmented performs glob matching where a pattern like "/blog/*"
// matches both "/blog/post" and "/blog/deep/nested/path".
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}
	return false
}
