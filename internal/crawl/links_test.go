package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoverRanksContactLinksFirst(t *testing.T) {
	d := NewLinkDiscoverer(nil, nil, nil)

	html := `
	<a href="/pricing">Pricing</a>
	<a href="/contact-us">Get in touch</a>
	<a href="/services">Services</a>
	<a href="/team/">Our Team</a>
	`
	got := d.Discover("https://acme.com", html)

	assert.Equal(t, "https://acme.com/contact-us", got[0])
	assert.Equal(t, "https://acme.com/team/", got[1])
	// Conventional guesses follow, then the remaining links.
	assert.Contains(t, got, "https://acme.com/about")
	assert.Equal(t, "https://acme.com/pricing", got[len(got)-2])
	assert.Equal(t, "https://acme.com/services", got[len(got)-1])
}

func TestDiscoverContactLikeByAnchorText(t *testing.T) {
	d := NewLinkDiscoverer(nil, nil, nil)

	html := `<a href="/get-in-touch">Contact our office</a>`
	got := d.Discover("https://acme.com", html)
	assert.Equal(t, "https://acme.com/get-in-touch", got[0])
}

func TestDiscoverFiltersOffHostAndSchemes(t *testing.T) {
	d := NewLinkDiscoverer(nil, nil, nil)

	html := `
	<a href="https://other.example/contact">elsewhere</a>
	<a href="mailto:info@acme.com">mail</a>
	<a href="tel:+15551234567">call</a>
	<a href="javascript:void(0)">js</a>
	<a href="ftp://acme.com/file">ftp</a>
	<a href="https://www.acme.com/contact">same host with www</a>
	`
	got := d.Discover("https://acme.com", html)

	for _, u := range got {
		assert.NotContains(t, u, "other.example")
		assert.NotContains(t, u, "mailto")
		assert.NotContains(t, u, "ftp://")
	}
	assert.Contains(t, got, "https://www.acme.com/contact")
}

func TestDiscoverExcludesPatternedPaths(t *testing.T) {
	d := NewLinkDiscoverer(nil, nil, nil)

	html := `
	<a href="/blog/contact-tips">blog post about contact</a>
	<a href="/brochure.pdf">brochure</a>
	<a href="/contact">contact</a>
	`
	got := d.Discover("https://acme.com", html)

	for _, u := range got {
		assert.NotContains(t, u, "/blog/")
		assert.NotContains(t, u, ".pdf")
	}
	assert.Equal(t, "https://acme.com/contact", got[0])
}

func TestDiscoverDedupesGuessesAgainstPageLinks(t *testing.T) {
	d := NewLinkDiscoverer(nil, nil, nil)

	html := `<a href="/contact">Contact</a>`
	got := d.Discover("https://acme.com", html)

	count := 0
	for _, u := range got {
		if u == "https://acme.com/contact" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDiscoverNeverIncludesBase(t *testing.T) {
	d := NewLinkDiscoverer(nil, nil, nil)

	html := `<a href="/">Home</a><a href="https://acme.com">Home again</a>`
	got := d.Discover("https://acme.com", html)

	for _, u := range got {
		assert.NotEqual(t, "https://acme.com", u)
		assert.NotEqual(t, "https://acme.com/", u)
	}
}

func TestIsContactLike(t *testing.T) {
	d := NewLinkDiscoverer(nil, nil, nil)

	assert.True(t, d.IsContactLike("https://acme.com/contact-us"))
	assert.True(t, d.IsContactLike("https://acme.com/about/leadership"))
	assert.True(t, d.IsContactLike("https://acme.com/privacy"))
	assert.False(t, d.IsContactLike("https://acme.com/pricing"))
	assert.False(t, d.IsContactLike("://bad"))
}

func TestPathMatcherSegmentedGlobs(t *testing.T) {
	m := NewPathMatcher(nil)

	assert.True(t, m.IsExcluded("https://acme.com/blog/post"))
	assert.True(t, m.IsExcluded("https://acme.com/blog/2024/deep/post"))
	assert.True(t, m.IsExcluded("https://acme.com/assets.pdf"))
	assert.False(t, m.IsExcluded("https://acme.com/contact"))

	custom := NewPathMatcher([]string{"/private/*"})
	assert.True(t, custom.IsExcluded("https://acme.com/private/x"))
	assert.False(t, custom.IsExcluded("https://acme.com/blog/post"))
}

func TestPlaceholderDetector(t *testing.T) {
	d := NewPlaceholderDetector(nil)

	assert.True(t, d.IsPlaceholder("Domain For Sale", ""))
	assert.True(t, d.IsPlaceholder("", "This site is COMING SOON, check back later"))
	assert.True(t, d.IsPlaceholder("Acme", "Under Construction"))
	assert.False(t, d.IsPlaceholder("Acme Plumbing", "Family owned since 1962. Call us today."))

	custom := NewPlaceholderDetector([]string{"lorem ipsum"})
	assert.True(t, custom.IsPlaceholder("", "Lorem Ipsum dolor sit amet"))
	assert.False(t, custom.IsPlaceholder("Domain For Sale", ""))
}

func TestPlaceholderOnlyChecksLeadingText(t *testing.T) {
	d := NewPlaceholderDetector(nil)

	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'a'
	}
	text := string(long) + " buy this domain"
	assert.False(t, d.IsPlaceholder("Acme", text), "banner past the fold window is ignored")
}
