// Package crawl drives the adaptive page-by-page crawl of a target site,
// deciding after every page whether discovered contact signals justify
// fetching more.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

const maxBodyBytes = 512 * 1024

// PageFetcher fetches a single URL. Errors distinguish retryable failures
// (resilience.IsTransient) from permanent ones.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchedPage, error)
}

// HTTPError is a non-2xx response. Transient status codes are additionally
// wrapped in a resilience.TransientError so retry logic picks them up.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("crawl: status %d for %s", e.StatusCode, e.URL)
}

// HTTPFetcher fetches pages via net/http and converts HTML to plaintext.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// FetcherOption customizes an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) { f.client.Timeout = d }
}

// NewHTTPFetcher creates an HTTPFetcher with sensible defaults.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: "Mozilla/5.0 (compatible; OutreachBot/1.0)",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a single GET. HTTP failures surface as *HTTPError; transient
// statuses (408/429/5xx) are wrapped as retryable with any Retry-After hint.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*model.FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if resilience.IsTransient(err) {
			return nil, resilience.NewTransientError(eris.Wrap(err, "crawl: fetch"), 0)
		}
		return nil, eris.Wrap(err, "crawl: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, URL: targetURL}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, &resilience.TransientError{
				Err:        httpErr,
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			}
		}
		return nil, httpErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "crawl: read body")
	}

	html := string(body)
	return &model.FetchedPage{
		URL:        targetURL,
		FinalURL:   resp.Request.URL.String(),
		Title:      extractTitle(html),
		HTML:       html,
		Text:       stripHTML(html),
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now().UTC(),
	}, nil
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// extractTitle pulls the <title> from HTML.
func extractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

var (
	blockTagRes = func() []*regexp.Regexp {
		var res []*regexp.Regexp
		for _, tag := range []string{"script", "style", "nav", "footer"} {
			res = append(res, regexp.MustCompile(`(?is)<`+tag+`[^>]*>.*?</`+tag+`>`))
		}
		return res
	}()
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe = regexp.MustCompile(`[ \t]+`)
	nlRe    = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes scripts/styles/nav/footer, strips tags, decodes entities,
// and collapses whitespace. The result is plaintext suitable for extraction.
func stripHTML(html string) string {
	for _, re := range blockTagRes {
		html = re.ReplaceAllString(html, "")
	}

	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	html = spaceRe.ReplaceAllString(html, " ")
	html = nlRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
