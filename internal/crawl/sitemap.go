package crawl

import (
	"bufio"
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxSitemapURLs caps how many sitemap entries feed a session queue.
const maxSitemapURLs = 50

// maxSitemapDepth bounds index traversal: children of an index are fetched,
// grandchildren are not. Index files in the wild reference each other, so
// depth and a visited set together guarantee termination.
const maxSitemapDepth = 1

// SitemapDiscovery finds page URLs for a site, best-effort. Failures yield
// an empty list, never an error.
type SitemapDiscovery interface {
	Discover(ctx context.Context, baseURL string) []string
}

// RobotsSitemapDiscovery reads robots.txt Sitemap directives and falls back
// to well-known sitemap paths.
type RobotsSitemapDiscovery struct {
	client *http.Client
}

// NewRobotsSitemapDiscovery creates a discovery with a default client.
func NewRobotsSitemapDiscovery(client *http.Client) *RobotsSitemapDiscovery {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsSitemapDiscovery{client: client}
}

// Discover returns same-host URLs from the site's sitemaps, capped at
// maxSitemapURLs. Every failure path returns what was gathered so far.
func (d *RobotsSitemapDiscovery) Discover(ctx context.Context, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	sitemaps := d.robotsSitemaps(ctx, base)
	if len(sitemaps) == 0 {
		for _, p := range []string{"/sitemap.xml", "/sitemap_index.xml"} {
			u := *base
			u.Path = p
			sitemaps = append(sitemaps, u.String())
		}
	}

	var urls []string
	seen := map[string]bool{}
	visited := map[string]bool{}
	for _, sm := range sitemaps {
		for _, loc := range d.fetchLocs(ctx, sm, visited, 0) {
			u, err := base.Parse(loc)
			if err != nil || !strings.EqualFold(stripWWW(u.Host), stripWWW(base.Host)) {
				continue
			}
			key := canonicalKey(u)
			if seen[key] {
				continue
			}
			seen[key] = true
			urls = append(urls, u.String())
			if len(urls) >= maxSitemapURLs {
				return urls
			}
		}
	}
	return urls
}

// robotsSitemaps parses Sitemap: lines from robots.txt.
func (d *RobotsSitemapDiscovery) robotsSitemaps(ctx context.Context, base *url.URL) []string {
	robotsURL := *base
	robotsURL.Path = "/robots.txt"

	body, ok := d.get(ctx, robotsURL.String())
	if !ok {
		return nil
	}
	defer func() { _ = body.Close() }()

	var sitemaps []string
	scanner := bufio.NewScanner(io.LimitReader(body, 64*1024))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > 8 && strings.EqualFold(line[:8], "sitemap:") {
			if sm := strings.TrimSpace(line[8:]); sm != "" {
				sitemaps = append(sitemaps, sm)
			}
		}
	}
	return sitemaps
}

type sitemapXML struct {
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// fetchLocs reads <loc> entries from a sitemap or sitemap index. Index files
// are followed one level deep; each sitemap URL is fetched at most once per
// session.
func (d *RobotsSitemapDiscovery) fetchLocs(ctx context.Context, sitemapURL string, visited map[string]bool, depth int) []string {
	if visited[sitemapURL] {
		return nil
	}
	visited[sitemapURL] = true

	body, ok := d.get(ctx, sitemapURL)
	if !ok {
		return nil
	}
	defer func() { _ = body.Close() }()

	var parsed sitemapXML
	if err := xml.NewDecoder(io.LimitReader(body, 2*1024*1024)).Decode(&parsed); err != nil {
		zap.L().Debug("crawl: sitemap parse failed",
			zap.String("url", sitemapURL),
			zap.Error(err),
		)
		return nil
	}

	var locs []string
	for _, u := range parsed.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			locs = append(locs, loc)
		}
	}
	for _, child := range parsed.Sitemaps {
		if depth >= maxSitemapDepth {
			break
		}
		loc := strings.TrimSpace(child.Loc)
		if loc == "" {
			continue
		}
		locs = append(locs, d.fetchLocs(ctx, loc, visited, depth+1)...)
		if len(locs) >= maxSitemapURLs {
			break
		}
	}
	return locs
}

func (d *RobotsSitemapDiscovery) get(ctx context.Context, u string) (io.ReadCloser, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, false
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, false
	}
	return resp.Body, true
}
