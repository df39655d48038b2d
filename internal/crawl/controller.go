package crawl

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

// State is the crawl session state.
type State string

const (
	StateNotStarted             State = "not_started"
	StateFetchingHome           State = "fetching_home"
	StateDiscoveringLinks       State = "discovering_links"
	StateFetchingCandidatePages State = "fetching_candidate_pages"
	StateStopped                State = "stopped"
)

// SignalExtractor extracts typed contact signals from one page. Extraction
// never fails; a problem page yields an empty set.
type SignalExtractor interface {
	Extract(page model.FetchedPage) []model.ContactSignal
}

// Deduplicator merges page signals into the session's candidate set.
type Deduplicator interface {
	Merge(existing []model.ContactCandidate, signals []model.ContactSignal) []model.ContactCandidate
}

// Scorer computes a 0-100 confidence score for the session's candidate set.
type Scorer interface {
	Score(candidates []model.ContactCandidate, contactPages int, siteWorking bool) (int, string)
}

// Config holds the session tunables. The thresholds are empirical; they load
// from configuration rather than being compiled in.
type Config struct {
	MaxPages        int           // hard cap per session (default 25)
	LowScorePages   int           // page budget when score < MidScore (default 3)
	MidScorePages   int           // page budget when MidScore <= score < HighScore (default 5)
	HighScore       int           // stop immediately at or above (default 80)
	MidScore        int           // boundary between low and mid budgets (default 40)
	PolitenessDelay time.Duration // pause between fetches in one session (default 200ms)
	Retry           resilience.RetryConfig
}

// DefaultConfig returns the session tunable defaults.
func DefaultConfig() Config {
	return Config{
		MaxPages:        25,
		LowScorePages:   3,
		MidScorePages:   5,
		HighScore:       80,
		MidScore:        40,
		PolitenessDelay: 200 * time.Millisecond,
		Retry:           resilience.DefaultRetryConfig(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxPages <= 0 {
		c.MaxPages = d.MaxPages
	}
	if c.LowScorePages <= 0 {
		c.LowScorePages = d.LowScorePages
	}
	if c.MidScorePages <= 0 {
		c.MidScorePages = d.MidScorePages
	}
	if c.HighScore <= 0 {
		c.HighScore = d.HighScore
	}
	if c.MidScore <= 0 {
		c.MidScore = d.MidScore
	}
	if c.PolitenessDelay <= 0 {
		c.PolitenessDelay = d.PolitenessDelay
	}
	return c
}

// Controller runs one adaptive crawl session per organization. It fetches the
// home page, classifies the site, discovers candidate pages, and visits them
// until the stopping policy says the signals are good enough (or not worth
// more fetches).
type Controller struct {
	fetcher     PageFetcher
	sitemaps    SitemapDiscovery
	links       *LinkDiscoverer
	placeholder *PlaceholderDetector
	extractor   SignalExtractor
	dedup       Deduplicator
	scorer      Scorer
	cfg         Config
}

// NewController wires a crawl session controller. sitemaps may be nil to
// skip sitemap supplementation.
func NewController(
	fetcher PageFetcher,
	sitemaps SitemapDiscovery,
	links *LinkDiscoverer,
	placeholder *PlaceholderDetector,
	extractor SignalExtractor,
	dedup Deduplicator,
	scorer Scorer,
	cfg Config,
) *Controller {
	return &Controller{
		fetcher:     fetcher,
		sitemaps:    sitemaps,
		links:       links,
		placeholder: placeholder,
		extractor:   extractor,
		dedup:       dedup,
		scorer:      scorer,
		cfg:         cfg.withDefaults(),
	}
}

type session struct {
	report       model.CrawlReport
	candidates   []model.ContactCandidate
	contactPages int
	pagesVisited int
}

// Run executes the session state machine for one organization website.
// Only context cancellation returns an error; every site-side failure is
// folded into the report's status.
func (c *Controller) Run(ctx context.Context, websiteURL string) (model.CrawlReport, error) {
	s := &session{
		report: model.CrawlReport{
			WebsiteURL: websiteURL,
			StartedAt:  time.Now().UTC(),
		},
	}
	log := zap.L().With(zap.String("website", websiteURL))

	// FetchingHome.
	home, err := c.fetchPage(ctx, websiteURL)
	if err != nil {
		if ctx.Err() != nil {
			return s.report, ctx.Err()
		}
		s.report.SiteStatus = classifyHomeFailure(err)
		return c.stop(s, model.StopSiteUnusable, log), nil
	}
	s.pagesVisited++

	if c.placeholder.IsPlaceholder(home.Title, home.Text) {
		s.report.SiteStatus = model.SitePlaceholder
		return c.stop(s, model.StopSiteUnusable, log), nil
	}
	s.report.SiteStatus = model.SiteWorking

	c.ingest(s, *home)
	if reason, done := c.shouldStop(s); done {
		return c.stop(s, reason, log), nil
	}

	// DiscoveringLinks.
	queue := c.links.Discover(websiteURL, home.HTML)
	if c.sitemaps != nil {
		queue = c.supplementFromSitemap(ctx, websiteURL, queue)
	}
	log.Debug("crawl: discovered candidate pages", zap.Int("count", len(queue)))

	// FetchingCandidatePages.
	limiter := rate.NewLimiter(rate.Every(c.cfg.PolitenessDelay), 1)
	for _, pageURL := range queue {
		if s.pagesVisited >= c.cfg.MaxPages {
			return c.stop(s, model.StopPageCap, log), nil
		}
		if err := limiter.Wait(ctx); err != nil {
			return s.report, err
		}

		page, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return s.report, ctx.Err()
			}
			// Page-level failures skip the page, never the session.
			log.Debug("crawl: page fetch failed",
				zap.String("url", pageURL),
				zap.Error(err),
			)
			continue
		}
		s.pagesVisited++
		if c.links.IsContactLike(pageURL) {
			s.contactPages++
		}

		c.ingest(s, *page)
		if reason, done := c.shouldStop(s); done {
			return c.stop(s, reason, log), nil
		}
	}

	return c.stop(s, model.StopNoMorePages, log), nil
}

// ingest runs extraction, merge, and rescore for one page.
func (c *Controller) ingest(s *session, page model.FetchedPage) {
	signals := c.extractor.Extract(page)
	s.candidates = c.dedup.Merge(s.candidates, signals)
	s.report.Score, s.report.Reasoning = c.scorer.Score(s.candidates, s.contactPages, true)
}

// shouldStop applies the stopping policy after each page.
func (c *Controller) shouldStop(s *session) (model.StopReason, bool) {
	switch {
	case s.report.Score >= c.cfg.HighScore:
		return model.StopHighConfidence, true
	case s.report.Score >= c.cfg.MidScore:
		if s.pagesVisited >= c.cfg.MidScorePages {
			return model.StopDiminishingReturn, true
		}
	default:
		if s.pagesVisited >= c.cfg.LowScorePages {
			return model.StopMinimalReturn, true
		}
	}
	return "", false
}

func (c *Controller) stop(s *session, reason model.StopReason, log *zap.Logger) model.CrawlReport {
	s.report.StopReason = reason
	s.report.PagesVisited = s.pagesVisited
	s.report.ContactPages = s.contactPages
	s.report.Candidates = s.candidates
	s.report.FinishedAt = time.Now().UTC()

	if s.report.SiteStatus != model.SiteWorking {
		s.report.Score = 0
		s.report.Reasoning = "site " + string(s.report.SiteStatus)
		s.report.Candidates = nil
	}

	log.Info("crawl: session stopped",
		zap.String("status", string(s.report.SiteStatus)),
		zap.String("reason", string(reason)),
		zap.Int("pages", s.report.PagesVisited),
		zap.Int("score", s.report.Score),
		zap.Int("candidates", len(s.report.Candidates)),
	)
	return s.report
}

// fetchPage retries transient failures with backoff; permanent failures
// return immediately.
func (c *Controller) fetchPage(ctx context.Context, url string) (*model.FetchedPage, error) {
	return resilience.DoVal(ctx, c.cfg.Retry, func(ctx context.Context) (*model.FetchedPage, error) {
		return c.fetcher.Fetch(ctx, url)
	})
}

// supplementFromSitemap appends contact-like sitemap URLs not already queued.
func (c *Controller) supplementFromSitemap(ctx context.Context, baseURL string, queue []string) []string {
	seen := make(map[string]bool, len(queue))
	for _, u := range queue {
		seen[u] = true
	}
	for _, u := range c.sitemaps.Discover(ctx, baseURL) {
		if seen[u] || !c.links.IsContactLike(u) {
			continue
		}
		seen[u] = true
		queue = append(queue, u)
	}
	return queue
}

// classifyHomeFailure maps a home-page fetch error to a site status.
func classifyHomeFailure(err error) model.SiteStatus {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusNotFound {
			return model.SiteNotFound
		}
		return model.SiteHTTPError(httpErr.StatusCode)
	}
	return model.SiteConnectionFailed
}
