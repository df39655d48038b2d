package model

import (
	"fmt"
	"time"
)

// FetchedPage represents a page fetched during a crawl session.
type FetchedPage struct {
	URL        string    `json:"url"`
	FinalURL   string    `json:"final_url,omitempty"`
	Title      string    `json:"title"`
	HTML       string    `json:"html,omitempty"`
	Text       string    `json:"text"`
	StatusCode int       `json:"status_code"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// SiteStatus classifies the target site after the home-page fetch.
type SiteStatus string

const (
	SiteWorking          SiteStatus = "working"
	SitePlaceholder      SiteStatus = "placeholder"
	SiteNotFound         SiteStatus = "not_found"
	SiteConnectionFailed SiteStatus = "connection_failed"
)

// SiteHTTPError returns the status string for a non-404 HTTP failure on the
// home page, e.g. "http_503".
func SiteHTTPError(code int) SiteStatus {
	return SiteStatus(fmt.Sprintf("http_%d", code))
}

// StopReason explains why a crawl session ended.
type StopReason string

const (
	StopHighConfidence    StopReason = "high confidence"
	StopDiminishingReturn StopReason = "diminishing returns"
	StopMinimalReturn     StopReason = "minimal expected return"
	StopPageCap           StopReason = "page cap reached"
	StopSiteUnusable      StopReason = "site unusable"
	StopNoMorePages       StopReason = "no more pages"
)

// CrawlReport is the outcome of one crawl session for one organization.
type CrawlReport struct {
	WebsiteURL   string             `json:"website_url"`
	SiteStatus   SiteStatus         `json:"site_status"`
	PagesVisited int                `json:"pages_visited"`
	ContactPages int                `json:"contact_pages"`
	Score        int                `json:"score"`
	Reasoning    string             `json:"reasoning"`
	StopReason   StopReason         `json:"stop_reason"`
	Candidates   []ContactCandidate `json:"candidates"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
}

// Usable reports whether the session produced signals worth validating.
func (r CrawlReport) Usable() bool {
	return r.SiteStatus == SiteWorking && len(r.Candidates) > 0
}
