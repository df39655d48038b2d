package model

import "time"

// Contact is a persisted contact in the active working set. A contact is
// either active or quarantined, never both.
type Contact struct {
	ID        string `json:"id"`
	OrgID     string `json:"org_id"`
	Name      string `json:"name"`
	RoleTitle string `json:"role_title,omitempty"`
	Email     string `json:"email,omitempty"`

	// Validation state of the current email, if any.
	EmailStatus    VerifyStatus `json:"email_status,omitempty"`
	EmailScore     int          `json:"email_score,omitempty"`
	EmailProvider  string       `json:"email_provider,omitempty"`
	EmailCheckedAt *time.Time   `json:"email_checked_at,omitempty"`

	DiscoveryMethod DiscoveryMethod `json:"discovery_method,omitempty"`
	LastEnrichedAt  *time.Time      `json:"last_enriched_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// HasValidEmail reports whether the contact already holds an accepted email.
// Re-running enrichment for such a contact performs no network calls.
func (c Contact) HasValidEmail() bool {
	return c.Email != "" && c.EmailStatus == StatusValid
}

// DiscoveryMethod records how an accepted email was found.
type DiscoveryMethod string

const (
	MethodExistingValid    DiscoveryMethod = "existing_valid"
	MethodAISuggested      DiscoveryMethod = "ai_suggested"
	MethodPatternGenerated DiscoveryMethod = "pattern_generated"
)

// EnrichmentOutcome is the per-entity result reported by a batch run.
type EnrichmentOutcome struct {
	ContactID    string          `json:"contact_id"`
	OrgID        string          `json:"org_id"`
	Email        string          `json:"email,omitempty"`
	Method       DiscoveryMethod `json:"method,omitempty"`
	Score        int             `json:"score,omitempty"`
	Quarantined  bool            `json:"quarantined"`
	Attempts     int             `json:"attempts"`
	PagesCrawled int             `json:"pages_crawled"`
	CrawlScore   int             `json:"crawl_score"`
	Skipped      bool            `json:"skipped"`
	Error        string          `json:"error,omitempty"`
}
