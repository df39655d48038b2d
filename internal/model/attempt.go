package model

import "time"

// VerifyStatus is the outcome of a single mailbox verification.
type VerifyStatus string

const (
	StatusValid      VerifyStatus = "valid"
	StatusInvalid    VerifyStatus = "invalid"
	StatusCatchAll   VerifyStatus = "catch_all"
	StatusUnknown    VerifyStatus = "unknown"
	StatusDisposable VerifyStatus = "disposable"
	StatusSpamtrap   VerifyStatus = "spamtrap"
	StatusAbuse      VerifyStatus = "abuse"
	StatusDontSend   VerifyStatus = "dont_send"
	StatusError      VerifyStatus = "error"
)

// Acceptable reports whether a status is a terminal success. Only valid is:
// catch-all domains accept every address, so a catch_all result cannot
// confirm a real mailbox, and every other status is a failure.
func (s VerifyStatus) Acceptable() bool {
	return s == StatusValid
}

// AttemptOrigin records which cascade tier produced a candidate email.
type AttemptOrigin string

const (
	OriginExisting    AttemptOrigin = "existing"
	OriginAISuggested AttemptOrigin = "ai_suggested"
	OriginPattern     AttemptOrigin = "pattern"
)

// EmailAttempt is one validation try. The ordered attempt sequence for a
// contact is append-only and is the authoritative evidence for quarantine.
type EmailAttempt struct {
	Email     string        `json:"email"`
	Origin    AttemptOrigin `json:"origin"`
	Rank      int           `json:"rank"`
	Status    VerifyStatus  `json:"status"`
	Score     int           `json:"score"`
	RiskScore int           `json:"risk_score"`
	Timestamp time.Time     `json:"timestamp"`
}

// QuarantineReasonNoValidEmail is the reason code for contacts that
// exhausted every validation tier without an accepted email.
const QuarantineReasonNoValidEmail = "no_valid_email"

// QuarantineRecord is the immutable snapshot of a contact that exhausted
// validation. Once written, the owning contact leaves the active set.
type QuarantineRecord struct {
	ID              string         `json:"id"`
	ContactID       string         `json:"contact_id"`
	OrgID           string         `json:"org_id"`
	ContactName     string         `json:"contact_name"`
	RoleTitle       string         `json:"role_title,omitempty"`
	CompanyName     string         `json:"company_name"`
	WebsiteURL      string         `json:"website_url"`
	AttemptedCount  int            `json:"attempted_count"`
	AttemptedEmails []string       `json:"attempted_emails"`
	Attempts        []EmailAttempt `json:"attempts"`
	Reason          string         `json:"reason"`
	MovedAt         time.Time      `json:"moved_at"`
}
