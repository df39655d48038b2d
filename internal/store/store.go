// Package store persists organizations, contacts, validation attempts, and
// the quarantine dead-letter set. SQLite backs local runs; Postgres backs
// shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// ContactFilter specifies criteria for listing contacts.
type ContactFilter struct {
	OrgID        string `json:"org_id,omitempty"`
	PendingOnly  bool   `json:"pending_only,omitempty"` // without a valid email
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// Organizations
	CreateOrg(ctx context.Context, org model.Organization) (*model.Organization, error)
	GetOrg(ctx context.Context, id string) (*model.Organization, error)
	GetOrgByDomain(ctx context.Context, domain string) (*model.Organization, error)
	MarkOrgEnriched(ctx context.Context, id string) error

	// Contacts (active working set)
	CreateContact(ctx context.Context, contact model.Contact) (*model.Contact, error)
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	ListContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error)
	UpsertEmail(ctx context.Context, contactID, email string, status model.VerifyStatus, score int, method model.DiscoveryMethod) error
	RecordAttempts(ctx context.Context, contactID string, attempts []model.EmailAttempt) error

	// Quarantine. MoveToQuarantine inserts the record and removes the
	// active contact in one transaction; partial application is never
	// visible to callers.
	MoveToQuarantine(ctx context.Context, record model.QuarantineRecord) error
	ListQuarantined(ctx context.Context, limit, offset int) ([]model.QuarantineRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
