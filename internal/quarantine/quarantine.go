// Package quarantine moves contacts that exhausted every validation tier
// into the append-only dead-letter store.
package quarantine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

// Manager builds quarantine records and applies the atomic move. A failed
// write surfaces as a hard error and the contact stays active; partial
// application would leave the contact both active and exhausted.
type Manager struct {
	store store.Store
}

// NewManager wraps a store.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// Quarantine snapshots the contact and its full attempt history, writes the
// record, and removes the contact from the active set in one transaction.
func (m *Manager) Quarantine(ctx context.Context, contact model.Contact, org model.Organization, attempts []model.EmailAttempt) (*model.QuarantineRecord, error) {
	emails := make([]string, len(attempts))
	for i, a := range attempts {
		emails[i] = a.Email
	}

	// ID and MovedAt are assigned here rather than by the store so the
	// returned record matches the persisted row.
	record := model.QuarantineRecord{
		ID:              uuid.New().String(),
		ContactID:       contact.ID,
		OrgID:           org.ID,
		ContactName:     contact.Name,
		RoleTitle:       contact.RoleTitle,
		CompanyName:     org.Name,
		WebsiteURL:      org.WebsiteURL,
		AttemptedCount:  len(attempts),
		AttemptedEmails: emails,
		Attempts:        attempts,
		Reason:          model.QuarantineReasonNoValidEmail,
		MovedAt:         time.Now().UTC(),
	}

	if err := m.store.MoveToQuarantine(ctx, record); err != nil {
		return nil, eris.Wrapf(err, "quarantine: move contact %s", contact.ID)
	}

	zap.L().Info("quarantine: contact moved",
		zap.String("contact_id", contact.ID),
		zap.String("org_id", org.ID),
		zap.Int("attempted", len(attempts)),
	)
	return &record, nil
}
