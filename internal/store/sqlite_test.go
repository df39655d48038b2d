package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "outreach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedOrg(t *testing.T, st *SQLiteStore) *model.Organization {
	t.Helper()
	org, err := st.CreateOrg(context.Background(), model.Organization{
		Name:       "Acme Plumbing",
		WebsiteURL: "acmeplumbing.com",
		City:       "Dayton",
		State:      "OH",
	})
	require.NoError(t, err)
	return org
}

func TestSQLiteOrgLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	org := seedOrg(t, st)
	assert.NotEmpty(t, org.ID, "id assigned on insert")
	assert.Equal(t, "https://acmeplumbing.com", org.WebsiteURL, "url normalized on insert")

	got, err := st.GetOrg(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Plumbing", got.Name)
	assert.Equal(t, "Dayton", got.City)
	assert.Nil(t, got.EnrichedAt)

	byDomain, err := st.GetOrgByDomain(ctx, "acmeplumbing.com")
	require.NoError(t, err)
	assert.Equal(t, org.ID, byDomain.ID)

	require.NoError(t, st.MarkOrgEnriched(ctx, org.ID))
	got, err = st.GetOrg(ctx, org.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.EnrichedAt)

	_, err = st.GetOrg(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.GetOrgByDomain(ctx, "nope.example")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.MarkOrgEnriched(ctx, "missing"), ErrNotFound)
}

func TestSQLiteContactLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)
	org := seedOrg(t, st)

	c, err := st.CreateContact(ctx, model.Contact{
		OrgID:     org.ID,
		Name:      "Jane Doe",
		RoleTitle: "Owner",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	got, err := st.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Empty(t, got.Email)
	assert.False(t, got.HasValidEmail())

	require.NoError(t, st.UpsertEmail(ctx, c.ID, "jane@acmeplumbing.com", model.StatusValid, 98, model.MethodPatternGenerated))

	got, err = st.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.HasValidEmail())
	assert.Equal(t, "jane@acmeplumbing.com", got.Email)
	assert.Equal(t, 98, got.EmailScore)
	assert.Equal(t, "zerobounce", got.EmailProvider)
	assert.Equal(t, model.MethodPatternGenerated, got.DiscoveryMethod)
	assert.NotNil(t, got.EmailCheckedAt)
	assert.NotNil(t, got.LastEnrichedAt)

	assert.ErrorIs(t, st.UpsertEmail(ctx, "missing", "x@y.com", model.StatusValid, 98, model.MethodExistingValid), ErrNotFound)

	_, err = st.GetContact(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListContactsPendingOnly(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)
	org := seedOrg(t, st)

	done, err := st.CreateContact(ctx, model.Contact{OrgID: org.ID, Name: "Done"})
	require.NoError(t, err)
	require.NoError(t, st.UpsertEmail(ctx, done.ID, "done@acmeplumbing.com", model.StatusValid, 98, model.MethodExistingValid))

	pending, err := st.CreateContact(ctx, model.Contact{OrgID: org.ID, Name: "Pending"})
	require.NoError(t, err)

	all, err := st.ListContacts(ctx, ContactFilter{OrgID: org.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := st.ListContacts(ctx, ContactFilter{OrgID: org.ID, PendingOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)

	got, err = st.ListContacts(ctx, ContactFilter{OrgID: org.ID, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = st.ListContacts(ctx, ContactFilter{OrgID: "other-org"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRecordAttempts(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)
	org := seedOrg(t, st)
	c, err := st.CreateContact(ctx, model.Contact{OrgID: org.ID, Name: "Jane Doe"})
	require.NoError(t, err)

	now := time.Now().UTC()
	attempts := []model.EmailAttempt{
		{Email: "jane@acmeplumbing.com", Origin: model.OriginExisting, Rank: 1, Status: model.StatusInvalid, RiskScore: 95, Timestamp: now},
		{Email: "jdoe@acmeplumbing.com", Origin: model.OriginPattern, Rank: 2, Status: model.StatusValid, Score: 98, RiskScore: 2, Timestamp: now},
	}
	require.NoError(t, st.RecordAttempts(ctx, c.ID, attempts))
	require.NoError(t, st.RecordAttempts(ctx, c.ID, nil), "empty batch is a no-op")

	var count int
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_attempts WHERE contact_id = ?`, c.ID).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLiteMoveToQuarantineIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)
	org := seedOrg(t, st)
	c, err := st.CreateContact(ctx, model.Contact{OrgID: org.ID, Name: "Jane Doe", RoleTitle: "Owner"})
	require.NoError(t, err)

	rec := model.QuarantineRecord{
		ContactID:       c.ID,
		OrgID:           org.ID,
		ContactName:     "Jane Doe",
		RoleTitle:       "Owner",
		CompanyName:     org.Name,
		WebsiteURL:      org.WebsiteURL,
		AttemptedCount:  2,
		AttemptedEmails: []string{"jane@acmeplumbing.com", "jdoe@acmeplumbing.com"},
		Attempts: []model.EmailAttempt{
			{Email: "jane@acmeplumbing.com", Origin: model.OriginExisting, Rank: 1, Status: model.StatusInvalid, Timestamp: time.Now().UTC()},
		},
		Reason: "no_valid_email",
	}
	require.NoError(t, st.MoveToQuarantine(ctx, rec))

	// Contact is gone from the active set.
	_, err = st.GetContact(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	records, err := st.ListQuarantined(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, c.ID, got.ContactID)
	assert.Equal(t, "no_valid_email", got.Reason)
	assert.Equal(t, rec.AttemptedEmails, got.AttemptedEmails)
	require.Len(t, got.Attempts, 1)
	assert.Equal(t, model.StatusInvalid, got.Attempts[0].Status)
	assert.False(t, got.MovedAt.IsZero())

	// A second quarantine of the same contact rolls back entirely.
	err = st.MoveToQuarantine(ctx, rec)
	require.Error(t, err)
	records, err = st.ListQuarantined(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1, "failed move leaves no partial record")
}

func TestSQLiteMoveToQuarantineMissingContactRollsBack(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)
	org := seedOrg(t, st)

	err := st.MoveToQuarantine(ctx, model.QuarantineRecord{
		ContactID: "missing",
		OrgID:     org.ID,
		Reason:    "no_valid_email",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	records, err := st.ListQuarantined(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, records, "insert rolled back when the delete finds nothing")
}
