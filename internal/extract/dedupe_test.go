package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestMergeIsIdempotent(t *testing.T) {
	d := NewDeduplicator()

	signals := []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "Jane Doe", Tier: model.TierDirect, Title: "Owner"},
		{Kind: model.SignalEmail, Value: "jane@acme.com", Tier: model.TierDirect},
		{Kind: model.SignalPhone, Value: "5551234567", Tier: model.TierDirect},
	}

	once := d.Merge(nil, signals)
	twice := d.Merge(once, signals)
	assert.Equal(t, once, twice)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	d := NewDeduplicator()

	existing := []model.ContactCandidate{{Name: "Jane Doe", NameTier: model.TierDirect}}
	_ = d.Merge(existing, []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "Jane Doe", Tier: model.TierStructured},
	})
	assert.Equal(t, model.TierDirect, existing[0].NameTier)
}

func TestMergeUpgradesTierNeverDowngrades(t *testing.T) {
	d := NewDeduplicator()

	out := d.Merge(nil, []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "Jane Doe", Tier: model.TierStructured, SourceURL: "https://acme.com/about"},
	})
	out = d.Merge(out, []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "jane doe", Tier: model.TierDirect, SourceURL: "https://acme.com/contact"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, model.TierStructured, out[0].NameTier)
	assert.Equal(t, "https://acme.com/about", out[0].NameSource)
}

func TestMergeTitleFillsWithoutTierUpgrade(t *testing.T) {
	d := NewDeduplicator()

	out := d.Merge(nil, []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "Jane Doe", Tier: model.TierStructured},
	})
	// A lower-tier sighting still contributes a title when none is known.
	out = d.Merge(out, []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "Jane Doe", Tier: model.TierDirect, Title: "Owner"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "Owner", out[0].Title)
	assert.Equal(t, model.TierStructured, out[0].NameTier)
}

func TestMergeAttachesPersonalEmailToPerson(t *testing.T) {
	d := NewDeduplicator()

	out := d.Merge(nil, []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "Jane Doe", Tier: model.TierDirect, Title: "Owner"},
		{Kind: model.SignalEmail, Value: "jane@acme.com", Tier: model.TierDirect},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "Jane Doe", out[0].Name)
	assert.Equal(t, "jane@acme.com", out[0].Email)
}

func TestMergeAttachesInitialLastEmail(t *testing.T) {
	d := NewDeduplicator()

	out := d.Merge(nil, []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "Jane Doe", Tier: model.TierDirect},
		{Kind: model.SignalEmail, Value: "jdoe@acme.com", Tier: model.TierDirect},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "jdoe@acme.com", out[0].Email)
}

func TestMergeKeepsGenericEmailStandalone(t *testing.T) {
	d := NewDeduplicator()

	out := d.Merge(nil, []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "Info Desk", Tier: model.TierDirect},
		{Kind: model.SignalEmail, Value: "info@acme.com", Tier: model.TierDirect},
	})

	require.Len(t, out, 2)
	assert.Empty(t, out[0].Email, "generic inbox never attaches to a person")
	assert.Equal(t, "info@acme.com", out[1].Email)
}

func TestMergePhoneStaysOrgLevel(t *testing.T) {
	d := NewDeduplicator()

	out := d.Merge(nil, []model.ContactSignal{
		{Kind: model.SignalPersonName, Value: "Jane Doe", Tier: model.TierDirect},
		{Kind: model.SignalPhone, Value: "5551234567", Tier: model.TierDirect},
	})

	require.Len(t, out, 2)
	assert.Empty(t, out[0].Phone)
	assert.Equal(t, "5551234567", out[1].Phone)
	assert.Empty(t, out[1].Name)
}

func TestMergeNamesBeforeEmailsWithinOneBatch(t *testing.T) {
	d := NewDeduplicator()

	// Email appears before the name in signal order; attachment still works
	// because names are folded first.
	out := d.Merge(nil, []model.ContactSignal{
		{Kind: model.SignalEmail, Value: "bob@acme.com", Tier: model.TierDirect},
		{Kind: model.SignalPersonName, Value: "Bob Smith", Tier: model.TierStructured},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "Bob Smith", out[0].Name)
	assert.Equal(t, "bob@acme.com", out[0].Email)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsGenericLocalPart("info@acme.com", nil))
	assert.True(t, IsGenericLocalPart("Enquiries@acme.com", nil))
	assert.False(t, IsGenericLocalPart("jane@acme.com", nil))
	assert.True(t, IsGenericLocalPart("frontdesk@acme.com", []string{"frontdesk"}))
	assert.False(t, IsGenericLocalPart("info@acme.com", []string{"frontdesk"}))

	assert.Equal(t, "+15551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "5551234567", NormalizePhone("555.123.4567"))
	assert.Empty(t, NormalizePhone("12345"))
	assert.Empty(t, NormalizePhone("1234567890123456"))

	assert.True(t, LooksLikePersonName("Jane Doe"))
	assert.False(t, LooksLikePersonName("Jane"))
	assert.False(t, LooksLikePersonName("Google Analytics"))
	assert.False(t, LooksLikePersonName("One Two Three Four Five"))
}
