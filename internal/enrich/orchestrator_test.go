package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/cascade"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/verify"
)

type fakeStore struct {
	store.Store

	contacts map[string]model.Contact
	orgs     map[string]model.Organization

	upserted     []string
	enrichedOrgs []string
	recorded     map[string][]model.EmailAttempt
	quarantined  []model.QuarantineRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contacts: map[string]model.Contact{},
		orgs:     map[string]model.Organization{},
		recorded: map[string][]model.EmailAttempt{},
	}
}

func (s *fakeStore) GetContact(_ context.Context, id string) (*model.Contact, error) {
	c, ok := s.contacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *fakeStore) GetOrg(_ context.Context, id string) (*model.Organization, error) {
	o, ok := s.orgs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *fakeStore) ListContacts(_ context.Context, _ store.ContactFilter) ([]model.Contact, error) {
	out := make([]model.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeStore) UpsertEmail(_ context.Context, contactID, email string, _ model.VerifyStatus, _ int, _ model.DiscoveryMethod) error {
	s.upserted = append(s.upserted, contactID+":"+email)
	return nil
}

func (s *fakeStore) MarkOrgEnriched(_ context.Context, id string) error {
	s.enrichedOrgs = append(s.enrichedOrgs, id)
	return nil
}

func (s *fakeStore) RecordAttempts(_ context.Context, contactID string, attempts []model.EmailAttempt) error {
	s.recorded[contactID] = append(s.recorded[contactID], attempts...)
	return nil
}

func (s *fakeStore) MoveToQuarantine(_ context.Context, record model.QuarantineRecord) error {
	s.quarantined = append(s.quarantined, record)
	delete(s.contacts, record.ContactID)
	return nil
}

type fakeCrawler struct {
	report model.CrawlReport
	calls  int
}

func (c *fakeCrawler) Run(_ context.Context, _ string) (model.CrawlReport, error) {
	c.calls++
	return c.report, nil
}

type fakeCascade struct {
	outcome cascade.Outcome
	calls   int
	lastIn  cascade.Input
}

func (c *fakeCascade) Run(_ context.Context, in cascade.Input) (cascade.Outcome, error) {
	c.calls++
	c.lastIn = in
	return c.outcome, nil
}

type fakeQuarantiner struct {
	store *fakeStore
	calls int
}

func (q *fakeQuarantiner) Quarantine(ctx context.Context, contact model.Contact, org model.Organization, attempts []model.EmailAttempt) (*model.QuarantineRecord, error) {
	q.calls++
	record := model.QuarantineRecord{
		ContactID: contact.ID,
		OrgID:     org.ID,
		Reason:    model.QuarantineReasonNoValidEmail,
		Attempts:  attempts,
	}
	if err := q.store.MoveToQuarantine(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func seed(st *fakeStore) {
	st.orgs["org-1"] = model.Organization{
		ID:         "org-1",
		Name:       "Acme Plumbing",
		WebsiteURL: "https://acmeplumbing.com",
	}
	st.contacts["c-1"] = model.Contact{
		ID:    "c-1",
		OrgID: "org-1",
		Name:  "Jane Doe",
	}
}

func TestEnrichContactSkipsAlreadyValid(t *testing.T) {
	st := newFakeStore()
	seed(st)
	st.contacts["c-1"] = model.Contact{
		ID:          "c-1",
		OrgID:       "org-1",
		Name:        "Jane Doe",
		Email:       "jane.doe@acmeplumbing.com",
		EmailStatus: model.StatusValid,
	}

	crawler := &fakeCrawler{}
	runner := &fakeCascade{}
	o := NewOrchestrator(st, crawler, runner, &fakeQuarantiner{store: st})

	outcome, err := o.EnrichContact(context.Background(), "c-1")
	require.NoError(t, err)

	assert.True(t, outcome.Skipped)
	assert.Equal(t, "jane.doe@acmeplumbing.com", outcome.Email)
	assert.Zero(t, crawler.calls, "skip must perform no crawl")
	assert.Zero(t, runner.calls, "skip must perform no validation")
}

func TestEnrichContactAccepted(t *testing.T) {
	st := newFakeStore()
	seed(st)

	crawler := &fakeCrawler{report: model.CrawlReport{
		SiteStatus:   model.SiteWorking,
		Score:        65,
		PagesVisited: 5,
	}}
	runner := &fakeCascade{outcome: cascade.Outcome{
		Accepted: true,
		Email:    "jdoe@acmeplumbing.com",
		Method:   model.MethodPatternGenerated,
		Result:   verify.Result{Status: model.StatusValid, Score: 98},
		Attempts: []model.EmailAttempt{
			{Email: "jane@acmeplumbing.com", Status: model.StatusInvalid, Rank: 1},
			{Email: "jdoe@acmeplumbing.com", Status: model.StatusValid, Rank: 2},
		},
	}}
	quarantiner := &fakeQuarantiner{store: st}
	o := NewOrchestrator(st, crawler, runner, quarantiner)

	outcome, err := o.EnrichContact(context.Background(), "c-1")
	require.NoError(t, err)

	assert.Equal(t, "jdoe@acmeplumbing.com", outcome.Email)
	assert.Equal(t, model.MethodPatternGenerated, outcome.Method)
	assert.Equal(t, 98, outcome.Score)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Equal(t, 5, outcome.PagesCrawled)
	assert.Equal(t, 65, outcome.CrawlScore)
	assert.False(t, outcome.Quarantined)

	assert.Equal(t, []string{"c-1:jdoe@acmeplumbing.com"}, st.upserted)
	assert.Equal(t, []string{"org-1"}, st.enrichedOrgs)
	assert.Len(t, st.recorded["c-1"], 2)
	assert.Zero(t, quarantiner.calls)
}

func TestEnrichContactQuarantinesOnExhaustion(t *testing.T) {
	st := newFakeStore()
	seed(st)

	crawler := &fakeCrawler{report: model.CrawlReport{
		SiteStatus:   model.SiteWorking,
		Score:        40,
		PagesVisited: 5,
	}}
	runner := &fakeCascade{outcome: cascade.Outcome{
		Attempts: []model.EmailAttempt{
			{Email: "jane@acmeplumbing.com", Status: model.StatusCatchAll, Rank: 1},
			{Email: "jdoe@acmeplumbing.com", Status: model.StatusInvalid, Rank: 2},
		},
	}}
	quarantiner := &fakeQuarantiner{store: st}
	o := NewOrchestrator(st, crawler, runner, quarantiner)

	outcome, err := o.EnrichContact(context.Background(), "c-1")
	require.NoError(t, err)

	assert.True(t, outcome.Quarantined)
	assert.Empty(t, outcome.Email)
	assert.Equal(t, 1, quarantiner.calls)
	assert.Len(t, st.quarantined, 1)

	_, err = st.GetContact(context.Background(), "c-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnrichContactQuarantinesWithZeroAttempts(t *testing.T) {
	st := newFakeStore()
	seed(st)

	// Placeholder site: no candidates, and the contact has no name tokens
	// usable elsewhere either.
	crawler := &fakeCrawler{report: model.CrawlReport{
		SiteStatus: model.SitePlaceholder,
		StopReason: model.StopSiteUnusable,
	}}
	runner := &fakeCascade{}
	quarantiner := &fakeQuarantiner{store: st}
	o := NewOrchestrator(st, crawler, runner, quarantiner)

	outcome, err := o.EnrichContact(context.Background(), "c-1")
	require.NoError(t, err)

	assert.True(t, outcome.Quarantined)
	assert.Zero(t, outcome.Attempts)
	require.Len(t, st.quarantined, 1)
	assert.Equal(t, model.QuarantineReasonNoValidEmail, st.quarantined[0].Reason)
}

func TestEnrichContactFoldsCrawlEmailIntoExistingTier(t *testing.T) {
	st := newFakeStore()
	seed(st)

	crawler := &fakeCrawler{report: model.CrawlReport{
		SiteStatus: model.SiteWorking,
		Score:      70,
		Candidates: []model.ContactCandidate{
			{Name: "Jane Doe", Email: "jane.doe@acmeplumbing.com", NameTier: model.TierStructured},
			{Email: "info@acmeplumbing.com"},
		},
	}}
	runner := &fakeCascade{outcome: cascade.Outcome{
		Accepted: true,
		Email:    "jane.doe@acmeplumbing.com",
		Method:   model.MethodExistingValid,
		Result:   verify.Result{Status: model.StatusValid, Score: 98},
	}}
	o := NewOrchestrator(st, crawler, runner, &fakeQuarantiner{store: st})

	_, err := o.EnrichContact(context.Background(), "c-1")
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@acmeplumbing.com", runner.lastIn.Contact.Email,
		"personal address found on the site should seed the existing tier")
	assert.Equal(t, "Jane Doe", runner.lastIn.Person.Name)
}

func TestSelectPersonPrefersNameMatch(t *testing.T) {
	candidates := []model.ContactCandidate{
		{Name: "Bob Smith", NameTier: model.TierStructured, Title: "CEO"},
		{Name: "jane doe", NameTier: model.TierDirect},
	}
	got := selectPerson(candidates, model.Contact{Name: "Jane Doe"})
	assert.Equal(t, "jane doe", got.Name)

	got = selectPerson(candidates, model.Contact{Name: "Nobody Here"})
	assert.Equal(t, "Bob Smith", got.Name, "falls back to best-evidenced person")
}

func TestBatchRunCollectsStats(t *testing.T) {
	st := newFakeStore()
	seed(st)
	st.orgs["org-2"] = model.Organization{ID: "org-2", Name: "Beta", WebsiteURL: "https://beta.example"}
	st.contacts["c-2"] = model.Contact{
		ID:          "c-2",
		OrgID:       "org-2",
		Name:        "Al Ok",
		Email:       "al@beta.example",
		EmailStatus: model.StatusValid,
	}

	crawler := &fakeCrawler{report: model.CrawlReport{SiteStatus: model.SiteWorking, Score: 50, PagesVisited: 3}}
	runner := &fakeCascade{outcome: cascade.Outcome{
		Accepted: true,
		Email:    "jane@acmeplumbing.com",
		Method:   model.MethodAISuggested,
		Result:   verify.Result{Status: model.StatusValid, Score: 98},
		Attempts: []model.EmailAttempt{{Email: "jane@acmeplumbing.com", Status: model.StatusValid, Rank: 1}},
	}}
	b := NewBatch(NewOrchestrator(st, crawler, runner, &fakeQuarantiner{store: st}), 2)

	outcomes, stats, err := b.Run(context.Background(), []string{"c-1", "c-2", "c-missing"})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Failed)
	assert.NotEmpty(t, outcomes[2].Error)
}

func TestStatsAdd(t *testing.T) {
	a := Stats{Processed: 2, Accepted: 1, PagesCrawled: 7}
	a.Add(Stats{Processed: 3, Quarantined: 2, VerifierCalls: 4})

	assert.Equal(t, 5, a.Processed)
	assert.Equal(t, 1, a.Accepted)
	assert.Equal(t, 2, a.Quarantined)
	assert.Equal(t, 4, a.VerifierCalls)
	assert.Equal(t, 7, a.PagesCrawled)
}
