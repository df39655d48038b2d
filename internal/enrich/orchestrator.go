// Package enrich sequences the per-contact pipeline: crawl the
// organization's site, run the validation cascade, persist the accepted
// email or quarantine the contact.
package enrich

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/cascade"
	"github.com/sells-group/outreach-cli/internal/extract"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

// Crawler runs one crawl session for a website.
type Crawler interface {
	Run(ctx context.Context, websiteURL string) (model.CrawlReport, error)
}

// CascadeRunner drives the validation tiers for one contact.
type CascadeRunner interface {
	Run(ctx context.Context, in cascade.Input) (cascade.Outcome, error)
}

// Quarantiner applies the atomic move to the dead-letter store.
type Quarantiner interface {
	Quarantine(ctx context.Context, contact model.Contact, org model.Organization, attempts []model.EmailAttempt) (*model.QuarantineRecord, error)
}

// Orchestrator is the per-contact state machine.
type Orchestrator struct {
	store       store.Store
	crawler     Crawler
	cascade     CascadeRunner
	quarantiner Quarantiner
}

// NewOrchestrator wires the pipeline stages.
func NewOrchestrator(st store.Store, crawler Crawler, runner CascadeRunner, quarantiner Quarantiner) *Orchestrator {
	return &Orchestrator{
		store:       st,
		crawler:     crawler,
		cascade:     runner,
		quarantiner: quarantiner,
	}
}

// EnrichContact runs the full pipeline for one contact. It is idempotent:
// a contact that already holds a valid email is skipped with zero network
// calls. Errors are returned for store failures and cancellation; site and
// verifier trouble is absorbed into the outcome.
func (o *Orchestrator) EnrichContact(ctx context.Context, contactID string) (model.EnrichmentOutcome, error) {
	contact, err := o.store.GetContact(ctx, contactID)
	if err != nil {
		return model.EnrichmentOutcome{ContactID: contactID}, eris.Wrapf(err, "enrich: load contact %s", contactID)
	}
	outcome := model.EnrichmentOutcome{ContactID: contact.ID, OrgID: contact.OrgID}

	if contact.HasValidEmail() {
		outcome.Skipped = true
		outcome.Email = contact.Email
		outcome.Method = contact.DiscoveryMethod
		zap.L().Debug("enrich: contact already valid, skipping",
			zap.String("contact_id", contact.ID),
		)
		return outcome, nil
	}

	org, err := o.store.GetOrg(ctx, contact.OrgID)
	if err != nil {
		return outcome, eris.Wrapf(err, "enrich: load org %s", contact.OrgID)
	}

	report, err := o.crawler.Run(ctx, org.WebsiteURL)
	if err != nil {
		return outcome, err
	}
	outcome.PagesCrawled = report.PagesVisited
	outcome.CrawlScore = report.Score

	in := cascade.Input{
		Contact: *contact,
		Org:     *org,
		Person:  selectPerson(report.Candidates, *contact),
	}
	// A personal address discovered on the site fills the existing-email
	// tier when the contact record has none.
	if in.Contact.Email == "" && in.Person.Email != "" && !extract.IsGenericLocalPart(in.Person.Email, nil) {
		in.Contact.Email = in.Person.Email
	}

	result, err := o.cascade.Run(ctx, in)
	if err != nil {
		return outcome, err
	}
	outcome.Attempts = len(result.Attempts)

	if err := o.store.RecordAttempts(ctx, contact.ID, result.Attempts); err != nil {
		return outcome, err
	}

	if result.Accepted {
		if err := o.store.UpsertEmail(ctx, contact.ID, result.Email, model.StatusValid, result.Result.Score, result.Method); err != nil {
			return outcome, err
		}
		if err := o.store.MarkOrgEnriched(ctx, org.ID); err != nil {
			return outcome, err
		}
		outcome.Email = result.Email
		outcome.Method = result.Method
		outcome.Score = result.Result.Score
		return outcome, nil
	}

	if _, err := o.quarantiner.Quarantine(ctx, *contact, *org, result.Attempts); err != nil {
		return outcome, err
	}
	outcome.Quarantined = true
	return outcome, nil
}

// selectPerson picks the crawl candidate to validate for this contact:
// the one matching the contact's name if present, otherwise the
// best-evidenced named candidate.
func selectPerson(candidates []model.ContactCandidate, contact model.Contact) model.ContactCandidate {
	if contact.Name != "" {
		for _, c := range candidates {
			if strings.EqualFold(c.Name, contact.Name) {
				return c
			}
		}
	}

	var best model.ContactCandidate
	found := false
	for _, c := range candidates {
		if !c.HasPerson() {
			continue
		}
		if !found || betterPerson(c, best) {
			best = c
			found = true
		}
	}
	return best
}

// betterPerson orders candidates by name tier, then by having a title, then
// by having an email.
func betterPerson(a, b model.ContactCandidate) bool {
	if a.NameTier != b.NameTier {
		return a.NameTier > b.NameTier
	}
	if (a.Title != "") != (b.Title != "") {
		return a.Title != ""
	}
	return a.Email != "" && b.Email == ""
}
