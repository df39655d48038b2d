package enrich

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

// DefaultWorkers bounds concurrent contacts in a batch run.
const DefaultWorkers = 5

// Batch fans EnrichContact over a set of contacts with bounded concurrency.
// A failure on one contact never aborts the others; it is captured in that
// contact's outcome. Cancellation of ctx stops scheduling new contacts.
type Batch struct {
	orchestrator *Orchestrator
	workers      int
}

// NewBatch builds a batch runner. workers <= 0 selects DefaultWorkers.
func NewBatch(o *Orchestrator, workers int) *Batch {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Batch{orchestrator: o, workers: workers}
}

// Run enriches every listed contact and returns per-contact outcomes in
// input order plus accumulated stats.
func (b *Batch) Run(ctx context.Context, contactIDs []string) ([]model.EnrichmentOutcome, Stats, error) {
	outcomes := make([]model.EnrichmentOutcome, len(contactIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, id := range contactIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = model.EnrichmentOutcome{ContactID: id, Error: err.Error()}
				return nil
			}
			outcome, err := b.orchestrator.EnrichContact(gctx, id)
			if err != nil {
				outcome.Error = err.Error()
				zap.L().Warn("enrich: contact failed",
					zap.String("contact_id", id),
					zap.Error(err),
				)
			}
			outcomes[i] = outcome
			return nil
		})
	}

	// Worker funcs never return errors; Wait only observes cancellation.
	if err := g.Wait(); err != nil {
		return outcomes, collect(outcomes), err
	}
	return outcomes, collect(outcomes), nil
}

// RunPending enriches every contact matching the filter.
func (b *Batch) RunPending(ctx context.Context, filter store.ContactFilter) ([]model.EnrichmentOutcome, Stats, error) {
	contacts, err := b.orchestrator.store.ListContacts(ctx, filter)
	if err != nil {
		return nil, Stats{}, err
	}
	ids := make([]string, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID
	}
	zap.L().Info("enrich: batch starting",
		zap.Int("contacts", len(ids)),
		zap.Int("workers", b.workers),
	)
	return b.Run(ctx, ids)
}

func collect(outcomes []model.EnrichmentOutcome) Stats {
	var s Stats
	for _, o := range outcomes {
		s.Processed++
		switch {
		case o.Error != "":
			s.Failed++
		case o.Skipped:
			s.Skipped++
		case o.Quarantined:
			s.Quarantined++
		case o.Email != "":
			s.Accepted++
		}
		s.VerifierCalls += o.Attempts
		s.PagesCrawled += o.PagesCrawled
	}
	return s
}
