// Package cascade runs the tiered email-validation pipeline: existing
// address, then AI-suggested candidates, then deterministic pattern
// candidates, stopping at the first verified mailbox.
package cascade

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/candidate"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/predict"
)

// Candidate is one address a strategy proposes for validation.
type Candidate struct {
	Email  string
	Origin model.AttemptOrigin
}

// Input carries everything a strategy may draw candidates from.
type Input struct {
	Contact model.Contact
	Org     model.Organization
	// Person is the crawl-selected candidate for this contact; may be the
	// zero value when the crawl found nothing personal.
	Person model.ContactCandidate
}

// personName returns the best-known name for the contact.
func (in Input) personName() string {
	if in.Person.Name != "" {
		return in.Person.Name
	}
	return in.Contact.Name
}

// Strategy proposes candidates for one tier of the cascade. Returning an
// empty list is normal; the driver moves to the next tier.
type Strategy interface {
	Name() string
	Candidates(ctx context.Context, in Input) []Candidate
}

// ExistingStrategy proposes the address already on file, if any.
type ExistingStrategy struct{}

func (ExistingStrategy) Name() string { return "existing" }

func (ExistingStrategy) Candidates(_ context.Context, in Input) []Candidate {
	if in.Contact.Email == "" {
		return nil
	}
	return []Candidate{{Email: in.Contact.Email, Origin: model.OriginExisting}}
}

// AIStrategy asks the predictor for suggestions. Predictor failures yield
// an empty list; the tier is skipped silently.
type AIStrategy struct {
	Predictor predict.EmailPredictor
	// Max caps suggestions per contact; zero uses the predictor default.
	Max int
}

func (AIStrategy) Name() string { return "ai_suggested" }

func (s AIStrategy) Candidates(ctx context.Context, in Input) []Candidate {
	name := in.personName()
	if s.Predictor == nil || name == "" {
		return nil
	}
	emails := s.Predictor.Suggest(ctx, predict.Request{
		PersonName:  name,
		CompanyName: in.Org.Name,
		Domain:      in.Org.Domain(),
		Context:     in.Person.Title,
		Max:         s.Max,
	})
	out := make([]Candidate, 0, len(emails))
	for _, e := range emails {
		out = append(out, Candidate{Email: e, Origin: model.OriginAISuggested})
	}
	return out
}

// PatternStrategy enumerates deterministic name-pattern addresses.
type PatternStrategy struct {
	Generator *candidate.Generator
}

func (PatternStrategy) Name() string { return "pattern" }

func (s PatternStrategy) Candidates(_ context.Context, in Input) []Candidate {
	name := in.personName()
	if s.Generator == nil || name == "" {
		return nil
	}
	emails := s.Generator.Generate(name, in.Org.Domain())
	out := make([]Candidate, 0, len(emails))
	for _, e := range emails {
		out = append(out, Candidate{Email: e, Origin: model.OriginPattern})
	}
	return out
}
