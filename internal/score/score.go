// Package score computes the 0-100 confidence score that drives the crawl
// stopping policy. Scoring is a pure function over the candidate set so the
// policy can be tuned and tested without touching extraction.
package score

import (
	"fmt"
	"strings"

	"github.com/sells-group/outreach-cli/internal/extract"
	"github.com/sells-group/outreach-cli/internal/model"
)

// Weights is the data-driven scoring table. All values are tunable via
// configuration; the defaults are the empirically chosen constants the
// stopping thresholds were calibrated against.
type Weights struct {
	StructuredEmail     int `mapstructure:"structured_email"`
	DirectPersonalEmail int `mapstructure:"direct_personal_email"`
	DirectGenericEmail  int `mapstructure:"direct_generic_email"`
	StructuredPhone     int `mapstructure:"structured_phone"`
	DirectPhone         int `mapstructure:"direct_phone"`
	StructuredName      int `mapstructure:"structured_name"`
	DirectNameWithTitle int `mapstructure:"direct_name_with_title"`
	DirectName          int `mapstructure:"direct_name"`
	ManyContactPages    int `mapstructure:"many_contact_pages"`  // bonus for >= 3
	FewContactPages     int `mapstructure:"few_contact_pages"`   // bonus for 1-2
}

// DefaultWeights returns the default scoring table.
func DefaultWeights() Weights {
	return Weights{
		StructuredEmail:     25,
		DirectPersonalEmail: 20,
		DirectGenericEmail:  10,
		StructuredPhone:     20,
		DirectPhone:         15,
		StructuredName:      20,
		DirectNameWithTitle: 15,
		DirectName:          10,
		ManyContactPages:    10,
		FewContactPages:     5,
	}
}

// Scorer scores a candidate set. Deterministic and side-effect free.
type Scorer struct {
	weights           Weights
	genericLocalParts []string
}

// NewScorer creates a scorer. Zero weights fall back to the defaults; an
// empty denylist falls back to the standard generic local-parts.
func NewScorer(w Weights, genericLocalParts []string) *Scorer {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	if len(genericLocalParts) == 0 {
		genericLocalParts = extract.DefaultGenericLocalParts
	}
	return &Scorer{weights: w, genericLocalParts: genericLocalParts}
}

// Score returns the capped 0-100 confidence score and a human-readable
// reasoning string. A site that is not working scores 0 regardless of
// candidates.
func (s *Scorer) Score(candidates []model.ContactCandidate, contactPages int, siteWorking bool) (int, string) {
	if !siteWorking {
		return 0, "site not usable"
	}

	total := 0
	var reasons []string
	add := func(points int, what string) {
		if points <= 0 {
			return
		}
		total += points
		reasons = append(reasons, fmt.Sprintf("%s +%d", what, points))
	}

	for _, c := range candidates {
		if c.Email != "" {
			switch {
			case c.EmailTier == model.TierStructured:
				add(s.weights.StructuredEmail, "structured email")
			case extract.IsGenericLocalPart(c.Email, s.genericLocalParts):
				add(s.weights.DirectGenericEmail, "generic email")
			default:
				add(s.weights.DirectPersonalEmail, "personal email")
			}
		}
		if c.Phone != "" {
			if c.PhoneTier == model.TierStructured {
				add(s.weights.StructuredPhone, "structured phone")
			} else {
				add(s.weights.DirectPhone, "phone")
			}
		}
		if c.Name != "" {
			switch {
			case c.NameTier == model.TierStructured:
				add(s.weights.StructuredName, "structured name")
			case c.Title != "":
				add(s.weights.DirectNameWithTitle, "name with title")
			default:
				add(s.weights.DirectName, "name")
			}
		}
	}

	switch {
	case contactPages >= 3:
		add(s.weights.ManyContactPages, fmt.Sprintf("%d contact pages", contactPages))
	case contactPages >= 1:
		add(s.weights.FewContactPages, fmt.Sprintf("%d contact pages", contactPages))
	}

	if total > 100 {
		total = 100
	}
	if len(reasons) == 0 {
		return 0, "no contact signals"
	}
	return total, strings.Join(reasons, ", ")
}
