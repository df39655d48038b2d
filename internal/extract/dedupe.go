package extract

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Deduplicator merges per-page signals into the session's candidate set.
// The merge is associative: feeding the same signals again is a no-op, and
// a field is only ever replaced by a strictly higher quality tier, so the
// downstream confidence score can never regress within a session.
type Deduplicator struct{}

// NewDeduplicator creates a signal deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Merge folds signals into the existing candidate set and returns the new
// set. The input slice is not mutated. Names are processed before emails and
// phones so person-level attachment sees every name from the page.
func (d *Deduplicator) Merge(existing []model.ContactCandidate, signals []model.ContactSignal) []model.ContactCandidate {
	out := make([]model.ContactCandidate, len(existing))
	copy(out, existing)

	for _, sig := range signals {
		if sig.Kind == model.SignalPersonName {
			out = mergeName(out, sig)
		}
	}
	for _, sig := range signals {
		switch sig.Kind {
		case model.SignalEmail:
			out = mergeEmail(out, sig)
		case model.SignalPhone:
			out = mergePhone(out, sig)
		}
	}
	return out
}

func mergeName(cands []model.ContactCandidate, sig model.ContactSignal) []model.ContactCandidate {
	name := strings.Join(strings.Fields(sig.Value), " ")
	if name == "" {
		return cands
	}
	for i := range cands {
		if !strings.EqualFold(cands[i].Name, name) {
			continue
		}
		prevTier := cands[i].NameTier
		if sig.Tier > prevTier {
			cands[i].NameTier = sig.Tier
			cands[i].NameSource = sig.SourceURL
		}
		if sig.Title != "" && (cands[i].Title == "" || sig.Tier > prevTier) {
			cands[i].Title = sig.Title
		}
		return cands
	}
	return append(cands, model.ContactCandidate{
		Name:       name,
		Title:      sig.Title,
		NameTier:   sig.Tier,
		NameSource: sig.SourceURL,
	})
}

func mergeEmail(cands []model.ContactCandidate, sig model.ContactSignal) []model.ContactCandidate {
	email := strings.ToLower(sig.Value)
	for i := range cands {
		if cands[i].Email != email {
			continue
		}
		if sig.Tier > cands[i].EmailTier {
			cands[i].EmailTier = sig.Tier
			cands[i].EmailSource = sig.SourceURL
		}
		return cands
	}

	// Attach a personal-looking address to the person it names.
	if !IsGenericLocalPart(email, nil) {
		if i := matchPersonByLocalPart(cands, email); i >= 0 && cands[i].Email == "" {
			cands[i].Email = email
			cands[i].EmailTier = sig.Tier
			cands[i].EmailSource = sig.SourceURL
			return cands
		}
	}

	return append(cands, model.ContactCandidate{
		Email:       email,
		EmailTier:   sig.Tier,
		EmailSource: sig.SourceURL,
	})
}

// matchPersonByLocalPart finds a named candidate whose first or last name
// token appears in the address local-part.
func matchPersonByLocalPart(cands []model.ContactCandidate, email string) int {
	local, _, _ := strings.Cut(email, "@")
	local = strings.ToLower(local)
	if len(local) < 2 {
		return -1
	}
	for i := range cands {
		if cands[i].Name == "" {
			continue
		}
		tokens := strings.Fields(strings.ToLower(cands[i].Name))
		for _, tok := range tokens {
			if len(tok) >= 2 && strings.Contains(local, tok) {
				return i
			}
		}
		// Initial+last shapes like jdoe.
		if len(tokens) >= 2 {
			last := tokens[len(tokens)-1]
			if len(last) >= 2 && local == tokens[0][:1]+last {
				return i
			}
		}
	}
	return -1
}

// mergePhone keeps org-level numbers on an unnamed channel candidate rather
// than guessing which person a number belongs to.
func mergePhone(cands []model.ContactCandidate, sig model.ContactSignal) []model.ContactCandidate {
	for i := range cands {
		if cands[i].Phone != sig.Value {
			continue
		}
		if sig.Tier > cands[i].PhoneTier {
			cands[i].PhoneTier = sig.Tier
			cands[i].PhoneSource = sig.SourceURL
		}
		return cands
	}
	for i := range cands {
		if cands[i].Name == "" && cands[i].Email == "" && cands[i].Phone == "" {
			cands[i].Phone = sig.Value
			cands[i].PhoneTier = sig.Tier
			cands[i].PhoneSource = sig.SourceURL
			return cands
		}
	}
	return append(cands, model.ContactCandidate{
		Phone:       sig.Value,
		PhoneTier:   sig.Tier,
		PhoneSource: sig.SourceURL,
	})
}
