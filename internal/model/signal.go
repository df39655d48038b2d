package model

// SignalKind classifies a contact signal extracted from a page.
type SignalKind string

const (
	SignalEmail      SignalKind = "email"
	SignalPhone      SignalKind = "phone"
	SignalPersonName SignalKind = "person_name"
	SignalSocialLink SignalKind = "social_link"
)

// QualityTier ranks the evidence quality of a signal. Structured markup
// outranks plain-text matches, which outrank heuristic inferences.
type QualityTier int

const (
	TierInferred QualityTier = iota
	TierDirect
	TierStructured
)

// String returns the tier name used in persisted records and logs.
func (t QualityTier) String() string {
	switch t {
	case TierStructured:
		return "structured"
	case TierDirect:
		return "direct"
	default:
		return "inferred"
	}
}

// ContactSignal is a single observation extracted from one page. Signals are
// ephemeral; they exist only for the duration of a crawl session.
type ContactSignal struct {
	Kind      SignalKind  `json:"kind"`
	Value     string      `json:"value"`
	Tier      QualityTier `json:"quality_tier"`
	SourceURL string      `json:"source_url"`
	// Title is set only for person_name signals when a leadership title
	// was found alongside the name.
	Title string `json:"title,omitempty"`
}

// ContactCandidate is the deduplicated aggregate of signals for one person
// or one generic channel at an organization. Built fresh each crawl session.
type ContactCandidate struct {
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	// Best tier observed per field, with the page that produced the kept value.
	NameTier    QualityTier `json:"name_tier"`
	EmailTier   QualityTier `json:"email_tier"`
	PhoneTier   QualityTier `json:"phone_tier"`
	NameSource  string      `json:"name_source,omitempty"`
	EmailSource string      `json:"email_source,omitempty"`
	PhoneSource string      `json:"phone_source,omitempty"`
}

// HasPerson reports whether the candidate identifies a named individual.
func (c ContactCandidate) HasPerson() bool {
	return c.Name != ""
}
