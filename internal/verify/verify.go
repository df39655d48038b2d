// Package verify defines the mailbox-verifier contract and its ZeroBounce
// implementation. The verifier is an opaque oracle: the cascade only looks
// at the returned status, never at deliverability internals.
package verify

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Result is one verifier outcome.
type Result struct {
	Status    model.VerifyStatus `json:"status"`
	Score     int                `json:"score"`
	RiskScore int                `json:"risk_score"`
	Provider  string             `json:"provider"`
}

// MailboxVerifier validates a single address. Implementations must be safe
// for concurrent use across contacts; per-contact call spacing is the
// caller's job.
type MailboxVerifier interface {
	Validate(ctx context.Context, email string) (Result, error)
}
