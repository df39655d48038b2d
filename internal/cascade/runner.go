package cascade

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/verify"
)

// MaxGenerated caps the merged AI + pattern candidate list, so one contact
// costs at most 1 (existing) + MaxGenerated verifier calls.
const MaxGenerated = 10

// DefaultSpacing is the minimum delay between verifier calls for one contact.
const DefaultSpacing = time.Second

// Outcome is the cascade result for one contact.
type Outcome struct {
	Accepted      bool
	Email         string
	Method        model.DiscoveryMethod
	Result        verify.Result
	Attempts      []model.EmailAttempt
	VerifierCalls int
}

// Runner drives the ordered strategy list against the verifier. Validation
// for one contact is strictly sequential; only separate contacts run
// concurrently, each with its own Runner invocation.
type Runner struct {
	verifier   verify.MailboxVerifier
	strategies []Strategy
	spacing    time.Duration
}

// NewRunner builds a cascade driver. A zero spacing uses DefaultSpacing.
func NewRunner(verifier verify.MailboxVerifier, strategies []Strategy, spacing time.Duration) *Runner {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	return &Runner{verifier: verifier, strategies: strategies, spacing: spacing}
}

// DefaultStrategies returns the standard tier order.
func DefaultStrategies(ai AIStrategy, pattern PatternStrategy) []Strategy {
	return []Strategy{ExistingStrategy{}, ai, pattern}
}

// Run walks the strategy tiers in order, validating candidates one at a
// time. It stops at the first valid result. An error is returned only for
// context cancellation; verifier failures become status-error attempts.
func (r *Runner) Run(ctx context.Context, in Input) (Outcome, error) {
	log := zap.L().With(
		zap.String("contact_id", in.Contact.ID),
		zap.String("org_id", in.Org.ID),
	)

	var out Outcome
	limiter := rate.NewLimiter(rate.Every(r.spacing), 1)
	seen := map[string]bool{}
	generated := 0

	for _, strat := range r.strategies {
		for _, cand := range strat.Candidates(ctx, in) {
			email := strings.ToLower(strings.TrimSpace(cand.Email))
			if email == "" || seen[email] {
				continue
			}
			if cand.Origin != model.OriginExisting {
				if generated >= MaxGenerated {
					continue
				}
				generated++
			}
			seen[email] = true

			if err := limiter.Wait(ctx); err != nil {
				return out, err
			}

			result, err := r.verifier.Validate(ctx, email)
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			out.VerifierCalls++
			if err != nil {
				result.Status = model.StatusError
				log.Warn("cascade: verifier error",
					zap.String("email", email),
					zap.Error(err),
				)
			}

			attempt := model.EmailAttempt{
				Email:     email,
				Origin:    cand.Origin,
				Rank:      len(out.Attempts) + 1,
				Status:    result.Status,
				Score:     result.Score,
				RiskScore: result.RiskScore,
				Timestamp: time.Now().UTC(),
			}
			out.Attempts = append(out.Attempts, attempt)

			switch {
			case result.Status.Acceptable():
				out.Accepted = true
				out.Email = email
				out.Method = methodForOrigin(cand.Origin)
				out.Result = result
				log.Info("cascade: email accepted",
					zap.String("email", email),
					zap.String("method", string(out.Method)),
					zap.Int("attempts", len(out.Attempts)),
				)
				return out, nil
			case result.Status == model.StatusCatchAll:
				// Catch-all domains accept every address; log, never accept.
				log.Info("cascade: catch-all domain, continuing",
					zap.String("email", email),
				)
			}
		}
	}

	log.Info("cascade: exhausted without valid email",
		zap.Int("attempts", len(out.Attempts)),
	)
	return out, nil
}

func methodForOrigin(origin model.AttemptOrigin) model.DiscoveryMethod {
	switch origin {
	case model.OriginExisting:
		return model.MethodExistingValid
	case model.OriginAISuggested:
		return model.MethodAISuggested
	default:
		return model.MethodPatternGenerated
	}
}
