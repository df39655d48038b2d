package verify

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/zerobounce"
)

// ZeroBounceVerifier adapts the ZeroBounce API to the MailboxVerifier
// contract, retrying transient API failures with backoff.
type ZeroBounceVerifier struct {
	client zerobounce.Client
	retry  resilience.RetryConfig
}

// NewZeroBounceVerifier wraps a ZeroBounce client.
func NewZeroBounceVerifier(client zerobounce.Client, retry resilience.RetryConfig) *ZeroBounceVerifier {
	return &ZeroBounceVerifier{client: client, retry: retry}
}

// Validate verifies one address. API errors after retries surface to the
// caller; the cascade records them as status error attempts.
func (v *ZeroBounceVerifier) Validate(ctx context.Context, email string) (Result, error) {
	v.retry.OnRetry = resilience.RetryLogger("zerobounce", "validate")

	resp, err := resilience.DoVal(ctx, v.retry, func(ctx context.Context) (*zerobounce.ValidateResponse, error) {
		resp, err := v.client.Validate(ctx, email)
		if err != nil {
			var apiErr *zerobounce.APIError
			if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
				return nil, &resilience.TransientError{
					Err:        apiErr,
					StatusCode: apiErr.StatusCode,
					RetryAfter: apiErr.RetryAfter,
				}
			}
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return Result{Status: model.StatusError, Provider: "zerobounce"}, eris.Wrap(err, "verify: validate")
	}

	result := mapResponse(resp)
	zap.L().Debug("verify: validated",
		zap.String("email", email),
		zap.String("status", string(result.Status)),
		zap.Int("score", result.Score),
	)
	return result, nil
}

// mapResponse translates ZeroBounce statuses to the internal status model.
// do_not_mail covers disposable and toxic sub-statuses, which get their own
// status so quarantine evidence stays precise.
func mapResponse(resp *zerobounce.ValidateResponse) Result {
	r := Result{Provider: "zerobounce"}

	switch resp.Status {
	case "valid":
		r.Status = model.StatusValid
	case "invalid":
		r.Status = model.StatusInvalid
	case "catch-all":
		r.Status = model.StatusCatchAll
	case "spamtrap":
		r.Status = model.StatusSpamtrap
	case "abuse":
		r.Status = model.StatusAbuse
	case "do_not_mail":
		switch resp.SubStatus {
		case "disposable", "toxic":
			r.Status = model.StatusDisposable
		default:
			r.Status = model.StatusDontSend
		}
	default:
		r.Status = model.StatusUnknown
	}

	r.Score, r.RiskScore = scoreFor(r.Status, resp)
	return r
}

// scoreFor derives a 0-100 confidence score and risk score from the mapped
// status. ZeroBounce's validate endpoint has no numeric score, so this is a
// fixed policy mapping.
func scoreFor(status model.VerifyStatus, resp *zerobounce.ValidateResponse) (score, risk int) {
	switch status {
	case model.StatusValid:
		score, risk = 98, 2
		if resp.FreeEmail {
			score, risk = 90, 10
		}
	case model.StatusCatchAll:
		score, risk = 50, 50
	case model.StatusUnknown:
		score, risk = 30, 60
	case model.StatusDontSend:
		score, risk = 10, 80
	case model.StatusDisposable:
		score, risk = 5, 90
	case model.StatusInvalid:
		score, risk = 0, 95
	case model.StatusSpamtrap, model.StatusAbuse:
		score, risk = 0, 100
	default:
		score, risk = 0, 100
	}
	return score, risk
}
