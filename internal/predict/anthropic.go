package predict

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicPredictor backs EmailPredictor with the Anthropic messages API.
type AnthropicPredictor struct {
	client anthropic.Client
	model  string
}

// NewAnthropicPredictor wraps an Anthropic client. An empty model selects
// the default.
func NewAnthropicPredictor(client anthropic.Client, model string) *AnthropicPredictor {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicPredictor{client: client, model: model}
}

// Suggest returns up to MaxSuggestions addresses at the request's domain.
// Any failure logs and returns nil.
func (p *AnthropicPredictor) Suggest(ctx context.Context, req Request) []string {
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: 256,
		System:    "You predict likely professional email addresses from naming conventions. Answer only with email addresses, one per line.",
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(req)},
		},
	})
	if err != nil {
		zap.L().Warn("predict: anthropic suggestion failed",
			zap.String("person", req.PersonName),
			zap.String("domain", req.Domain),
			zap.Error(err),
		)
		return nil
	}
	resp.Usage.LogCost(resp.Model, "email_prediction")

	emails := parseEmails(resp.Text, req.Domain, req.limit())
	zap.L().Debug("predict: anthropic suggestions",
		zap.String("person", req.PersonName),
		zap.Int("count", len(emails)),
	)
	return emails
}
