package predict

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/pkg/perplexity"
)

// PerplexityPredictor backs EmailPredictor with the Perplexity chat API.
// Its web grounding sometimes surfaces addresses published on pages the
// crawl never reached.
type PerplexityPredictor struct {
	client perplexity.Client
}

// NewPerplexityPredictor wraps a Perplexity client.
func NewPerplexityPredictor(client perplexity.Client) *PerplexityPredictor {
	return &PerplexityPredictor{client: client}
}

// Suggest returns up to MaxSuggestions addresses at the request's domain.
// Any failure logs and returns nil.
func (p *PerplexityPredictor) Suggest(ctx context.Context, req Request) []string {
	chatReq := perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "system", Content: "You find professional email addresses. Answer only with email addresses, one per line."},
			{Role: "user", Content: buildPrompt(req)},
		},
	}
	if req.Domain != "" {
		chatReq.SearchDomainFilter = []string{req.Domain}
	}
	resp, err := p.client.ChatCompletion(ctx, chatReq)
	if err != nil {
		zap.L().Warn("predict: perplexity suggestion failed",
			zap.String("person", req.PersonName),
			zap.String("domain", req.Domain),
			zap.Error(err),
		)
		return nil
	}
	if len(resp.Choices) == 0 {
		return nil
	}

	emails := parseEmails(resp.Choices[0].Message.Content, req.Domain, req.limit())
	zap.L().Debug("predict: perplexity suggestions",
		zap.String("person", req.PersonName),
		zap.Int("count", len(emails)),
	)
	return emails
}
