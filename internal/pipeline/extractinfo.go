package pipeline

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/pkg/llm"
)

const extractSystemPrompt = `You extract structured bid information from solicitation documents (RFPs, RFQs, ITBs).

Respond with a single JSON object and nothing else:
{
  "title": "string",
  "description": "string (2-4 sentence summary of the requested work)",
  "issuing_org": "string",
  "location": "string (city and state if determinable)",
  "solicitation_type": "string (RFP, RFQ, ITB, or empty)",
  "solicitation_number": "string or empty",
  "due_date": "string or empty",
  "services": ["string (requested service categories)"]
}

Use empty strings and empty arrays for anything the document does not state. Never guess.`

// ExtractBidInfo parses raw solicitation text into a structured bid request.
// The original document text is preserved on the result for downstream
// prompt interpolation. Unlike the enrichment stages, a failure here is
// surfaced: without structured bid fields nothing downstream can run.
func (p *Pipeline) ExtractBidInfo(ctx context.Context, documentText string) (*model.BidRequest, error) {
	if documentText == "" {
		return nil, eris.New("pipeline: empty document text")
	}

	resp, err := p.complete(ctx, p.research, "bid info extraction", llm.Request{
		Model:     p.researchModel,
		System:    extractSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: truncate(documentText, 48_000)}},
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, err
	}

	var bid model.BidRequest
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &bid); err != nil {
		return nil, eris.Wrap(err, "pipeline: parse bid info")
	}
	if bid.Title == "" && bid.Description == "" {
		return nil, eris.New("pipeline: extraction produced no usable bid fields")
	}

	bid.DocumentsText = documentText

	zap.L().Info("extracted bid info",
		zap.String("title", bid.Title),
		zap.String("org", bid.IssuingOrg),
		zap.Int("services", len(bid.Services)))
	return &bid, nil
}
