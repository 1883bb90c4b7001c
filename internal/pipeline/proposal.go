package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/pkg/llm"
)

// bidSummary renders the request-specific facts interpolated into every
// generation prompt.
func bidSummary(bid model.BidRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solicitation: %s\n", bid.Title)
	fmt.Fprintf(&b, "Issuing organization: %s\n", bid.IssuingOrg)
	fmt.Fprintf(&b, "Location: %s\n", bid.Location)
	if bid.SolicitationType != "" {
		fmt.Fprintf(&b, "Type: %s\n", bid.SolicitationType)
	}
	if bid.SolicitationNumber != "" {
		fmt.Fprintf(&b, "Solicitation number: %s\n", bid.SolicitationNumber)
	}
	if bid.DueDate != "" {
		fmt.Fprintf(&b, "Due date: %s\n", bid.DueDate)
	}
	fmt.Fprintf(&b, "Services requested: %s\n", joinServices(bid.Services))
	fmt.Fprintf(&b, "\nDescription:\n%s\n", bid.Description)
	if bid.DocumentsText != "" {
		fmt.Fprintf(&b, "\nExcerpts from solicitation documents:\n%s\n", truncate(bid.DocumentsText, 12_000))
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n[truncated]"
}

// newDocument wraps generated content with its metadata.
func (p *Pipeline) newDocument(kind model.DocumentKind, bid model.BidRequest, resp *llm.Response) *model.ProposalDocument {
	usage := model.TokenUsage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}
	return &model.ProposalDocument{
		ID:        uuid.NewString(),
		Kind:      kind,
		BidTitle:  bid.Title,
		Content:   resp.Content,
		Model:     resp.Model,
		Usage:     usage,
		CostUSD:   p.costs.Completion(resp.Model, usage),
		CreatedAt: time.Now().UTC(),
	}
}

// GenerateTechnicalProposal drafts the Envelope 1 technical proposal:
// approach, team, methodology, and timeline, grounded in the agency
// knowledge base. Generation failures are fatal to the request.
func (p *Pipeline) GenerateTechnicalProposal(ctx context.Context, bid model.BidRequest) (*model.ProposalDocument, error) {
	prompt := fmt.Sprintf(`%s

---

Write the TECHNICAL PROPOSAL (Envelope 1) responding to this solicitation:

%s

Structure it with these sections: Executive Summary, Understanding of Requirements, Proposed Approach, Project Team and Qualifications, Timeline and Milestones, Quality Assurance. Do not include any pricing.`,
		knowledgeBase(), bidSummary(bid))

	resp, err := p.complete(ctx, p.draft, "technical proposal", llm.Request{
		Model:     p.draftModel,
		System:    generationSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return nil, err
	}
	return p.newDocument(model.DocTechnical, bid, resp), nil
}

// GenerateCostProposal runs the pricing engine, drafts the Envelope 2 cost
// proposal around the computed price, then reconciles: if the model wrote a
// different plausible total into the prose, that figure is adopted, raised
// to the minimum engagement if needed, and still clamped to the
// confidential budget cap. The returned quote reflects the reconciled
// price, and the document text is scrubbed of budget figures.
func (p *Pipeline) GenerateCostProposal(ctx context.Context, bid model.BidRequest) (*model.ProposalDocument, *model.PriceQuote, error) {
	quote, err := p.Quote(ctx, bid)
	if err != nil {
		return nil, nil, err
	}

	prompt := fmt.Sprintf(`%s

---

Write the COST PROPOSAL (Envelope 2) responding to this solicitation:

%s

Pricing parameters:
- Total project cost: %s (use this exact figure)
- Engagement tier for this scope: %s to %s
- Pricing rationale: %s

Structure it with these sections: Cost Summary, Detailed Cost Breakdown (markdown table of phases summing to the total), Payment Schedule, Assumptions and Exclusions. State the total as "**Total Project Cost**: %s".`,
		knowledgeBase(), bidSummary(bid),
		FormatDollars(quote.ProposedPrice),
		FormatDollars(quote.PriceRange.Min), FormatDollars(quote.PriceRange.Max),
		quote.Justification,
		FormatDollars(quote.ProposedPrice))

	resp, err := p.complete(ctx, p.draft, "cost proposal", llm.Request{
		Model:     p.draftModel,
		System:    generationSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return nil, nil, err
	}

	resp.Content = RedactBudgetFigures(resp.Content, quote.Budget)

	if written, ok := ExtractPrice(resp.Content); ok && written != quote.ProposedPrice {
		reconciled := written
		if reconciled < p.minimumEngagement {
			reconciled = p.minimumEngagement
		}
		if ceiling, capped := budgetCap(quote.Budget); capped && reconciled > ceiling {
			reconciled = ceiling
		}
		zap.L().Info("reconciled price with generated text",
			zap.Float64("computed", quote.ProposedPrice),
			zap.Float64("written", written),
			zap.Float64("final", reconciled))
		quote.ProposedPrice = reconciled
	}

	return p.newDocument(model.DocCost, bid, resp), quote, nil
}

// GenerateFollowUpEmail drafts a short post-submission follow-up email to
// the issuing organization.
func (p *Pipeline) GenerateFollowUpEmail(ctx context.Context, bid model.BidRequest) (*model.ProposalDocument, error) {
	prompt := fmt.Sprintf(`%s

---

Our firm has submitted a proposal for this solicitation:

%s

Write a brief, courteous follow-up email (under 200 words) to the issuing organization's procurement contact: confirm receipt of our submission, restate our interest in one sentence, offer to answer questions or present to the evaluation committee, and close professionally. No pricing, no pleading.`,
		knowledgeBase(), bidSummary(bid))

	resp, err := p.complete(ctx, p.draft, "follow-up email", llm.Request{
		Model:     p.draftModel,
		System:    generationSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, err
	}
	return p.newDocument(model.DocFollowUp, bid, resp), nil
}

// GenerateCoverPage drafts the proposal cover-page content block: title,
// submission line, and a two-sentence positioning statement.
func (p *Pipeline) GenerateCoverPage(ctx context.Context, bid model.BidRequest) (*model.ProposalDocument, error) {
	prompt := fmt.Sprintf(`%s

---

Write the COVER PAGE content for our proposal responding to:

%s

Include: the proposal title, a "Submitted to" line naming the issuing organization, a "Submitted by" line for the firm, the solicitation number and due date if known, and a two-sentence positioning statement. Markdown, no pricing.`,
		knowledgeBase(), bidSummary(bid))

	resp, err := p.complete(ctx, p.draft, "cover page", llm.Request{
		Model:     p.draftModel,
		System:    generationSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: 512,
	})
	if err != nil {
		return nil, err
	}
	return p.newDocument(model.DocCover, bid, resp), nil
}

// GenerateTitles proposes alternative proposal titles as a JSON array.
func (p *Pipeline) GenerateTitles(ctx context.Context, bid model.BidRequest, count int) ([]string, error) {
	if count <= 0 {
		count = 5
	}
	prompt := fmt.Sprintf(`Our firm is responding to this solicitation:

%s

Suggest %d alternative titles for our proposal. Respond with a JSON array of strings and nothing else.`,
		bidSummary(bid), count)

	resp, err := p.complete(ctx, p.draft, "proposal titles", llm.Request{
		Model:     p.draftModel,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: 512,
	})
	if err != nil {
		return nil, err
	}

	var titles []string
	if err := json.Unmarshal([]byte(cleanJSONArray(resp.Content)), &titles); err != nil {
		return nil, eris.Wrap(err, "pipeline: parse titles")
	}
	return titles, nil
}

// cleanJSONArray extracts a JSON array from text that may wrap it in
// markdown fences or commentary.
func cleanJSONArray(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
