package model

import "time"

// DocumentKind distinguishes the generated document types.
type DocumentKind string

const (
	// DocTechnical is the Envelope 1 technical proposal.
	DocTechnical DocumentKind = "technical"
	// DocCost is the Envelope 2 cost proposal.
	DocCost DocumentKind = "cost"
	// DocFollowUp is the post-submission follow-up email.
	DocFollowUp DocumentKind = "followup"
	// DocCover is the cover-page content block.
	DocCover DocumentKind = "cover"
)

// TokenUsage tracks token consumption for one or more LLM calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// ProposalDocument is generated proposal text plus generation metadata.
// Created once per generation call and persisted afterwards; the pipeline
// never mutates it after creation.
type ProposalDocument struct {
	ID        string       `json:"id"`
	Kind      DocumentKind `json:"kind"`
	BidTitle  string       `json:"bid_title"`
	Content   string       `json:"content"`
	Model     string       `json:"model"`
	Usage     TokenUsage   `json:"usage"`
	CostUSD   float64      `json:"cost_usd"`
	CreatedAt time.Time    `json:"created_at"`
}
