// Package store persists generated proposals and price quotes.
package store

import (
	"context"

	"github.com/sells-group/proposal-cli/internal/model"
)

// ProposalFilter specifies criteria for listing proposals.
type ProposalFilter struct {
	Kind   model.DocumentKind `json:"kind,omitempty"`
	Limit  int                `json:"limit,omitempty"`
	Offset int                `json:"offset,omitempty"`
}

// Store defines the persistence interface for the proposal pipeline.
// Persistence happens after generation completes; the pipeline itself never
// mutates stored records.
type Store interface {
	// Proposals
	SaveProposal(ctx context.Context, bid model.BidRequest, doc *model.ProposalDocument) error
	GetProposal(ctx context.Context, id string) (*model.ProposalDocument, error)
	ListProposals(ctx context.Context, filter ProposalFilter) ([]model.ProposalDocument, error)

	// Quotes
	SaveQuote(ctx context.Context, bid model.BidRequest, quote *model.PriceQuote) (string, error)
	GetQuote(ctx context.Context, id string) (*model.PriceQuote, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
