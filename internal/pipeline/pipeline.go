// Package pipeline implements proposal generation for agency bid responses:
// client classification, complexity analysis, budget and market research,
// price calculation, and LLM document drafting.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/cost"
	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/resilience"
	"github.com/sells-group/proposal-cli/pkg/llm"
)

// Pipeline runs the bid-to-proposal flow. One instance is safe for
// concurrent use; all state lives in the arguments and return values.
type Pipeline struct {
	draft    llm.Client
	research llm.Client

	draftModel    string
	researchModel string
	maxTokens     int

	retry resilience.RetryConfig
	costs *cost.Calculator

	minimumEngagement float64
}

// New builds a Pipeline from configuration, selecting the LLM provider and
// wiring the shared retry policy.
func New(cfg *config.Config) (*Pipeline, error) {
	var client llm.Client
	switch cfg.LLM.Provider {
	case "anthropic":
		client = llm.NewAnthropic(cfg.LLM.Key, "")
	case "openai", "":
		opts := []llm.OpenAIOption{
			llm.WithTimeout(time.Duration(cfg.LLM.TimeoutSecs) * time.Second),
			llm.WithRateLimit(cfg.LLM.RequestsPerMinute),
		}
		client = llm.NewOpenAICompatible(cfg.LLM.Key, cfg.LLM.BaseURL, opts...)
	default:
		return nil, eris.Errorf("pipeline: unknown llm provider %q", cfg.LLM.Provider)
	}
	return NewWithClients(client, client, cfg), nil
}

// NewWithClients builds a Pipeline around explicit clients. The draft client
// generates documents; the research client handles the cheaper budget and
// market lookups. They may be the same client.
func NewWithClients(draft, research llm.Client, cfg *config.Config) *Pipeline {
	return &Pipeline{
		draft:         draft,
		research:      research,
		draftModel:    cfg.LLM.Model,
		researchModel: cfg.LLM.ResearchModel,
		maxTokens:     cfg.LLM.MaxTokens,
		retry: resilience.FromConfig(
			cfg.Retry.MaxRetries,
			cfg.Retry.InitialDelayMs,
			cfg.Retry.MaxDelayMs,
			cfg.Retry.JitterFraction,
		),
		costs:             cost.NewCalculator(nil),
		minimumEngagement: cfg.Pricing.MinimumEngagement,
	}
}

// complete runs one retried completion and logs its cost. The usage and
// model of the final successful response are returned unchanged so callers
// can accumulate totals.
func (p *Pipeline) complete(ctx context.Context, client llm.Client, operation string, req llm.Request) (*llm.Response, error) {
	resp, err := resilience.DoVal(ctx, p.retry.Named(operation), func(ctx context.Context) (*llm.Response, error) {
		return client.Complete(ctx, req)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: %s", operation)
	}
	usage := model.TokenUsage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}
	p.costs.LogCompletion(resp.Model, operation, usage)
	return resp, nil
}

// Quote produces a price quote for a bid without generating documents.
// Budget and market research run concurrently; research failures degrade to
// conservative defaults and never fail the quote.
func (p *Pipeline) Quote(ctx context.Context, bid model.BidRequest) (*model.PriceQuote, error) {
	if bid.Title == "" && bid.Description == "" {
		return nil, eris.New("pipeline: bid has no title or description")
	}

	clientType := DetectClientType(bid)
	complexity := AnalyzeComplexity(bid)

	zap.L().Info("quoting bid",
		zap.String("title", bid.Title),
		zap.String("client_type", string(clientType)),
		zap.String("complexity", string(complexity)))

	var (
		budget *model.AdoptedBudgetData
		market *model.MarketRateEstimate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		budget = p.FetchAdoptedBudget(gctx, bid, clientType)
		return nil
	})
	g.Go(func() error {
		market = p.FetchMarketRates(gctx, bid)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quote := p.CalculatePrice(bid, clientType, complexity, *market, budget)
	return quote, nil
}
