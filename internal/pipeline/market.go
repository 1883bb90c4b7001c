package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/pkg/llm"
)

// Locality factor bounds. Research output outside this band is clamped so a
// hallucinated factor can never more than halve or double a price range.
const (
	minLocalityFactor = 0.7
	maxLocalityFactor = 1.5
)

// minCredibleRate is the floor for a researched average project rate.
// Anything lower is an hourly rate or noise, not a project total.
const minCredibleRate = 5_000

const marketSystemPrompt = `You are a market research analyst for professional services pricing. You estimate regional pricing conditions for digital agency work.

Respond with a single JSON object and nothing else:
{
  "locality_factor": number,
  "average_rate": number or null,
  "insights": "string"
}

locality_factor is a cost-of-doing-business multiplier relative to the national average (1.0), typically between 0.7 and 1.5. average_rate is the typical total project price in dollars for comparable work in this region, or null if unknown. insights is 2-3 sentences of regional market commentary suitable for inclusion in a proposal.`

type marketResponse struct {
	LocalityFactor float64  `json:"locality_factor"`
	AverageRate    *float64 `json:"average_rate"`
	Insights       string   `json:"insights"`
}

// defaultMarketEstimate is the conservative fallback when research fails:
// national-average pricing with no comparable-rate anchor.
func defaultMarketEstimate() *model.MarketRateEstimate {
	return &model.MarketRateEstimate{
		LocalityFactor: 1.0,
		AverageRate:    nil,
		Insights:       "Pricing reflects prevailing national market rates for comparable professional services engagements.",
	}
}

// FetchMarketRates researches regional pricing for the bid's location and
// service mix. The locality factor is always clamped into [0.7, 1.5] and the
// average rate discarded unless it is a credible project total. Failures
// degrade to a national-average estimate and never fail the caller.
func (p *Pipeline) FetchMarketRates(ctx context.Context, bid model.BidRequest) *model.MarketRateEstimate {
	location := bid.Location
	if location == "" {
		location = "the United States"
	}

	prompt := fmt.Sprintf(
		"Estimate current market pricing conditions in %s for the following engagement:\n\nServices: %s\nProject: %s\n\nReport the regional cost multiplier, the typical total project price for comparable engagements, and brief market commentary.",
		location, joinServices(bid.Services), bid.Title)

	resp, err := p.complete(ctx, p.research, "market research", llm.Request{
		Model:     p.researchModel,
		System:    marketSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: 512,
	})
	if err != nil {
		zap.L().Warn("market research failed, using national-average estimate",
			zap.String("location", location), zap.Error(err))
		return defaultMarketEstimate()
	}

	var parsed marketResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &parsed); err != nil {
		zap.L().Warn("market research returned unparseable JSON",
			zap.String("location", location), zap.Error(err))
		return defaultMarketEstimate()
	}

	estimate := &model.MarketRateEstimate{
		LocalityFactor: clampLocalityFactor(parsed.LocalityFactor),
		Insights:       parsed.Insights,
	}
	if parsed.AverageRate != nil && *parsed.AverageRate >= minCredibleRate {
		estimate.AverageRate = parsed.AverageRate
	}
	if estimate.Insights == "" {
		estimate.Insights = defaultMarketEstimate().Insights
	}

	zap.L().Info("market research complete",
		zap.String("location", location),
		zap.Float64("locality_factor", estimate.LocalityFactor),
		zap.Bool("has_average_rate", estimate.AverageRate != nil))
	return estimate
}

func clampLocalityFactor(f float64) float64 {
	if f <= 0 {
		return 1.0
	}
	if f < minLocalityFactor {
		return minLocalityFactor
	}
	if f > maxLocalityFactor {
		return maxLocalityFactor
	}
	return f
}
