// Package cost tracks LLM API spend per proposal generation.
package cost

import (
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/model"
)

// ModelRate holds per-model token pricing (USD per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Calculator computes USD costs for LLM API usage.
type Calculator struct {
	rates map[string]ModelRate
}

// NewCalculator creates a Calculator with the given per-model rates.
// Unknown models cost zero.
func NewCalculator(rates map[string]ModelRate) *Calculator {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Calculator{rates: rates}
}

// Completion computes the cost of one completion call.
func (c *Calculator) Completion(modelID string, usage model.TokenUsage) float64 {
	rate, ok := c.rates[modelID]
	if !ok {
		return 0
	}
	inCost := (float64(usage.InputTokens) / 1e6) * rate.Input
	outCost := (float64(usage.OutputTokens) / 1e6) * rate.Output
	return inCost + outCost
}

// LogCompletion logs token usage and estimated cost for one call.
func (c *Calculator) LogCompletion(modelID, operation string, usage model.TokenUsage) {
	zap.L().Info("llm cost attribution",
		zap.String("model", modelID),
		zap.String("operation", operation),
		zap.Int("input_tokens", usage.InputTokens),
		zap.Int("output_tokens", usage.OutputTokens),
		zap.Float64("estimated_cost_usd", c.Completion(modelID, usage)),
	)
}

// DefaultRates returns pricing for the models the pipeline uses by default.
func DefaultRates() map[string]ModelRate {
	return map[string]ModelRate{
		"gpt-4o":                     {Input: 2.50, Output: 10.00},
		"gpt-4o-mini":                {Input: 0.15, Output: 0.60},
		"gpt-4.1":                    {Input: 2.00, Output: 8.00},
		"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
	}
}
