package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/pkg/llm"
)

// mockLLM is a scripted llm.Client. The respond function inspects the
// request (usually the system prompt) and returns canned content; every
// request is recorded for assertions.
type mockLLM struct {
	mu      sync.Mutex
	respond func(req llm.Request) (*llm.Response, error)
	calls   []llm.Request
}

func (m *mockLLM) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.respond != nil {
		return m.respond(req)
	}
	return &llm.Response{Content: "ok", Model: req.Model, Usage: llm.Usage{InputTokens: 100, OutputTokens: 50}}, nil
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockLLM) recorded() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Provider:      "openai",
			Model:         "gpt-4o",
			ResearchModel: "gpt-4o-mini",
			MaxTokens:     2048,
		},
		Retry:   config.RetryConfig{MaxRetries: 0, InitialDelayMs: 1},
		Pricing: config.PricingConfig{MinimumEngagement: 10_000},
	}
}

func newTestPipeline(draft, research llm.Client) *Pipeline {
	return NewWithClients(draft, research, testConfig())
}

// researchResponder answers budget and market research requests with the
// given JSON payloads, keyed off the system prompt.
func researchResponder(budgetJSON, marketJSON string) func(req llm.Request) (*llm.Response, error) {
	return func(req llm.Request) (*llm.Response, error) {
		switch {
		case strings.Contains(req.System, "finance researcher"):
			return &llm.Response{Content: budgetJSON, Model: req.Model, Usage: llm.Usage{InputTokens: 200, OutputTokens: 80}}, nil
		case strings.Contains(req.System, "market research"):
			return &llm.Response{Content: marketJSON, Model: req.Model, Usage: llm.Usage{InputTokens: 150, OutputTokens: 60}}, nil
		default:
			return &llm.Response{Content: "ok", Model: req.Model, Usage: llm.Usage{InputTokens: 100, OutputTokens: 50}}, nil
		}
	}
}
