// Package llm provides text-generation clients for the proposal pipeline.
// Two providers are supported behind one interface: any OpenAI-compatible
// chat-completions endpoint, and the Anthropic Messages API.
package llm

import (
	"context"
	"fmt"
)

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversational message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Temperature *float64
	MaxTokens   int
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the text result of a completion call.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Client performs chat completions. Implementations must honor context
// deadlines and return a resilience.TimeoutError when the call deadline is
// exceeded; no retries happen at this layer.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// HTTPError is a non-2xx response from the completion endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("llm: unexpected status %d: %s", e.StatusCode, e.Body)
}
