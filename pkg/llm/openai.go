package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/proposal-cli/internal/resilience"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 4096
)

// chatRequest is the wire request for POST /chat/completions.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// chatResponse is the wire response from POST /chat/completions.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int     `json:"index"`
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// OpenAIOption configures the OpenAI-compatible client.
type OpenAIOption func(*openAIClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openAIClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-call deadline. Default: 60s.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps outbound calls at n requests per minute. Zero disables
// client-side limiting.
func WithRateLimit(perMinute int) OpenAIOption {
	return func(c *openAIClient) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
		}
	}
}

type openAIClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
}

// NewOpenAICompatible creates a client for an OpenAI-compatible
// chat-completions endpoint. The timeout is enforced per call via context
// deadline; exceeding it aborts the transport and yields a TimeoutError.
func NewOpenAICompatible(apiKey, baseURL string, opts ...OpenAIOption) Client {
	c := &openAIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		timeout: defaultTimeout,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "llm: rate limit wait")
		}
	}

	messages := req.Messages
	if req.System != "" {
		messages = append([]Message{{Role: RoleSystem, Content: req.System}}, messages...)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: marshal request")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "llm: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Deadline exhaustion on our own timer becomes a TimeoutError;
		// caller cancellation and other transport errors pass through.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, resilience.NewTimeoutError("llm completion", c.timeout)
		}
		return nil, eris.Wrap(err, "llm: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "llm: read response")
	}

	if resp.StatusCode != http.StatusOK {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(httpErr, resp.StatusCode)
		}
		return nil, httpErr
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "llm: unmarshal response")
	}
	if len(result.Choices) == 0 {
		return nil, eris.New("llm: response contains no choices")
	}

	return &Response{
		Content: result.Choices[0].Message.Content,
		Model:   result.Model,
		Usage: Usage{
			InputTokens:  result.Usage.PromptTokens,
			OutputTokens: result.Usage.CompletionTokens,
		},
	}, nil
}
