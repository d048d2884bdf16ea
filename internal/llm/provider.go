// Package llm provides the model client used by every agent: a provider
// abstraction over generative-text backends, a retry policy with exponential
// backoff, and cumulative token/cost accounting. No domain logic lives here;
// all clinical rules belong to the agents.
package llm

import (
	"context"
)

// Request is a single completion request
type Request struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	// JSONMode asks the provider for structured JSON output where the
	// backend supports it natively; otherwise it is enforced via the
	// system prompt.
	JSONMode bool
}

// TokenUsage reports token consumption for one completion
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response is the raw completion result
type Response struct {
	Text  string
	Model string
	Usage TokenUsage
}

// Provider is the abstraction point over concrete model backends. The
// backend in use is selected by configuration at startup.
type Provider interface {
	// Name returns the provider identifier ("openai", "anthropic")
	Name() string

	// Complete sends a prompt and returns the raw completion
	Complete(ctx context.Context, req *Request) (*Response, error)
}
