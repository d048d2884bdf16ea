package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/medichain-agent-server/internal/domain"
)

// UsageStats is the cumulative token and cost accounting across all
// completions since process start or the last reset
type UsageStats struct {
	Requests          int64     `json:"requests"`
	TotalInputTokens  int64     `json:"total_input_tokens"`
	TotalOutputTokens int64     `json:"total_output_tokens"`
	TotalTokens       int64     `json:"total_tokens"`
	EstimatedCostUSD  float64   `json:"estimated_cost_usd"`
	LastReset         time.Time `json:"last_reset"`
}

// Client wraps a Provider with retry, optional rate limiting, and usage
// accounting. It is safe for concurrent use by multiple in-flight requests.
type Client struct {
	provider Provider
	policy   RetryPolicy
	limiter  *rate.Limiter
	log      *logrus.Logger

	mu    sync.Mutex
	stats UsageStats
}

// NewClient creates a model client from configuration. The concrete provider
// is selected by cfg.Provider.
func NewClient(cfg *domain.ModelConfig, logger *logrus.Logger) (*Client, error) {
	var (
		provider Provider
		err      error
	)

	switch cfg.Provider {
	case "anthropic":
		provider, err = NewAnthropicProvider(AnthropicConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	case "openai":
		provider, err = NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported model provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	policy := DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxAttempts = cfg.MaxRetries
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimit)/60.0), cfg.RateLimit)
	}

	return &Client{
		provider: provider,
		policy:   policy,
		limiter:  limiter,
		log:      logger,
		stats:    UsageStats{LastReset: time.Now().UTC()},
	}, nil
}

// NewClientWithProvider creates a client around an existing provider.
// Used by tests to substitute fakes.
func NewClientWithProvider(provider Provider, policy RetryPolicy, logger *logrus.Logger) *Client {
	return &Client{
		provider: provider,
		policy:   policy,
		log:      logger,
		stats:    UsageStats{LastReset: time.Now().UTC()},
	}
}

// Complete sends a prompt through the retry policy and records usage
func (c *Client) Complete(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.policy.Do(ctx, c.log, func() (*Response, error) {
		return c.provider.Complete(ctx, req)
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"provider": c.provider.Name(),
			"error":    err,
		}).Error("Model completion failed")
		return nil, err
	}

	cost := EstimateCost(resp.Model, resp.Usage.TotalTokens)
	c.recordUsage(resp.Usage, cost)

	c.log.WithFields(logrus.Fields{
		"provider":   c.provider.Name(),
		"model":      resp.Model,
		"tokens":     resp.Usage.TotalTokens,
		"cost_usd":   cost,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("Model completion succeeded")

	return resp, nil
}

// ProviderName returns the name of the configured backend
func (c *Client) ProviderName() string {
	return c.provider.Name()
}

func (c *Client) recordUsage(usage TokenUsage, cost float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Requests++
	c.stats.TotalInputTokens += int64(usage.InputTokens)
	c.stats.TotalOutputTokens += int64(usage.OutputTokens)
	c.stats.TotalTokens += int64(usage.TotalTokens)
	c.stats.EstimatedCostUSD += cost
}

// UsageStats returns a snapshot of cumulative usage
func (c *Client) UsageStats() UsageStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ResetUsageStats zeroes the cumulative counters
func (c *Client) ResetUsageStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = UsageStats{LastReset: time.Now().UTC()}
}
