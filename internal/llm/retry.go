package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
)

// RetryPolicy describes how failed provider calls are retried. It is a value
// object independent of the orchestration code, so the backoff strategy can
// change without touching any workflow.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries including the first one
	MaxAttempts int

	// Backoff returns the delay before retrying after the given attempt
	// (0-based)
	Backoff func(attempt int) time.Duration

	// RetryIf decides whether an error is worth retrying
	RetryIf func(err error) bool
}

// DefaultRetryPolicy retries up to three attempts with exponential backoff
// delays of 2^attempt seconds
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		RetryIf:     IsRetryable,
	}
}

// ExponentialBackoff returns a backoff function yielding base * 2^attempt
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(1<<uint(attempt))
	}
}

// IsRetryable reports whether a provider failure is transient. Rate limiting
// always retries; provider errors retry only when flagged transient.
func IsRetryable(err error) bool {
	var rateErr *domain.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		return provErr.IsRetryable()
	}
	return false
}

// Do runs fn under the policy, sleeping between attempts. The last error is
// returned once attempts are exhausted or the error is not retryable.
func (p RetryPolicy) Do(ctx context.Context, log *logrus.Logger, fn func() (*Response, error)) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if p.RetryIf != nil && !p.RetryIf(err) {
			return nil, err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.Backoff(attempt)
		log.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
			"error":   err,
		}).Warn("Model call failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}
