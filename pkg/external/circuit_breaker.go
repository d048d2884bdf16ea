package external

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/medichain-agent-server/internal/domain"
)

// LiteratureClient is the raw search backend wrapped by the resilient client
type LiteratureClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.Article, error)
}

// ResilientLiteratureClient wraps a literature backend with a Redis
// read-through cache and a circuit breaker. When the breaker is open,
// lookups fall back to the cache and then to an empty result, so a PubMed
// outage never aborts a workflow.
type ResilientLiteratureClient struct {
	client  LiteratureClient
	cache   *CacheClient
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientLiteratureClient creates a resilient literature client.
// cache may be nil, which disables the read-through tier.
func NewResilientLiteratureClient(client LiteratureClient, cache *CacheClient, logger *logrus.Logger) *ResilientLiteratureClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "PubMed",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientLiteratureClient{
		client:  client,
		cache:   cache,
		breaker: breaker,
		logger:  logger,
	}
}

// Search looks up literature with caching and circuit breaking. An open
// breaker degrades to cached results, then to an empty slice.
func (r *ResilientLiteratureClient) Search(ctx context.Context, query string, maxResults int) ([]domain.Article, error) {
	if r.cache != nil {
		if articles, found, err := r.cache.GetArticles(ctx, query); err == nil && found {
			return articles, nil
		}
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.Search(ctx, query, maxResults)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			r.logger.WithField("query", query).Warn("Literature circuit breaker open, returning empty result")
			return nil, nil
		}
		return nil, err
	}

	articles := result.([]domain.Article)

	if r.cache != nil && len(articles) > 0 {
		if cacheErr := r.cache.SetArticles(ctx, query, articles, 0); cacheErr != nil {
			r.logger.WithError(cacheErr).Warn("Failed to cache literature results")
		}
	}

	return articles, nil
}

// BreakerState returns the current circuit breaker state
func (r *ResilientLiteratureClient) BreakerState() gobreaker.State {
	return r.breaker.State()
}

// BreakerCounts returns the current circuit breaker counters
func (r *ResilientLiteratureClient) BreakerCounts() gobreaker.Counts {
	return r.breaker.Counts()
}

// Close releases the cache connection if one is configured
func (r *ResilientLiteratureClient) Close() error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Close()
}
