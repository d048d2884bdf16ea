package external

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medichain-agent-server/internal/domain"
)

// CacheClient wraps Redis with caching for literature search results
type CacheClient struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCacheClient creates a new cache client and verifies connectivity
func NewCacheClient(redisURL string, defaultTTL time.Duration) (*CacheClient, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if defaultTTL == 0 {
		defaultTTL = 24 * time.Hour
	}

	return &CacheClient{
		redis:      client,
		defaultTTL: defaultTTL,
	}, nil
}

// CachedArticles represents cached literature results with metadata
type CachedArticles struct {
	Articles  []domain.Article `json:"articles"`
	CachedAt  time.Time        `json:"cached_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// GetArticles retrieves cached literature results for a query
func (c *CacheClient) GetArticles(ctx context.Context, query string) ([]domain.Article, bool, error) {
	key := c.generateQueryKey(query)

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get literature cache: %w", err)
	}

	var cached CachedArticles
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Remove corrupted cache entry
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Articles, true, nil
}

// SetArticles caches literature results for a query
func (c *CacheClient) SetArticles(ctx context.Context, query string, articles []domain.Article, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	key := c.generateQueryKey(query)

	cached := CachedArticles{
		Articles:  articles,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal literature cache data: %w", err)
	}

	return c.redis.Set(ctx, key, jsonData, ttl).Err()
}

// InvalidateQuery removes cached results for a specific query
func (c *CacheClient) InvalidateQuery(ctx context.Context, query string) error {
	return c.redis.Del(ctx, c.generateQueryKey(query)).Err()
}

// generateQueryKey creates a standardized cache key for a search query
func (c *CacheClient) generateQueryKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return fmt.Sprintf("literature:query:%x", hash[:8])
}

// Ping checks if the Redis connection is alive
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Health reports cache availability for the health endpoint
func (c *CacheClient) Health(ctx context.Context) error {
	return c.Ping(ctx)
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.redis.Close()
}
