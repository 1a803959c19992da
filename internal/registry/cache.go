package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedSearcher fronts a live Searcher with a Redis TTL cache. Registry
// search calls are rate-limited and billed, and a gazette batch routinely
// repeats names across notices, so result sets are cached per query.
//
// Cache failures are logged and treated as misses; the cache is never
// allowed to fail a lookup the live client could serve.
type CachedSearcher struct {
	client *redis.Client
	next   Searcher
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSearcher wraps next with a Redis cache. A nil client disables
// caching and returns next unchanged.
func NewCachedSearcher(client *redis.Client, next Searcher, ttl time.Duration, logger *slog.Logger) Searcher {
	if client == nil {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSearcher{client: client, next: next, ttl: ttl, logger: logger}
}

func (c *CachedSearcher) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	key := cacheKey(query, limit)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var cached []Candidate
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn("registry cache entry corrupt, refetching", "key", key)
	} else if err != redis.Nil {
		c.logger.Warn("registry cache read failed", "key", key, "error", err)
	}

	candidates, err := c.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if encoded, jsonErr := json.Marshal(candidates); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, encoded, c.ttl).Err(); setErr != nil {
			c.logger.Warn("registry cache write failed", "key", key, "error", setErr)
		}
	}
	return candidates, nil
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("registry:search:%d:%s", limit, strings.ToUpper(strings.TrimSpace(query)))
}
