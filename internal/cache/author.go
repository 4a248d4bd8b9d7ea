package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/citeshelf/citeshelf/internal/model"
)

// Cache key prefixes and TTLs.
const (
	authorKeyPrefix = "author:"

	// DefaultAuthorTTL is the TTL for cached author data.
	DefaultAuthorTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func authorKey(id string) string {
	return authorKeyPrefix + id
}

// GetAuthor retrieves an author from cache by id.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetAuthor(ctx context.Context, id string) (*model.Author, error) {
	cmd := c.client.HGetAll(ctx, authorKey(id))
	result, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	var cached model.CachedAuthor
	if err := cmd.Scan(&cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached author: %w", err)
	}
	if cached.ID != id {
		return nil, ErrCacheMiss
	}

	return cached.ToAuthor(), nil
}

// SetAuthor stores an author in cache for ttl.
func (c *Cache) SetAuthor(ctx context.Context, author *model.Author, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultAuthorTTL
	}
	key := authorKey(author.ID)

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, author.ToCachedAuthor())
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache author: %w", err)
	}

	return nil
}

// DeleteAuthor removes an author from cache.
func (c *Cache) DeleteAuthor(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, authorKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete author from cache: %w", err)
	}
	return nil
}
