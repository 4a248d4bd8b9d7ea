//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/citeshelf/citeshelf/internal/model"
	"github.com/citeshelf/citeshelf/internal/testutil"
)

func TestIntegrationCache_AuthorRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	ctx := context.Background()

	c, err := New(ctx, testutil.RequireEnv(t, "REDIS_URL"))
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	author := &model.Author{ID: "a1", Name: "Ada", ORCID: "0000-0001", CreatedAt: now, UpdatedAt: now}

	if _, err := c.GetAuthor(ctx, author.ID); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := c.SetAuthor(ctx, author, time.Minute); err != nil {
		t.Fatalf("SetAuthor failed: %v", err)
	}

	got, err := c.GetAuthor(ctx, author.ID)
	if err != nil {
		t.Fatalf("GetAuthor failed: %v", err)
	}
	if got.Name != author.Name || got.ORCID != author.ORCID || !got.CreatedAt.Equal(now) {
		t.Errorf("got %+v, want %+v", got, author)
	}

	ttl, err := c.Client().TTL(ctx, authorKey(author.ID)).Result()
	if err != nil || ttl <= 0 {
		t.Errorf("expected a positive TTL, got %v (%v)", ttl, err)
	}

	if err := c.DeleteAuthor(ctx, author.ID); err != nil {
		t.Fatalf("DeleteAuthor failed: %v", err)
	}
	if _, err := c.GetAuthor(ctx, author.ID); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}
