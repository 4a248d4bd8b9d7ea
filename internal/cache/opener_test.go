package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/citeshelf/citeshelf/internal/metrics"
	"github.com/citeshelf/citeshelf/internal/model"
	"github.com/citeshelf/citeshelf/internal/store"
	"github.com/citeshelf/citeshelf/internal/store/memstore"
)

type fakeCache struct {
	mu      sync.Mutex
	authors map[string]model.Author
	failGet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{authors: make(map[string]model.Author)}
}

func (f *fakeCache) GetAuthor(ctx context.Context, id string) (*model.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errors.New("connection refused")
	}
	a, ok := f.authors[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &a, nil
}

func (f *fakeCache) SetAuthor(ctx context.Context, author *model.Author, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authors[author.ID] = *author
	return nil
}

func (f *fakeCache) DeleteAuthor(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.authors, id)
	return nil
}

func (f *fakeCache) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.authors[id]
	return ok
}

func setup(t *testing.T) (context.Context, store.Session, *fakeCache, *metrics.InMemoryRecorder) {
	t.Helper()
	ctx := context.Background()
	fc := newFakeCache()
	rec := metrics.NewInMemory()

	opener := NewOpener(memstore.New(), fc, time.Minute, rec, nil)
	sess, err := opener.Open(ctx)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(sess.Close)

	now := time.Now().UTC()
	if err := sess.CreateAuthor(ctx, &model.Author{ID: "a1", Name: "Ada", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreateAuthor failed: %v", err)
	}
	return ctx, sess, fc, rec
}

func TestOpener_ReadThrough(t *testing.T) {
	ctx, sess, fc, rec := setup(t)

	if _, err := sess.GetAuthor(ctx, "a1"); err != nil {
		t.Fatalf("GetAuthor failed: %v", err)
	}
	if !fc.has("a1") {
		t.Fatal("author should be cached after a miss")
	}
	if _, err := sess.GetAuthor(ctx, "a1"); err != nil {
		t.Fatalf("GetAuthor failed: %v", err)
	}

	snap := rec.Snapshot()
	if snap.AuthorCacheMisses != 1 || snap.AuthorCacheHits != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", snap.AuthorCacheHits, snap.AuthorCacheMisses)
	}
}

func TestOpener_NotFoundIsNotCached(t *testing.T) {
	ctx, sess, fc, _ := setup(t)

	if _, err := sess.GetAuthor(ctx, "ghost"); !errors.Is(err, store.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
	if fc.has("ghost") {
		t.Error("missing author must not be cached")
	}
}

func TestOpener_UpdateInvalidates(t *testing.T) {
	ctx, sess, fc, _ := setup(t)

	if _, err := sess.GetAuthor(ctx, "a1"); err != nil {
		t.Fatalf("GetAuthor failed: %v", err)
	}
	if _, err := sess.UpdateAuthor(ctx, &model.Author{ID: "a1", Name: "Ada Lovelace"}); err != nil {
		t.Fatalf("UpdateAuthor failed: %v", err)
	}
	if fc.has("a1") {
		t.Fatal("update should invalidate the cached author")
	}

	got, err := sess.GetAuthor(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAuthor failed: %v", err)
	}
	if got.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want updated name", got.Name)
	}
}

func TestOpener_DeleteInvalidates(t *testing.T) {
	ctx, sess, fc, _ := setup(t)

	if _, err := sess.GetAuthor(ctx, "a1"); err != nil {
		t.Fatalf("GetAuthor failed: %v", err)
	}
	if _, err := sess.DeleteAuthor(ctx, "a1"); err != nil {
		t.Fatalf("DeleteAuthor failed: %v", err)
	}
	if fc.has("a1") {
		t.Error("delete should invalidate the cached author")
	}
	if _, err := sess.GetAuthor(ctx, "a1"); !errors.Is(err, store.ErrAuthorNotFound) {
		t.Errorf("expected ErrAuthorNotFound after delete, got %v", err)
	}
}

func TestOpener_CacheErrorFallsBack(t *testing.T) {
	ctx, sess, fc, _ := setup(t)
	fc.failGet = true

	got, err := sess.GetAuthor(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAuthor should fall back to the store, got %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("Name = %q, want Ada", got.Name)
	}
}

func TestOpener_OpenError(t *testing.T) {
	boom := errors.New("pool exhausted")
	opener := NewOpener(store.OpenerFunc(func(ctx context.Context) (store.Session, error) {
		return nil, boom
	}), newFakeCache(), 0, nil, nil)

	if _, err := opener.Open(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected open error to propagate, got %v", err)
	}
}
