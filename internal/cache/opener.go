package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/citeshelf/citeshelf/internal/metrics"
	"github.com/citeshelf/citeshelf/internal/model"
	"github.com/citeshelf/citeshelf/internal/store"
)

// AuthorCache is the subset of Cache used by the caching opener.
type AuthorCache interface {
	GetAuthor(ctx context.Context, id string) (*model.Author, error)
	SetAuthor(ctx context.Context, author *model.Author, ttl time.Duration) error
	DeleteAuthor(ctx context.Context, id string) error
}

var _ AuthorCache = (*Cache)(nil)

// Opener wraps another store.Opener so GetAuthor reads through the cache
// and author writes invalidate it. Cache failures are logged and the
// request falls back to the store.
type Opener struct {
	next    store.Opener
	cache   AuthorCache
	ttl     time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewOpener creates a caching Opener.
func NewOpener(next store.Opener, c AuthorCache, ttl time.Duration, recorder metrics.Recorder, logger *slog.Logger) *Opener {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultAuthorTTL
	}
	return &Opener{next: next, cache: c, ttl: ttl, metrics: recorder, logger: logger}
}

// Open opens a session from the wrapped opener.
func (o *Opener) Open(ctx context.Context) (store.Session, error) {
	sess, err := o.next.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &session{Session: sess, o: o}, nil
}

type session struct {
	store.Session
	o *Opener
}

func (s *session) GetAuthor(ctx context.Context, id string) (*model.Author, error) {
	author, err := s.o.cache.GetAuthor(ctx, id)
	if err == nil {
		s.o.metrics.IncAuthorCacheHit()
		return author, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.o.logger.Warn("author cache read failed", "author_id", id, "error", err)
	}
	s.o.metrics.IncAuthorCacheMiss()

	author, err = s.Session.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.o.cache.SetAuthor(ctx, author, s.o.ttl); err != nil {
		s.o.logger.Warn("author cache fill failed", "author_id", id, "error", err)
	}
	return author, nil
}

func (s *session) UpdateAuthor(ctx context.Context, author *model.Author) (*model.Author, error) {
	updated, err := s.Session.UpdateAuthor(ctx, author)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, author.ID)
	return updated, nil
}

func (s *session) DeleteAuthor(ctx context.Context, id string) (*model.Author, error) {
	deleted, err := s.Session.DeleteAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return deleted, nil
}

func (s *session) invalidate(ctx context.Context, id string) {
	if err := s.o.cache.DeleteAuthor(ctx, id); err != nil {
		s.o.logger.Warn("author cache invalidation failed", "author_id", id, "error", err)
	}
}
