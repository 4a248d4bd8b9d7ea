// Package store defines the data-access contract used by the HTTP layer.
//
// Every request works against exactly one Session. A Session is obtained
// from an Opener and must be closed when the request finishes; the session
// middleware and WithSession take care of that so callers never pair the
// calls by hand.
package store

import (
	"context"
	"time"

	"github.com/citeshelf/citeshelf/internal/model"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) (*model.User, error)
}

// AuthorStore persists authors.
type AuthorStore interface {
	CreateAuthor(ctx context.Context, author *model.Author) error
	GetAuthor(ctx context.Context, id string) (*model.Author, error)
	ListAuthors(ctx context.Context, skip, limit int) ([]*model.Author, error)
	// UpdateAuthor replaces the mutable fields and returns the stored row.
	UpdateAuthor(ctx context.Context, author *model.Author) (*model.Author, error)
	DeleteAuthor(ctx context.Context, id string) (*model.Author, error)
}

// TextStore persists texts and their author lists.
type TextStore interface {
	// CreateText stores the text with the given authors in order and returns
	// it with Authors populated.
	CreateText(ctx context.Context, text *model.Text, authorIDs []string) (*model.Text, error)
	GetText(ctx context.Context, id string) (*model.Text, error)
	ListTexts(ctx context.Context, skip, limit int) ([]*model.Text, error)
	DeleteText(ctx context.Context, id string) (*model.Text, error)
}

// CitationStore persists citations between texts.
type CitationStore interface {
	// CreateCitation stores the citation and increments the cited text's
	// citation count atomically.
	CreateCitation(ctx context.Context, citation *model.Citation) error
	ListCitationsOf(ctx context.Context, textID string) ([]*model.Citation, error)
}

// SearchStore runs free-text queries over texts.
type SearchStore interface {
	SearchTexts(ctx context.Context, query string, limit int) ([]*model.SearchResult, error)
}

// Session is a scoped handle to the persistence layer.
// Close releases the underlying resources and is safe to call more than once.
type Session interface {
	UserStore
	AuthorStore
	TextStore
	CitationStore
	SearchStore
	Close()
}

// Opener acquires sessions.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f(ctx).
func (f OpenerFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}

// WithSession opens a session, runs fn with it and closes the session on
// every exit path, including a panic in fn.
func WithSession(ctx context.Context, opener Opener, fn func(ctx context.Context, sess Session) error) error {
	sess, err := opener.Open(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	return fn(NewContext(ctx, sess), sess)
}
