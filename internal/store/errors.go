package store

import "errors"

// Errors returned by Session implementations. Callers match them with
// errors.Is; implementations may wrap them with extra context.
var (
	ErrSessionClosed = errors.New("session closed")

	ErrUserNotFound = errors.New("user not found")
	ErrLoginExists  = errors.New("login already exists")

	ErrAuthorNotFound = errors.New("author not found")
	ErrAuthorInUse    = errors.New("author is referenced by texts")

	ErrTextNotFound  = errors.New("text not found")
	ErrNoAuthors     = errors.New("text requires at least one author")
	ErrUnknownAuthor = errors.New("referenced author does not exist")

	ErrUnknownText    = errors.New("referenced text does not exist")
	ErrSelfCitation   = errors.New("text cannot cite itself")
	ErrCitationExists = errors.New("citation already exists")
)
