package model

import (
	"strconv"
	"time"
)

// Author is a person credited on one or more texts.
type Author struct {
	ID           string
	Name         string
	Organization string
	ORCID        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CachedAuthor is the Redis hash form of an Author.
// Timestamps are stored as Unix nanoseconds.
type CachedAuthor struct {
	ID           string `redis:"id"`
	Name         string `redis:"name"`
	Organization string `redis:"organization"`
	ORCID        string `redis:"orcid"`
	CreatedAt    string `redis:"created_at"`
	UpdatedAt    string `redis:"updated_at"`
}

// ToCachedAuthor converts the author into its cache representation.
func (a *Author) ToCachedAuthor() *CachedAuthor {
	return &CachedAuthor{
		ID:           a.ID,
		Name:         a.Name,
		Organization: a.Organization,
		ORCID:        a.ORCID,
		CreatedAt:    strconv.FormatInt(a.CreatedAt.UnixNano(), 10),
		UpdatedAt:    strconv.FormatInt(a.UpdatedAt.UnixNano(), 10),
	}
}

// ToAuthor converts a cache entry back into an Author.
// Unparseable timestamps decode as the zero time.
func (c *CachedAuthor) ToAuthor() *Author {
	return &Author{
		ID:           c.ID,
		Name:         c.Name,
		Organization: c.Organization,
		ORCID:        c.ORCID,
		CreatedAt:    parseUnixNano(c.CreatedAt),
		UpdatedAt:    parseUnixNano(c.UpdatedAt),
	}
}

func parseUnixNano(s string) time.Time {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
