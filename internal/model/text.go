package model

import "time"

// UnknownAuthor is displayed for a text that has no authors attached.
const UnknownAuthor = "Unknown author"

// Text is a publication. Authors are ordered; the first entry is the
// first author.
type Text struct {
	ID        string
	Title     string
	Year      int
	Abstract  string
	Venue     string
	Keywords  []string
	NCitation int
	Authors   []Author
	CreatedAt time.Time
}

// FirstAuthorName returns the name of the first author, or UnknownAuthor
// when the text has none.
func (t *Text) FirstAuthorName() string {
	if len(t.Authors) == 0 {
		return UnknownAuthor
	}
	return t.Authors[0].Name
}

// AuthorIDs returns the ids of the text's authors in order.
func (t *Text) AuthorIDs() []string {
	ids := make([]string, len(t.Authors))
	for i, a := range t.Authors {
		ids[i] = a.ID
	}
	return ids
}

// SearchResult is a single text matched by a search query.
type SearchResult struct {
	ID          string
	Title       string
	Year        int
	FirstAuthor string
	NCitation   int
	Rank        float64
}
