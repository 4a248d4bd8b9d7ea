package dto

import (
	"strings"
	"time"

	"github.com/citeshelf/citeshelf/internal/model"
)

const maxKeywords = 50

// CreateTextRequest is the body of POST /text/.
type CreateTextRequest struct {
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Abstract  string   `json:"abstract"`
	Venue     string   `json:"venue"`
	Keywords  []string `json:"keywords"`
	AuthorIDs []string `json:"author_ids"`
}

// Validate checks the request shape, canonicalises author ids and drops
// repeated ones.
func (r *CreateTextRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return invalid("title", "is required")
	}
	if r.Year < 0 || r.Year > 9999 {
		return invalid("year", "must be between 0 and 9999")
	}
	if len(r.Keywords) > maxKeywords {
		return invalid("keywords", "must have at most %d entries", maxKeywords)
	}
	if len(r.AuthorIDs) == 0 {
		return invalid("author_ids", "must name at least one author")
	}
	// Repeated ids keep their first position.
	seen := make(map[string]bool, len(r.AuthorIDs))
	ids := make([]string, 0, len(r.AuthorIDs))
	for _, raw := range r.AuthorIDs {
		id, err := ParseID("author_ids", raw)
		if err != nil {
			return err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	r.AuthorIDs = ids
	return nil
}

// ToModel builds a Text with the given id and creation time.
func (r *CreateTextRequest) ToModel(id string, now time.Time) *model.Text {
	keywords := make([]string, 0, len(r.Keywords))
	for _, k := range r.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &model.Text{
		ID:        id,
		Title:     strings.TrimSpace(r.Title),
		Year:      r.Year,
		Abstract:  r.Abstract,
		Venue:     r.Venue,
		Keywords:  keywords,
		CreatedAt: now,
	}
}

// TextAuthor is an author reference inside a text.
type TextAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TextResponse represents a text in API responses.
type TextResponse struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Year      int          `json:"year"`
	Abstract  string       `json:"abstract"`
	Venue     string       `json:"venue"`
	Keywords  []string     `json:"keywords"`
	NCitation int          `json:"n_citation"`
	Authors   []TextAuthor `json:"authors"`
	CreatedAt time.Time    `json:"created_at"`
}

// ToTextResponse converts a Text model to TextResponse DTO.
func ToTextResponse(t *model.Text) *TextResponse {
	authors := make([]TextAuthor, len(t.Authors))
	for i, a := range t.Authors {
		authors[i] = TextAuthor{ID: a.ID, Name: a.Name}
	}
	keywords := t.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &TextResponse{
		ID:        t.ID,
		Title:     t.Title,
		Year:      t.Year,
		Abstract:  t.Abstract,
		Venue:     t.Venue,
		Keywords:  keywords,
		NCitation: t.NCitation,
		Authors:   authors,
		CreatedAt: t.CreatedAt,
	}
}
