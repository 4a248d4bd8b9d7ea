package dto

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/citeshelf/citeshelf/internal/model"
)

const maxAuthorField = 512

// AuthorRequest is the body of POST /author/ and PUT /author/.
type AuthorRequest struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	ORCID        string `json:"orcid"`
}

// Validate checks the request shape.
func (r *AuthorRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "is required")
	}
	for field, value := range map[string]string{
		"name":         r.Name,
		"organization": r.Organization,
		"orcid":        r.ORCID,
	} {
		if utf8.RuneCountInString(value) > maxAuthorField {
			return invalid(field, "must be at most %d characters", maxAuthorField)
		}
	}
	return nil
}

// ToModel builds an Author with the given id and timestamps.
func (r *AuthorRequest) ToModel(id string, now time.Time) *model.Author {
	return &model.Author{
		ID:           id,
		Name:         strings.TrimSpace(r.Name),
		Organization: r.Organization,
		ORCID:        r.ORCID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AuthorResponse represents an author in API responses.
type AuthorResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Organization string    `json:"organization"`
	ORCID        string    `json:"orcid"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToAuthorResponse converts an Author model to AuthorResponse DTO.
func ToAuthorResponse(a *model.Author) *AuthorResponse {
	return &AuthorResponse{
		ID:           a.ID,
		Name:         a.Name,
		Organization: a.Organization,
		ORCID:        a.ORCID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToAuthorListResponse converts a slice of authors. The result is never nil.
func ToAuthorListResponse(authors []*model.Author) []*AuthorResponse {
	out := make([]*AuthorResponse, len(authors))
	for i, a := range authors {
		out[i] = ToAuthorResponse(a)
	}
	return out
}
