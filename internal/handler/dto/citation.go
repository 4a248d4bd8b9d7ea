package dto

import (
	"time"

	"github.com/citeshelf/citeshelf/internal/model"
)

// CreateCitationRequest is the body of POST /citation/.
type CreateCitationRequest struct {
	CitingTextID string `json:"citing_text_id"`
	CitedTextID  string `json:"cited_text_id"`
}

// Validate checks that both ids are UUIDs and canonicalises them.
func (r *CreateCitationRequest) Validate() error {
	citing, err := ParseID("citing_text_id", r.CitingTextID)
	if err != nil {
		return err
	}
	cited, err := ParseID("cited_text_id", r.CitedTextID)
	if err != nil {
		return err
	}
	r.CitingTextID, r.CitedTextID = citing, cited
	return nil
}

// CitationResponse represents a citation in API responses.
type CitationResponse struct {
	ID           string    `json:"id"`
	CitingTextID string    `json:"citing_text_id"`
	CitedTextID  string    `json:"cited_text_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToCitationResponse converts a Citation model to CitationResponse DTO.
func ToCitationResponse(c *model.Citation) *CitationResponse {
	return &CitationResponse{
		ID:           c.ID,
		CitingTextID: c.CitingTextID,
		CitedTextID:  c.CitedTextID,
		CreatedAt:    c.CreatedAt,
	}
}

// ToCitationListResponse converts a slice of citations. The result is
// never nil.
func ToCitationListResponse(citations []*model.Citation) []*CitationResponse {
	out := make([]*CitationResponse, len(citations))
	for i, c := range citations {
		out[i] = ToCitationResponse(c)
	}
	return out
}
