package dto

import "github.com/citeshelf/citeshelf/internal/model"

// SearchResultResponse is one search hit.
type SearchResultResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Year        int     `json:"year"`
	FirstAuthor string  `json:"first_author"`
	NCitation   int     `json:"n_citation"`
	Rank        float64 `json:"rank"`
}

// ToSearchResponse converts search results. The result is never nil so an
// empty search encodes as [].
func ToSearchResponse(results []*model.SearchResult) []*SearchResultResponse {
	out := make([]*SearchResultResponse, len(results))
	for i, r := range results {
		out[i] = &SearchResultResponse{
			ID:          r.ID,
			Title:       r.Title,
			Year:        r.Year,
			FirstAuthor: r.FirstAuthor,
			NCitation:   r.NCitation,
			Rank:        r.Rank,
		}
	}
	return out
}
