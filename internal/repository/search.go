package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/citeshelf/citeshelf/internal/model"
)

// SearchTexts runs a web-search style full-text query over titles and
// abstracts, best match first.
func (s *Session) SearchTexts(ctx context.Context, query string, limit int) ([]*model.SearchResult, error) {
	results := make([]*model.SearchResult, 0)
	if strings.TrimSpace(query) == "" {
		return results, nil
	}

	db, err := s.db()
	if err != nil {
		return nil, err
	}

	sql := `
		SELECT t.id, t.title, t.year, t.n_citation,
		       COALESCE(fa.name, '') AS first_author,
		       ts_rank(t.search_vector, q.query) AS rank
		FROM texts t
		CROSS JOIN websearch_to_tsquery('english', $1) AS q(query)
		LEFT JOIN LATERAL (
			SELECT a.name
			FROM text_authors ta
			JOIN authors a ON a.id = ta.author_id
			WHERE ta.text_id = t.id
			ORDER BY ta.position
			LIMIT 1
		) fa ON true
		WHERE t.search_vector @@ q.query
		ORDER BY rank DESC, t.n_citation DESC, t.id
		LIMIT $2
	`

	rows, err := db.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search texts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.SearchResult
		var rank float32
		if err := rows.Scan(&r.ID, &r.Title, &r.Year, &r.NCitation, &r.FirstAuthor, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		if r.FirstAuthor == "" {
			r.FirstAuthor = model.UnknownAuthor
		}
		r.Rank = float64(rank)
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}
