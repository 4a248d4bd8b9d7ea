package repository

import (
	"context"
	"fmt"

	"github.com/citeshelf/citeshelf/internal/model"
	"github.com/citeshelf/citeshelf/internal/store"
)

// CreateCitation inserts a citation and bumps the cited text's count in
// the same transaction.
func (s *Session) CreateCitation(ctx context.Context, citation *model.Citation) error {
	if citation.CitingTextID == citation.CitedTextID {
		return store.ErrSelfCitation
	}

	return s.inTx(ctx, func(q querier) error {
		insert := `
			INSERT INTO citations (id, citing_text_id, cited_text_id, created_at)
			VALUES ($1, $2, $3, $4)
		`
		_, err := q.Exec(ctx, insert,
			citation.ID,
			citation.CitingTextID,
			citation.CitedTextID,
			citation.CreatedAt,
		)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return store.ErrCitationExists
			case isForeignKeyViolation(err):
				return store.ErrUnknownText
			case isCheckViolation(err):
				return store.ErrSelfCitation
			}
			return fmt.Errorf("failed to create citation: %w", err)
		}

		if _, err := q.Exec(ctx, `UPDATE texts SET n_citation = n_citation + 1 WHERE id = $1`, citation.CitedTextID); err != nil {
			return fmt.Errorf("failed to update citation count: %w", err)
		}

		return nil
	})
}

// ListCitationsOf returns the citations pointing at textID, oldest first.
func (s *Session) ListCitationsOf(ctx context.Context, textID string) ([]*model.Citation, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM texts WHERE id = $1)`, textID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check text: %w", err)
	}
	if !exists {
		return nil, store.ErrTextNotFound
	}

	query := `
		SELECT id, citing_text_id, cited_text_id, created_at
		FROM citations
		WHERE cited_text_id = $1
		ORDER BY id
	`

	rows, err := db.Query(ctx, query, textID)
	if err != nil {
		return nil, fmt.Errorf("failed to list citations: %w", err)
	}
	defer rows.Close()

	citations := make([]*model.Citation, 0)
	for rows.Next() {
		var c model.Citation
		if err := rows.Scan(&c.ID, &c.CitingTextID, &c.CitedTextID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan citation: %w", err)
		}
		citations = append(citations, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating citations: %w", err)
	}

	return citations, nil
}
