package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/citeshelf/citeshelf/internal/model"
	"github.com/citeshelf/citeshelf/internal/store"
)

const textColumns = `id, title, year, abstract, venue, keywords, n_citation, created_at`

// CreateText inserts a text and its ordered author list in one transaction.
func (s *Session) CreateText(ctx context.Context, text *model.Text, authorIDs []string) (*model.Text, error) {
	authorIDs = dedupe(authorIDs)
	if len(authorIDs) == 0 {
		return nil, store.ErrNoAuthors
	}

	var created *model.Text
	err := s.inTx(ctx, func(q querier) error {
		insertText := `
			INSERT INTO texts (id, title, year, abstract, venue, keywords, n_citation, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		if _, err := q.Exec(ctx, insertText,
			text.ID,
			text.Title,
			text.Year,
			text.Abstract,
			text.Venue,
			pq.Array(nonNil(text.Keywords)),
			text.NCitation,
			text.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to create text: %w", err)
		}

		// Positions follow the order given; position 0 is the first author.
		insertAuthors := `
			INSERT INTO text_authors (text_id, author_id, position)
			SELECT $1::uuid, author_id::uuid, ord - 1
			FROM unnest($2::text[]) WITH ORDINALITY AS a(author_id, ord)
		`
		if _, err := q.Exec(ctx, insertAuthors, text.ID, pq.Array(authorIDs)); err != nil {
			if isForeignKeyViolation(err) {
				return store.ErrUnknownAuthor
			}
			return fmt.Errorf("failed to attach authors: %w", err)
		}

		loaded, err := getText(ctx, q, text.ID)
		if err != nil {
			return err
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetText retrieves a text with its authors.
func (s *Session) GetText(ctx context.Context, id string) (*model.Text, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return getText(ctx, db, id)
}

// ListTexts returns a page of texts, newest first, with authors loaded.
func (s *Session) ListTexts(ctx context.Context, skip, limit int) ([]*model.Text, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + textColumns + `
		FROM texts
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := db.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list texts: %w", err)
	}
	defer rows.Close()

	texts := make([]*model.Text, 0, limit)
	for rows.Next() {
		text, err := scanText(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan text: %w", err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating texts: %w", err)
	}

	if err := attachAuthors(ctx, db, texts); err != nil {
		return nil, err
	}

	return texts, nil
}

// DeleteText removes a text. Author links and citations to or from it go
// with it; texts it cited have their counts decremented.
func (s *Session) DeleteText(ctx context.Context, id string) (*model.Text, error) {
	var deleted *model.Text
	err := s.inTx(ctx, func(q querier) error {
		text, err := getText(ctx, q, id)
		if err != nil {
			return err
		}

		decrement := `
			UPDATE texts
			SET n_citation = GREATEST(n_citation - 1, 0)
			WHERE id IN (SELECT cited_text_id FROM citations WHERE citing_text_id = $1)
		`
		if _, err := q.Exec(ctx, decrement, id); err != nil {
			return fmt.Errorf("failed to update cited texts: %w", err)
		}

		if _, err := q.Exec(ctx, `DELETE FROM texts WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete text: %w", err)
		}

		deleted = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func getText(ctx context.Context, q querier, id string) (*model.Text, error) {
	query := `SELECT ` + textColumns + ` FROM texts WHERE id = $1`

	text, err := scanText(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTextNotFound
		}
		return nil, fmt.Errorf("failed to get text: %w", err)
	}

	if err := attachAuthors(ctx, q, []*model.Text{text}); err != nil {
		return nil, err
	}

	return text, nil
}

// attachAuthors loads the ordered author lists for texts in one query.
func attachAuthors(ctx context.Context, q querier, texts []*model.Text) error {
	if len(texts) == 0 {
		return nil
	}

	byID := make(map[string]*model.Text, len(texts))
	ids := make([]string, len(texts))
	for i, t := range texts {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	query := `
		SELECT ta.text_id, a.id, a.name, a.organization, a.orcid, a.created_at, a.updated_at
		FROM text_authors ta
		JOIN authors a ON a.id = ta.author_id
		WHERE ta.text_id = ANY($1::uuid[])
		ORDER BY ta.text_id, ta.position
	`

	rows, err := q.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load text authors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var textID string
		var a model.Author
		if err := rows.Scan(&textID, &a.ID, &a.Name, &a.Organization, &a.ORCID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan text author: %w", err)
		}
		if t, ok := byID[textID]; ok {
			t.Authors = append(t.Authors, a)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating text authors: %w", err)
	}

	return nil
}

func scanText(row pgx.Row) (*model.Text, error) {
	var text model.Text
	var keywords pq.StringArray
	err := row.Scan(
		&text.ID,
		&text.Title,
		&text.Year,
		&text.Abstract,
		&text.Venue,
		&keywords,
		&text.NCitation,
		&text.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	text.Keywords = []string(keywords)
	return &text, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
