package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/citeshelf/citeshelf/internal/model"
	"github.com/citeshelf/citeshelf/internal/store"
)

const authorColumns = `id, name, organization, orcid, created_at, updated_at`

// CreateAuthor inserts a new author.
func (s *Session) CreateAuthor(ctx context.Context, author *model.Author) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO authors (id, name, organization, orcid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = db.Exec(ctx, query,
		author.ID,
		author.Name,
		author.Organization,
		author.ORCID,
		author.CreatedAt,
		author.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}

	return nil
}

// GetAuthor retrieves an author by id.
func (s *Session) GetAuthor(ctx context.Context, id string) (*model.Author, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`

	author, err := scanAuthor(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	return author, nil
}

// ListAuthors returns a page of authors ordered by name.
func (s *Session) ListAuthors(ctx context.Context, skip, limit int) ([]*model.Author, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + authorColumns + `
		FROM authors
		ORDER BY name, id
		OFFSET $1 LIMIT $2
	`

	rows, err := db.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]*model.Author, 0, limit)
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, author)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}

	return authors, nil
}

// UpdateAuthor replaces an author's mutable fields.
func (s *Session) UpdateAuthor(ctx context.Context, author *model.Author) (*model.Author, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE authors
		SET name = $2, organization = $3, orcid = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + authorColumns

	updated, err := scanAuthor(db.QueryRow(ctx, query,
		author.ID,
		author.Name,
		author.Organization,
		author.ORCID,
		author.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	return updated, nil
}

// DeleteAuthor removes an author that no text references.
func (s *Session) DeleteAuthor(ctx context.Context, id string) (*model.Author, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	query := `DELETE FROM authors WHERE id = $1 RETURNING ` + authorColumns

	deleted, err := scanAuthor(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAuthorNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, store.ErrAuthorInUse
		}
		return nil, fmt.Errorf("failed to delete author: %w", err)
	}

	return deleted, nil
}

func scanAuthor(row pgx.Row) (*model.Author, error) {
	var author model.Author
	err := row.Scan(
		&author.ID,
		&author.Name,
		&author.Organization,
		&author.ORCID,
		&author.CreatedAt,
		&author.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &author, nil
}
