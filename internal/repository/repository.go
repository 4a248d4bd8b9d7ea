// Package repository implements the data-access layer on PostgreSQL.
//
// Repository owns the connection pool and hands out Sessions, each backed
// by one pooled connection for the lifetime of a request.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/citeshelf/citeshelf/internal/repository/migrations"
	"github.com/citeshelf/citeshelf/internal/store"
)

// Options configures the connection pool.
type Options struct {
	DatabaseURL string
	// Schema is placed first on every connection's search_path.
	Schema   string
	MaxConns int32
	MinConns int32
}

// Repository provides database sessions over a connection pool.
type Repository struct {
	pool   *pgxpool.Pool
	schema string
}

// New creates a new Repository with a connection pool.
func New(ctx context.Context, opts Options) (*Repository, error) {
	config, err := pgxpool.ParseConfig(opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 && opts.MinConns <= config.MaxConns {
		config.MinConns = opts.MinConns
	}

	if opts.Schema != "" {
		config.ConnConfig.RuntimeParams["search_path"] = pgx.Identifier{opts.Schema}.Sanitize() + ", public"
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool, schema: opts.Schema}, nil
}

// Open acquires a pooled connection and wraps it in a Session.
func (r *Repository) Open(ctx context.Context) (store.Session, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return newSession(conn), nil
}

// Migrate provisions the schema and applies pending migrations.
func (r *Repository) Migrate(ctx context.Context) (*migrations.Result, error) {
	return migrations.Run(ctx, r.pool, r.schema)
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Schema returns the schema the repository works in.
func (r *Repository) Schema() string {
	return r.schema
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Session.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
