// Package migrations provisions the database schema.
//
// Run is idempotent: it creates the target schema if needed, then applies
// the embedded SQL files that are not yet recorded in schema_migrations,
// each in its own transaction. Concurrent runs are serialised with an
// advisory lock.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/*.sql
var files embed.FS

// lockID identifies the advisory lock held while migrating.
const lockID int64 = 7_317_001

// Result reports what a Run did.
type Result struct {
	Schema  string
	Applied []string
	Skipped []string
}

// Run creates schema (when non-empty) and applies pending migrations.
func Run(ctx context.Context, pool *pgxpool.Pool, schema string) (*Result, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", lockID); err != nil {
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		// Use a fresh context so the lock is released even if ctx is done.
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", lockID); err != nil {
			slog.Warn("failed to release migration lock", "error", err)
		}
	}()

	searchPath := "public"
	if schema != "" {
		ident := pgx.Identifier{schema}.Sanitize()
		if _, err := conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+ident); err != nil {
			return nil, fmt.Errorf("create schema %s: %w", schema, err)
		}
		searchPath = ident + ", public"
	}

	if _, err := conn.Exec(ctx, "SET search_path TO "+searchPath); err != nil {
		return nil, fmt.Errorf("set search_path: %w", err)
	}

	if _, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return nil, fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("get applied migrations: %w", err)
	}

	names, err := Files()
	if err != nil {
		return nil, fmt.Errorf("list migration files: %w", err)
	}

	result := &Result{Schema: schema}
	for _, name := range names {
		if applied[name] {
			slog.Debug("migration already applied", "file", name)
			result.Skipped = append(result.Skipped, name)
			continue
		}

		if err := apply(ctx, conn, name); err != nil {
			return nil, fmt.Errorf("apply migration %s: %w", name, err)
		}
		slog.Info("migration applied", "file", name, "schema", schema)
		result.Applied = append(result.Applied, name)
	}

	return result, nil
}

// Files returns the embedded migration file names in apply order.
func Files() ([]string, error) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func appliedMigrations(ctx context.Context, conn *pgxpool.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, "SELECT filename FROM schema_migrations ORDER BY filename")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func apply(ctx context.Context, conn *pgxpool.Conn, name string) error {
	content, err := fs.ReadFile(files, "sql/"+name)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("execute sql: %w", err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (filename) VALUES ($1)", name); err != nil {
			return fmt.Errorf("record migration: %w", err)
		}
		return nil
	})
}
