package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citeshelf/citeshelf/internal/config"
	"github.com/citeshelf/citeshelf/internal/store"
)

func runMigrate(ctx context.Context, cmd *cobra.Command, opts *cliOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Store == config.StoreMemory {
		return errors.New("the in-memory store has no schema to migrate")
	}

	logger, logCloser := initLogger(cfg, os.Stderr)
	defer logCloser.Close()

	repo, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	result, err := repo.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Read through a regular session so a schema the queries cannot use
	// fails here rather than on the first request.
	err = store.WithSession(ctx, repo, func(ctx context.Context, sess store.Session) error {
		_, err := sess.ListAuthors(ctx, 0, 1)
		return err
	})
	if err != nil {
		return fmt.Errorf("schema %s is not usable after migration: %w", result.Schema, err)
	}

	out := cmd.OutOrStdout()
	for _, name := range result.Applied {
		fmt.Fprintf(out, "applied  %s\n", name)
	}
	fmt.Fprintf(out, "schema %s: %d applied, %d already up to date\n",
		result.Schema, len(result.Applied), len(result.Skipped))
	return nil
}
