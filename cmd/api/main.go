// Package main is the entrypoint for the Citeshelf API server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citeshelf/citeshelf/internal/config"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cliOptions are flags shared by every subcommand.
type cliOptions struct {
	memory bool
	port   int
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "citeshelf",
		Short: "Citeshelf - bibliographic catalogue API",
		Long: `Citeshelf serves a catalogue of users, authors, texts and citations
over JSON, with server-rendered pages for browsing texts.

Running without a subcommand is the same as "citeshelf serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.memory, "memory", false, "use the in-memory store instead of PostgreSQL (data is lost on exit)")
	rootCmd.PersistentFlags().IntVarP(&opts.port, "port", "p", 0, "HTTP port (overrides APP_PORT)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the database and run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the schema and apply pending migrations, then exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "citeshelf %s\n", version)
			},
		},
	)

	return rootCmd
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}
	if opts.memory {
		cfg.Store = config.StoreMemory
	}
	if opts.port != 0 {
		cfg.AppPort = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
