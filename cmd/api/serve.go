package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/citeshelf/citeshelf/internal/auth"
	"github.com/citeshelf/citeshelf/internal/cache"
	"github.com/citeshelf/citeshelf/internal/config"
	"github.com/citeshelf/citeshelf/internal/handler"
	"github.com/citeshelf/citeshelf/internal/metrics"
	"github.com/citeshelf/citeshelf/internal/middleware"
	"github.com/citeshelf/citeshelf/internal/repository"
	"github.com/citeshelf/citeshelf/internal/server"
	"github.com/citeshelf/citeshelf/internal/service"
	"github.com/citeshelf/citeshelf/internal/store"
	"github.com/citeshelf/citeshelf/internal/store/memstore"
	"github.com/citeshelf/citeshelf/internal/view"
)

func runServe(ctx context.Context, opts *cliOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, logCloser := initLogger(cfg, os.Stdout)
	defer logCloser.Close()

	views, err := view.New()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	recorder := metrics.NewInMemory()
	routerCfg := handler.RouterConfig{
		Version:   version,
		Logger:    logger,
		Users:     service.NewUserService(auth.NewHasher(auth.DefaultParams), recorder),
		Views:     views,
		Metrics:   recorder,
		Snapshots: recorder,
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
			StaticPrefix:       "/static/",
		},
		CORS:               middleware.DefaultCORSConfig(),
		SearchDefaultLimit: cfg.SearchDefaultLimit,
	}
	routerCfg.CORS.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Components are registered for shutdown in the order they are built;
	// the server stops them in reverse.
	var shutdown []namedShutdown

	var opener store.Opener
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data will not survive a restart")
		opener = memstore.New()
	default:
		repo, err := connectDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		shutdown = append(shutdown, namedShutdown{"postgres", func(context.Context) error {
			repo.Close()
			return nil
		}})

		if err := migrate(ctx, repo, logger); err != nil {
			repo.Close()
			return err
		}

		opener = repo
		routerCfg.DB = repo
	}

	if cfg.RedisURL != "" {
		cacheClient, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			runShutdown(shutdown)
			return errors.New("redis unavailable")
		}
		logger.Info("connected to Redis", "author_cache_ttl", cfg.AuthorCacheTTL)
		shutdown = append(shutdown, namedShutdown{"redis", func(context.Context) error {
			return cacheClient.Close()
		}})

		opener = cache.NewOpener(opener, cacheClient, cfg.AuthorCacheTTL, recorder, logger)
		routerCfg.Cache = cacheClient
	}

	routerCfg.Opener = opener
	r := handler.NewRouter(routerCfg)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	for _, s := range shutdown {
		srv.OnShutdown(s.name, s.fn)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", cfg.Store,
		"version", version,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

type namedShutdown struct {
	name string
	fn   server.ShutdownFunc
}

// runShutdown releases components when startup fails before the server
// owns them.
func runShutdown(components []namedShutdown) {
	for i := len(components) - 1; i >= 0; i-- {
		_ = components[i].fn(context.Background())
	}
}

func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.Repository, error) {
	repo, err := repository.New(ctx, repository.Options{
		DatabaseURL: cfg.DatabaseURL,
		Schema:      cfg.DBSchema,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return nil, errors.New("database unavailable")
	}
	logger.Info("connected to database", "schema", cfg.DBSchema)
	return repo, nil
}

func migrate(ctx context.Context, repo *repository.Repository, logger *slog.Logger) error {
	result, err := repo.Migrate(ctx)
	if err != nil {
		logger.Error("migration failed", "schema", repo.Schema(), "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("migrations complete",
		"schema", result.Schema,
		"applied", result.Applied,
		"skipped", len(result.Skipped),
	)
	return nil
}
