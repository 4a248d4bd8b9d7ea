package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/citeshelf/citeshelf/internal/metrics"
	"github.com/citeshelf/citeshelf/internal/middleware"
	"github.com/citeshelf/citeshelf/internal/service"
	"github.com/citeshelf/citeshelf/internal/store"
	"github.com/citeshelf/citeshelf/internal/view"
)

// RouterConfig holds everything the router needs.
type RouterConfig struct {
	Version string
	Logger  *slog.Logger

	// Opener provides the per-request session.
	Opener store.Opener
	Users  *service.UserService
	Views  *view.Renderer

	// Metrics receives events; Snapshots backs GET /metrics when set.
	Metrics   metrics.Recorder
	Snapshots metrics.Snapshotter

	// DB and Cache are pinged by /readyz. Either may be nil.
	DB    HealthChecker
	Cache HealthChecker

	Security           middleware.SecurityConfig
	CORS               middleware.CORSConfig
	SearchDefaultLimit int
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	views := cfg.Views
	if views == nil {
		views = view.MustNew()
	}
	users := cfg.Users
	if users == nil {
		users = service.NewUserService(nil, recorder)
	}

	h := New(cfg.Version)
	healthHandler := NewHealthHandler(cfg.DB, cfg.Cache)
	metricsHandler := NewMetricsHandler(cfg.Snapshots)
	userHandler := NewUserHandler(users, logger)
	authorHandler := NewAuthorHandler(recorder, logger)
	textHandler := NewTextHandler(views, recorder, logger)
	citationHandler := NewCitationHandler(recorder, logger)
	searchHandler := NewSearchHandler(cfg.SearchDefaultLimit, recorder, logger)
	itemHandler := NewItemHandler(views, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(cfg.Security))
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORS))
	}
	if cfg.Security.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	}

	// Service endpoints, no session
	r.Get("/", h.Hello)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)
	r.Handle("/static/*", view.Static())
	r.Get("/items/{id}", itemHandler.Get)

	// Everything below runs against one store session per request.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg.Opener, recorder, logger))

		r.Post("/users/registration/", userHandler.Register)
		r.Get("/users/get_user/", userHandler.GetUser)
		r.Post("/users/login_user/", userHandler.Login)
		r.Put("/users/change_password", userHandler.ChangePassword)

		r.Get("/author/", authorHandler.Get)
		r.Post("/author/", authorHandler.Create)
		r.Put("/author/", authorHandler.Update)
		r.Delete("/author/", authorHandler.Delete)
		r.Get("/authors/", authorHandler.List)

		r.Get("/text/", textHandler.Get)
		r.Post("/text/", textHandler.Create)
		r.Delete("/text/", textHandler.Delete)
		r.Get("/texts/", textHandler.List)

		r.Post("/citation/", citationHandler.Create)
		r.Get("/citations/", citationHandler.ListOf)

		r.Get("/search/", searchHandler.Search)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
