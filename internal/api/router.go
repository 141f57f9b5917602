package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Endogen/web2api-recipes/internal/catalog"
	"github.com/Endogen/web2api-recipes/internal/sync"
)

// Config holds API router configuration
type Config struct {
	Catalog *catalog.Service

	// Env resolves environment variables for doctor checks;
	// nil defaults to the process environment
	Env catalog.EnvLookup

	// SyncManager and WebhookSecret are set for git-backed sources only
	SyncManager   *sync.Manager
	WebhookSecret string
	Branch        string

	Logger *slog.Logger
}

// NewRouter creates a new HTTP router with all API routes
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	// Base middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	handlers := NewHandlers(cfg.Catalog, cfg.Env, cfg.Logger)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Webhook endpoint, only when a git source is being synced
	if cfg.SyncManager != nil && cfg.WebhookSecret != "" {
		webhookHandler := sync.NewWebhookHandler(
			cfg.WebhookSecret,
			cfg.SyncManager,
			cfg.Branch,
			cfg.Logger,
		)
		r.Post("/webhooks/github", webhookHandler.ServeHTTP)
	}

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Health endpoints
		r.Get("/health", handlers.Health)
		r.Get("/ping", handlers.Ping)
		r.Get("/version", handlers.Version)

		// Catalog listing and recipe details
		r.Get("/recipes", handlers.ListRecipes)
		r.Get("/recipes/{slug}", handlers.GetRecipe)
		r.Get("/recipes/{slug}/doctor", handlers.Doctor)
		r.Get("/recipes/{slug}/plugin", handlers.GetPlugin)

		// Write endpoints (return 501 Not Implemented)
		r.Post("/recipes", handlers.NotImplemented)
		r.Put("/recipes/{slug}", handlers.NotImplemented)
		r.Delete("/recipes/{slug}", handlers.NotImplemented)
	})

	return r
}
