package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Endogen/web2api-recipes/internal/catalog"
	"github.com/Endogen/web2api-recipes/internal/domain"
	"github.com/Endogen/web2api-recipes/internal/middleware"
)

// Build information (set at compile time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Handlers provides HTTP handlers for the API
type Handlers struct {
	catalog *catalog.Service
	env     catalog.EnvLookup
	logger  *slog.Logger
}

// NewHandlers creates a new handlers instance. A nil env defaults to the
// process environment.
func NewHandlers(svc *catalog.Service, env catalog.EnvLookup, logger *slog.Logger) *Handlers {
	if env == nil {
		env = os.Getenv
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		catalog: svc,
		env:     env,
		logger:  logger,
	}
}

// Health returns health check information
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	src := h.catalog.Source()

	status := "ok"
	catalogStatus := h.catalog.IndexStatus()
	if catalogStatus != "valid" {
		status = "degraded"
		middleware.CatalogIndexValid.Set(0)
	} else {
		middleware.CatalogIndexValid.Set(1)
	}
	middleware.CatalogRecipesTotal.Set(float64(h.catalog.RecipeCount()))

	resp := domain.HealthResponse{
		Status:        status,
		CatalogSource: src.Location(),
		CommitSHA:     src.Commit(),
		LastSyncAt:    h.catalog.LastSyncAt().Format(time.RFC3339),
		CatalogStatus: catalogStatus,
		RecipeCount:   h.catalog.RecipeCount(),
		CacheStats:    h.catalog.CacheStats(),
	}

	writeJSON(w, http.StatusOK, resp)
}

// Ping returns a simple pong response
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.PingResponse{Pong: true})
}

// Version returns build version information
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	version := Version
	commit := GitCommit
	buildTime := BuildTime

	// Try to get from build info if not set
	if info, ok := debug.ReadBuildInfo(); ok && version == "dev" {
		version = info.Main.Version
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				commit = setting.Value
			case "vcs.time":
				buildTime = setting.Value
			}
		}
	}

	writeJSON(w, http.StatusOK, domain.VersionResponse{
		Version:   version,
		GitCommit: commit,
		BuildTime: buildTime,
	})
}

// ListRecipes returns a paginated list of recipes in catalog order
func (h *Handlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := h.catalog.Entries()
	if err != nil {
		h.logger.Error("failed to list recipes", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Service Unavailable",
			"Catalog not available. Ensure catalog.yaml exists and is valid.")
		return
	}

	// Cursor is the slug of the last entry of the previous page
	startIdx := 0
	if cursor != "" {
		for i, e := range entries {
			if e.Slug == cursor {
				startIdx = i + 1
				break
			}
		}
	}

	endIdx := startIdx + limit
	if endIdx > len(entries) {
		endIdx = len(entries)
	}

	var results []domain.RecipeResponse
	for i := startIdx; i < endIdx; i++ {
		entry := entries[i]

		recipe, err := h.catalog.Load(entry.Slug)
		if err != nil {
			// Fall back to index info if the bundle fails to load
			recipe = &domain.Recipe{
				Slug:        entry.Slug,
				Name:        entry.Name,
				Version:     entry.Version,
				Description: entry.Description,
			}
		}

		results = append(results, domain.RecipeResponse{
			Recipe: *recipe,
			Entry:  &entry,
		})
	}

	var nextCursor string
	if endIdx < len(entries) {
		nextCursor = entries[endIdx-1].Slug
	}

	writeJSON(w, http.StatusOK, domain.RecipeListResponse{
		Recipes: results,
		Metadata: domain.ListMetadata{
			NextCursor: nextCursor,
			Count:      len(results),
		},
	})
}

// GetRecipe returns a recipe descriptor by slug
func (h *Handlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Bad Request", "Recipe slug is required")
		return
	}

	recipe, err := h.catalog.Load(slug)
	if err != nil {
		h.writeLoadError(w, slug, err)
		return
	}

	entry, _ := h.catalog.Lookup(slug)

	writeJSON(w, http.StatusOK, domain.RecipeResponse{
		Recipe: *recipe,
		Entry:  entry,
	})
}

// Doctor returns the readiness report for a recipe, computed against the
// server's current environment
func (h *Handlers) Doctor(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Bad Request", "Recipe slug is required")
		return
	}

	report, err := h.catalog.Doctor(slug, h.env)
	if err != nil {
		h.writeLoadError(w, slug, err)
		return
	}

	middleware.DoctorChecksTotal.WithLabelValues(strconv.FormatBool(report.Ready)).Inc()

	writeJSON(w, http.StatusOK, report)
}

// GetPlugin returns a recipe's optional plugin descriptor
func (h *Handlers) GetPlugin(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Bad Request", "Recipe slug is required")
		return
	}

	plugin, err := h.catalog.Plugin(slug)
	if err != nil {
		h.writeLoadError(w, slug, err)
		return
	}
	if plugin == nil {
		writeError(w, http.StatusNotFound, "Not Found",
			"Recipe has no plugin descriptor: "+slug)
		return
	}

	writeJSON(w, http.StatusOK, plugin)
}

// NotImplemented returns 501 for write endpoints
func (h *Handlers) NotImplemented(w http.ResponseWriter, r *http.Request) {
	resp := domain.NotImplementedResponse{
		Status:  http.StatusNotImplemented,
		Title:   "Not Implemented",
		Detail:  "This catalog is read-only. Recipes are managed via GitOps workflow.",
		SeeAlso: "Submit a pull request to the recipe repository to add or update recipes.",
	}

	writeJSON(w, http.StatusNotImplemented, resp)
}

func (h *Handlers) writeLoadError(w http.ResponseWriter, slug string, err error) {
	var parseErr *domain.ParseError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.logger.Debug("recipe not found", "slug", slug)
		writeError(w, http.StatusNotFound, "Not Found",
			"Recipe not found: "+slug)
	case errors.As(err, &parseErr):
		h.logger.Error("malformed recipe descriptor", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "Invalid Descriptor",
			"Recipe descriptor is malformed: "+slug)
	default:
		h.logger.Error("failed to load recipe", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error",
			"Failed to load recipe: "+slug)
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, title, detail string) {
	resp := domain.ErrorResponse{
		Status: status,
		Title:  title,
		Detail: detail,
	}
	writeJSON(w, status, resp)
}
