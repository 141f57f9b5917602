package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/Endogen/web2api-recipes/internal/domain"
	"github.com/Endogen/web2api-recipes/internal/middleware"
	"github.com/Endogen/web2api-recipes/internal/source"
)

// IndexFile is the catalog index file name at the source root
const IndexFile = "catalog.yaml"

// RecipeFile is the descriptor file name inside each recipe bundle
const RecipeFile = "recipe.yaml"

// PluginFile is the optional plugin descriptor file name inside a bundle
const PluginFile = "plugin.yaml"

// Service provides read access to the recipe catalog: the index, the
// per-slug descriptors, and readiness checks
type Service struct {
	source    source.Source
	cache     *lru.Cache[string, *domain.Recipe]
	index     *domain.Catalog
	indexMu   sync.RWMutex
	cacheSize int
	logger    *slog.Logger

	// Stats
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	lastSyncAt  atomic.Value // time.Time
}

// Config holds catalog service configuration
type Config struct {
	Source    source.Source
	CacheSize int
	Logger    *slog.Logger
}

// New creates a new catalog service
func New(cfg Config) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("source is required")
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cache, err := lru.New[string, *domain.Recipe](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	s := &Service{
		source:    cfg.Source,
		cache:     cache,
		cacheSize: cfg.CacheSize,
		logger:    cfg.Logger,
	}
	s.lastSyncAt.Store(time.Time{})

	return s, nil
}

// LoadIndex loads and validates the catalog.yaml index
func (s *Service) LoadIndex() error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	content, err := s.source.ReadFile(IndexFile)
	if err != nil {
		return fmt.Errorf("%s not found: %w", IndexFile, err)
	}

	var index domain.Catalog
	if err := yaml.Unmarshal(content, &index); err != nil {
		return &domain.ParseError{Path: IndexFile, Err: err}
	}

	// Slug must uniquely identify a recipe across the catalog
	seen := make(map[string]struct{}, len(index.Recipes))
	for _, entry := range index.Recipes {
		if entry.Slug == "" {
			return &domain.ParseError{Path: IndexFile, Err: errors.New("entry with empty slug")}
		}
		if _, dup := seen[entry.Slug]; dup {
			return &domain.ParseError{Path: IndexFile, Err: fmt.Errorf("duplicate slug: %s", entry.Slug)}
		}
		seen[entry.Slug] = struct{}{}
	}

	if len(index.Recipes) == 0 {
		s.logger.Warn("catalog.yaml contains no recipes")
	}

	s.index = &index
	s.lastSyncAt.Store(time.Now())

	s.logger.Info("catalog index loaded",
		"version", index.Version,
		"recipe_count", len(index.Recipes),
	)

	return nil
}

// Refresh reloads the index and invalidates the descriptor cache
func (s *Service) Refresh() error {
	s.cache.Purge()
	s.cacheHits.Store(0)
	s.cacheMisses.Store(0)

	return s.LoadIndex()
}

// Entries returns all catalog entries in index order
func (s *Service) Entries() ([]domain.CatalogEntry, error) {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	if s.index == nil {
		return nil, errors.New("catalog index not loaded")
	}

	entries := make([]domain.CatalogEntry, len(s.index.Recipes))
	copy(entries, s.index.Recipes)
	return entries, nil
}

// Lookup resolves a catalog entry by slug
func (s *Service) Lookup(slug string) (*domain.CatalogEntry, error) {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	if s.index == nil {
		return nil, errors.New("catalog index not loaded")
	}

	for i := range s.index.Recipes {
		if s.index.Recipes[i].Slug == slug {
			entry := s.index.Recipes[i]
			return &entry, nil
		}
	}

	return nil, domain.NotFound(slug)
}

// Load retrieves a recipe descriptor by slug, parsing and validating the
// bundle's recipe.yaml on first access
func (s *Service) Load(slug string) (*domain.Recipe, error) {
	// Check cache first
	if recipe, ok := s.cache.Get(slug); ok {
		s.cacheHits.Add(1)
		middleware.CatalogCacheHits.Inc()
		return recipe, nil
	}
	s.cacheMisses.Add(1)
	middleware.CatalogCacheMisses.Inc()

	entry, err := s.Lookup(slug)
	if err != nil {
		return nil, err
	}

	descriptorPath := path.Join(entry.Path, RecipeFile)
	content, err := s.source.ReadFile(descriptorPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe descriptor: %w", err)
	}

	var recipe domain.Recipe
	if err := yaml.Unmarshal(content, &recipe); err != nil {
		return nil, &domain.ParseError{Path: descriptorPath, Err: err}
	}

	if err := domain.ValidateRecipe(&recipe); err != nil {
		return nil, &domain.ParseError{Path: descriptorPath, Err: err}
	}

	if recipe.Slug != entry.Slug {
		return nil, &domain.ParseError{
			Path: descriptorPath,
			Err:  fmt.Errorf("descriptor slug %q does not match catalog entry %q", recipe.Slug, entry.Slug),
		}
	}

	s.cache.Add(slug, &recipe)

	return &recipe, nil
}

// Plugin retrieves a bundle's optional plugin descriptor, or nil when the
// bundle does not ship one
func (s *Service) Plugin(slug string) (*domain.PluginDescriptor, error) {
	entry, err := s.Lookup(slug)
	if err != nil {
		return nil, err
	}

	pluginPath := path.Join(entry.Path, PluginFile)
	if !s.source.FileExists(pluginPath) {
		return nil, nil
	}

	content, err := s.source.ReadFile(pluginPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin descriptor: %w", err)
	}

	var plugin domain.PluginDescriptor
	if err := yaml.Unmarshal(content, &plugin); err != nil {
		return nil, &domain.ParseError{Path: pluginPath, Err: err}
	}

	if err := domain.ValidatePlugin(&plugin); err != nil {
		return nil, &domain.ParseError{Path: pluginPath, Err: err}
	}

	return &plugin, nil
}

// Search returns catalog entries matching a query by slug, name or
// description
func (s *Service) Search(query string) ([]domain.CatalogEntry, error) {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	if s.index == nil {
		return nil, errors.New("catalog index not loaded")
	}

	query = strings.ToLower(query)
	var results []domain.CatalogEntry

	for _, entry := range s.index.Recipes {
		if strings.Contains(strings.ToLower(entry.Slug), query) ||
			strings.Contains(strings.ToLower(entry.Name), query) ||
			strings.Contains(strings.ToLower(entry.Description), query) {
			results = append(results, entry)
		}
	}

	return results, nil
}

// RecipeCount returns the number of recipes in the index
func (s *Service) RecipeCount() int {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	if s.index == nil {
		return 0
	}
	return len(s.index.Recipes)
}

// IndexStatus returns the current index status
func (s *Service) IndexStatus() string {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	if s.index == nil {
		return "not_loaded"
	}
	return "valid"
}

// CacheStats returns current descriptor cache statistics
func (s *Service) CacheStats() *domain.CacheStats {
	hits := s.cacheHits.Load()
	misses := s.cacheMisses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return &domain.CacheStats{
		Size:     s.cache.Len(),
		Capacity: s.cacheSize,
		HitRate:  hitRate,
	}
}

// LastSyncAt returns the last index load timestamp
func (s *Service) LastSyncAt() time.Time {
	return s.lastSyncAt.Load().(time.Time)
}

// Source returns the underlying catalog source
func (s *Service) Source() source.Source {
	return s.source
}
