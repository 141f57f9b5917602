package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Endogen/web2api-recipes/internal/catalog"
	"github.com/Endogen/web2api-recipes/internal/middleware"
	"github.com/Endogen/web2api-recipes/internal/source"
)

// Manager keeps a git-backed catalog source in step with its remote.
// It is only started when the catalog source is a git URL; directory
// sources are read fresh from disk and need no synchronization.
type Manager struct {
	git          *source.Git
	catalog      *catalog.Service
	pollInterval time.Duration
	debounce     time.Duration
	logger       *slog.Logger

	triggerChan chan struct{}
	mu          sync.Mutex
	lastSync    time.Time
	syncing     bool
}

// Config holds sync manager configuration
type Config struct {
	Git          *source.Git
	Catalog      *catalog.Service
	PollInterval time.Duration
	Debounce     time.Duration
	Logger       *slog.Logger
}

// NewManager creates a new sync manager
func NewManager(cfg Config) *Manager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Manager{
		git:          cfg.Git,
		catalog:      cfg.Catalog,
		pollInterval: cfg.PollInterval,
		debounce:     cfg.Debounce,
		logger:       cfg.Logger,
		triggerChan:  make(chan struct{}, 1),
	}
}

// Start begins the sync manager polling loop
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	m.logger.Info("sync manager started",
		"poll_interval", m.pollInterval,
		"debounce", m.debounce,
	)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("sync manager stopped")
			return

		case <-ticker.C:
			m.doSync(ctx, "poll")

		case <-m.triggerChan:
			// Debounce webhook triggers
			m.debounceSync(ctx)
		}
	}
}

// Trigger initiates a sync (called by webhook handler)
func (m *Manager) Trigger() {
	select {
	case m.triggerChan <- struct{}{}:
		m.logger.Debug("sync triggered")
	default:
		m.logger.Debug("sync already pending")
	}
}

// LastSyncTime returns the last successful sync time
func (m *Manager) LastSyncTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSync
}

// IsSyncing returns whether a sync is in progress
func (m *Manager) IsSyncing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncing
}

func (m *Manager) debounceSync(ctx context.Context) {
	m.mu.Lock()
	if time.Since(m.lastSync) < m.debounce {
		m.mu.Unlock()
		m.logger.Debug("sync debounced", "last_sync", m.lastSync)
		return
	}
	m.mu.Unlock()

	m.doSync(ctx, "webhook")
}

func (m *Manager) doSync(ctx context.Context, trigger string) {
	m.mu.Lock()
	if m.syncing {
		m.mu.Unlock()
		m.logger.Debug("sync already in progress")
		return
	}
	m.syncing = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.syncing = false
		m.mu.Unlock()
	}()

	start := time.Now()
	m.logger.Info("starting sync", "trigger", trigger)

	// Pull with retry
	changed, err := m.git.PullWithRetry(ctx, 3)
	if err != nil {
		middleware.CatalogSyncErrors.Inc()
		m.logger.Error("sync failed",
			"trigger", trigger,
			"error", err,
			"duration", time.Since(start),
		)
		return
	}

	if !changed {
		m.logger.Debug("no changes detected", "trigger", trigger)
		m.mu.Lock()
		m.lastSync = time.Now()
		m.mu.Unlock()
		return
	}

	// Refresh catalog (reloads index and purges descriptor cache)
	if err := m.catalog.Refresh(); err != nil {
		middleware.CatalogSyncErrors.Inc()
		m.logger.Error("failed to refresh catalog",
			"trigger", trigger,
			"error", err,
		)
		return
	}

	m.mu.Lock()
	m.lastSync = time.Now()
	m.mu.Unlock()

	middleware.CatalogSyncDuration.Observe(time.Since(start).Seconds())
	middleware.CatalogRecipesTotal.Set(float64(m.catalog.RecipeCount()))

	m.logger.Info("sync completed",
		"trigger", trigger,
		"commit", m.git.Commit(),
		"recipe_count", m.catalog.RecipeCount(),
		"duration", time.Since(start),
	)
}
