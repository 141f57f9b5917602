package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Endogen/web2api-recipes/internal/api"
	"github.com/Endogen/web2api-recipes/internal/catalog"
	"github.com/Endogen/web2api-recipes/internal/config"
	"github.com/Endogen/web2api-recipes/internal/github"
	"github.com/Endogen/web2api-recipes/internal/middleware"
	"github.com/Endogen/web2api-recipes/internal/source"
	"github.com/Endogen/web2api-recipes/internal/sync"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("starting recipe catalog server",
		"catalog_source", cfg.CatalogSource,
		"branch", cfg.CatalogBranch,
		"cache_size", cfg.CacheSize,
	)

	// GitHub App authentication applies to private git sources only
	var ghAuth *github.AppAuth
	if cfg.HasGitHubApp() {
		ghAuth, err = github.NewAppAuth(
			cfg.GitHubAppID,
			cfg.GitHubAppPrivateKey,
			cfg.GitHubInstallationID,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize GitHub App auth: %w", err)
		}
	}

	// Open the catalog source (local directory or git URL)
	src, err := source.Open(source.Config{
		Location:  cfg.CatalogSource,
		Branch:    cfg.CatalogBranch,
		LocalPath: cfg.DataPath,
		Auth:      ghAuth,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open catalog source: %w", err)
	}

	// Git sources need an initial clone before reads
	gitSrc, isGit := src.(*source.Git)
	if isGit {
		cloneCtx, cloneCancel := context.WithTimeout(context.Background(), cfg.CloneTimeout)
		defer cloneCancel()

		logger.Info("cloning catalog repository", "timeout", cfg.CloneTimeout)
		if err := gitSrc.Clone(cloneCtx); err != nil {
			return fmt.Errorf("failed to clone catalog within %s: %w", cfg.CloneTimeout, err)
		}
		logger.Info("catalog cloned successfully", "commit", gitSrc.Commit())
	}

	// Initialize catalog service with LRU descriptor cache
	svc, err := catalog.New(catalog.Config{
		Source:    src,
		CacheSize: cfg.CacheSize,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}

	// Load and validate the index
	if err := svc.LoadIndex(); err != nil {
		return fmt.Errorf("failed to load catalog index: %w", err)
	}
	logger.Info("catalog loaded", "recipe_count", svc.RecipeCount())

	// Sync manager keeps git sources fresh
	var syncMgr *sync.Manager
	if isGit {
		syncMgr = sync.NewManager(sync.Config{
			Git:          gitSrc,
			Catalog:      svc,
			PollInterval: cfg.PollInterval,
			Debounce:     10 * time.Second,
			Logger:       logger,
		})
	}

	// Initialize observability
	shutdownTracer, err := middleware.InitTracer(cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	}

	// Initialize API router
	router := api.NewRouter(api.Config{
		Catalog:       svc,
		SyncManager:   syncMgr,
		WebhookSecret: cfg.WebhookSecret,
		Branch:        cfg.CatalogBranch,
		Logger:        logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      middleware.Chain(router, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start sync manager
	syncCtx, syncCancel := context.WithCancel(context.Background())
	defer syncCancel()
	if syncMgr != nil {
		go syncMgr.Start(syncCtx)
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	syncCancel() // Stop sync manager

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if shutdownTracer != nil {
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown error", "error", err)
		}
	}

	logger.Info("server stopped gracefully")
	return nil
}
