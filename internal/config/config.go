package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Catalog source settings
	CatalogSource string
	CatalogBranch string

	// GitHub App authentication (optional, for private git sources)
	GitHubAppID          int64
	GitHubAppPrivateKey  []byte
	GitHubInstallationID int64

	// Webhook settings
	WebhookSecret string

	// Sync settings
	PollInterval time.Duration
	CloneTimeout time.Duration

	// Storage settings
	DataPath  string
	CacheSize int

	// Local install workspace for the CLI
	Home string

	// Server settings
	Port int

	// Observability
	OTLPEndpoint string
}

// HasGitHubApp reports whether GitHub App credentials are configured
func (c *Config) HasGitHubApp() bool {
	return c.GitHubAppID != 0 && len(c.GitHubAppPrivateKey) > 0 && c.GitHubInstallationID != 0
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		CatalogBranch: "main",
		PollInterval:  5 * time.Minute,
		CloneTimeout:  2 * time.Minute,
		DataPath:      "/data",
		CacheSize:     256,
		Port:          8080,
	}

	// Required: catalog source (local directory or git URL)
	cfg.CatalogSource = os.Getenv("WEB2API_RECIPE_CATALOG_SOURCE")
	if cfg.CatalogSource == "" {
		return nil, fmt.Errorf("WEB2API_RECIPE_CATALOG_SOURCE is required")
	}

	// Optional: branch for git sources
	if v := os.Getenv("WEB2API_CATALOG_BRANCH"); v != "" {
		cfg.CatalogBranch = v
	}

	// Optional: GitHub App credentials for private git sources.
	// Either all three are provided or none.
	if appIDStr := os.Getenv("WEB2API_GITHUB_APP_ID"); appIDStr != "" {
		appID, err := strconv.ParseInt(appIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WEB2API_GITHUB_APP_ID: %w", err)
		}
		cfg.GitHubAppID = appID

		// Private key can be provided as file path or direct value
		privateKeyPath := os.Getenv("WEB2API_GITHUB_APP_PRIVATE_KEY_PATH")
		privateKeyValue := os.Getenv("WEB2API_GITHUB_APP_PRIVATE_KEY")
		if privateKeyPath != "" {
			key, err := os.ReadFile(privateKeyPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read private key file: %w", err)
			}
			cfg.GitHubAppPrivateKey = key
		} else if privateKeyValue != "" {
			cfg.GitHubAppPrivateKey = []byte(privateKeyValue)
		} else {
			return nil, fmt.Errorf("WEB2API_GITHUB_APP_PRIVATE_KEY or WEB2API_GITHUB_APP_PRIVATE_KEY_PATH is required with WEB2API_GITHUB_APP_ID")
		}

		installIDStr := os.Getenv("WEB2API_GITHUB_INSTALLATION_ID")
		if installIDStr == "" {
			return nil, fmt.Errorf("WEB2API_GITHUB_INSTALLATION_ID is required with WEB2API_GITHUB_APP_ID")
		}
		installID, err := strconv.ParseInt(installIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WEB2API_GITHUB_INSTALLATION_ID: %w", err)
		}
		cfg.GitHubInstallationID = installID
	}

	// Optional: webhook secret (required to accept push webhooks)
	cfg.WebhookSecret = os.Getenv("WEB2API_WEBHOOK_SECRET")

	// Optional: poll interval
	if v := os.Getenv("WEB2API_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WEB2API_POLL_INTERVAL: %w", err)
		}
		cfg.PollInterval = d
	}

	// Optional: clone timeout
	if v := os.Getenv("WEB2API_CLONE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WEB2API_CLONE_TIMEOUT: %w", err)
		}
		cfg.CloneTimeout = d
	}

	// Optional: data path for git clones
	if v := os.Getenv("WEB2API_DATA_PATH"); v != "" {
		cfg.DataPath = v
	}

	// Optional: descriptor cache size
	if v := os.Getenv("WEB2API_CACHE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WEB2API_CACHE_SIZE: %w", err)
		}
		cfg.CacheSize = size
	}

	// Optional: CLI install workspace
	if v := os.Getenv("WEB2API_HOME"); v != "" {
		cfg.Home = v
	} else if home, err := os.UserHomeDir(); err == nil {
		cfg.Home = filepath.Join(home, ".web2api")
	}

	// Optional: port
	if v := os.Getenv("WEB2API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WEB2API_PORT: %w", err)
		}
		cfg.Port = port
	}

	// Optional: OTLP endpoint for tracing
	cfg.OTLPEndpoint = os.Getenv("WEB2API_OTLP_ENDPOINT")

	return cfg, nil
}
