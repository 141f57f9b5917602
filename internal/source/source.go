package source

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Endogen/web2api-recipes/internal/github"
)

// Source provides read access to a recipe catalog tree, regardless of
// whether it lives in a local directory or a cloned git repository.
type Source interface {
	// ReadFile reads a file relative to the catalog root
	ReadFile(path string) ([]byte, error)

	// FileExists reports whether a file exists relative to the catalog root
	FileExists(path string) bool

	// ListFiles returns the file names directly inside dir
	ListFiles(dir string) ([]string, error)

	// WalkFiles visits every file under dir with its content
	WalkFiles(dir string, fn func(path string, content []byte) error) error

	// Commit returns the current commit SHA, or "" for non-git sources
	Commit() string

	// Location returns the configured catalog location
	Location() string
}

// Config holds catalog source configuration
type Config struct {
	// Location is a local directory path or a git clone URL
	Location string

	// Branch applies to git locations only
	Branch string

	// LocalPath is the clone target for git locations
	LocalPath string

	// Auth is optional GitHub App auth for private git locations
	Auth *github.AppAuth

	Logger *slog.Logger
}

// Open resolves the configured location to a source implementation.
// An existing local path opens as a directory source; anything else is
// treated as a git URL.
func Open(cfg Config) (Source, error) {
	if cfg.Location == "" {
		return nil, fmt.Errorf("catalog source location is required")
	}

	if info, err := os.Stat(cfg.Location); err == nil && info.IsDir() {
		return NewDir(cfg.Location)
	}

	if isGitURL(cfg.Location) {
		return NewGit(cfg)
	}

	return nil, fmt.Errorf("catalog source %q is neither a directory nor a git URL", cfg.Location)
}

func isGitURL(location string) bool {
	return strings.HasPrefix(location, "https://") ||
		strings.HasPrefix(location, "http://") ||
		strings.HasPrefix(location, "git@") ||
		strings.HasSuffix(location, ".git")
}
