package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Git serves a catalog from a cloned git repository, kept up to date via
// Pull. Used when the catalog source is a remote URL rather than a local
// checkout.
type Git struct {
	config        Config
	repo          *git.Repository
	worktree      *git.Worktree
	currentCommit string
	mu            sync.RWMutex
	logger        *slog.Logger
}

// NewGit creates a git-backed source. Clone must be called before reads.
func NewGit(cfg Config) (*Git, error) {
	if cfg.Location == "" {
		return nil, errors.New("catalog URL is required")
	}
	if cfg.LocalPath == "" {
		return nil, errors.New("local path is required")
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Git{
		config: cfg,
		logger: cfg.Logger,
	}, nil
}

// Clone performs the initial repository clone with context timeout
func (g *Git) Clone(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(g.config.LocalPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Clean clone
	if err := os.RemoveAll(g.config.LocalPath); err != nil {
		return fmt.Errorf("failed to clean existing directory: %w", err)
	}

	auth, err := g.getAuth(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	g.logger.Info("cloning catalog repository",
		"url", g.config.Location,
		"branch", g.config.Branch,
		"path", g.config.LocalPath,
	)

	cloneOpts := &git.CloneOptions{
		URL:           g.config.Location,
		Auth:          auth,
		Depth:         1, // Shallow clone for efficiency
		SingleBranch:  true,
		ReferenceName: plumbing.NewBranchReferenceName(g.config.Branch),
		Progress:      nil,
	}

	repo, err := git.PlainCloneContext(ctx, g.config.LocalPath, false, cloneOpts)
	if err != nil {
		return fmt.Errorf("clone failed: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	g.repo = repo
	g.worktree = worktree

	if err := g.updateCurrentCommit(); err != nil {
		return fmt.Errorf("failed to get current commit: %w", err)
	}

	g.logger.Info("clone completed", "commit", g.currentCommit)
	return nil
}

// Pull fetches and merges changes from the remote, reporting whether the
// catalog changed
func (g *Git) Pull(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.repo == nil {
		return false, errors.New("repository not initialized")
	}

	oldCommit := g.currentCommit

	auth, err := g.getAuth(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get auth: %w", err)
	}

	err = g.worktree.PullContext(ctx, &git.PullOptions{
		RemoteName: "origin",
		Auth:       auth,
		Force:      true,
	})

	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pull failed: %w", err)
	}

	if err := g.updateCurrentCommit(); err != nil {
		return false, fmt.Errorf("failed to update commit: %w", err)
	}

	changed := oldCommit != g.currentCommit
	if changed {
		g.logger.Info("catalog repository updated",
			"old_commit", oldCommit,
			"new_commit", g.currentCommit,
		)
	}

	return changed, nil
}

// PullWithRetry attempts to pull with exponential backoff
func (g *Git) PullWithRetry(ctx context.Context, maxRetries int) (bool, error) {
	var lastErr error
	backoff := 1 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		changed, err := g.Pull(ctx)
		if err == nil {
			return changed, nil
		}

		lastErr = err
		g.logger.Warn("pull attempt failed",
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"error", err,
			"next_backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		}
	}

	return false, fmt.Errorf("pull failed after %d retries: %w", maxRetries, lastErr)
}

// ReadFile reads a file from the checked-out worktree
func (g *Git) ReadFile(path string) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.repo == nil {
		return nil, errors.New("repository not initialized")
	}

	return os.ReadFile(filepath.Join(g.config.LocalPath, path))
}

// FileExists checks if a file exists in the checked-out worktree
func (g *Git) FileExists(path string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, err := os.Stat(filepath.Join(g.config.LocalPath, path))
	return err == nil
}

// ListFiles returns the file names directly inside dir
func (g *Git) ListFiles(dir string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.repo == nil {
		return nil, errors.New("repository not initialized")
	}

	entries, err := os.ReadDir(filepath.Join(g.config.LocalPath, dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}

// WalkFiles walks every file at HEAD under dir
func (g *Git) WalkFiles(dir string, fn func(path string, content []byte) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.repo == nil {
		return errors.New("repository not initialized")
	}

	ref, err := g.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := g.repo.CommitObject(ref.Hash())
	if err != nil {
		return fmt.Errorf("failed to get commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("failed to get tree: %w", err)
	}

	return tree.Files().ForEach(func(f *object.File) error {
		if dir != "" && !strings.HasPrefix(f.Name, dir+"/") {
			return nil
		}

		reader, err := f.Reader()
		if err != nil {
			return err
		}
		defer reader.Close()

		content, err := io.ReadAll(reader)
		if err != nil {
			return err
		}

		return fn(f.Name, content)
	})
}

// Commit returns the current HEAD commit SHA
func (g *Git) Commit() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentCommit
}

// Location returns the configured catalog URL
func (g *Git) Location() string {
	return g.config.Location
}

// Branch returns the configured branch
func (g *Git) Branch() string {
	return g.config.Branch
}

// LocalPath returns the directory holding the checked-out worktree
func (g *Git) LocalPath() string {
	return g.config.LocalPath
}

func (g *Git) getAuth(ctx context.Context) (*http.BasicAuth, error) {
	// Public catalog repositories need no credentials
	if g.config.Auth == nil {
		return nil, nil
	}

	token, err := g.config.Auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	return &http.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}, nil
}

func (g *Git) updateCurrentCommit() error {
	ref, err := g.repo.Head()
	if err != nil {
		return err
	}
	g.currentCommit = ref.Hash().String()
	return nil
}
