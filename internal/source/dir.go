package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir serves a catalog from a local directory, typically a checkout of
// the recipe repository itself
type Dir struct {
	root string
}

// NewDir creates a directory-backed source
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog root: %w", err)
	}
	return &Dir{root: abs}, nil
}

// ReadFile reads a file relative to the catalog root
func (d *Dir) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.root, path))
}

// FileExists reports whether a file exists relative to the catalog root
func (d *Dir) FileExists(path string) bool {
	_, err := os.Stat(filepath.Join(d.root, path))
	return err == nil
}

// ListFiles returns the file names directly inside dir
func (d *Dir) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(d.root, dir))
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

// WalkFiles visits every file under dir with its content
func (d *Dir) WalkFiles(dir string, fn func(path string, content []byte) error) error {
	start := filepath.Join(d.root, dir)
	return filepath.WalkDir(start, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), content)
	})
}

// Commit returns "" since directory sources have no commit tracking
func (d *Dir) Commit() string {
	return ""
}

// Location returns the catalog root directory
func (d *Dir) Location() string {
	return d.root
}
