package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDir(t *testing.T) (*Dir, string) {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "recipes", "wiki"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "catalog.yaml"), []byte("recipes: []\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "recipes", "wiki", "recipe.yaml"), []byte("slug: wiki\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "recipes", "wiki", "scraper.py"), []byte("#!/usr/bin/env python3\n"), 0755))

	dir, err := NewDir(root)
	require.NoError(t, err)
	return dir, root
}

func TestDirReadFile(t *testing.T) {
	dir, _ := newTestDir(t)

	content, err := dir.ReadFile("recipes/wiki/recipe.yaml")
	require.NoError(t, err)
	assert.Equal(t, "slug: wiki\n", string(content))

	_, err = dir.ReadFile("recipes/ghost/recipe.yaml")
	assert.Error(t, err)
}

func TestDirFileExists(t *testing.T) {
	dir, _ := newTestDir(t)

	assert.True(t, dir.FileExists("catalog.yaml"))
	assert.False(t, dir.FileExists("recipes/wiki/plugin.yaml"))
}

func TestDirListFiles(t *testing.T) {
	dir, _ := newTestDir(t)

	files, err := dir.ListFiles("recipes/wiki")
	require.NoError(t, err)
	sort.Strings(files)
	assert.Equal(t, []string{"recipe.yaml", "scraper.py"}, files)

	_, err = dir.ListFiles("recipes/ghost")
	assert.Error(t, err)
}

func TestDirWalkFiles(t *testing.T) {
	dir, _ := newTestDir(t)

	var seen []string
	err := dir.WalkFiles("recipes", func(path string, content []byte) error {
		seen = append(seen, path)
		assert.NotEmpty(t, content)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(seen)
	assert.Equal(t, []string{"recipes/wiki/recipe.yaml", "recipes/wiki/scraper.py"}, seen)
}

func TestDirCommitAndLocation(t *testing.T) {
	dir, root := newTestDir(t)

	assert.Empty(t, dir.Commit())

	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, abs, dir.Location())
}

func TestOpenDispatch(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		_, root := newTestDir(t)
		src, err := Open(Config{Location: root})
		require.NoError(t, err)
		assert.IsType(t, &Dir{}, src)
	})

	t.Run("git url", func(t *testing.T) {
		src, err := Open(Config{
			Location:  "https://github.com/example/recipes.git",
			LocalPath: t.TempDir(),
		})
		require.NoError(t, err)
		assert.IsType(t, &Git{}, src)
	})

	t.Run("empty location", func(t *testing.T) {
		_, err := Open(Config{})
		assert.Error(t, err)
	})

	t.Run("neither directory nor git url", func(t *testing.T) {
		_, err := Open(Config{Location: "/does/not/exist"})
		assert.Error(t, err)
	})
}

func TestGitRequiresClone(t *testing.T) {
	git, err := NewGit(Config{
		Location:  "https://github.com/example/recipes.git",
		LocalPath: t.TempDir(),
	})
	require.NoError(t, err)

	_, err = git.ReadFile("catalog.yaml")
	assert.Error(t, err, "reads before Clone must fail")

	_, err = git.Pull(context.Background())
	assert.Error(t, err)

	assert.Equal(t, "main", git.Branch(), "branch defaults to main")
	assert.Empty(t, git.Commit())
}
