package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Endogen/web2api-recipes/internal/domain"
	"github.com/Endogen/web2api-recipes/internal/source"
)

const testIndex = `version: "1"
updated_at: "2026-08-20T00:00:00Z"
recipes:
  - slug: wiki
    name: Wiki
    version: 1.0.0
    description: Article search
    path: recipes/wiki
  - slug: birdfeed
    name: Birdfeed
    version: 0.2.0
    description: Posts of an account
    path: recipes/birdfeed
`

const wikiRecipe = `slug: wiki
name: Wiki
version: 1.0.0
endpoints:
  - name: search
    params:
      - name: query
        required: true
`

const birdfeedRecipe = `slug: birdfeed
name: Birdfeed
version: 0.2.0
endpoints:
  - name: posts
env:
  - name: FEED_AUTH_TOKEN
    description: Session token
    required: true
    secret: true
  - name: FEED_CSRF
    description: CSRF token
    required: true
    secret: true
  - name: FEED_LOCALE
    description: Optional locale override
scraper: scraper.py
`

const birdfeedPlugin = `name: session-refresh
version: 0.1.0
settings:
  interval: 15m
`

func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, IndexFile, testIndex)
	writeFile(t, root, "recipes/wiki/recipe.yaml", wikiRecipe)
	writeFile(t, root, "recipes/birdfeed/recipe.yaml", birdfeedRecipe)
	writeFile(t, root, "recipes/birdfeed/plugin.yaml", birdfeedPlugin)

	src, err := source.NewDir(root)
	require.NoError(t, err)

	svc, err := New(Config{Source: src})
	require.NoError(t, err)
	require.NoError(t, svc.LoadIndex())

	return svc
}

func TestLoadIndex(t *testing.T) {
	svc := newTestService(t)

	assert.Equal(t, 2, svc.RecipeCount())
	assert.Equal(t, "valid", svc.IndexStatus())
	assert.False(t, svc.LastSyncAt().IsZero())

	entries, err := svc.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Index file order is display order
	assert.Equal(t, "wiki", entries[0].Slug)
	assert.Equal(t, "birdfeed", entries[1].Slug)
}

func TestLoadIndexDuplicateSlug(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, IndexFile, `recipes:
  - slug: wiki
    name: Wiki
    path: recipes/wiki
  - slug: wiki
    name: Wiki Again
    path: recipes/wiki2
`)

	src, err := source.NewDir(root)
	require.NoError(t, err)
	svc, err := New(Config{Source: src})
	require.NoError(t, err)

	err = svc.LoadIndex()
	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "duplicate slug")
}

func TestLoadIndexMalformed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, IndexFile, "recipes: [broken")

	src, err := source.NewDir(root)
	require.NoError(t, err)
	svc, err := New(Config{Source: src})
	require.NoError(t, err)

	var parseErr *domain.ParseError
	assert.ErrorAs(t, svc.LoadIndex(), &parseErr)
}

func TestLookup(t *testing.T) {
	svc := newTestService(t)

	entry, err := svc.Lookup("birdfeed")
	require.NoError(t, err)
	assert.Equal(t, "recipes/birdfeed", entry.Path)

	_, err = svc.Lookup("ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadAllIndexedSlugs(t *testing.T) {
	svc := newTestService(t)

	entries, err := svc.Entries()
	require.NoError(t, err)

	// Every indexed slug loads and the descriptor slug matches the entry
	for _, entry := range entries {
		recipe, err := svc.Load(entry.Slug)
		require.NoError(t, err, "slug %s", entry.Slug)
		assert.Equal(t, entry.Slug, recipe.Slug)
	}
}

func TestLoadUnknownSlug(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Load("ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadSlugMismatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, IndexFile, `recipes:
  - slug: wiki
    name: Wiki
    path: recipes/wiki
`)
	// Descriptor claims a different slug than the index entry
	writeFile(t, root, "recipes/wiki/recipe.yaml", `slug: other
name: Other
version: 1.0.0
endpoints:
  - name: search
`)

	src, err := source.NewDir(root)
	require.NoError(t, err)
	svc, err := New(Config{Source: src})
	require.NoError(t, err)
	require.NoError(t, svc.LoadIndex())

	_, err = svc.Load("wiki")
	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "does not match")
}

func TestLoadMalformedDescriptor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, IndexFile, `recipes:
  - slug: wiki
    name: Wiki
    path: recipes/wiki
`)
	writeFile(t, root, "recipes/wiki/recipe.yaml", "slug: [broken")

	src, err := source.NewDir(root)
	require.NoError(t, err)
	svc, err := New(Config{Source: src})
	require.NoError(t, err)
	require.NoError(t, svc.LoadIndex())

	_, err = svc.Load("wiki")
	var parseErr *domain.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestLoadCaching(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Load("wiki")
	require.NoError(t, err)

	second, err := svc.Load("wiki")
	require.NoError(t, err)
	assert.Same(t, first, second, "second load should come from cache")

	stats := svc.CacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.Greater(t, stats.HitRate, 0.0)

	// Refresh purges the descriptor cache
	require.NoError(t, svc.Refresh())
	assert.Equal(t, 0, svc.CacheStats().Size)
}

func TestPlugin(t *testing.T) {
	svc := newTestService(t)

	plugin, err := svc.Plugin("birdfeed")
	require.NoError(t, err)
	require.NotNil(t, plugin)
	assert.Equal(t, "session-refresh", plugin.Name)
	assert.Equal(t, "15m", plugin.Settings["interval"])

	// Bundles without a plugin descriptor yield nil, not an error
	plugin, err = svc.Plugin("wiki")
	require.NoError(t, err)
	assert.Nil(t, plugin)

	_, err = svc.Plugin("ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearch(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.Search("article")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "wiki", results[0].Slug)

	results, err = svc.Search("nope")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestShippedCatalog(t *testing.T) {
	// The repository root is itself a catalog source
	src, err := source.NewDir(filepath.Join("..", ".."))
	require.NoError(t, err)

	svc, err := New(Config{Source: src})
	require.NoError(t, err)
	require.NoError(t, svc.LoadIndex())

	entries, err := svc.Entries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		recipe, err := svc.Load(entry.Slug)
		require.NoError(t, err, "bundle %s must load and validate", entry.Slug)
		assert.Equal(t, entry.Slug, recipe.Slug)
		assert.NotEmpty(t, recipe.Endpoints, "bundle %s declares no endpoints", entry.Slug)

		// Optional plugin descriptors must parse when present
		_, err = svc.Plugin(entry.Slug)
		require.NoError(t, err, "bundle %s plugin must parse", entry.Slug)
	}
}

func TestNewRequiresSource(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
