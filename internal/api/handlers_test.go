package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Endogen/web2api-recipes/internal/catalog"
	"github.com/Endogen/web2api-recipes/internal/domain"
	"github.com/Endogen/web2api-recipes/internal/source"
)

func newTestRouter(t *testing.T, env map[string]string) http.Handler {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"catalog.yaml": `recipes:
  - slug: wiki
    name: Wiki
    version: 1.0.0
    description: Article search
    path: recipes/wiki
  - slug: birdfeed
    name: Birdfeed
    version: 0.2.0
    path: recipes/birdfeed
`,
		"recipes/wiki/recipe.yaml": `slug: wiki
name: Wiki
version: 1.0.0
endpoints:
  - name: search
`,
		"recipes/birdfeed/recipe.yaml": `slug: birdfeed
name: Birdfeed
version: 0.2.0
endpoints:
  - name: posts
env:
  - name: FEED_AUTH_TOKEN
    required: true
  - name: FEED_CSRF
    required: true
`,
		"recipes/birdfeed/plugin.yaml": `name: session-refresh
version: 0.1.0
`,
	}
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	src, err := source.NewDir(root)
	require.NoError(t, err)

	svc, err := catalog.New(catalog.Config{Source: src})
	require.NoError(t, err)
	require.NoError(t, svc.LoadIndex())

	return NewRouter(Config{
		Catalog: svc,
		Env: func(name string) string {
			return env[name]
		},
	})
}

func TestListRecipes(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.RecipeListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, 2, resp.Metadata.Count)
	assert.Equal(t, "wiki", resp.Recipes[0].Recipe.Slug)
	assert.Equal(t, "birdfeed", resp.Recipes[1].Recipe.Slug)
	assert.Empty(t, resp.Metadata.NextCursor)
}

func TestListRecipesPagination(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var first domain.RecipeListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Equal(t, 1, first.Metadata.Count)
	assert.Equal(t, "wiki", first.Recipes[0].Recipe.Slug)
	require.Equal(t, "wiki", first.Metadata.NextCursor)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes?limit=1&cursor=wiki", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var second domain.RecipeListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Equal(t, 1, second.Metadata.Count)
	assert.Equal(t, "birdfeed", second.Recipes[0].Recipe.Slug)
	assert.Empty(t, second.Metadata.NextCursor)
}

func TestGetRecipe(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/birdfeed", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.RecipeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "birdfeed", resp.Recipe.Slug)
	assert.Len(t, resp.Recipe.Env, 2)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, "recipes/birdfeed", resp.Entry.Path)
}

func TestGetRecipeNotFound(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/ghost", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Not Found", resp.Title)
	assert.Contains(t, resp.Detail, "ghost")
}

func TestDoctorEndpoint(t *testing.T) {
	t.Run("not ready", func(t *testing.T) {
		router := newTestRouter(t, map[string]string{"FEED_AUTH_TOKEN": "tok"})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/birdfeed/doctor", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var report domain.DoctorReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.False(t, report.Ready)
		assert.Equal(t, []string{"FEED_CSRF"}, report.Missing)
	})

	t.Run("ready", func(t *testing.T) {
		router := newTestRouter(t, map[string]string{
			"FEED_AUTH_TOKEN": "tok",
			"FEED_CSRF":       "csrf",
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/birdfeed/doctor", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var report domain.DoctorReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.True(t, report.Ready)
		assert.Empty(t, report.Missing)
	})

	t.Run("unknown slug", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/ghost/doctor", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetPlugin(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/birdfeed/plugin", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var plugin domain.PluginDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plugin))
	assert.Equal(t, "session-refresh", plugin.Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/wiki/plugin", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndPing(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health domain.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "valid", health.CatalogStatus)
	assert.Equal(t, 2, health.RecipeCount)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pong": true}`, rec.Body.String())
}

func TestWriteEndpointsNotImplemented(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/recipes", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/recipes/wiki", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
