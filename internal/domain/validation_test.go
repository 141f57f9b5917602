package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecipe() *Recipe {
	return &Recipe{
		Slug:        "brave-search",
		Name:        "Brave Search",
		Version:     "1.1.0",
		Description: "Web search results from Brave Search",
		BaseURL:     "https://api.search.brave.com",
		Endpoints: []Endpoint{
			{Name: "search", Params: []Param{{Name: "query", Required: true}}},
		},
		Env: []EnvVar{
			{Name: "BRAVE_SEARCH_API_KEY", Required: true, Secret: true},
		},
		Scraper: "scraper.py",
	}
}

func TestValidateRecipe(t *testing.T) {
	t.Run("valid recipe", func(t *testing.T) {
		require.NoError(t, ValidateRecipe(validRecipe()))
	})

	t.Run("minimal recipe", func(t *testing.T) {
		r := &Recipe{
			Slug:      "wikipedia",
			Name:      "Wikipedia",
			Version:   "1.0.0",
			Endpoints: []Endpoint{{Name: "search"}},
		}
		require.NoError(t, ValidateRecipe(r))
	})

	tests := []struct {
		name   string
		mutate func(*Recipe)
	}{
		{"missing slug", func(r *Recipe) { r.Slug = "" }},
		{"uppercase slug", func(r *Recipe) { r.Slug = "Brave-Search" }},
		{"slug with trailing dash", func(r *Recipe) { r.Slug = "brave-" }},
		{"slug with underscore", func(r *Recipe) { r.Slug = "brave_search" }},
		{"missing name", func(r *Recipe) { r.Name = "" }},
		{"missing version", func(r *Recipe) { r.Version = "" }},
		{"non-semver version", func(r *Recipe) { r.Version = "v1.1" }},
		{"invalid base url", func(r *Recipe) { r.BaseURL = "not a url" }},
		{"no endpoints", func(r *Recipe) { r.Endpoints = nil }},
		{"endpoint without name", func(r *Recipe) { r.Endpoints = []Endpoint{{}} }},
		{"env var without name", func(r *Recipe) { r.Env = []EnvVar{{Description: "x"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(r)
			assert.Error(t, ValidateRecipe(r))
		})
	}
}

func TestValidatePlugin(t *testing.T) {
	require.NoError(t, ValidatePlugin(&PluginDescriptor{
		Name:    "browser-profile",
		Version: "0.3.0",
		Settings: map[string]any{
			"locale": "en",
		},
	}))

	assert.Error(t, ValidatePlugin(&PluginDescriptor{Version: "0.3.0"}), "name is required")
	assert.Error(t, ValidatePlugin(&PluginDescriptor{Name: "p", Version: "latest"}), "version must be semver")
}

func TestRequiredEnv(t *testing.T) {
	r := &Recipe{
		Env: []EnvVar{
			{Name: "BIRD_AUTH_TOKEN", Required: true},
			{Name: "BIRD_CT0", Required: true},
			{Name: "BIRD_TIMEOUT"},
		},
	}
	assert.Equal(t, []string{"BIRD_AUTH_TOKEN", "BIRD_CT0"}, r.RequiredEnv())

	var empty Recipe
	assert.Nil(t, empty.RequiredEnv())
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("not found wraps sentinel", func(t *testing.T) {
		err := NotFound("ghost")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("parse error unwraps", func(t *testing.T) {
		cause := errors.New("yaml: line 3: mapping values are not allowed")
		err := &ParseError{Path: "recipes/x/recipe.yaml", Err: cause}

		var parseErr *ParseError
		assert.True(t, errors.As(error(err), &parseErr))
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "recipes/x/recipe.yaml")
	})
}
