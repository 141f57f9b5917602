package catalog

import (
	"github.com/Endogen/web2api-recipes/internal/domain"
)

// EnvLookup resolves an environment variable name to its value.
// An empty string means the variable is absent or set to nothing;
// either way the recipe treats it as missing.
type EnvLookup func(name string) string

// Readiness computes a doctor report for a recipe against the given
// environment. The result is a pure function of the descriptor and the
// lookup: it is recomputed on every call and never cached.
func Readiness(recipe *domain.Recipe, lookup EnvLookup) *domain.DoctorReport {
	var missing []string
	for _, name := range recipe.RequiredEnv() {
		if lookup(name) == "" {
			missing = append(missing, name)
		}
	}

	return &domain.DoctorReport{
		Slug:    recipe.Slug,
		Ready:   len(missing) == 0,
		Missing: missing,
	}
}

// Doctor loads the recipe for slug and computes its readiness against the
// given environment lookup
func (s *Service) Doctor(slug string, lookup EnvLookup) (*domain.DoctorReport, error) {
	recipe, err := s.Load(slug)
	if err != nil {
		return nil, err
	}
	return Readiness(recipe, lookup), nil
}
