package domain

// Recipe represents a recipe.yaml descriptor inside a recipe bundle
type Recipe struct {
	Slug        string     `json:"slug" yaml:"slug" validate:"required,recipe_slug"`
	Name        string     `json:"name" yaml:"name" validate:"required,min=1,max=100"`
	Version     string     `json:"version" yaml:"version" validate:"required,semver"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" validate:"max=200"`
	BaseURL     string     `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" validate:"omitempty,url"`
	Endpoints   []Endpoint `json:"endpoints" yaml:"endpoints" validate:"required,min=1,dive"`
	Env         []EnvVar   `json:"env,omitempty" yaml:"env,omitempty" validate:"dive"`
	Scraper     string     `json:"scraper,omitempty" yaml:"scraper,omitempty"`
}

// Endpoint is one named data endpoint a recipe exposes through the runtime
type Endpoint struct {
	Name        string  `json:"name" yaml:"name" validate:"required"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []Param `json:"params,omitempty" yaml:"params,omitempty" validate:"dive"`
}

// Param is a query parameter accepted by an endpoint
type Param struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// EnvVar declares an environment variable a recipe reads at runtime
type EnvVar struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Secret      bool   `json:"secret,omitempty" yaml:"secret,omitempty"`
}

// RequiredEnv returns the names of all required environment variables,
// in declaration order
func (r *Recipe) RequiredEnv() []string {
	var names []string
	for _, v := range r.Env {
		if v.Required {
			names = append(names, v.Name)
		}
	}
	return names
}

// Endpoint returns the endpoint with the given name, or nil
func (r *Recipe) Endpoint(name string) *Endpoint {
	for i := range r.Endpoints {
		if r.Endpoints[i].Name == name {
			return &r.Endpoints[i]
		}
	}
	return nil
}

// PluginDescriptor represents an optional plugin.yaml in a recipe bundle.
// Settings are opaque to the catalog and passed through to the runtime.
type PluginDescriptor struct {
	Name       string         `json:"name" yaml:"name" validate:"required"`
	Version    string         `json:"version,omitempty" yaml:"version,omitempty" validate:"omitempty,semver"`
	Entrypoint string         `json:"entrypoint,omitempty" yaml:"entrypoint,omitempty"`
	Settings   map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// DoctorReport is the result of a readiness check for one recipe.
// Ready is true iff every required environment variable is set to a
// non-empty value in the consulted environment.
type DoctorReport struct {
	Slug    string   `json:"slug" yaml:"slug"`
	Ready   bool     `json:"ready" yaml:"ready"`
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}
