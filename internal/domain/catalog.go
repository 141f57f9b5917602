package domain

// Catalog represents the catalog.yaml index at the root of a recipe source
type Catalog struct {
	Version   string         `json:"version" yaml:"version"`
	UpdatedAt string         `json:"updated_at" yaml:"updated_at"`
	Recipes   []CatalogEntry `json:"recipes" yaml:"recipes"`
}

// CatalogEntry is a single installable recipe in the index. Slug is the
// unique key; the order of entries in catalog.yaml is the display order.
type CatalogEntry struct {
	Slug        string `json:"slug" yaml:"slug"`
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Path        string `json:"path" yaml:"path"`
}
