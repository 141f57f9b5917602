package domain

// RecipeResponse wraps a recipe with its index entry for API responses
type RecipeResponse struct {
	Recipe Recipe        `json:"recipe"`
	Entry  *CatalogEntry `json:"entry,omitempty"`
}

// RecipeListResponse represents a paginated list of recipes
type RecipeListResponse struct {
	Recipes  []RecipeResponse `json:"recipes"`
	Metadata ListMetadata     `json:"metadata"`
}

// ListMetadata contains pagination metadata
type ListMetadata struct {
	NextCursor string `json:"nextCursor,omitempty"`
	Count      int    `json:"count"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string      `json:"status"`
	CatalogSource string      `json:"catalog_source"`
	CommitSHA     string      `json:"commit_sha,omitempty"`
	LastSyncAt    string      `json:"last_sync_at"`
	CatalogStatus string      `json:"catalog_status"`
	RecipeCount   int         `json:"recipe_count"`
	CacheStats    *CacheStats `json:"cache_stats,omitempty"`
}

// CacheStats contains cache statistics
type CacheStats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	HitRate  float64 `json:"hit_rate"`
}

// PingResponse represents the ping response
type PingResponse struct {
	Pong bool `json:"pong"`
}

// VersionResponse represents the version info response
type VersionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Status int           `json:"status"`
	Title  string        `json:"title"`
	Detail string        `json:"detail,omitempty"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail provides detailed error information
type ErrorDetail struct {
	Message  string      `json:"message"`
	Location string      `json:"location,omitempty"`
	Value    interface{} `json:"value,omitempty"`
}

// NotImplementedResponse for write endpoints
type NotImplementedResponse struct {
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	SeeAlso string `json:"see_also"`
}
