package domain

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// SlugRegex validates recipe slugs: lowercase kebab-case, no leading or
// trailing separator
var SlugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// SemVerRegex validates semantic version strings
var SemVerRegex = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// NewValidator creates a configured validator instance
func NewValidator() *validator.Validate {
	v := validator.New()

	// Register custom slug validation
	_ = v.RegisterValidation("recipe_slug", func(fl validator.FieldLevel) bool {
		return SlugRegex.MatchString(fl.Field().String())
	})

	// Register custom semver validation
	_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
		return SemVerRegex.MatchString(fl.Field().String())
	})

	return v
}

// ValidateRecipe validates a Recipe descriptor
func ValidateRecipe(recipe *Recipe) error {
	v := NewValidator()
	return v.Struct(recipe)
}

// ValidatePlugin validates a PluginDescriptor
func ValidatePlugin(plugin *PluginDescriptor) error {
	v := NewValidator()
	return v.Struct(plugin)
}
