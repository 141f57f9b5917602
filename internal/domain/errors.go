package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a slug that is absent from the catalog index
var ErrNotFound = errors.New("recipe not found")

// NotFound wraps ErrNotFound with the offending slug
func NotFound(slug string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, slug)
}

// ParseError indicates a malformed catalog index or recipe descriptor
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
