package plex

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid plex configuration")
	// ErrInvalidToken indicates authentication failure
	ErrInvalidToken = errors.New("invalid plex token")
)

// APIError represents a Plex API error carrying the HTTP status and
// response body.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("plex API error %d: %s", e.StatusCode, e.Body)
}
