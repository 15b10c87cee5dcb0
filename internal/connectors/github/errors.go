package github

import (
	"errors"
	"fmt"
	"time"
)

// GitHub-specific errors.
var (
	// ErrInvalidRef indicates a URL or ID that is not an issue or pull request.
	ErrInvalidRef = errors.New("github: not an issue or pull request reference")

	// ErrNotLoggedIn indicates the page snapshot has no signed-in user.
	ErrNotLoggedIn = errors.New("github: page has no signed-in user")

	// ErrNoCSRFToken indicates the page snapshot has no csrf-token meta tag.
	ErrNoCSRFToken = errors.New("github: CSRF token not found")
)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return "github: rate limit exceeded"
	}
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return false
}
