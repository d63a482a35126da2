package catalog

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the library.
var (
	// ErrSourceUnavailable indicates that a list or detail transport call failed.
	ErrSourceUnavailable = errors.New("catalog source unavailable")

	// ErrItemUnresolved indicates that a single app could not be resolved.
	ErrItemUnresolved = errors.New("catalog item unresolved")

	// ErrNotSuccessful is the cause of an ItemError when the source reported success:false.
	ErrNotSuccessful = errors.New("source reported success=false")

	// ErrMalformedRecord is the cause of an ItemError when a record has an unexpected shape.
	ErrMalformedRecord = errors.New("malformed detail record")

	// ErrSourceRateLimit indicates that the source rate limit was exceeded.
	ErrSourceRateLimit = errors.New("source rate limit exceeded")

	// ErrSourceNotFound indicates that a requested source is not registered.
	ErrSourceNotFound = errors.New("source not found or not registered")

	// ErrGameNotFound indicates that a game was not found.
	ErrGameNotFound = errors.New("game not found")

	// ErrInvalidFilter indicates that a filter specification is invalid.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrInvalidConfig indicates that the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCacheOperation indicates that a cache operation failed.
	ErrCacheOperation = errors.New("cache operation failed")
)

// SourceError is a page-level failure talking to the data source.
type SourceError struct {
	// Source is the name of the data source
	Source string
	// Op is the operation that failed ("list", "details", "heartbeat")
	Op string
	// Details provides additional context
	Details string
	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	msg := fmt.Sprintf("source '%s' unavailable", e.Source)
	if e.Op != "" {
		msg += fmt.Sprintf(" during %s", e.Op)
	}
	if e.Details != "" {
		msg += fmt.Sprintf(": %s", e.Details)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the sentinel and the underlying error.
func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSourceUnavailable}
	}
	return []error{ErrSourceUnavailable, e.Err}
}

// NewSourceError creates a new SourceError.
func NewSourceError(source, op string, err error) *SourceError {
	return &SourceError{
		Source: source,
		Op:     op,
		Err:    err,
	}
}

// ItemError is a per-app failure. It is recovered locally by dropping the app.
type ItemError struct {
	// AppID is the app that could not be resolved
	AppID int
	// Err is the cause (transport error, ErrNotSuccessful, ErrMalformedRecord)
	Err error
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	return fmt.Sprintf("app %d unresolved: %v", e.AppID, e.Err)
}

// Unwrap returns the sentinel and the cause.
func (e *ItemError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrItemUnresolved}
	}
	return []error{ErrItemUnresolved, e.Err}
}

// RateLimitError represents a rate limit error with retry information.
type RateLimitError struct {
	// Source is the name of the data source
	Source string
	// RetryAfter is the number of seconds to wait before retrying
	RetryAfter int
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("rate limit exceeded for source '%s'", e.Source)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %ds)", e.RetryAfter)
	}
	return msg
}

// Unwrap returns the underlying sentinel error.
func (e *RateLimitError) Unwrap() error {
	return ErrSourceRateLimit
}

// GameNotFoundError is returned by GetGameDetails for unresolvable ids.
type GameNotFoundError struct {
	AppID int
}

// Error implements the error interface.
func (e *GameNotFoundError) Error() string {
	return fmt.Sprintf("game not found: %d", e.AppID)
}

// Unwrap returns the underlying sentinel error.
func (e *GameNotFoundError) Unwrap() error {
	return ErrGameNotFound
}

// FilterError represents an invalid filter specification.
type FilterError struct {
	// Field is the filter field with the error
	Field string
	// Details provides additional context
	Details string
}

// Error implements the error interface.
func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter '%s': %s", e.Field, e.Details)
}

// Unwrap returns the underlying sentinel error.
func (e *FilterError) Unwrap() error {
	return ErrInvalidFilter
}

// ConfigError represents a configuration error.
type ConfigError struct {
	// Field is the configuration field with the error
	Field string
	// Details provides additional context
	Details string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for '%s': %s", e.Field, e.Details)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Details)
}

// Unwrap returns the underlying sentinel error.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// CacheError represents a cache operation error.
type CacheError struct {
	// Op is the operation that failed
	Op string
	// Key is the cache key involved, if any
	Key string
	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	msg := fmt.Sprintf("cache %s failed", e.Op)
	if e.Key != "" {
		msg += fmt.Sprintf(" for '%s'", e.Key)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the sentinel and the underlying error.
func (e *CacheError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCacheOperation}
	}
	return []error{ErrCacheOperation, e.Err}
}
