package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrTimeout indicates a fetch exceeded its deadline
	ErrTimeout = errors.New("timeout")

	// ErrInvalidURL indicates an invalid source URL was provided
	ErrInvalidURL = errors.New("invalid URL")

	// ErrEmptyInput indicates there were no manifests to merge
	ErrEmptyInput = errors.New("no manifests to merge")

	// ErrWriteFailed indicates writing output failed
	ErrWriteFailed = errors.New("write failed")
)

// NetworkError represents a transport or HTTP failure while retrieving a source
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("network error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(url string, statusCode int, err error) *NetworkError {
	return &NetworkError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ParseError indicates retrieved content is not a JSON object
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(source string, err error) *ParseError {
	return &ParseError{
		Source: source,
		Err:    err,
	}
}

// MalformedEntryError reports an apps/news entry that cannot be merged.
// Index is -1 when the field itself is malformed rather than one of its entries.
type MalformedEntryError struct {
	Source string
	Field  string
	Index  int
	Reason string
}

func (e *MalformedEntryError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed %q in %s: %s", e.Field, e.Source, e.Reason)
	}
	return fmt.Sprintf("malformed %s[%d] in %s: %s", e.Field, e.Index, e.Source, e.Reason)
}

// NewMalformedEntryError creates a new MalformedEntryError
func NewMalformedEntryError(source, field string, index int, reason string) *MalformedEntryError {
	return &MalformedEntryError{
		Source: source,
		Field:  field,
		Index:  index,
		Reason: reason,
	}
}

// IsNetworkError reports whether err is a NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsParseError reports whether err is a ParseError
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
