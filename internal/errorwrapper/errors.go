package errorwrapper

import (
	"errors"
	"fmt"
)

// Common error types used across the tracker
var (
	// ErrTransportFailure indicates the collector rejected or never received a batch
	ErrTransportFailure = errors.New("transport failure")
	// ErrStorageUnavailable indicates the backing store rejected a read or write
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrDecodeFailure indicates a parameter value could not be fully decoded
	ErrDecodeFailure = errors.New("decode failure")
	// ErrExtractionFailure indicates no source produced usable commerce data
	ErrExtractionFailure = errors.New("extraction failure")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NetworkError represents a failed exchange with the collector endpoint
type NetworkError struct {
	URL        string
	StatusCode int
	Reason     string
	Wrapped    error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("network error for URL '%s': status %d: %s", e.URL, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("network error for URL '%s': %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// NewNetworkError creates a new network error
func NewNetworkError(url string, statusCode int, reason string, wrapped error) *NetworkError {
	return &NetworkError{
		URL:        url,
		StatusCode: statusCode,
		Reason:     reason,
		Wrapped:    wrapped,
	}
}
