package lambda

import (
	"errors"
	"fmt"
)

// Common invocation errors
var (
	// ErrMissingField is returned when the event lacks a key the active convention requires
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownMethod is returned when no client operation matches a method name
	ErrUnknownMethod = errors.New("unknown method")

	// ErrUnknownConvention is returned for convention names that are not registered
	ErrUnknownConvention = errors.New("unknown convention")

	// ErrClientClosed is returned when a released client is used again
	ErrClientClosed = errors.New("client is closed")

	// ErrTooManyRedirects is returned when a redirect chain exceeds the client limit
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrNotPlatformInvocation is returned when an event reaches the platform entry point without platform metadata
	ErrNotPlatformInvocation = errors.New("not a platform invocation")
)

// InvocationError represents a failed invocation with additional context
type InvocationError struct {
	Op    string // Step that failed (e.g., "extract", "dispatch")
	Field string // Event field involved, if any
	Err   error  // Underlying error
}

func (e *InvocationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invocation %s failed for field '%s': %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("invocation %s failed: %v", e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// missingField creates an InvocationError for an absent event key
func missingField(field string) *InvocationError {
	return &InvocationError{Op: "extract", Field: field, Err: ErrMissingField}
}

// IsMissingField returns true if the error reports an absent event key
func IsMissingField(err error) bool {
	return errors.Is(err, ErrMissingField)
}

// IsUnknownMethod returns true if the error reports an unresolvable method name
func IsUnknownMethod(err error) bool {
	return errors.Is(err, ErrUnknownMethod)
}
