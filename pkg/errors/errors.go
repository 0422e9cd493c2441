package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream indicates a dependency (CMS, email provider) failed or was unreachable
	ErrUpstream = errors.New("upstream unavailable")

	// ErrBuildMissing indicates the built HTML shell is not present on disk
	ErrBuildMissing = errors.New("build output missing")

	// ErrInvalidOutput indicates a generated artifact failed its post-write check
	ErrInvalidOutput = errors.New("invalid output")
)

// UpstreamError describes a failed call to an external HTTP service.
// StatusCode is zero when no response was received.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s request failed: %s", e.Service, e.Message)
	default:
		return fmt.Sprintf("%s request failed", e.Service)
	}
}

// Unwrap lets errors.Is match both ErrUpstream and the transport error.
func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstream, e.Err}
	}
	return []error{ErrUpstream}
}

// UpstreamStatusError creates an upstream error for a non-2xx response
func UpstreamStatusError(service string, statusCode int, message string) error {
	return &UpstreamError{Service: service, StatusCode: statusCode, Message: message}
}

// UpstreamTransportError wraps a network-level failure talking to service
func UpstreamTransportError(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// BuildMissingError reports an unreadable build artifact at path
func BuildMissingError(path string, err error) error {
	return fmt.Errorf("%s: %w: %w", path, ErrBuildMissing, err)
}

// InvalidOutputError reports a generated file that failed validation
func InvalidOutputError(path, reason string) error {
	return fmt.Errorf("%s: %s: %w", path, reason, ErrInvalidOutput)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
