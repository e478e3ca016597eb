package errors

import (
	"fmt"
	"strings"
)

// Error kinds raised by the pipeline. Match them with errors.Is.
var (
	ErrNotFound           = New("not found")
	ErrConversionFailure  = New("conversion failed")
	ErrInvalidInput       = New("invalid input")
	ErrProviderFailure    = New("provider failure")
	ErrPersistenceFailure = New("persistence failure")
)

// Configuration errors
var (
	ErrMissingAPIKey = New("API key is required")
	ErrInvalidAPIKey = New("invalid API key format")
	ErrInvalidConfig = New("invalid configuration")
)

// Error represents a standardized error
type Error struct {
	message string
	kind    *Error
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Kind creates an error of the given kind. cause may be nil.
func Kind(kind *Error, cause error, format string, args ...interface{}) error {
	return &Error{
		message: fmt.Sprintf(format, args...),
		kind:    kind,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.message
	if e.kind != nil {
		msg = e.kind.message + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.kind != nil && e.kind.message == t.message {
		return true
	}
	return e.message == t.message
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Kind(ErrInvalidInput, nil, "%s is required", field)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier string) error {
	return Kind(ErrNotFound, nil, "%s %s", itemType, identifier)
}

// Conversion returns a conversion failure carrying the tool's stderr.
func Conversion(tool string, cause error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return Kind(ErrConversionFailure, cause, "%s", tool)
	}
	return Kind(ErrConversionFailure, cause, "%s: %s", tool, stderr)
}

// Persistence wraps a database error.
func Persistence(cause error, operation string) error {
	if cause == nil {
		return nil
	}
	return Kind(ErrPersistenceFailure, cause, "%s", operation)
}
