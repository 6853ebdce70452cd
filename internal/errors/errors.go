package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/tally/internal/logger"
)

var (
	// ErrCancelled is returned when the user declines a destructive action.
	ErrCancelled = stderrors.New("action cancelled")
	// ErrNotFound is returned when an id is not held by the local store.
	ErrNotFound = stderrors.New("not found")
)

// ValidationError is a local input failure detected before any boundary call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation builds a ValidationError.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// BoundaryError is a non-2xx answer from the API.
type BoundaryError struct {
	Status  int
	Message string
}

func (e *BoundaryError) Error() string {
	return e.Message
}

// TransportError is a network failure or an unreadable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// IsBoundary reports whether err is (or wraps) a BoundaryError.
func IsBoundary(err error) bool {
	var be *BoundaryError
	return stderrors.As(err, &be)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return stderrors.As(err, &te)
}

// UserMessage maps an error to the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve.Message
	}
	var be *BoundaryError
	if stderrors.As(err, &be) {
		return be.Message
	}
	if IsTransport(err) {
		return "could not reach the server, please try again"
	}
	return err.Error()
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", UserMessage(err))
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
