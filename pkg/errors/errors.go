// Package errors provides structured error types for livetiles.
//
// Every structural failure raised by the layout engine, the state mirror,
// the stores and the HTTP service carries a machine-readable [Code] so that
// the CLI and the API can react to it without string matching:
//   - DUPLICATE_ID / UNKNOWN_ID: caller misuse of tile and group identifiers
//   - INVALID_*: configuration, input and document validation failures
//   - NOT_FOUND / FILE_NOT_FOUND: missing persisted documents
//   - STORE_UNAVAILABLE / INTERNAL_ERROR: infrastructure failures
//
// Geometric failures (a placement that conflict resolution cannot satisfy)
// are not errors: the engine reports them as a boolean and rolls back.
// [ErrCodeUnresolvable] exists only so surfaces can describe that outcome.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateID, "tile %q already exists", id)
//	if errors.Is(err, errors.ErrCodeDuplicateID) {
//	    // Handle misuse
//	}
//
//	// Wrap transport errors
//	err := errors.Wrap(errors.ErrCodeStoreUnavailable, origErr, "redis get %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Identity errors
	ErrCodeDuplicateID Code = "DUPLICATE_ID"
	ErrCodeUnknownID   Code = "UNKNOWN_ID"

	// Configuration and input validation errors
	ErrCodeInvalidConfig Code = "INVALID_CONFIGURATION"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidState  Code = "INVALID_STATE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Geometric outcome, reported as a boolean by the engine
	ErrCodeUnresolvable Code = "UNRESOLVABLE_CONFLICT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Infrastructure errors
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	ErrCodeInternal         Code = "INTERNAL_ERROR"
	ErrCodeUnsupported      Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsStructural reports whether err signals caller misuse (unknown or
// duplicate identifiers, invalid input or configuration) rather than an
// infrastructure failure.
func IsStructural(err error) bool {
	switch GetCode(err) {
	case ErrCodeDuplicateID, ErrCodeUnknownID, ErrCodeInvalidConfig,
		ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidState:
		return true
	}
	return false
}
