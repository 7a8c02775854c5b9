// Package errors provides structured error types for propgraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the graph model, traversals and computations
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes group failures by kind rather than by concrete type:
//   - INVALID_*, NULL_OR_EMPTY, RESERVED_KEY, UNSUPPORTED_TYPE: argument validation
//   - ELEMENT_REMOVED, TRANSACTION_*: state errors
//   - ID_CONFLICT: identity collisions
//   - NOT_COMPUTE_KEY, ADJACENT_NOT_WRITABLE, READ_ONLY_COMPUTE_KEY: vertex program writes
//   - COMPUTATION_FAILED: a vertex program run was aborted (see [Error.Cause])
//   - UNSUPPORTED: the graph does not declare the required feature
//
// # Usage
//
//	err := errors.New(errors.ErrCodeReservedKey, "property key %q is reserved", key)
//	if errors.Is(err, errors.ErrCodeReservedKey) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeComputationFailed, cause, "vertex program %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Argument errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidArgument   Code = "INVALID_ARGUMENT"
	ErrCodeNullOrEmpty       Code = "NULL_OR_EMPTY"
	ErrCodeReservedKey       Code = "RESERVED_KEY"
	ErrCodeUnsupportedType   Code = "UNSUPPORTED_TYPE"
	ErrCodeInvalidDirection  Code = "INVALID_DIRECTION"
	ErrCodeInvalidComparison Code = "INVALID_COMPARISON"

	// Lookup errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodePropertyNotFound Code = "PROPERTY_NOT_FOUND"

	// State errors
	ErrCodeElementRemoved    Code = "ELEMENT_REMOVED"
	ErrCodeTransactionOpen   Code = "TRANSACTION_OPEN"
	ErrCodeTransactionClosed Code = "TRANSACTION_CLOSED"

	// Identity errors
	ErrCodeIDConflict Code = "ID_CONFLICT"

	// Compute errors
	ErrCodeNotComputeKey       Code = "NOT_COMPUTE_KEY"
	ErrCodeAdjacentNotWritable Code = "ADJACENT_NOT_WRITABLE"
	ErrCodeReadOnlyComputeKey  Code = "READ_ONLY_COMPUTE_KEY"
	ErrCodeComputationFailed   Code = "COMPUTATION_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// Is reports whether target is an *Error with the same code and message.
// Two independently constructed errors describing the same condition
// (for example removing the same element twice) therefore match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
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
// Only the outermost *Error is consulted, so a COMPUTATION_FAILED error is
// not reported as its cause's code; use [Cause] for that.
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

// Cause returns the innermost error attached to err through *Error causes.
// For errors that are not *Error values, err itself is returned.
func Cause(err error) error {
	for {
		e, ok := err.(*Error)
		if !ok || e.Cause == nil {
			return err
		}
		err = e.Cause
	}
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
