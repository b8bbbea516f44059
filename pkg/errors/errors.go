// Package errors provides structured error types for the stackscroll engine,
// CLI and HTTP server.
//
// Every error carries a machine-readable [Code] so callers can branch on the
// failure category without string matching:
//
//   - INVALID_*: configuration or input validation failures
//   - INCONSISTENT_GEOMETRY: an item measured differently than the frozen geometry
//   - INDEX_OUT_OF_RANGE: an item index outside the list
//   - NOT_FOUND / SESSION_NOT_FOUND: unknown resources
//   - INTERNAL_ERROR: unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "stack step must be positive, got %d", step)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "acquire item %d", idx)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidColor  Code = "INVALID_COLOR"

	// Layout errors
	ErrCodeInconsistentGeometry Code = "INCONSISTENT_GEOMETRY"
	ErrCodeIndexOutOfRange      Code = "INDEX_OUT_OF_RANGE"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Capacity errors
	ErrCodeLimitExceeded Code = "LIMIT_EXCEEDED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap creates an Error whose cause is err.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// coder is implemented by typed errors that know their category without
// being wrapped in an *Error, such as [GeometryError].
type coder interface {
	Code() Code
}

// GetCode returns the code of the first coded error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	for ; err != nil; err = errors.Unwrap(err) {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
	}
	return ""
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// UserMessage returns the message of the first *Error in err's chain
// without its code prefix, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ExitCode maps err to a process exit status: 0 for nil, 2 for rejected
// input or configuration, 1 for everything else.
func ExitCode(err error) int {
	switch GetCode(err) {
	case "":
		if err == nil {
			return 0
		}
		return 1
	case ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeInvalidFormat,
		ErrCodeInvalidColor, ErrCodeIndexOutOfRange, ErrCodeFileNotFound:
		return 2
	}
	return 1
}

// GeometryError describes an item whose measured size differs from the
// geometry frozen on the first layout pass.
type GeometryError struct {
	Index int
	Field string // "width", "height" or a margin name
	Want  int
	Got   int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("item %d: %s = %d, want %d", e.Index, e.Field, e.Got, e.Want)
}

// Code reports INCONSISTENT_GEOMETRY.
func (e *GeometryError) Code() Code { return ErrCodeInconsistentGeometry }

// AsError converts the geometry mismatch into a coded *Error.
func (e *GeometryError) AsError() *Error {
	return Wrap(ErrCodeInconsistentGeometry, e, "items must share one size and margins")
}
