// Package errors provides structured error types for viewsplit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, API and library callers
//   - Machine-readable error codes for programmatic handling
//   - A fatal / reportable classification of splitting failures
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Splitting failures carry one of four domain codes:
//   - FRACTIONAL_DOWNSAMPLING: a pyramid factor is not an integer (fatal)
//   - ALIGNMENT: target size or overlap is not a multiple of the step size
//   - OVERLAP_EXCEEDS_SIZE: overlap is not smaller than the target size
//   - INTERNAL_CONSISTENCY: identifier bookkeeping is broken (fatal, a bug)
//
// The remaining codes describe ordinary input and lookup problems.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeAlignment, "targetSize %d not divisible by %d (axis %d)", s, m, d)
//	if errors.Is(err, errors.ErrCodeAlignment) {
//	    // ask the user for different parameters
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Splitting errors
	ErrCodeFractionalDownsampling Code = "FRACTIONAL_DOWNSAMPLING"
	ErrCodeAlignment              Code = "ALIGNMENT"
	ErrCodeOverlapExceedsSize     Code = "OVERLAP_EXCEEDS_SIZE"
	ErrCodeInternalConsistency    Code = "INTERNAL_CONSISTENCY"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// fatalCodes are failures that no parameter change on the caller's side can fix.
var fatalCodes = map[Code]bool{
	ErrCodeFractionalDownsampling: true,
	ErrCodeInternalConsistency:    true,
}

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

// Fatal reports whether the error belongs to a fatal category.
func (e *Error) Fatal() bool {
	return fatalCodes[e.Code]
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

// IsFatal reports whether err carries a fatal code.
// Errors without a code are not fatal.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal()
	}
	return false
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
