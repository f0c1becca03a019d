// Package errors provides standardized domain errors with codes for the
// promptdeck core.
//
// Usage:
//
//	// In components - return typed errors
//	if used+size > quota {
//	    return errors.QuotaExceeded("storage quota exceeded")
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrQuotaExceeded) {
//	    notifier.Warn("Storage is full. Export your data and clear old channels.")
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the core.
const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeValidation      Code = "VALIDATION"
	CodeCorruptDocument Code = "CORRUPT_DOCUMENT"
	CodeQuotaExceeded   Code = "QUOTA_EXCEEDED"
	CodeStorageIO       Code = "STORAGE_IO"
	CodeInternal        Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists   = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation      = &Error{Code: CodeValidation, Message: "validation error"}
	ErrCorruptDocument = &Error{Code: CodeCorruptDocument, Message: "corrupt document"}
	ErrQuotaExceeded   = &Error{Code: CodeQuotaExceeded, Message: "storage quota exceeded"}
	ErrStorageIO       = &Error{Code: CodeStorageIO, Message: "storage failure"}
	ErrInternal        = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates an already exists error.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// AlreadyExistsf creates an already exists error with formatted message.
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// CorruptDocument creates a corrupt document error.
func CorruptDocument(msg string) *Error {
	return &Error{Code: CodeCorruptDocument, Message: msg}
}

// CorruptDocumentf creates a corrupt document error with formatted message.
func CorruptDocumentf(format string, args ...any) *Error {
	return &Error{Code: CodeCorruptDocument, Message: fmt.Sprintf(format, args...)}
}

// QuotaExceeded creates a quota exceeded error.
func QuotaExceeded(msg string) *Error {
	return &Error{Code: CodeQuotaExceeded, Message: msg}
}

// StorageIO creates a storage failure error.
func StorageIO(msg string) *Error {
	return &Error{Code: CodeStorageIO, Message: msg}
}

// StorageIOf creates a storage failure error with formatted message.
func StorageIOf(format string, args ...any) *Error {
	return &Error{Code: CodeStorageIO, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}
