package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for documentation lookup failures
type ErrorCode string

const (
	// NotFound indicates the symbol is undocumented or a file/archive is missing
	NotFound ErrorCode = "NOT_FOUND"
	// Malformed indicates an unparseable comment, unreadable archive or bad path
	Malformed ErrorCode = "MALFORMED"
	// UnexpectedLayout indicates the SDK directory layout is not the expected one
	UnexpectedLayout ErrorCode = "UNEXPECTED_LAYOUT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// DocError represents a documentation lookup failure with a stable code
type DocError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	cause   error     // Underlying error (not exported to JSON)
}

// NewDocError creates a new DocError
func NewDocError(code ErrorCode, message string, path string, cause error) *DocError {
	return &DocError{
		Code:    code,
		Message: message,
		Path:    path,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *DocError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *DocError) Unwrap() error {
	return e.cause
}

// NotFoundf builds a NotFound error for path.
func NotFoundf(path string, format string, args ...interface{}) *DocError {
	return NewDocError(NotFound, fmt.Sprintf(format, args...), path, nil)
}

// MalformedErr builds a Malformed error for path wrapping cause.
func MalformedErr(path string, message string, cause error) *DocError {
	return NewDocError(Malformed, message, path, cause)
}

// LayoutErr builds an UnexpectedLayout error for path.
func LayoutErr(path string, message string, cause error) *DocError {
	return NewDocError(UnexpectedLayout, message, path, cause)
}

// CodeOf returns the code carried by err, InternalError for foreign errors
// and the empty code for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var de *DocError
	if errors.As(err, &de) {
		return de.Code
	}
	return InternalError
}

// IsNotFound reports whether err carries the NotFound code.
func IsNotFound(err error) bool {
	return CodeOf(err) == NotFound
}
