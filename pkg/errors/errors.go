// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown      = "UNKNOWN_ERROR"
	CodeInvalidGraph = "INVALID_GRAPH"
	CodeParseError   = "PARSE_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeDatabase     = "DATABASE_ERROR"
	CodeDownload     = "DOWNLOAD_ERROR"
	CodeUpload       = "UPLOAD_ERROR"
	CodeConfig       = "CONFIG_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Common error instances.
var (
	ErrInvalidGraph = New(CodeInvalidGraph, "invalid heap graph")
	ErrParseError   = New(CodeParseError, "parse error")
	ErrInvalidInput = New(CodeInvalidInput, "invalid input")
	ErrNotFound     = New(CodeNotFound, "resource not found")
	ErrDatabase     = New(CodeDatabase, "database error")
	ErrDownload     = New(CodeDownload, "download error")
	ErrConfig       = New(CodeConfig, "configuration error")
)

// IsInvalidGraph checks if the error is a graph validation error.
func IsInvalidGraph(err error) bool {
	return errors.Is(err, ErrInvalidGraph)
}

// IsParseError checks if the error is a parse error.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParseError)
}

// IsNotFound checks if the error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}
