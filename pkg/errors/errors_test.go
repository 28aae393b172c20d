package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			err:      New(CodeInvalidGraph, "root out of range"),
			expected: "[INVALID_GRAPH] root out of range",
		},
		{
			name:     "with wrapped error",
			err:      Wrap(CodeParseError, "bad document", fmt.Errorf("unexpected EOF")),
			expected: "[PARSE_ERROR] bad document: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Is(t *testing.T) {
	err := Wrap(CodeInvalidGraph, "child handle 9 out of range", nil)
	assert.True(t, errors.Is(err, ErrInvalidGraph))
	assert.False(t, errors.Is(err, ErrParseError))
	assert.True(t, IsInvalidGraph(err))
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("io failure")
	err := Wrap(CodeDownload, "fetch dump", inner)
	assert.Equal(t, inner, errors.Unwrap(err))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, CodeParseError, GetErrorCode(Wrap(CodeParseError, "x", nil)))
	assert.Equal(t, CodeUnknown, GetErrorCode(fmt.Errorf("plain")))

	wrapped := fmt.Errorf("outer: %w", New(CodeNotFound, "missing"))
	assert.Equal(t, CodeNotFound, GetErrorCode(wrapped))
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInvalidInput, "node handle %d out of range [0, %d)", 12, 10)
	assert.Equal(t, "[INVALID_INPUT] node handle 12 out of range [0, 10)", err.Error())
}
