package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig      = "CONFIG"
	ErrProvider    = "PROVIDER"
	ErrTerminal    = "TERMINAL"
	ErrUnsupported = "UNSUPPORTED"
)

// Error is a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed>
//
//	  <How to fix it>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewUnsupported reports a capability that is known but not implemented.
func NewUnsupported(capability string) *Error {
	return &Error{
		Code:       ErrUnsupported,
		Message:    fmt.Sprintf("%s is not supported yet", capability),
		Suggestion: "The dashboard keeps running without it",
	}
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
// Joined errors match when any member carries the code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var coded *Error
	if errors.As(err, &coded) {
		if coded.Code == code {
			return true
		}
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if IsCode(e, code) {
				return true
			}
		}
	}
	return false
}

// Join combines errors the same way the standard library does; nil when every input is nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
