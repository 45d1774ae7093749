package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// TrinityError is a structured error with a stable code, a suggestion,
// and a documentation link.
type TrinityError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (runtime, protocol, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *TrinityError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *TrinityError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *TrinityError) WithSuggestion(s string) *TrinityError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *TrinityError) WithDetail(d string) *TrinityError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *TrinityError) WithDetailf(format string, args ...any) *TrinityError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *TrinityError) Wrap(err error) *TrinityError {
	e.Wrapped = err
	return e
}

// New creates a TrinityError from a registered error code.
func New(code string) *TrinityError {
	template, ok := registry[code]
	if !ok {
		return &TrinityError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &TrinityError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new TrinityError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *TrinityError {
	return &TrinityError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a TrinityError.
func FromError(err error, code string) *TrinityError {
	if err == nil {
		return nil
	}
	if te, ok := err.(*TrinityError); ok {
		return te
	}
	return New(code).Wrap(err)
}
