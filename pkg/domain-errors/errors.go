// Package derrors defines the coded domain errors shared by all services.
//
// Services return these instead of raw errors so transport adapters can map
// failures to stable responses without inspecting message text. Stores return
// sentinel errors (pkg/platform/sentinel) and services translate them here.
package derrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for callers.
type Code string

const (
	// CodeValidation marks malformed input: empty required fields,
	// out-of-range years, unknown license categories. Never retried.
	CodeValidation Code = "validation"

	// CodeConflict marks a uniqueness violation (plate, CNPJ, license
	// number). The caller may retry with corrected input.
	CodeConflict Code = "conflict"

	// CodeBusinessRule marks a domain rule violation at rental open/close
	// time. Fatal to the single operation, never partially applied.
	CodeBusinessRule Code = "business_rule"

	// CodeNotFound marks an absent entity. Lookups treat absence as an
	// expected outcome, not an exceptional one.
	CodeNotFound Code = "not_found"

	// CodeInternal marks infrastructure failures surfaced to the caller.
	CodeInternal Code = "internal"
)

// Error carries a code alongside the message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a domain error with the given code.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status. Transport-layer concern, but
// centralized here so every handler produces the same envelope.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeBusinessRule:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
