// Package domainerrors provides coded errors for the compliance core.
//
// Services return these so transport layers can translate a failure into the
// right HTTP status without string matching. Stores return sentinel errors
// (pkg/platform/sentinel) instead; services wrap those into coded errors at
// the use-case boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation marks malformed input: out-of-range periodicity or
	// duration, an absence date outside the look-back window, a reschedule
	// date in the past. Recoverable by resubmitting corrected input.
	CodeValidation Code = "validation"

	// CodeBadRequest marks a request the transport layer could not even
	// hand to a use case (unparseable body, bad path parameter).
	CodeBadRequest Code = "bad_request"

	// CodeNotFound marks a reference to a person or regime that does not exist.
	CodeNotFound Code = "not_found"

	// CodeConflict marks a uniqueness-invariant violation: a second event for
	// the same person and date. A business rejection, not a fault.
	CodeConflict Code = "conflict"

	// CodeUnauthorized marks a missing or invalid credential.
	CodeUnauthorized Code = "unauthorized"

	// CodeTimeout marks a unit of work aborted by its deadline.
	CodeTimeout Code = "timeout"

	// CodeInternal marks an infrastructure fault. Propagated unchanged so the
	// caller owns retry policy.
	CodeInternal Code = "internal"
)

// Error carries a code, a caller-facing message, and an optional cause.
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

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
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

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode used at call sites that branch on a
// single code.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that never passed through this package.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message, falling back to a generic one
// so raw infrastructure detail never leaks to clients.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to the HTTP status the transport layer should use.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
