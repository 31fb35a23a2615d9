package area

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a structured error surfaced to API callers.
type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeDuplicatePost       Code = "DUPLICATE_POST"
	CodeOverlapConflict     Code = "OVERLAP_CONFLICT"
	CodeNotFound            Code = "NOT_FOUND"
	CodeAccessDenied        Code = "ACCESS_DENIED"
	CodeInsufficientFunds   Code = "INSUFFICIENT_FUNDS"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeRateLimited         Code = "RATE_LIMITED"
)

// Error carries a structured code alongside a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so sentinel comparisons work
// through wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus maps the code to the response status. Codes outside the 4xx
// taxonomy collapse to 500; the caller decides whether to degrade instead.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation, CodeDuplicatePost, CodeInsufficientFunds:
		return http.StatusBadRequest
	case CodeOverlapConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAccessDenied:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrDuplicatePost     = &Error{Code: CodeDuplicatePost, Message: "an identical post already exists"}
	ErrOverlapConflict   = &Error{Code: CodeOverlapConflict, Message: "space geometry overlaps an existing space"}
	ErrAccessDenied      = &Error{Code: CodeAccessDenied, Message: "access denied"}
	ErrInsufficientFunds = &Error{Code: CodeInsufficientFunds, Message: "space owner has insufficient funds to reward you"}
)

// ValidationError builds a CodeValidation error with the given message.
func ValidationError(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a collaborator failure.
func UpstreamError(msg string, cause error) *Error {
	return &Error{Code: CodeUpstreamUnavailable, Message: msg, cause: cause}
}
