package domain

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// ErrorCode classifies a failure for the caller.
type ErrorCode string

const (
	CodeValidation             ErrorCode = "VALIDATION"
	CodeAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"
	CodeTransientUnavailable   ErrorCode = "TRANSIENT_UNAVAILABLE"
	CodeFailure                ErrorCode = "FAILURE"
)

// GenericFailureMessage is shown when the collaborator gave no message.
const GenericFailureMessage = "Something went wrong. Please try again."

// Error is a classified catalog error. Two errors are considered equal by
// errors.Is when their codes match, so the sentinels below can be used as
// targets regardless of the message or status carried.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"status,omitempty"` // HTTP status reported by the collaborator, if any
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a classified error
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

var (
	ErrValidation             = NewError(CodeValidation, "invalid input")
	ErrAuthenticationRequired = NewError(CodeAuthenticationRequired, "authentication required")
	ErrTransientUnavailable   = NewError(CodeTransientUnavailable, "catalog temporarily unavailable")
	ErrFailure                = NewError(CodeFailure, "request failed")
)

// Validation returns a validation error with the given message.
func Validation(message string) *Error {
	return NewError(CodeValidation, message)
}

// IsTransient reports whether err is a timeout or overload signal that
// qualifies for the degraded retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransientUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		if domainErr.Status == http.StatusServiceUnavailable || domainErr.Status == http.StatusGatewayTimeout {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "service unavailable")
}

// IsAuthenticationRequired reports whether err asks the user to sign in.
func IsAuthenticationRequired(err error) bool {
	return errors.Is(err, ErrAuthenticationRequired)
}

// UserMessage returns the text to show for a failed operation: the
// collaborator message when one was given, otherwise a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return GenericFailureMessage
}
