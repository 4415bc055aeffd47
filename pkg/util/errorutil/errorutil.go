package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the gateway.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeConflict           = "CONFLICT"
	CodeRefreshInvalid     = "REFRESH_INVALID"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeNetworkFailure     = "NETWORK_FAILURE"
	CodeUpstreamError      = "UPSTREAM_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewInvalidCredentials maps a rejected login. User-correctable, never
// touches stored tokens.
func NewInvalidCredentials(message string) error {
	if message == "" {
		message = "invalid credentials"
	}
	return NewDomainError(CodeInvalidCredentials, message, http.StatusUnauthorized, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewRefreshInvalid marks a rejected refresh token. Terminal: the caller
// must invalidate the whole session, never retry.
func NewRefreshInvalid(err error) error {
	return &DomainError{
		Code:       CodeRefreshInvalid,
		Message:    "refresh token rejected",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

// NewSessionExpired is returned after the session has been invalidated and
// the caller should redirect to sign-in.
func NewSessionExpired() error {
	return NewDomainError(CodeSessionExpired, "session expired, sign in again", http.StatusUnauthorized, nil)
}

// NewNetworkFailure wraps a transport-level failure (timeout, DNS,
// connection refused). Transient: not an auth failure.
func NewNetworkFailure(err error) error {
	return &DomainError{
		Code:       CodeNetworkFailure,
		Message:    "backend unreachable",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUpstreamError wraps a backend 5xx without leaking its internals.
func NewUpstreamError(status int) error {
	return &DomainError{
		Code:       CodeUpstreamError,
		Message:    "backend request failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"upstream_status": status},
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given gateway error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
