package shared

import "errors"

// Error codes used across the fulfillment domain
const (
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeValidation           = "VALIDATION_ERROR"
	CodePreconditionFailed   = "PRECONDITION_FAILED"
	CodeSessionExpired       = "SESSION_EXPIRED"
	CodePermissionDenied     = "PERMISSION_DENIED"
	CodeNotFound             = "NOT_FOUND"
	CodeSecondaryEffect      = "SECONDARY_EFFECT_FAILED"
	CodeConflict             = "CONFLICT"
	CodeUpstreamUnavailable  = "UPSTREAM_UNAVAILABLE"
	CodeTransitionInProgress = "TRANSITION_IN_PROGRESS"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, shared.ErrNotFound) matches any not-found error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error that keeps cause for logging
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Sentinel errors for errors.Is comparisons
var (
	ErrInvalidTransition    = NewDomainError(CodeInvalidTransition, "Requested status is not reachable from the current status")
	ErrValidation           = NewDomainError(CodeValidation, "Invalid input provided")
	ErrPreconditionFailed   = NewDomainError(CodePreconditionFailed, "Operation precondition not met")
	ErrSessionExpired       = NewDomainError(CodeSessionExpired, "Your session has expired, please sign in again")
	ErrPermissionDenied     = NewDomainError(CodePermissionDenied, "You do not have permission to perform this action")
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrSecondaryEffect      = NewDomainError(CodeSecondaryEffect, "Follow-up action failed")
	ErrConflict             = NewDomainError(CodeConflict, "Resource was modified by another process")
	ErrUpstreamUnavailable  = NewDomainError(CodeUpstreamUnavailable, "Order service is unavailable")
	ErrTransitionInProgress = NewDomainError(CodeTransitionInProgress, "A status change for this order is already in progress")
)

// CodeOf returns the domain error code carried by err, or "" when err is not
// a DomainError
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
