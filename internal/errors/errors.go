package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Shogun error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"       // 400
	ErrUnauthorized        ErrorCode = "UNAUTHORIZED"          // 401
	ErrForbidden           ErrorCode = "FORBIDDEN"             // 403
	ErrAnimationNotFound   ErrorCode = "ANIMATION_NOT_FOUND"   // 404
	ErrRateLimited         ErrorCode = "RATE_LIMITED"          // 429
	ErrCSSGenerationFailed ErrorCode = "CSS_GENERATION_FAILED" // 500
	ErrInternal            ErrorCode = "INTERNAL"              // 500
)

// ShogunError represents a structured error with code, status, and details.
type ShogunError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ShogunError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ShogunError {
	return &ShogunError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthorized creates a 401 error for requests without credentials.
func NewUnauthorized() *ShogunError {
	return &ShogunError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "authentication required",
	}
}

// NewForbidden creates a 403 error for callers lacking the required privilege.
func NewForbidden(action string) *ShogunError {
	return &ShogunError{
		Code:    ErrForbidden,
		Status:  403,
		Message: fmt.Sprintf("not allowed to %s", action),
		Details: map[string]any{"action": action},
	}
}

// NewAnimationNotFound creates a 404 error for an unregistered animation name.
func NewAnimationNotFound(name string) *ShogunError {
	return &ShogunError{
		Code:    ErrAnimationNotFound,
		Status:  404,
		Message: fmt.Sprintf("animation not found: %s", name),
		Details: map[string]any{"animation": name},
	}
}

// NewRateLimited creates a 429 error when a caller exceeds the request budget.
func NewRateLimited() *ShogunError {
	return &ShogunError{
		Code:    ErrRateLimited,
		Status:  429,
		Message: "too many requests",
	}
}

// NewCSSGenerationFailed creates a 500 error when compilation yields no CSS.
func NewCSSGenerationFailed(name string) *ShogunError {
	return &ShogunError{
		Code:    ErrCSSGenerationFailed,
		Status:  500,
		Message: "failed to generate CSS",
		Details: map[string]any{"animation": name},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging only.
func NewInternal(err error) *ShogunError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &ShogunError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// As unwraps err to a *ShogunError if one is in its chain.
func As(err error) (*ShogunError, bool) {
	var sErr *ShogunError
	if stderrors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}

// Is checks if an error (or anything it wraps) is a ShogunError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := As(err); ok {
		return sErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 500 for foreign errors.
func StatusOf(err error) int {
	if sErr, ok := As(err); ok {
		return sErr.Status
	}
	return 500
}
