package shared

import "errors"

// ErrorCategory groups domain error codes into the failure classes callers react to
type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryInvalidState ErrorCategory = "INVALID_STATE"
	CategoryAccess       ErrorCategory = "ACCESS"
	CategoryConcurrency  ErrorCategory = "CONCURRENCY"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryConflict     ErrorCategory = "CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Category ErrorCategory `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal to sentinels
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new validation-class domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:     code,
		Message:  message,
		Category: CategoryValidation,
	}
}

// NewInvalidStateError creates an error for an operation not allowed in the current state
func NewInvalidStateError(message string) *DomainError {
	return &DomainError{
		Code:     "INVALID_STATE",
		Message:  message,
		Category: CategoryInvalidState,
	}
}

// NewAccessDeniedError creates an identity/access error
func NewAccessDeniedError(message string) *DomainError {
	return &DomainError{
		Code:     "ACCESS_DENIED",
		Message:  message,
		Category: CategoryAccess,
	}
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Code: "NOT_FOUND", Message: "Resource not found", Category: CategoryNotFound}
	ErrAlreadyExists       = &DomainError{Code: "ALREADY_EXISTS", Message: "Resource already exists", Category: CategoryConflict}
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = &DomainError{Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process", Category: CategoryConcurrency}
	ErrInvalidState        = NewInvalidStateError("Operation not allowed in current state")
	ErrAccessDenied        = NewAccessDeniedError("Access denied")
	ErrTenantRequired      = &DomainError{Code: "TENANT_REQUIRED", Message: "No tenant bound to the current unit of work", Category: CategoryAccess}
)

// CategoryOf returns the category of a domain error, or "" for other errors
func CategoryOf(err error) ErrorCategory {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Category
	}
	return ""
}

// IsCategory reports whether err is a domain error of the given category
func IsCategory(err error, category ErrorCategory) bool {
	return CategoryOf(err) == category
}
