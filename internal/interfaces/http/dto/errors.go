package dto

import (
	"net/http"

	"github.com/erp/ledgercore/internal/domain/shared"
)

// Transport-level error codes. Domain errors keep their own codes
// (e.g. SESSION_ALREADY_OPEN) and are mapped to a status by category.
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeTimeout      = "ERR_TIMEOUT"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeUnavailable  = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps transport error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeTimeout:      http.StatusGatewayTimeout,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:  http.StatusServiceUnavailable,
}

// categoryHTTPStatus maps domain error categories to HTTP status codes
var categoryHTTPStatus = map[shared.ErrorCategory]int{
	shared.CategoryValidation:   http.StatusBadRequest,
	shared.CategoryAccess:       http.StatusForbidden,
	shared.CategoryNotFound:     http.StatusNotFound,
	shared.CategoryConflict:     http.StatusConflict,
	shared.CategoryConcurrency:  http.StatusConflict,
	shared.CategoryInvalidState: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a transport error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusForDomainError returns the HTTP status for a domain error.
// A missing tenant binding is an authentication problem rather than a
// permission one, so it maps to 401.
func StatusForDomainError(err *shared.DomainError) int {
	if err.Code == shared.ErrTenantRequired.Code {
		return http.StatusUnauthorized
	}
	if status, ok := categoryHTTPStatus[err.Category]; ok {
		return status
	}
	return http.StatusInternalServerError
}
