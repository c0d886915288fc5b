package dto

import (
	"net/http"

	"github.com/phoneshop/backend/internal/domain/shared"
)

// Transport-only error codes; domain codes come from the shared package
const (
	ErrCodeValidation      = shared.CodeValidation
	ErrCodeNotFound        = shared.CodeNotFound
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeMissingTenant   = "TENANT_REQUIRED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// invalid input -> 400
	shared.CodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeMissingTenant:  http.StatusBadRequest,

	shared.CodeNotFound: http.StatusNotFound,

	// conflicting writes -> 409
	shared.CodeSettlementLegConflict:  http.StatusConflict,
	shared.CodeAlreadySold:            http.StatusConflict,
	shared.CodeConcurrentModification: http.StatusConflict,
	shared.CodeDuplicateKey:           http.StatusConflict,

	// business rule violations -> 422
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	shared.CodeTransactionFailed: http.StatusInternalServerError,
	ErrCodeInternal:              http.StatusInternalServerError,
	ErrCodeUnavailable:           http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether a client may safely replay the request
func IsRetryable(code string) bool {
	switch code {
	case shared.CodeTransactionFailed, shared.CodeConcurrentModification, ErrCodeUnavailable:
		return true
	}
	return false
}
