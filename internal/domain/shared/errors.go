package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so that sentinel comparisons survive wrapping
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

// WrapDomainError creates a domain error carrying the underlying cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error codes
const (
	CodeValidation                 = "VALIDATION_ERROR"
	CodeNotFound                   = "NOT_FOUND"
	CodeInsufficientStock          = "INSUFFICIENT_STOCK"
	CodeTransactionFailed          = "TRANSACTION_FAILED"
	CodeSettlementNotReady         = "SETTLEMENT_NOT_READY"
	CodeSettlementResolutionFailed = "SETTLEMENT_RESOLUTION_FAILED"
	CodeSettlementLegConflict      = "SETTLEMENT_LEG_CONFLICT"
	CodeAlreadySold                = "ALREADY_SOLD"
	CodeConcurrentModification     = "CONCURRENT_MODIFICATION"
	CodeInvalidState               = "INVALID_STATE"
	CodeDuplicateKey               = "DUPLICATE_KEY"
)

// Common domain errors
var (
	ErrNotFound                   = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation                 = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInsufficientStock          = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrTransactionFailed          = NewDomainError(CodeTransactionFailed, "Transaction failed and was rolled back")
	ErrSettlementNotReady         = NewDomainError(CodeSettlementNotReady, "Settlement is waiting for the remaining leg")
	ErrSettlementResolutionFailed = NewDomainError(CodeSettlementResolutionFailed, "Sale could not be resolved for settlement")
	ErrSettlementLegConflict      = NewDomainError(CodeSettlementLegConflict, "Settlement leg is already linked to a different sale")
	ErrAlreadySold                = NewDomainError(CodeAlreadySold, "Item has already been sold")
	ErrConcurrentModification     = NewDomainError(CodeConcurrentModification, "Resource was modified by another process")
	ErrInvalidState               = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrDuplicateKey               = NewDomainError(CodeDuplicateKey, "Unique key already taken")
)

// NewValidationError creates a validation error with a specific message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a not found error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, resource+" not found")
}

// NewTransactionFailure wraps a persistence failure that aborted a unit of work
func NewTransactionFailure(step string, cause error) *DomainError {
	return WrapDomainError(CodeTransactionFailed, "Transaction failed at "+step, cause)
}

// HasCode reports whether err is a DomainError with the given code
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
