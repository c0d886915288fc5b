package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError(CodeInsufficientStock, "Item X is out of stock")
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("create swap: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransactionFailure("insert swap", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrTransactionFailed))
	assert.Equal(t, "Transaction failed at insert swap: connection reset", err.Error())
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewValidationError("brand is required"), CodeValidation))
	assert.True(t, HasCode(fmt.Errorf("outer: %w", NewNotFoundError("Customer")), CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
}
