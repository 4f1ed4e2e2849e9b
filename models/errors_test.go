package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessagesAreUserFacing(t *testing.T) {
	tests := []struct {
		err  *AppError
		want string
	}{
		{OutOfStock(42), "Product is out of stock"},
		{InsufficientStock(42, "Mug"), "Insufficient stock for Mug"},
		{ProductNotFound(42), "Product not found"},
		{NotFound("Order"), "Order not found"},
		{EmptyCart(), "Cart is empty"},
		{AccessDenied(), "Access denied"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Message)
			assert.NotContains(t, tt.err.Message, "42")
		})
	}

	assert.Equal(t, 42, OutOfStock(42).ProductID)
}

func TestAppErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("commit: %w", InsufficientStock(7, "Lamp"))

	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
	assert.False(t, errors.Is(wrapped, ErrOutOfStock))
	assert.Equal(t, KindInsufficientStock, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))

	cause := errors.New("duplicate key")
	assert.ErrorIs(t, Conflict("Email already registered", cause), cause)
}
