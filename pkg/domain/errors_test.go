package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("load booking: %w", NewNotFoundError("Booking", "BK-001"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsInvalidState(wrapped))
	assert.EqualError(t, wrapped, "load booking: Booking not found: BK-001")

	assert.True(t, IsInvalidState(NewInvalidStateError("Declined", "Reviewing")))
	assert.True(t, IsValidation(NewValidationError("name is required")))
	assert.True(t, IsConflict(fmt.Errorf("save: %w", NewConflictError("taken"))))
	assert.False(t, IsConflict(NewValidationError("x")))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), TotalPages(0, 20))
	assert.Equal(t, int64(1), TotalPages(20, 20))
	assert.Equal(t, int64(2), TotalPages(21, 20))
	assert.Equal(t, int64(0), TotalPages(10, 0))
}
