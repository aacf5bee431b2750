package calendar

import (
	"testing"
	"time"

	"github.com/hearth-catering/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlockedDate(t *testing.T) {
	b, err := NewBlockedDate(" 2026-12-25 ", " Christmas ")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), b.Date())
	assert.Equal(t, "2026-12-25", b.Day())
	assert.Equal(t, "Christmas", b.Reason())
	assert.NotEqual(t, b.ID().String(), "00000000-0000-0000-0000-000000000000")
}

func TestNewBlockedDate_Validation(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"wrong layout", "25/12/2026"},
		{"impossible day", "2026-02-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBlockedDate(tt.date, "")
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
}
