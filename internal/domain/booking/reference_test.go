package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextReference(t *testing.T) {
	tests := []struct {
		latest string
		want   string
	}{
		{"", "BK-001"},
		{"BK-001", "BK-002"},
		{"BK-009", "BK-010"},
		{"BK-099", "BK-100"},
		{"BK-999", "BK-1000"},
		{"BK-ABC", "BK-001"},
		{"garbage", "BK-001"},
		{" BK-041 ", "BK-042"},
	}
	for _, tt := range tests {
		t.Run(tt.latest, func(t *testing.T) {
			assert.Equal(t, tt.want, NextReference(tt.latest))
		})
	}
}

func TestReferences_StrictlyIncreasingWithoutGaps(t *testing.T) {
	latest := ""
	for i := 1; i <= 1200; i++ {
		next := NextReference(latest)
		n, ok := ParseReferenceNumber(next)
		assert.True(t, ok)
		assert.Equal(t, i, n)
		latest = next
	}
}
