package application

import (
	"context"
	"testing"

	"github.com/hearth-catering/service-booking/internal/application/apptest"
	"github.com/hearth-catering/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCalendarService_BlockAndUnblock(t *testing.T) {
	repo := apptest.NewCalendar()
	svc := NewCalendarService(repo, zap.NewNop())
	ctx := context.Background()

	got, err := svc.BlockDate(ctx, BlockDateRequest{Date: "2026-12-24", Reason: "Christmas Eve"})
	require.NoError(t, err)
	assert.Equal(t, "2026-12-24", got.Date)
	assert.Equal(t, "Christmas Eve", got.Reason)

	_, err = svc.BlockDate(ctx, BlockDateRequest{Date: "2026-12-24"})
	assert.True(t, domain.IsConflict(err))

	list, err := svc.ListBlockedDates(ctx, "2026-12-01")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.UnblockDate(ctx, "2026-12-24"))
	assert.True(t, domain.IsNotFound(svc.UnblockDate(ctx, "2026-12-24")))
}

func TestCalendarService_ListFrom(t *testing.T) {
	svc := NewCalendarService(apptest.NewCalendar(), zap.NewNop())
	ctx := context.Background()
	for _, d := range []string{"2026-12-31", "2026-11-01", "2026-12-24"} {
		_, err := svc.BlockDate(ctx, BlockDateRequest{Date: d})
		require.NoError(t, err)
	}

	list, err := svc.ListBlockedDates(ctx, "2026-12-01")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-12-24", list[0].Date)
	assert.Equal(t, "2026-12-31", list[1].Date)
}

func TestCalendarService_InvalidDates(t *testing.T) {
	svc := NewCalendarService(apptest.NewCalendar(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.BlockDate(ctx, BlockDateRequest{Date: "24/12/2026"})
	assert.True(t, domain.IsValidation(err))

	assert.True(t, domain.IsValidation(svc.UnblockDate(ctx, "tomorrow")))

	_, err = svc.ListBlockedDates(ctx, "soon")
	assert.True(t, domain.IsValidation(err))
}
