package calendar

import (
	"context"
	"time"
)

// BlockedDateRepository defines persistence operations for blocked dates.
type BlockedDateRepository interface {
	Save(ctx context.Context, blocked *BlockedDate) error
	Delete(ctx context.Context, date time.Time) error
	List(ctx context.Context, from time.Time) ([]*BlockedDate, error)
	IsBlocked(ctx context.Context, date time.Time) (bool, error)
}
