package booking

import (
	"context"
	"errors"
	"time"
)

// ErrNoChange may be returned by a Modify callback to roll back without error,
// e.g. when a redelivered payment notification is recognised as a duplicate.
var ErrNoChange = errors.New("no change")

// Repository defines the persistence contract for booking aggregates. It is the
// only way the four booking records are written.
type Repository interface {
	// Create allocates the next reference and persists the aggregate returned by
	// build, all in one transaction. It returns a ConflictError when the event
	// date is blocked.
	Create(ctx context.Context, build func(reference string) (*Booking, error)) (*Booking, error)

	// Modify loads the booking under a row lock, applies fn and persists every
	// record atomically. If fn returns ErrNoChange nothing is written and the
	// loaded booking is returned with a nil error.
	Modify(ctx context.Context, reference string, fn func(b *Booking) error) (*Booking, error)

	// FindByReference retrieves a booking by its reference.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// List retrieves bookings ordered by creation time, newest first.
	List(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by inquiry status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// FindByEventDate retrieves bookings for an event date in any of statuses.
	FindByEventDate(ctx context.Context, date time.Time, statuses ...InquiryStatus) ([]*Booking, error)
}
