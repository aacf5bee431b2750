package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hearth-catering/service-booking/pkg/domain"
)

// DateLayout is the wire and storage format of blocked dates.
const DateLayout = "2006-01-02"

// BlockedDate is a calendar day on which no new inquiries are accepted.
type BlockedDate struct {
	id        uuid.UUID
	date      time.Time
	reason    string
	createdAt time.Time
}

// NewBlockedDate validates and creates a blocked date from a YYYY-MM-DD string.
func NewBlockedDate(date, reason string) (*BlockedDate, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, domain.NewValidationError("date is required")
	}
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	return &BlockedDate{
		id:        uuid.New(),
		date:      d,
		reason:    strings.TrimSpace(reason),
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a BlockedDate from persistence.
func Reconstruct(id uuid.UUID, date time.Time, reason string, createdAt time.Time) *BlockedDate {
	return &BlockedDate{
		id:        id,
		date:      date,
		reason:    reason,
		createdAt: createdAt,
	}
}

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

// Getters.
func (b *BlockedDate) ID() uuid.UUID        { return b.id }
func (b *BlockedDate) Date() time.Time      { return b.date }
func (b *BlockedDate) Reason() string       { return b.reason }
func (b *BlockedDate) CreatedAt() time.Time { return b.createdAt }

// Day returns the date formatted as YYYY-MM-DD.
func (b *BlockedDate) Day() string { return b.date.Format(DateLayout) }
