package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	calendarDomain "github.com/hearth-catering/service-booking/internal/domain/calendar"
	"go.uber.org/zap"
)

// BlockDateRequest holds the data to block a calendar date.
type BlockDateRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// BlockedDateDTO is the API response representation of a blocked date.
type BlockedDateDTO struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarService handles blocked-date use cases.
type CalendarService struct {
	repo   calendarDomain.BlockedDateRepository
	logger *zap.Logger
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(repo calendarDomain.BlockedDateRepository, logger *zap.Logger) *CalendarService {
	return &CalendarService{repo: repo, logger: logger}
}

// BlockDate stops new inquiries from being accepted for a date.
func (s *CalendarService) BlockDate(ctx context.Context, req BlockDateRequest) (*BlockedDateDTO, error) {
	blocked, err := calendarDomain.NewBlockedDate(req.Date, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, blocked); err != nil {
		return nil, err
	}

	s.logger.Info("date blocked",
		zap.String("date", blocked.Day()),
		zap.String("reason", blocked.Reason()),
	)

	return toBlockedDateDTO(blocked), nil
}

// UnblockDate removes a block.
func (s *CalendarService) UnblockDate(ctx context.Context, date string) error {
	d, err := calendarDomain.ParseDate(date)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, d); err != nil {
		return err
	}

	s.logger.Info("date unblocked", zap.String("date", d.Format(calendarDomain.DateLayout)))
	return nil
}

// ListBlockedDates returns blocked dates from the given day on (today when empty).
func (s *CalendarService) ListBlockedDates(ctx context.Context, from string) ([]*BlockedDateDTO, error) {
	start := time.Now().UTC().Truncate(24 * time.Hour)
	if strings.TrimSpace(from) != "" {
		d, err := calendarDomain.ParseDate(from)
		if err != nil {
			return nil, err
		}
		start = d
	}

	blocked, err := s.repo.List(ctx, start)
	if err != nil {
		return nil, err
	}

	dtos := make([]*BlockedDateDTO, len(blocked))
	for i, b := range blocked {
		dtos[i] = toBlockedDateDTO(b)
	}
	return dtos, nil
}

func toBlockedDateDTO(b *calendarDomain.BlockedDate) *BlockedDateDTO {
	return &BlockedDateDTO{
		ID:        b.ID(),
		Date:      b.Day(),
		Reason:    b.Reason(),
		CreatedAt: b.CreatedAt(),
	}
}
