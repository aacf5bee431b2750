package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	calendarDomain "github.com/hearth-catering/service-booking/internal/domain/calendar"
	"github.com/hearth-catering/service-booking/pkg/domain"
	"gorm.io/gorm"
)

// eventDateLockSpace namespaces the per-day advisory locks.
const eventDateLockSpace = 7311

// GormBlockedDateRepository implements calendar.BlockedDateRepository using GORM.
type GormBlockedDateRepository struct {
	db *gorm.DB
}

// NewGormBlockedDateRepository creates a new GormBlockedDateRepository.
func NewGormBlockedDateRepository(db *gorm.DB) *GormBlockedDateRepository {
	return &GormBlockedDateRepository{db: db}
}

// Save persists a new blocked date. It holds the day's lock, so it waits for
// any inquiry being created for that day.
func (r *GormBlockedDateRepository) Save(ctx context.Context, blocked *calendarDomain.BlockedDate) error {
	model := BlockedDateModel{
		ID:        blocked.ID(),
		Date:      blocked.Date(),
		Reason:    blocked.Reason(),
		CreatedAt: blocked.CreatedAt(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEventDate(tx, blocked.Date()); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("date %s is already blocked", blocked.Day()))
		}
		return fmt.Errorf("failed to save blocked date: %w", err)
	}
	return nil
}

// Delete removes the block on date.
func (r *GormBlockedDateRepository) Delete(ctx context.Context, date time.Time) error {
	day := date.Format(calendarDomain.DateLayout)
	result := r.db.WithContext(ctx).Where("date = ?", day).Delete(&BlockedDateModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete blocked date: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("BlockedDate", day)
	}
	return nil
}

// List returns blocked dates on or after from, earliest first.
func (r *GormBlockedDateRepository) List(ctx context.Context, from time.Time) ([]*calendarDomain.BlockedDate, error) {
	var models []BlockedDateModel
	if err := r.db.WithContext(ctx).
		Where("date >= ?", from.Format(calendarDomain.DateLayout)).
		Order("date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list blocked dates: %w", err)
	}

	blocked := make([]*calendarDomain.BlockedDate, len(models))
	for i, m := range models {
		blocked[i] = calendarDomain.Reconstruct(m.ID, m.Date.UTC(), m.Reason, m.CreatedAt)
	}
	return blocked, nil
}

// IsBlocked reports whether date is blocked.
func (r *GormBlockedDateRepository) IsBlocked(ctx context.Context, date time.Time) (bool, error) {
	return isBlocked(r.db.WithContext(ctx), date)
}

func isBlocked(db *gorm.DB, date time.Time) (bool, error) {
	var count int64
	if err := db.Model(&BlockedDateModel{}).
		Where("date = ?", date.Format(calendarDomain.DateLayout)).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check blocked date: %w", err)
	}
	return count > 0, nil
}

// lockEventDate takes the transaction-scoped advisory lock for date's day.
// Booking creation and date blocking both hold it, so neither can slip past
// the other.
func lockEventDate(tx *gorm.DB, date time.Time) error {
	day := date.UTC().Unix() / int64((24 * time.Hour).Seconds())
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?::int, ?::int)", eventDateLockSpace, day).Error; err != nil {
		return fmt.Errorf("failed to lock event date: %w", err)
	}
	return nil
}
