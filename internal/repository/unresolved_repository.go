package repository

import (
	"context"
	"fmt"

	reconDomain "github.com/hearth-catering/service-booking/internal/domain/reconciliation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUnresolvedRepository implements reconciliation.Repository using GORM.
type GormUnresolvedRepository struct {
	db *gorm.DB
}

// NewGormUnresolvedRepository creates a new GormUnresolvedRepository.
func NewGormUnresolvedRepository(db *gorm.DB) *GormUnresolvedRepository {
	return &GormUnresolvedRepository{db: db}
}

// Save records a notification for manual review. A redelivery of a queued
// notification hits the dedupe_key unique index and is skipped.
func (r *GormUnresolvedRepository) Save(ctx context.Context, n *reconDomain.UnresolvedNotification) (bool, error) {
	model := UnresolvedNotificationModel{
		ID:            n.ID,
		DedupeKey:     n.DedupeKey(),
		EventID:       n.EventID,
		EventType:     n.EventType,
		TransactionID: n.TransactionID,
		Reference:     n.Reference,
		Reason:        string(n.Reason),
		Amount:        n.Amount,
		Description:   n.Description,
		Payload:       datatypes.JSON(n.Payload),
		ReceivedAt:    n.ReceivedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedupe_key"}}, DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to save unresolved notification: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// List returns the review queue, newest first.
func (r *GormUnresolvedRepository) List(ctx context.Context, page, limit int) ([]*reconDomain.UnresolvedNotification, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&UnresolvedNotificationModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count unresolved notifications: %w", err)
	}

	var models []UnresolvedNotificationModel
	offset := (page - 1) * limit
	if err := db.Order("received_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list unresolved notifications: %w", err)
	}

	out := make([]*reconDomain.UnresolvedNotification, len(models))
	for i, m := range models {
		out[i] = &reconDomain.UnresolvedNotification{
			ID:            m.ID,
			EventID:       m.EventID,
			EventType:     m.EventType,
			TransactionID: m.TransactionID,
			Reference:     m.Reference,
			Reason:        reconDomain.Reason(m.Reason),
			Amount:        m.Amount,
			Description:   m.Description,
			Payload:       []byte(m.Payload),
			ReceivedAt:    m.ReceivedAt,
		}
	}
	return out, total, nil
}
