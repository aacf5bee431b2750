package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InquiryModel is the GORM model for the inquiries table.
type InquiryModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference       string     `gorm:"uniqueIndex;not null;size:20"`
	CustomerName    string     `gorm:"not null;size:200"`
	CustomerEmail   string     `gorm:"not null;size:200"`
	CustomerPhone   string     `gorm:"size:50"`
	EventDate       time.Time  `gorm:"type:date;not null;index"`
	StartTime       string     `gorm:"size:5"`
	EndTime         string     `gorm:"size:5"`
	Guests          int        `gorm:"not null;default:0"`
	BudgetEstimate  int64      `gorm:"not null;default:0"`
	EventType       string     `gorm:"size:30"`
	ServiceStyle    string     `gorm:"size:30"`
	Venue           string     `gorm:"size:500"`
	Notes           string     `gorm:"size:2000"`
	Status          string     `gorm:"not null;size:30;index"`
	RejectionReason string     `gorm:"size:500"`
	DeclinedAt      *time.Time `gorm:""`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"not null;index"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InquiryModel) TableName() string { return "inquiries" }

// ProposalModel is the GORM model for the proposals table.
type ProposalModel struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Reference        string         `gorm:"uniqueIndex;not null;size:20"`
	WorkingPackageID string         `gorm:"size:50"`
	WorkingAddOnIDs  datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	Breakdown        datatypes.JSON `gorm:"type:jsonb"`
	SentAt           *time.Time     `gorm:""`
	ClientPackageID  string         `gorm:"size:50"`
	ClientAddOnIDs   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	AcceptedTotal    int64          `gorm:"not null;default:0"`
	IsApproved       bool           `gorm:"not null;default:false"`
	ApprovedAt       *time.Time     `gorm:""`
	UpdatedAt        time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProposalModel) TableName() string { return "proposals" }

// LedgerModel is the GORM model for the payment_ledgers table.
type LedgerModel struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference            string     `gorm:"uniqueIndex;not null;size:20"`
	TotalCost            int64      `gorm:"not null;default:0"`
	ReservationFee       int64      `gorm:"not null;default:0"`
	Downpayment          int64      `gorm:"not null;default:0"`
	Balance              int64      `gorm:"not null;default:0"`
	Status               string     `gorm:"not null;size:20"`
	PaymentLinkGenerated bool       `gorm:"not null;default:false"`
	LastLinkSent         *time.Time `gorm:""`
	ContractSummary      string     `gorm:"type:text"`
	UpdatedAt            time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (LedgerModel) TableName() string { return "payment_ledgers" }

// PaymentHistoryModel is the GORM model for the payment_history table.
type PaymentHistoryModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Reference     string    `gorm:"not null;size:20;uniqueIndex:idx_payment_history_txn"`
	TransactionID string    `gorm:"not null;size:100;uniqueIndex:idx_payment_history_txn"`
	Amount        int64     `gorm:"not null"`
	Description   string    `gorm:"size:500"`
	PaidAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentHistoryModel) TableName() string { return "payment_history" }

// ActivityLogModel is the GORM model for the activity_logs table.
type ActivityLogModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Reference     string    `gorm:"uniqueIndex;not null;size:20"`
	InternalNotes string    `gorm:"type:text"`
}

// TableName returns the table name for the GORM model.
func (ActivityLogModel) TableName() string { return "activity_logs" }

// ActivityEntryModel is the GORM model for the activity_entries table.
type ActivityEntryModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Reference string    `gorm:"not null;size:20;uniqueIndex:idx_activity_entries_seq"`
	Seq       int       `gorm:"not null;uniqueIndex:idx_activity_entries_seq"`
	Date      time.Time `gorm:"not null"`
	Actor     string    `gorm:"not null;size:10"`
	Action    string    `gorm:"type:text;not null"`
}

// TableName returns the table name for the GORM model.
func (ActivityEntryModel) TableName() string { return "activity_entries" }

// SequenceModel is the GORM model for the booking_sequences counter table.
type SequenceModel struct {
	Name       string `gorm:"primaryKey;size:50"`
	LastNumber int64  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SequenceModel) TableName() string { return "booking_sequences" }

// BlockedDateModel is the GORM model for the blocked_dates table.
type BlockedDateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date      time.Time `gorm:"type:date;uniqueIndex;not null"`
	Reason    string    `gorm:"size:500"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BlockedDateModel) TableName() string { return "blocked_dates" }

// UnresolvedNotificationModel is the GORM model for the unresolved_notifications table.
type UnresolvedNotificationModel struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	DedupeKey     string         `gorm:"not null;size:120;uniqueIndex:idx_unresolved_notifications_dedupe_key"`
	EventID       string         `gorm:"size:100;index"`
	EventType     string         `gorm:"size:50"`
	TransactionID string         `gorm:"size:100;index"`
	Reference     string         `gorm:"size:20;index"`
	Reason        string         `gorm:"not null;size:50"`
	Amount        int64          `gorm:"not null;default:0"`
	Description   string         `gorm:"size:500"`
	Payload       datatypes.JSON `gorm:"type:jsonb"`
	ReceivedAt    time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (UnresolvedNotificationModel) TableName() string { return "unresolved_notifications" }

// AllModels lists every model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&InquiryModel{},
		&ProposalModel{},
		&LedgerModel{},
		&PaymentHistoryModel{},
		&ActivityLogModel{},
		&ActivityEntryModel{},
		&SequenceModel{},
		&BlockedDateModel{},
		&UnresolvedNotificationModel{},
	}
}
