package booking

import (
	"time"

	"github.com/google/uuid"
)

// Inquiry is the booking's identity and lifecycle status.
type Inquiry struct {
	ID              uuid.UUID
	Reference       string
	Customer        Customer
	Event           EventDetails
	Status          InquiryStatus
	RejectionReason string
	DeclinedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Proposal is the priced offer and the client's final selection.
type Proposal struct {
	ID        uuid.UUID
	Reference string

	// Staff's current working selection.
	WorkingPackageID string
	WorkingAddOnIDs  []string

	// Breakdown stays nil until a proposal has been priced and sent.
	Breakdown *Quote
	SentAt    *time.Time

	// Client's selection, set only on acceptance.
	ClientPackageID string
	ClientAddOnIDs  []string
	AcceptedTotal   Money
	IsApproved      bool
	ApprovedAt      *time.Time
	UpdatedAt       time.Time
}

// Settlement is one immutable entry in a ledger's payment history.
type Settlement struct {
	Date          time.Time
	Description   string
	Amount        Money
	TransactionID string
}

// PaymentLedger is the money state of one booking.
type PaymentLedger struct {
	ID                   uuid.UUID
	Reference            string
	TotalCost            Money
	ReservationFee       Money
	Downpayment          Money
	Balance              Money
	Status               PaymentStatus
	History              []Settlement
	PaymentLinkGenerated bool
	LastLinkSent         *time.Time
	ContractSummary      string
	UpdatedAt            time.Time
}

// AmountPaid sums every settlement in the history.
func (l PaymentLedger) AmountPaid() Money {
	var total Money
	for _, s := range l.History {
		total += s.Amount
	}
	return total
}

// HasTransaction reports whether a gateway transaction was already applied.
func (l PaymentLedger) HasTransaction(transactionID string) bool {
	for _, s := range l.History {
		if s.TransactionID == transactionID {
			return true
		}
	}
	return false
}

// ActivityEntry is one line of the audit timeline.
type ActivityEntry struct {
	Date   time.Time
	Actor  Actor
	Action string
}

// ActivityLog is the append-only audit trail of a booking.
type ActivityLog struct {
	ID            uuid.UUID
	Reference     string
	InternalNotes string
	Timeline      []ActivityEntry
}
