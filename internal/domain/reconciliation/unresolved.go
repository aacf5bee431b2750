// Package reconciliation holds the records kept for gateway notifications that
// could not be matched to a booking automatically.
package reconciliation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Reason says why a notification needs manual review.
type Reason string

const (
	ReasonUnresolvableReference Reason = "unresolvable_reference"
	ReasonBookingNotFound       Reason = "booking_not_found"
	ReasonBookingDeclined       Reason = "booking_declined"
	ReasonAlreadyPaid           Reason = "already_paid"
	ReasonNotAwaitingPayment    Reason = "not_awaiting_payment"
	ReasonInvalidPayment        Reason = "invalid_payment"
	ReasonMalformedPayload      Reason = "malformed_payload"
	ReasonRejectedTransition    Reason = "rejected_transition"
	// ReasonStaleSignature marks an authentic relayed notification signed
	// outside the replay window.
	ReasonStaleSignature Reason = "stale_signature"
	// ReasonProcessingFailed marks a relayed notification that kept failing
	// after every delivery attempt.
	ReasonProcessingFailed Reason = "processing_failed"
)

// UnresolvedNotification is a verified gateway notification that was
// acknowledged without touching any booking.
type UnresolvedNotification struct {
	ID            uuid.UUID
	EventID       string
	EventType     string
	TransactionID string
	Reference     string
	Reason        Reason
	Amount        int64
	Description   string
	Payload       []byte
	ReceivedAt    time.Time
}

// NewUnresolvedNotification stamps a new record with an id and receive time.
func NewUnresolvedNotification(reason Reason) *UnresolvedNotification {
	return &UnresolvedNotification{
		ID:         uuid.New(),
		Reason:     reason,
		ReceivedAt: time.Now().UTC(),
	}
}

// DedupeKey identifies the notification across redeliveries: the gateway
// event id, else a digest of the payload. A record with neither is unique.
func (n *UnresolvedNotification) DedupeKey() string {
	if n.EventID != "" {
		return "event:" + n.EventID
	}
	if len(n.Payload) > 0 {
		sum := sha256.Sum256(n.Payload)
		return "sha256:" + hex.EncodeToString(sum[:])
	}
	return "id:" + n.ID.String()
}

// Repository persists the manual-review queue.
type Repository interface {
	// Save queues n and reports false when a record with the same
	// DedupeKey is already queued.
	Save(ctx context.Context, n *UnresolvedNotification) (bool, error)
	List(ctx context.Context, page, limit int) ([]*UnresolvedNotification, int64, error)
}
