package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	reconDomain "github.com/hearth-catering/service-booking/internal/domain/reconciliation"
	"github.com/hearth-catering/service-booking/internal/gateway"
	"github.com/hearth-catering/service-booking/pkg/domain"
	"github.com/hearth-catering/service-booking/pkg/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OutcomeStatus says how a verified notification was handled.
type OutcomeStatus string

const (
	OutcomeApplied    OutcomeStatus = "applied"
	OutcomeDuplicate  OutcomeStatus = "duplicate"
	OutcomeIgnored    OutcomeStatus = "ignored"
	OutcomeUnresolved OutcomeStatus = "unresolved"
)

// maxDescriptionLength matches the review queue's description column.
const maxDescriptionLength = 500

// Outcome is returned for every authenticated notification.
type Outcome struct {
	Status        OutcomeStatus    `json:"status"`
	Reference     string           `json:"reference,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	PaymentStatus string           `json:"payment_status,omitempty"`
}

// ReconciliationProcessor applies gateway payment notifications to ledgers.
type ReconciliationProcessor struct {
	repo       bookingDomain.Repository
	unresolved reconDomain.Repository
	publisher  EventPublisher
	secret     string
	tolerance  time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewReconciliationProcessor creates a processor that authenticates with secret.
func NewReconciliationProcessor(
	repo bookingDomain.Repository,
	unresolved reconDomain.Repository,
	publisher EventPublisher,
	secret string,
	tolerance time.Duration,
	logger *zap.Logger,
) *ReconciliationProcessor {
	return &ReconciliationProcessor{
		repo:       repo,
		unresolved: unresolved,
		publisher:  publisher,
		secret:     secret,
		tolerance:  tolerance,
		now:        time.Now,
		logger:     logger,
	}
}

// Handle authenticates a raw notification and reconciles it. Only an
// authentication failure or an infrastructure error is returned as an error;
// everything else is acknowledged with an Outcome.
func (p *ReconciliationProcessor) Handle(ctx context.Context, signature string, body []byte) (*Outcome, error) {
	if err := gateway.VerifySignature(signature, body, p.secret, p.tolerance, p.now()); err != nil {
		return nil, p.reject(body, err)
	}
	return p.reconcile(ctx, body)
}

// HandleRelayed is Handle for notifications relayed through the event bus.
// Relays can lag behind the gateway, so an authentic notification signed
// outside the tolerance is parked for review instead of rejected.
func (p *ReconciliationProcessor) HandleRelayed(ctx context.Context, signature string, body []byte) (*Outcome, error) {
	err := gateway.VerifySignature(signature, body, p.secret, p.tolerance, p.now())
	switch {
	case err == nil:
		return p.reconcile(ctx, body)
	case errors.Is(err, gateway.ErrSignatureExpired):
		return p.park(ctx, unresolvedRecord(body, reconDomain.ReasonStaleSignature, "signature timestamp outside tolerance"))
	default:
		return nil, p.reject(body, err)
	}
}

// ParkUndelivered queues a relayed notification that could not be processed
// after every attempt, so the review queue keeps it once the offset moves on.
func (p *ReconciliationProcessor) ParkUndelivered(ctx context.Context, body []byte, cause error) error {
	description := "processing failed"
	if cause != nil {
		description = cause.Error()
	}
	_, err := p.park(ctx, unresolvedRecord(body, reconDomain.ReasonProcessingFailed, description))
	return err
}

func (p *ReconciliationProcessor) reject(body []byte, err error) error {
	p.logger.Warn("rejected gateway notification",
		zap.String("event", "security"),
		zap.Int("body_size", len(body)),
		zap.Error(err),
	)
	return domain.NewUnauthorizedError("invalid signature")
}

func (p *ReconciliationProcessor) reconcile(ctx context.Context, body []byte) (*Outcome, error) {
	n, err := gateway.ParseNotification(body)
	if err != nil {
		return p.park(ctx, unresolvedRecord(body, reconDomain.ReasonMalformedPayload, err.Error()))
	}

	if !n.IsPayment() {
		p.logger.Debug("ignoring unhandled gateway event type",
			zap.String("event_id", n.ID),
			zap.String("type", n.Type),
		)
		return &Outcome{Status: OutcomeIgnored, Reason: "unhandled event type " + n.Type}, nil
	}

	reference, ok := gateway.ExtractReference(n.Data.Description)
	if !ok {
		return p.park(ctx, unresolvedFrom(n, body, "", reconDomain.ReasonUnresolvableReference))
	}
	if n.Data.TransactionID == "" || n.Data.Amount <= 0 {
		return p.park(ctx, unresolvedFrom(n, body, reference, reconDomain.ReasonInvalidPayment))
	}

	return p.apply(ctx, n, body, reference)
}

func (p *ReconciliationProcessor) apply(ctx context.Context, n *gateway.Notification, body []byte, reference string) (*Outcome, error) {
	payment := bookingDomain.Payment{
		TransactionID: n.Data.TransactionID,
		Amount:        bookingDomain.Money(n.Data.Amount),
		Description:   n.Data.Description,
		PaidAt:        n.Data.PaidAt,
	}

	var result bookingDomain.SettlementResult
	bk, err := p.repo.Modify(ctx, reference, func(b *bookingDomain.Booking) error {
		r, err := b.ApplySettlement(payment)
		if err != nil {
			return err
		}
		result = r
		if r == bookingDomain.SettlementDuplicate {
			return bookingDomain.ErrNoChange
		}
		return nil
	})
	if err != nil {
		if reason, ok := unresolvedReason(err); ok {
			return p.park(ctx, unresolvedFrom(n, body, reference, reason))
		}
		if domain.IsConflict(err) {
			// The history unique index caught a concurrent redelivery.
			p.logger.Info("duplicate gateway transaction rejected by store",
				zap.String("reference", reference),
				zap.String("transaction_id", payment.TransactionID),
			)
			return &Outcome{Status: OutcomeDuplicate, Reference: reference, TransactionID: payment.TransactionID}, nil
		}
		return nil, fmt.Errorf("failed to apply settlement to %s: %w", reference, err)
	}

	ledger := bk.Ledger()
	balance := ledger.Balance.Decimal()
	outcome := &Outcome{
		Reference:     reference,
		TransactionID: payment.TransactionID,
		Balance:       &balance,
		PaymentStatus: string(ledger.Status),
	}

	if result == bookingDomain.SettlementDuplicate {
		p.logger.Info("duplicate gateway transaction skipped",
			zap.String("reference", reference),
			zap.String("transaction_id", payment.TransactionID),
		)
		outcome.Status = OutcomeDuplicate
		return outcome, nil
	}

	p.logger.Info("payment reconciled",
		zap.String("reference", reference),
		zap.String("transaction_id", payment.TransactionID),
		zap.Int64("amount", n.Data.Amount),
		zap.Int64("balance", int64(ledger.Balance)),
		zap.String("status", string(bk.Status())),
	)
	if err := p.publisher.Publish(ctx, events.BookingPaymentSettled, bk); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("event_type", events.BookingPaymentSettled),
			zap.String("reference", reference),
			zap.Error(err),
		)
	}

	outcome.Status = OutcomeApplied
	return outcome, nil
}

// park stores a notification for manual review and acknowledges it.
func (p *ReconciliationProcessor) park(ctx context.Context, rec *reconDomain.UnresolvedNotification) (*Outcome, error) {
	created, err := p.unresolved.Save(ctx, rec)
	if err != nil {
		return nil, err
	}
	if created {
		p.logger.Warn("gateway notification needs manual review",
			zap.String("reason", string(rec.Reason)),
			zap.String("event_id", rec.EventID),
			zap.String("transaction_id", rec.TransactionID),
			zap.String("reference", rec.Reference),
		)
	} else {
		p.logger.Info("gateway notification already queued for review",
			zap.String("reason", string(rec.Reason)),
			zap.String("event_id", rec.EventID),
		)
	}
	return &Outcome{
		Status:        OutcomeUnresolved,
		Reference:     rec.Reference,
		TransactionID: rec.TransactionID,
		Reason:        string(rec.Reason),
	}, nil
}

// ListUnresolved returns the manual-review queue, newest first.
func (p *ReconciliationProcessor) ListUnresolved(ctx context.Context, page, limit int) (*domain.PaginatedResult[UnresolvedDTO], error) {
	items, total, err := p.unresolved.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]UnresolvedDTO, len(items))
	for i, n := range items {
		dtos[i] = UnresolvedDTO{
			ID:            n.ID.String(),
			EventID:       n.EventID,
			EventType:     n.EventType,
			TransactionID: n.TransactionID,
			Reference:     n.Reference,
			Reason:        string(n.Reason),
			Amount:        bookingDomain.Money(n.Amount).Decimal(),
			Description:   n.Description,
			ReceivedAt:    n.ReceivedAt,
		}
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UnresolvedDTO is one entry of the manual-review queue.
type UnresolvedDTO struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id,omitempty"`
	EventType     string          `json:"event_type,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Reason        string          `json:"reason"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	ReceivedAt    time.Time       `json:"received_at"`
}

// unresolvedRecord builds a review record from whatever of body parses.
func unresolvedRecord(body []byte, reason reconDomain.Reason, description string) *reconDomain.UnresolvedNotification {
	if r := []rune(description); len(r) > maxDescriptionLength {
		description = string(r[:maxDescriptionLength])
	}
	n, err := gateway.ParseNotification(body)
	if err != nil {
		rec := reconDomain.NewUnresolvedNotification(reason)
		rec.Description = description
		if json.Valid(body) {
			rec.Payload = body
		}
		return rec
	}
	reference, _ := gateway.ExtractReference(n.Data.Description)
	rec := unresolvedFrom(n, body, reference, reason)
	rec.Description = description
	return rec
}

func unresolvedFrom(n *gateway.Notification, body []byte, reference string, reason reconDomain.Reason) *reconDomain.UnresolvedNotification {
	rec := reconDomain.NewUnresolvedNotification(reason)
	rec.EventID = n.ID
	rec.EventType = n.Type
	rec.TransactionID = n.Data.TransactionID
	rec.Reference = reference
	rec.Amount = n.Data.Amount
	rec.Description = n.Data.Description
	rec.Payload = body
	return rec
}

// unresolvedReason maps a settlement rejection to a review reason. Errors that
// are not business rejections report false.
func unresolvedReason(err error) (reconDomain.Reason, bool) {
	switch {
	case domain.IsNotFound(err):
		return reconDomain.ReasonBookingNotFound, true
	case errors.Is(err, bookingDomain.ErrNotAwaitingPayment):
		return reconDomain.ReasonNotAwaitingPayment, true
	case domain.IsValidation(err):
		return reconDomain.ReasonInvalidPayment, true
	}

	var stateErr *domain.InvalidStateError
	if errors.As(err, &stateErr) {
		switch bookingDomain.InquiryStatus(stateErr.From) {
		case bookingDomain.StatusDeclined:
			return reconDomain.ReasonBookingDeclined, true
		case bookingDomain.StatusPaid:
			return reconDomain.ReasonAlreadyPaid, true
		default:
			return reconDomain.ReasonRejectedTransition, true
		}
	}
	return "", false
}
