package application

import (
	"context"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	"github.com/hearth-catering/service-booking/internal/gateway"
	"go.uber.org/zap"
)

// Notifier hands transition details to the email collaborator.
type Notifier interface {
	ProposalSent(ctx context.Context, bk *bookingDomain.Booking) error
	ContractSent(ctx context.Context, bk *bookingDomain.Booking, paymentLinkURL string) error
	BookingDeclined(ctx context.Context, bk *bookingDomain.Booking) error
}

// EventPublisher announces committed lifecycle transitions.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, bk *bookingDomain.Booking) error
}

// PaymentLinkCreator obtains checkout links from the payment gateway.
type PaymentLinkCreator interface {
	CreatePaymentLink(ctx context.Context, req gateway.LinkRequest) (*gateway.PaymentLink, error)
}

// LogNotifier only logs notifications. Used when Kafka is disabled.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ProposalSent(_ context.Context, bk *bookingDomain.Booking) error {
	n.logger.Info("email notification", zap.String("template", "proposal_sent"), zap.String("reference", bk.Reference()))
	return nil
}

func (n *LogNotifier) ContractSent(_ context.Context, bk *bookingDomain.Booking, paymentLinkURL string) error {
	n.logger.Info("email notification",
		zap.String("template", "contract_sent"),
		zap.String("reference", bk.Reference()),
		zap.String("payment_link", paymentLinkURL),
	)
	return nil
}

func (n *LogNotifier) BookingDeclined(_ context.Context, bk *bookingDomain.Booking) error {
	n.logger.Info("email notification", zap.String("template", "booking_declined"), zap.String("reference", bk.Reference()))
	return nil
}

// LogPublisher only logs lifecycle events. Used when Kafka is disabled.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements EventPublisher.
func (p *LogPublisher) Publish(_ context.Context, eventType string, bk *bookingDomain.Booking) error {
	p.logger.Info("booking event",
		zap.String("type", eventType),
		zap.String("reference", bk.Reference()),
		zap.String("status", string(bk.Status())),
	)
	return nil
}
