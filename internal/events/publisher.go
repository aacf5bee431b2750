// Package events connects the booking service to Kafka: lifecycle events and
// email requests go out, relayed gateway notifications come in.
package events

import (
	"context"
	"fmt"
	"time"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	"github.com/hearth-catering/service-booking/pkg/events"
	"github.com/hearth-catering/service-booking/pkg/kafka"
)

// Source is the CloudEvents source of everything this service publishes.
const Source = "service-booking"

// EventWriter publishes a CloudEvent to a topic. *kafka.Producer implements it.
type EventWriter interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// KafkaPublisher announces lifecycle transitions on the booking events topic.
type KafkaPublisher struct {
	writer EventWriter
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(writer EventWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish implements application.EventPublisher.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, bk *bookingDomain.Booking) error {
	inq := bk.Inquiry()
	ledger := bk.Ledger()
	payload := events.BookingEvent{
		Reference:     inq.Reference,
		Status:        string(inq.Status),
		PaymentStatus: string(ledger.Status),
		EventDate:     inq.Event.Date.Format(bookingDomain.DateLayout),
		Guests:        inq.Event.Guests,
		TotalCost:     int64(ledger.TotalCost),
		Balance:       int64(ledger.Balance),
		OccurredAt:    time.Now().UTC(),
	}
	return publish(ctx, p.writer, events.TopicBookingEvents, eventType, inq.Reference, payload)
}

// KafkaNotifier hands email requests to the notification collaborator.
type KafkaNotifier struct {
	writer EventWriter
}

// NewKafkaNotifier creates a KafkaNotifier.
func NewKafkaNotifier(writer EventWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) ProposalSent(ctx context.Context, bk *bookingDomain.Booking) error {
	msg := baseEmail(bk, "proposal_sent")
	if q := bk.Proposal().Breakdown; q != nil {
		msg.GrandTotal = q.GrandTotal.String()
		msg.Downpayment = bookingDomain.Downpayment(q.GrandTotal).String()
	}
	return publish(ctx, n.writer, events.TopicEmailNotifications, events.EmailProposalSent, bk.Reference(), msg)
}

func (n *KafkaNotifier) ContractSent(ctx context.Context, bk *bookingDomain.Booking, paymentLinkURL string) error {
	ledger := bk.Ledger()
	msg := baseEmail(bk, "contract_sent")
	msg.GrandTotal = ledger.TotalCost.String()
	msg.Downpayment = ledger.Downpayment.String()
	msg.Balance = ledger.Balance.String()
	msg.PaymentLinkURL = paymentLinkURL
	msg.Summary = ledger.ContractSummary
	return publish(ctx, n.writer, events.TopicEmailNotifications, events.EmailContractSent, bk.Reference(), msg)
}

func (n *KafkaNotifier) BookingDeclined(ctx context.Context, bk *bookingDomain.Booking) error {
	msg := baseEmail(bk, "booking_declined")
	msg.Reason = bk.Inquiry().RejectionReason
	return publish(ctx, n.writer, events.TopicEmailNotifications, events.EmailBookingDeclined, bk.Reference(), msg)
}

func baseEmail(bk *bookingDomain.Booking, template string) events.EmailNotification {
	inq := bk.Inquiry()
	return events.EmailNotification{
		Template:     template,
		To:           inq.Customer.Email,
		CustomerName: inq.Customer.Name,
		Reference:    inq.Reference,
		EventDate:    inq.Event.Date.Format(bookingDomain.DateLayout),
		Guests:       inq.Event.Guests,
		OccurredAt:   time.Now().UTC(),
	}
}

func publish(ctx context.Context, w EventWriter, topic, eventType, subject string, data interface{}) error {
	ce, err := kafka.NewCloudEvent(Source, eventType, data)
	if err != nil {
		return err
	}
	ce.Subject = subject
	if err := w.PublishEvent(ctx, topic, ce); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}
