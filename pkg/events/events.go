// Package events defines the Kafka topics, CloudEvent types and payloads the
// booking service exchanges with its collaborators.
package events

import "time"

// Topics.
const (
	TopicBookingEvents        = "booking.events"
	TopicEmailNotifications   = "notification.email"
	TopicGatewayNotifications = "payment.gateway.notifications"
)

// Booking lifecycle event types.
const (
	BookingCreated          = "booking.created"
	BookingProposalSent     = "booking.proposal_sent"
	BookingProposalAccepted = "booking.proposal_accepted"
	BookingContractSent     = "booking.contract_sent"
	BookingDeclined         = "booking.declined"
	BookingPaymentSettled   = "booking.payment_settled"
)

// Email notification types.
const (
	EmailProposalSent    = "email.proposal_sent"
	EmailContractSent    = "email.contract_sent"
	EmailBookingDeclined = "email.booking_declined"
)

// GatewayNotificationRelayed is the type of a gateway webhook relayed over Kafka.
const GatewayNotificationRelayed = "payment.gateway.notification_relayed"

// BookingEvent is the payload of every booking lifecycle event. Amounts are in
// minor units.
type BookingEvent struct {
	Reference     string    `json:"reference"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	EventDate     string    `json:"event_date"`
	Guests        int       `json:"guests"`
	TotalCost     int64     `json:"total_cost"`
	Balance       int64     `json:"balance"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EmailNotification carries the fields the email collaborator formats.
type EmailNotification struct {
	Template       string    `json:"template"`
	To             string    `json:"to"`
	CustomerName   string    `json:"customer_name"`
	Reference      string    `json:"reference"`
	EventDate      string    `json:"event_date"`
	Guests         int       `json:"guests"`
	GrandTotal     string    `json:"grand_total,omitempty"`
	Downpayment    string    `json:"downpayment,omitempty"`
	Balance        string    `json:"balance,omitempty"`
	PaymentLinkURL string    `json:"payment_link_url,omitempty"`
	Summary        string    `json:"summary,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// RelayedNotification is a raw gateway webhook forwarded through Kafka with
// its signature header intact.
type RelayedNotification struct {
	Signature string `json:"signature"`
	Payload   []byte `json:"payload"`
}
