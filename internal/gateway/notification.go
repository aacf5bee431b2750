package gateway

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Notification event types that carry a settled payment.
const (
	EventPaymentPaid     = "payment.paid"
	EventLinkPaymentPaid = "link.payment.paid"
)

var referenceMarker = regexp.MustCompile(`(?i)Ref:\s*(BK-\d+)`)

// Notification is a payment event delivered by the gateway.
type Notification struct {
	ID   string      `json:"id"`
	Type string      `json:"type"`
	Data PaymentData `json:"data"`
}

// PaymentData describes the settled transaction. Amount is in minor units.
type PaymentData struct {
	TransactionID string    `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Description   string    `json:"description"`
	PaidAt        time.Time `json:"paid_at"`
}

// ParseNotification decodes a notification body.
func ParseNotification(body []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	if strings.TrimSpace(n.Type) == "" {
		return nil, fmt.Errorf("decode notification: missing event type")
	}
	return &n, nil
}

// IsPayment reports whether the notification settles a payment.
func (n *Notification) IsPayment() bool {
	return n.Type == EventPaymentPaid || n.Type == EventLinkPaymentPaid
}

// ExtractReference finds the "Ref: BK-###" marker in a payment description.
func ExtractReference(description string) (string, bool) {
	m := referenceMarker.FindStringSubmatch(description)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// ReferenceMarker renders the marker embedded in payment link descriptions.
func ReferenceMarker(reference string) string {
	return "Ref: " + reference
}
