package booking

import "fmt"

// InquiryStatus is the lifecycle state of a booking.
type InquiryStatus string

const (
	StatusPending          InquiryStatus = "Pending"
	StatusReviewing        InquiryStatus = "Reviewing"
	StatusProposalAccepted InquiryStatus = "Proposal Accepted"
	StatusContractSent     InquiryStatus = "Contract Sent"
	StatusConfirmed        InquiryStatus = "Confirmed"
	StatusPaid             InquiryStatus = "Paid"
	StatusDeclined         InquiryStatus = "Declined"
)

// validTransitions defines the booking lifecycle. Pending/Reviewing -> Contract Sent
// is only reachable through an explicit admin override (see Booking.SendContract).
var validTransitions = map[InquiryStatus][]InquiryStatus{
	StatusPending:          {StatusReviewing, StatusContractSent, StatusDeclined},
	StatusReviewing:        {StatusReviewing, StatusProposalAccepted, StatusContractSent, StatusDeclined},
	StatusProposalAccepted: {StatusContractSent, StatusDeclined},
	StatusContractSent:     {StatusContractSent, StatusConfirmed, StatusPaid, StatusDeclined},
	StatusConfirmed:        {StatusConfirmed, StatusPaid, StatusDeclined},
	StatusPaid:             {},
	StatusDeclined:         {},
}

// IsValid returns true if the status is a recognized lifecycle status.
func (s InquiryStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to target is allowed.
func (s InquiryStatus) CanTransitionTo(target InquiryStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s InquiryStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsBooked reports whether the event is confirmed for the kitchen (deposit or full payment received).
func (s InquiryStatus) IsBooked() bool {
	return s == StatusConfirmed || s == StatusPaid
}

func (s InquiryStatus) String() string {
	return string(s)
}

// ParseInquiryStatus converts a string to an InquiryStatus.
func ParseInquiryStatus(s string) (InquiryStatus, error) {
	status := InquiryStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid inquiry status: %s", s)
	}
	return status, nil
}

// PaymentStatus is the money state of a booking's ledger.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "Unpaid"
	PaymentPending       PaymentStatus = "Payment Pending"
	PaymentPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentPaid          PaymentStatus = "Paid"
)

// IsValid returns true if the payment status is recognized.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentPending, PaymentPartiallyPaid, PaymentPaid:
		return true
	}
	return false
}

// ParsePaymentStatus converts a string to a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

// Actor identifies who performed an action recorded in the activity log.
type Actor string

const (
	ActorSystem Actor = "System"
	ActorAdmin  Actor = "Admin"
	ActorClient Actor = "Client"
)
