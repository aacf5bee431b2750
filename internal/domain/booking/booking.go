package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hearth-catering/service-booking/pkg/domain"
)

// ErrNotAwaitingPayment is returned when a settlement arrives for a booking
// whose contract (and therefore ledger totals) has not been sent yet.
var ErrNotAwaitingPayment = errors.New("booking is not awaiting payment")

// Booking is the aggregate root joining the four records of one booking.
// All mutations go through its methods so that the records stay consistent.
type Booking struct {
	inquiry  Inquiry
	proposal Proposal
	ledger   PaymentLedger
	activity ActivityLog
	version  int64
}

// NewBooking creates a Pending booking with empty proposal and ledger and a
// single System entry in the activity log.
func NewBooking(reference string, customer Customer, event EventDetails) (*Booking, error) {
	if _, ok := ParseReferenceNumber(reference); !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid reference: %s", reference))
	}
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)
	if err := customer.validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := event.validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	now := time.Now().UTC()
	b := &Booking{
		inquiry: Inquiry{
			ID:        uuid.New(),
			Reference: reference,
			Customer:  customer,
			Event:     event,
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
		proposal: Proposal{
			ID:        uuid.New(),
			Reference: reference,
			UpdatedAt: now,
		},
		ledger: PaymentLedger{
			ID:        uuid.New(),
			Reference: reference,
			Status:    PaymentUnpaid,
			UpdatedAt: now,
		},
		activity: ActivityLog{
			ID:        uuid.New(),
			Reference: reference,
		},
		version: 1,
	}
	b.log(now, ActorSystem, fmt.Sprintf("Inquiry received from %s for %d guests on %s",
		customer.Name, event.Guests, event.Date.Format(DateLayout)))
	return b, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(inquiry Inquiry, proposal Proposal, ledger PaymentLedger, activity ActivityLog, version int64) *Booking {
	return &Booking{
		inquiry:  inquiry,
		proposal: proposal,
		ledger:   ledger,
		activity: activity,
		version:  version,
	}
}

// --- Getters (copies, so callers cannot bypass the aggregate) ---

// Reference returns the booking reference.
func (b *Booking) Reference() string { return b.inquiry.Reference }

// Status returns the lifecycle status.
func (b *Booking) Status() InquiryStatus { return b.inquiry.Status }

// Version returns the aggregate version for optimistic checks.
func (b *Booking) Version() int64 { return b.version }

// Inquiry returns a copy of the inquiry record.
func (b *Booking) Inquiry() Inquiry { return b.inquiry }

// Proposal returns a copy of the proposal record.
func (b *Booking) Proposal() Proposal {
	p := b.proposal
	p.WorkingAddOnIDs = cloneStrings(p.WorkingAddOnIDs)
	p.ClientAddOnIDs = cloneStrings(p.ClientAddOnIDs)
	if p.Breakdown != nil {
		q := *p.Breakdown
		p.Breakdown = &q
	}
	return p
}

// Ledger returns a copy of the payment ledger.
func (b *Booking) Ledger() PaymentLedger {
	l := b.ledger
	l.History = append([]Settlement(nil), l.History...)
	return l
}

// Activity returns a copy of the activity log.
func (b *Booking) Activity() ActivityLog {
	a := b.activity
	a.Timeline = append([]ActivityEntry(nil), a.Timeline...)
	return a
}

// --- Behavior ---

// ProposalTerms is a priced proposal prepared by staff.
type ProposalTerms struct {
	PackageID string
	AddOnIDs  []string
	Quote     Quote
}

// SendProposal records the priced proposal and moves the booking to Reviewing.
func (b *Booking) SendProposal(terms ProposalTerms) error {
	if !b.inquiry.Status.CanTransitionTo(StatusReviewing) {
		return domain.NewInvalidStateError(string(b.inquiry.Status), string(StatusReviewing))
	}
	if terms.PackageID == "" {
		return domain.NewValidationError("package is required")
	}
	if terms.Quote.GrandTotal <= 0 {
		return domain.NewValidationError("proposal total must be positive")
	}

	now := time.Now().UTC()
	quote := terms.Quote
	b.proposal.WorkingPackageID = terms.PackageID
	b.proposal.WorkingAddOnIDs = cloneStrings(terms.AddOnIDs)
	b.proposal.Breakdown = &quote
	b.proposal.SentAt = &now
	b.proposal.UpdatedAt = now
	b.setStatus(StatusReviewing, now)
	b.log(now, ActorAdmin, fmt.Sprintf("Proposal sent with total %s", quote.GrandTotal))
	return nil
}

// Selection is the client's final package and add-on choice.
type Selection struct {
	PackageID string
	AddOnIDs  []string
}

// AcceptProposal records the client's selection and approval.
func (b *Booking) AcceptProposal(sel Selection, total Money) error {
	if !b.inquiry.Status.CanTransitionTo(StatusProposalAccepted) {
		return domain.NewInvalidStateError(string(b.inquiry.Status), string(StatusProposalAccepted))
	}
	if sel.PackageID == "" {
		return domain.NewValidationError("package is required")
	}
	if total <= 0 {
		return domain.NewValidationError("accepted total must be positive")
	}

	now := time.Now().UTC()
	b.proposal.ClientPackageID = sel.PackageID
	b.proposal.ClientAddOnIDs = cloneStrings(sel.AddOnIDs)
	b.proposal.AcceptedTotal = total
	b.proposal.IsApproved = true
	b.proposal.ApprovedAt = &now
	b.proposal.UpdatedAt = now
	b.setStatus(StatusProposalAccepted, now)
	b.log(now, ActorClient, fmt.Sprintf("Proposal accepted with total %s", total))
	return nil
}

// ContractTerms are the financials snapshotted into the ledger when the
// contract and payment link go out.
type ContractTerms struct {
	TotalCost      Money
	ReservationFee Money
	Downpayment    Money
	Summary        string
	// Override allows sending a contract before the client accepted the proposal.
	Override bool
}

// RequiresOverride reports whether sending a contract now bypasses client acceptance.
func (b *Booking) RequiresOverride() bool {
	s := b.inquiry.Status
	return s == StatusPending || s == StatusReviewing
}

// SendContract snapshots totals into the ledger and moves the booking to Contract Sent.
func (b *Booking) SendContract(terms ContractTerms) error {
	if !b.inquiry.Status.CanTransitionTo(StatusContractSent) {
		return domain.NewInvalidStateError(string(b.inquiry.Status), string(StatusContractSent))
	}
	overriding := b.RequiresOverride()
	if overriding && !terms.Override {
		return domain.NewInvalidStateError(string(b.inquiry.Status), string(StatusContractSent)+" (client has not accepted; admin override required)")
	}
	if terms.TotalCost <= 0 {
		return domain.NewValidationError("contract total must be positive")
	}
	if terms.ReservationFee < 0 {
		return domain.NewValidationError("reservation fee cannot be negative")
	}
	if terms.Downpayment < 0 || terms.Downpayment > terms.TotalCost {
		return domain.NewValidationError("downpayment must be between zero and the contract total")
	}
	downpayment := terms.Downpayment
	if downpayment == 0 {
		downpayment = Downpayment(terms.TotalCost)
	}

	// Every applied payment leaves Contract Sent, so the ledger holds no
	// history here and the balance starts at the full total.
	now := time.Now().UTC()
	b.ledger.TotalCost = terms.TotalCost
	b.ledger.ReservationFee = terms.ReservationFee
	b.ledger.Downpayment = downpayment
	b.ledger.Balance = terms.TotalCost
	b.ledger.Status = PaymentPending
	b.ledger.PaymentLinkGenerated = true
	b.ledger.LastLinkSent = &now
	b.ledger.ContractSummary = strings.TrimSpace(terms.Summary)
	b.ledger.UpdatedAt = now

	b.setStatus(StatusContractSent, now)
	if overriding {
		b.log(now, ActorAdmin, fmt.Sprintf("Contract sent without client acceptance (admin override), total %s, downpayment %s",
			terms.TotalCost, downpayment))
	} else {
		b.log(now, ActorAdmin, fmt.Sprintf("Contract sent, total %s, downpayment %s", terms.TotalCost, downpayment))
	}
	return nil
}

// Decline ends the booking. Declined is terminal.
func (b *Booking) Decline(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.NewValidationError("decline reason is required")
	}
	if !b.inquiry.Status.CanTransitionTo(StatusDeclined) {
		return domain.NewInvalidStateError(string(b.inquiry.Status), string(StatusDeclined))
	}

	now := time.Now().UTC()
	b.inquiry.RejectionReason = reason
	b.inquiry.DeclinedAt = &now
	b.setStatus(StatusDeclined, now)
	b.log(now, ActorAdmin, "Booking declined: "+reason)
	return nil
}

// Payment is a settled gateway transaction to apply to the ledger.
type Payment struct {
	TransactionID string
	Amount        Money
	Description   string
	PaidAt        time.Time
}

// SettlementResult says what ApplySettlement did.
type SettlementResult string

const (
	SettlementApplied   SettlementResult = "applied"
	SettlementDuplicate SettlementResult = "duplicate"
)

// ApplySettlement decrements the balance by a gateway payment. A transaction id
// already present in the history is skipped and reported as a duplicate.
func (b *Booking) ApplySettlement(p Payment) (SettlementResult, error) {
	if strings.TrimSpace(p.TransactionID) == "" {
		return "", domain.NewValidationError("transaction id is required")
	}
	if p.Amount <= 0 {
		return "", domain.NewValidationError("payment amount must be positive")
	}
	if p.Amount > MaxMoney {
		return "", ErrAmountOutOfRange
	}
	if b.ledger.HasTransaction(p.TransactionID) {
		return SettlementDuplicate, nil
	}
	if !b.ledger.PaymentLinkGenerated {
		return "", ErrNotAwaitingPayment
	}

	newBalance := Balance(b.ledger.Balance, p.Amount)
	target, paymentStatus := StatusConfirmed, PaymentPartiallyPaid
	if IsSettled(newBalance) {
		target, paymentStatus = StatusPaid, PaymentPaid
	}
	if !b.inquiry.Status.CanTransitionTo(target) {
		return "", domain.NewInvalidStateError(string(b.inquiry.Status), string(target))
	}

	now := time.Now().UTC()
	paidAt := p.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}
	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = "Gateway payment"
	}

	b.ledger.History = append(b.ledger.History, Settlement{
		Date:          paidAt.UTC(),
		Description:   description,
		Amount:        p.Amount,
		TransactionID: p.TransactionID,
	})
	b.ledger.Balance = newBalance
	b.ledger.Status = paymentStatus
	b.ledger.UpdatedAt = now

	b.setStatus(target, now)
	b.log(now, ActorSystem, fmt.Sprintf("Payment of %s received (%s), balance %s",
		p.Amount, p.TransactionID, newBalance))
	return SettlementApplied, nil
}

// IncrementVersion bumps the version after a successful mutation.
func (b *Booking) IncrementVersion() {
	b.version++
}

func (b *Booking) setStatus(status InquiryStatus, now time.Time) {
	b.inquiry.Status = status
	b.inquiry.UpdatedAt = now
}

func (b *Booking) log(now time.Time, actor Actor, action string) {
	b.activity.Timeline = append(b.activity.Timeline, ActivityEntry{
		Date:   now,
		Actor:  actor,
		Action: action,
	})
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
