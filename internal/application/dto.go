package application

import (
	"time"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	"github.com/shopspring/decimal"
)

// CreateInquiryRequest holds a customer's event inquiry.
type CreateInquiryRequest struct {
	Name           string          `json:"name" binding:"required"`
	Email          string          `json:"email" binding:"required,email"`
	Phone          string          `json:"phone"`
	EventDate      string          `json:"event_date" binding:"required"`
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	Guests         int             `json:"guests" binding:"min=0,max=10000"`
	BudgetEstimate decimal.Decimal `json:"budget_estimate"`
	EventType      string          `json:"event_type"`
	ServiceStyle   string          `json:"service_style"`
	Venue          string          `json:"venue"`
	Notes          string          `json:"notes"`
}

// CreateInquiryResult is returned after a booking is created.
type CreateInquiryResult struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// SendProposalRequest is staff's package and add-on selection to price and send.
type SendProposalRequest struct {
	PackageID string   `json:"package_id" binding:"required"`
	AddOnIDs  []string `json:"add_on_ids"`
}

// AcceptProposalRequest is the client's final selection. Total is the figure
// the client saw; the server recomputes it and the recomputed value wins.
type AcceptProposalRequest struct {
	PackageID string           `json:"package_id" binding:"required"`
	AddOnIDs  []string         `json:"add_on_ids"`
	Total     *decimal.Decimal `json:"total"`
}

// SendContractRequest holds the financials snapshotted into the ledger.
// Omitted amounts default to the accepted total and a 50% downpayment.
type SendContractRequest struct {
	TotalCost      *decimal.Decimal `json:"total_cost"`
	ReservationFee decimal.Decimal  `json:"reservation_fee"`
	Downpayment    *decimal.Decimal `json:"downpayment"`
	Summary        string           `json:"summary"`
	Override       bool             `json:"override"`
}

// DeclineRequest carries the decline reason.
type DeclineRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// QuoteRequest asks for an estimate without touching any booking.
type QuoteRequest struct {
	Guests    int      `json:"guests" binding:"min=0,max=10000"`
	PackageID string   `json:"package_id" binding:"required"`
	AddOnIDs  []string `json:"add_on_ids"`
}

// QuoteDTO is a priced breakdown in major units.
type QuoteDTO struct {
	PackageTotal  decimal.Decimal `json:"package_total"`
	AddOnsTotal   decimal.Decimal `json:"add_ons_total"`
	TransportFee  decimal.Decimal `json:"transport_fee"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Downpayment   decimal.Decimal `json:"downpayment"`
}

// CustomerDTO is the inquiring customer.
type CustomerDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// EventDTO describes the catered event.
type EventDTO struct {
	Date           string          `json:"date"`
	StartTime      string          `json:"start_time,omitempty"`
	EndTime        string          `json:"end_time,omitempty"`
	Guests         int             `json:"guests"`
	BudgetEstimate decimal.Decimal `json:"budget_estimate"`
	EventType      string          `json:"event_type,omitempty"`
	ServiceStyle   string          `json:"service_style,omitempty"`
	Venue          string          `json:"venue,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// ProposalDTO is the proposal record.
type ProposalDTO struct {
	WorkingPackageID string          `json:"working_package_id,omitempty"`
	WorkingAddOnIDs  []string        `json:"working_add_on_ids"`
	Breakdown        *QuoteDTO       `json:"breakdown"`
	SentAt           *time.Time      `json:"sent_at,omitempty"`
	ClientPackageID  string          `json:"client_package_id,omitempty"`
	ClientAddOnIDs   []string        `json:"client_add_on_ids"`
	AcceptedTotal    decimal.Decimal `json:"accepted_total"`
	IsApproved       bool            `json:"is_approved"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
}

// SettlementDTO is one ledger history entry.
type SettlementDTO struct {
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

// LedgerDTO is the payment ledger.
type LedgerDTO struct {
	TotalCost            decimal.Decimal `json:"total_cost"`
	ReservationFee       decimal.Decimal `json:"reservation_fee"`
	Downpayment          decimal.Decimal `json:"downpayment"`
	Balance              decimal.Decimal `json:"balance"`
	AmountPaid           decimal.Decimal `json:"amount_paid"`
	Status               string          `json:"status"`
	History              []SettlementDTO `json:"history"`
	PaymentLinkGenerated bool            `json:"payment_link_generated"`
	LastLinkSent         *time.Time      `json:"last_link_sent,omitempty"`
	ContractSummary      string          `json:"contract_summary,omitempty"`
}

// ActivityEntryDTO is one timeline entry.
type ActivityEntryDTO struct {
	Date   time.Time `json:"date"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
}

// BookingDTO is the merged view of the four booking records.
type BookingDTO struct {
	Reference       string             `json:"reference"`
	Status          string             `json:"status"`
	Customer        CustomerDTO        `json:"customer"`
	Event           EventDTO           `json:"event"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	DeclinedAt      *time.Time         `json:"declined_at,omitempty"`
	Proposal        ProposalDTO        `json:"proposal"`
	Ledger          LedgerDTO          `json:"ledger"`
	InternalNotes   string             `json:"internal_notes,omitempty"`
	Timeline        []ActivityEntryDTO `json:"timeline"`
	Version         int64              `json:"version"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// BookingSummaryDTO is a list row.
type BookingSummaryDTO struct {
	Reference     string          `json:"reference"`
	CustomerName  string          `json:"customer_name"`
	EventDate     string          `json:"event_date"`
	Guests        int             `json:"guests"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

// KitchenEventDTO is what the kitchen collaborator needs to plan an event.
type KitchenEventDTO struct {
	Reference    string   `json:"reference"`
	Status       string   `json:"status"`
	EventDate    string   `json:"event_date"`
	StartTime    string   `json:"start_time,omitempty"`
	Guests       int      `json:"guests"`
	ServiceStyle string   `json:"service_style,omitempty"`
	Venue        string   `json:"venue,omitempty"`
	PackageID    string   `json:"package_id,omitempty"`
	AddOnIDs     []string `json:"add_on_ids"`
}

// PackageDTO is a menu package with its price per head in major units.
type PackageDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	PricePerHead decimal.Decimal `json:"price_per_head"`
}

// AddOnDTO is an optional extra; Kind is "flat" or "per_head".
type AddOnDTO struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Kind  string          `json:"kind"`
	Price decimal.Decimal `json:"price"`
}

// CatalogDTO lists what can be selected in a proposal.
type CatalogDTO struct {
	Packages []PackageDTO `json:"packages"`
	AddOns   []AddOnDTO   `json:"add_ons"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// --- Mapping ---

func toQuoteDTO(q bookingDomain.Quote) *QuoteDTO {
	return &QuoteDTO{
		PackageTotal:  q.PackageTotal.Decimal(),
		AddOnsTotal:   q.AddOnsTotal.Decimal(),
		TransportFee:  q.TransportFee.Decimal(),
		ServiceCharge: q.ServiceCharge.Decimal(),
		GrandTotal:    q.GrandTotal.Decimal(),
		Downpayment:   bookingDomain.Downpayment(q.GrandTotal).Decimal(),
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	inq := bk.Inquiry()
	prop := bk.Proposal()
	ledger := bk.Ledger()
	activity := bk.Activity()

	var breakdown *QuoteDTO
	if prop.Breakdown != nil {
		breakdown = toQuoteDTO(*prop.Breakdown)
	}

	history := make([]SettlementDTO, len(ledger.History))
	for i, s := range ledger.History {
		history[i] = SettlementDTO{
			Date:          s.Date,
			Description:   s.Description,
			Amount:        s.Amount.Decimal(),
			TransactionID: s.TransactionID,
		}
	}

	timeline := make([]ActivityEntryDTO, len(activity.Timeline))
	for i, e := range activity.Timeline {
		timeline[i] = ActivityEntryDTO{Date: e.Date, Actor: string(e.Actor), Action: e.Action}
	}

	return BookingDTO{
		Reference: inq.Reference,
		Status:    string(inq.Status),
		Customer: CustomerDTO{
			Name:  inq.Customer.Name,
			Email: inq.Customer.Email,
			Phone: inq.Customer.Phone,
		},
		Event: EventDTO{
			Date:           inq.Event.Date.Format(bookingDomain.DateLayout),
			StartTime:      inq.Event.StartTime,
			EndTime:        inq.Event.EndTime,
			Guests:         inq.Event.Guests,
			BudgetEstimate: inq.Event.BudgetEstimate.Decimal(),
			EventType:      string(inq.Event.EventType),
			ServiceStyle:   string(inq.Event.ServiceStyle),
			Venue:          inq.Event.Venue,
			Notes:          inq.Event.Notes,
		},
		RejectionReason: inq.RejectionReason,
		DeclinedAt:      inq.DeclinedAt,
		Proposal: ProposalDTO{
			WorkingPackageID: prop.WorkingPackageID,
			WorkingAddOnIDs:  nonNil(prop.WorkingAddOnIDs),
			Breakdown:        breakdown,
			SentAt:           prop.SentAt,
			ClientPackageID:  prop.ClientPackageID,
			ClientAddOnIDs:   nonNil(prop.ClientAddOnIDs),
			AcceptedTotal:    prop.AcceptedTotal.Decimal(),
			IsApproved:       prop.IsApproved,
			ApprovedAt:       prop.ApprovedAt,
		},
		Ledger: LedgerDTO{
			TotalCost:            ledger.TotalCost.Decimal(),
			ReservationFee:       ledger.ReservationFee.Decimal(),
			Downpayment:          ledger.Downpayment.Decimal(),
			Balance:              ledger.Balance.Decimal(),
			AmountPaid:           ledger.AmountPaid().Decimal(),
			Status:               string(ledger.Status),
			History:              history,
			PaymentLinkGenerated: ledger.PaymentLinkGenerated,
			LastLinkSent:         ledger.LastLinkSent,
			ContractSummary:      ledger.ContractSummary,
		},
		InternalNotes: activity.InternalNotes,
		Timeline:      timeline,
		Version:       bk.Version(),
		CreatedAt:     inq.CreatedAt,
		UpdatedAt:     inq.UpdatedAt,
	}
}

func toBookingSummaryDTO(bk *bookingDomain.Booking) BookingSummaryDTO {
	inq := bk.Inquiry()
	ledger := bk.Ledger()
	return BookingSummaryDTO{
		Reference:     inq.Reference,
		CustomerName:  inq.Customer.Name,
		EventDate:     inq.Event.Date.Format(bookingDomain.DateLayout),
		Guests:        inq.Event.Guests,
		Status:        string(inq.Status),
		PaymentStatus: string(ledger.Status),
		TotalCost:     ledger.TotalCost.Decimal(),
		Balance:       ledger.Balance.Decimal(),
		CreatedAt:     inq.CreatedAt,
	}
}

func toKitchenEventDTO(bk *bookingDomain.Booking) KitchenEventDTO {
	inq := bk.Inquiry()
	prop := bk.Proposal()
	packageID, addOns := prop.ClientPackageID, prop.ClientAddOnIDs
	if packageID == "" {
		packageID, addOns = prop.WorkingPackageID, prop.WorkingAddOnIDs
	}
	return KitchenEventDTO{
		Reference:    inq.Reference,
		Status:       string(inq.Status),
		EventDate:    inq.Event.Date.Format(bookingDomain.DateLayout),
		StartTime:    inq.Event.StartTime,
		Guests:       inq.Event.Guests,
		ServiceStyle: string(inq.Event.ServiceStyle),
		Venue:        inq.Event.Venue,
		PackageID:    packageID,
		AddOnIDs:     nonNil(addOns),
	}
}

func toCatalogDTO(c *bookingDomain.Catalog) *CatalogDTO {
	packages := c.Packages()
	addOns := c.AddOns()
	out := &CatalogDTO{
		Packages: make([]PackageDTO, len(packages)),
		AddOns:   make([]AddOnDTO, len(addOns)),
	}
	for i, p := range packages {
		out.Packages[i] = PackageDTO{ID: p.ID, Name: p.Name, PricePerHead: p.PricePerHead.Decimal()}
	}
	for i, a := range addOns {
		out.AddOns[i] = AddOnDTO{ID: a.ID, Name: a.Name, Kind: string(a.Kind), Price: a.Price.Decimal()}
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
