package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	calendarDomain "github.com/hearth-catering/service-booking/internal/domain/calendar"
	"github.com/hearth-catering/service-booking/internal/gateway"
	"github.com/hearth-catering/service-booking/pkg/domain"
	"github.com/hearth-catering/service-booking/pkg/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo       bookingDomain.Repository
	calendar   calendarDomain.BlockedDateRepository
	catalog    *bookingDomain.Catalog
	calculator bookingDomain.SettlementCalculator
	notifier   Notifier
	publisher  EventPublisher
	links      PaymentLinkCreator
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService. links may be nil, in which
// case contracts go out without a checkout URL.
func NewBookingService(
	repo bookingDomain.Repository,
	calendar calendarDomain.BlockedDateRepository,
	catalog *bookingDomain.Catalog,
	calculator bookingDomain.SettlementCalculator,
	notifier Notifier,
	publisher EventPublisher,
	links PaymentLinkCreator,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:       repo,
		calendar:   calendar,
		catalog:    catalog,
		calculator: calculator,
		notifier:   notifier,
		publisher:  publisher,
		links:      links,
		logger:     logger,
	}
}

// CreateBooking records a customer inquiry under a freshly allocated reference.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateInquiryRequest) (*CreateInquiryResult, error) {
	if strings.TrimSpace(req.EventDate) == "" {
		return nil, domain.NewValidationError("event date is required")
	}
	eventDate, err := bookingDomain.ParseEventDate(req.EventDate)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	blocked, err := s.calendar.IsBlocked(ctx, eventDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check calendar: %w", err)
	}
	if blocked {
		return nil, domain.NewConflictError(fmt.Sprintf("event date %s is not available", eventDate.Format(bookingDomain.DateLayout)))
	}

	budget, err := bookingDomain.MoneyFromDecimal(req.BudgetEstimate)
	if err != nil {
		return nil, err
	}

	customer := bookingDomain.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: strings.TrimSpace(req.Phone),
	}
	event := bookingDomain.EventDetails{
		Date:           eventDate,
		StartTime:      strings.TrimSpace(req.StartTime),
		EndTime:        strings.TrimSpace(req.EndTime),
		Guests:         req.Guests,
		BudgetEstimate: budget,
		EventType:      bookingDomain.EventType(strings.TrimSpace(req.EventType)),
		ServiceStyle:   bookingDomain.ServiceStyle(strings.TrimSpace(req.ServiceStyle)),
		Venue:          strings.TrimSpace(req.Venue),
		Notes:          strings.TrimSpace(req.Notes),
	}

	bk, err := s.repo.Create(ctx, func(reference string) (*bookingDomain.Booking, error) {
		return bookingDomain.NewBooking(reference, customer, event)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("reference", bk.Reference()),
		zap.String("event_date", eventDate.Format(bookingDomain.DateLayout)),
		zap.Int("guests", req.Guests),
	)
	s.publish(ctx, events.BookingCreated, bk)

	return &CreateInquiryResult{Reference: bk.Reference(), Status: string(bk.Status())}, nil
}

// GetBooking returns the merged view of one booking.
func (s *BookingService) GetBooking(ctx context.Context, reference string) (*BookingDTO, error) {
	bk, err := s.repo.FindByReference(ctx, normalizeReference(reference))
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings returns booking summaries, newest first.
func (s *BookingService) ListBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingSummaryDTO], error) {
	bookings, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingSummaryDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingSummaryDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// SendProposal prices staff's selection with the estimate policy and sends it.
func (s *BookingService) SendProposal(ctx context.Context, reference string, req SendProposalRequest) (*BookingDTO, error) {
	pkg, ok := s.catalog.Package(req.PackageID)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown package: %s", req.PackageID))
	}

	bk, err := s.repo.Modify(ctx, normalizeReference(reference), func(b *bookingDomain.Booking) error {
		quote, err := s.calculator.Estimate(bookingDomain.PricingParams{
			Guests:       b.Inquiry().Event.Guests,
			PackagePrice: pkg.PricePerHead,
			AddOnIDs:     req.AddOnIDs,
		})
		if err != nil {
			return err
		}
		return b.SendProposal(bookingDomain.ProposalTerms{
			PackageID: pkg.ID,
			AddOnIDs:  req.AddOnIDs,
			Quote:     quote,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("proposal sent",
		zap.String("reference", bk.Reference()),
		zap.String("package", pkg.ID),
		zap.Int64("grand_total", int64(bk.Proposal().Breakdown.GrandTotal)),
	)
	if err := s.notifier.ProposalSent(ctx, bk); err != nil {
		s.logger.Error("failed to send proposal notification", zap.String("reference", bk.Reference()), zap.Error(err))
	}
	s.publish(ctx, events.BookingProposalSent, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// AcceptProposal records the client's final selection at the locked total.
func (s *BookingService) AcceptProposal(ctx context.Context, reference string, req AcceptProposalRequest) (*BookingDTO, error) {
	pkg, ok := s.catalog.Package(req.PackageID)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown package: %s", req.PackageID))
	}

	var locked bookingDomain.Quote
	bk, err := s.repo.Modify(ctx, normalizeReference(reference), func(b *bookingDomain.Booking) error {
		var err error
		locked, err = s.calculator.LockedTotal(bookingDomain.PricingParams{
			Guests:       b.Inquiry().Event.Guests,
			PackagePrice: pkg.PricePerHead,
			AddOnIDs:     req.AddOnIDs,
		})
		if err != nil {
			return err
		}
		return b.AcceptProposal(bookingDomain.Selection{PackageID: pkg.ID, AddOnIDs: req.AddOnIDs}, locked.GrandTotal)
	})
	if err != nil {
		return nil, err
	}

	if req.Total != nil {
		if shown, err := bookingDomain.MoneyFromDecimal(*req.Total); err != nil || shown != locked.GrandTotal {
			s.logger.Warn("client total differs from locked total",
				zap.String("reference", bk.Reference()),
				zap.Int64("client_total", int64(shown)),
				zap.Int64("locked_total", int64(locked.GrandTotal)),
			)
		}
	}
	s.logger.Info("proposal accepted",
		zap.String("reference", bk.Reference()),
		zap.Int64("total", int64(locked.GrandTotal)),
	)
	s.publish(ctx, events.BookingProposalAccepted, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// SendContract snapshots the financials, requests a payment link and notifies the client.
func (s *BookingService) SendContract(ctx context.Context, reference string, req SendContractRequest) (*BookingDTO, error) {
	if req.ReservationFee.IsNegative() {
		return nil, domain.NewValidationError("reservation fee cannot be negative")
	}
	reservationFee, err := bookingDomain.MoneyFromDecimal(req.ReservationFee)
	if err != nil {
		return nil, err
	}
	var downpayment bookingDomain.Money
	if req.Downpayment != nil {
		if downpayment, err = bookingDomain.MoneyFromDecimal(*req.Downpayment); err != nil {
			return nil, err
		}
	}

	bk, err := s.repo.Modify(ctx, normalizeReference(reference), func(b *bookingDomain.Booking) error {
		total, err := contractTotal(b, req.TotalCost)
		if err != nil {
			return err
		}
		return b.SendContract(bookingDomain.ContractTerms{
			TotalCost:      total,
			ReservationFee: reservationFee,
			Downpayment:    downpayment,
			Summary:        req.Summary,
			Override:       req.Override,
		})
	})
	if err != nil {
		return nil, err
	}

	ledger := bk.Ledger()
	s.logger.Info("contract sent",
		zap.String("reference", bk.Reference()),
		zap.Int64("total_cost", int64(ledger.TotalCost)),
		zap.Int64("downpayment", int64(ledger.Downpayment)),
		zap.Bool("override", req.Override),
	)

	linkURL := s.createPaymentLink(ctx, bk)
	if err := s.notifier.ContractSent(ctx, bk, linkURL); err != nil {
		s.logger.Error("failed to send contract notification", zap.String("reference", bk.Reference()), zap.Error(err))
	}
	s.publish(ctx, events.BookingContractSent, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// DeclineBooking ends a booking with a reason.
func (s *BookingService) DeclineBooking(ctx context.Context, reference, reason string) (*BookingDTO, error) {
	bk, err := s.repo.Modify(ctx, normalizeReference(reference), func(b *bookingDomain.Booking) error {
		return b.Decline(reason)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking declined",
		zap.String("reference", bk.Reference()),
		zap.String("reason", bk.Inquiry().RejectionReason),
	)
	if err := s.notifier.BookingDeclined(ctx, bk); err != nil {
		s.logger.Error("failed to send decline notification", zap.String("reference", bk.Reference()), zap.Error(err))
	}
	s.publish(ctx, events.BookingDeclined, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// Quote prices a selection with the estimate policy without touching any booking.
func (s *BookingService) Quote(_ context.Context, req QuoteRequest) (*QuoteDTO, error) {
	pkg, ok := s.catalog.Package(req.PackageID)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown package: %s", req.PackageID))
	}
	q, err := s.calculator.Estimate(bookingDomain.PricingParams{
		Guests:       req.Guests,
		PackagePrice: pkg.PricePerHead,
		AddOnIDs:     req.AddOnIDs,
	})
	if err != nil {
		return nil, err
	}
	return toQuoteDTO(q), nil
}

// Catalog returns the packages and add-ons on offer.
func (s *BookingService) Catalog() *CatalogDTO {
	return toCatalogDTO(s.catalog)
}

// KitchenEvents lists Confirmed and Paid bookings for a date.
func (s *BookingService) KitchenEvents(ctx context.Context, date string) ([]KitchenEventDTO, error) {
	if strings.TrimSpace(date) == "" {
		return nil, domain.NewValidationError("date is required")
	}
	day, err := bookingDomain.ParseEventDate(date)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bookings, err := s.repo.FindByEventDate(ctx, day, bookingDomain.StatusConfirmed, bookingDomain.StatusPaid)
	if err != nil {
		return nil, err
	}

	dtos := make([]KitchenEventDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toKitchenEventDTO(bk)
	}
	return dtos, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// contractTotal picks the contract total: the explicit figure, else the
// accepted total, else the last proposal's grand total.
func contractTotal(b *bookingDomain.Booking, explicit *decimal.Decimal) (bookingDomain.Money, error) {
	if explicit != nil {
		return bookingDomain.MoneyFromDecimal(*explicit)
	}
	p := b.Proposal()
	if p.IsApproved {
		return p.AcceptedTotal, nil
	}
	if p.Breakdown != nil {
		return p.Breakdown.GrandTotal, nil
	}
	return 0, nil
}

func (s *BookingService) createPaymentLink(ctx context.Context, bk *bookingDomain.Booking) string {
	if s.links == nil {
		return ""
	}
	ledger := bk.Ledger()
	amount := ledger.Downpayment
	if ledger.AmountPaid() > 0 || amount == 0 {
		amount = ledger.Balance
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	link, err := s.links.CreatePaymentLink(ctx, gateway.LinkRequest{
		Reference:   bk.Reference(),
		Amount:      int64(amount),
		Description: fmt.Sprintf("Catering for %s on %s", bk.Inquiry().Customer.Name, bk.Inquiry().Event.Date.Format(bookingDomain.DateLayout)),
	})
	if err != nil {
		s.logger.Error("failed to create payment link",
			zap.String("reference", bk.Reference()),
			zap.Error(err),
		)
		return ""
	}
	s.logger.Info("payment link created",
		zap.String("reference", bk.Reference()),
		zap.String("link_id", link.ID),
	)
	return link.CheckoutURL
}

func (s *BookingService) publish(ctx context.Context, eventType string, bk *bookingDomain.Booking) {
	if err := s.publisher.Publish(ctx, eventType, bk); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("reference", bk.Reference()),
			zap.Error(err),
		)
	}
}

func normalizeReference(reference string) string {
	return strings.ToUpper(strings.TrimSpace(reference))
}
