package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	"github.com/hearth-catering/service-booking/pkg/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// inquirySequence names the counter row that numbers booking references.
const inquirySequence = "inquiry"

// errRollback aborts a Modify transaction without surfacing an error.
var errRollback = errors.New("rollback")

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Create allocates the next reference and inserts the four booking records in
// one transaction. The event day's lock is held while the blocked dates are
// checked, so a date blocked concurrently is never booked.
func (r *GormBookingRepository) Create(ctx context.Context, build func(reference string) (*bookingDomain.Booking, error)) (*bookingDomain.Booking, error) {
	var created *bookingDomain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reference, err := allocateReference(tx)
		if err != nil {
			return err
		}

		bk, err := build(reference)
		if err != nil {
			return err
		}

		eventDate := bk.Inquiry().Event.Date
		if err := lockEventDate(tx, eventDate); err != nil {
			return err
		}
		blocked, err := isBlocked(tx, eventDate)
		if err != nil {
			return err
		}
		if blocked {
			return domain.NewConflictError(fmt.Sprintf("event date %s is not available", eventDate.Format(bookingDomain.DateLayout)))
		}

		if err := insertBooking(tx, bk); err != nil {
			return err
		}
		created = bk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Modify loads the booking with its inquiry row locked, applies fn and writes
// every record back in the same transaction.
func (r *GormBookingRepository) Modify(ctx context.Context, reference string, fn func(b *bookingDomain.Booking) error) (*bookingDomain.Booking, error) {
	var result *bookingDomain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inquiry InquiryModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reference = ?", reference).
			First(&inquiry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Booking", reference)
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		loaded, err := assemble(tx, []InquiryModel{inquiry})
		if err != nil {
			return err
		}
		bk := loaded[0]
		historyLen := len(bk.Ledger().History)
		timelineLen := len(bk.Activity().Timeline)

		if err := fn(bk); err != nil {
			if errors.Is(err, bookingDomain.ErrNoChange) {
				result = bk
				return errRollback
			}
			return err
		}

		expectedVersion := bk.Version()
		bk.IncrementVersion()
		if err := updateBooking(tx, bk, expectedVersion, historyLen, timelineLen); err != nil {
			return err
		}
		result = bk
		return nil
	})
	if err != nil && !errors.Is(err, errRollback) {
		return nil, err
	}
	return result, nil
}

// FindByReference retrieves a booking by its reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	db := r.db.WithContext(ctx)

	var inquiry InquiryModel
	if err := db.Where("reference = ?", reference).First(&inquiry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}

	bookings, err := assemble(db, []InquiryModel{inquiry})
	if err != nil {
		return nil, err
	}
	return bookings[0], nil
}

// List retrieves bookings with pagination, newest first.
func (r *GormBookingRepository) List(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&InquiryModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []InquiryModel
	offset := (page - 1) * limit
	if err := db.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := assemble(db, models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by inquiry status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&InquiryModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// FindByEventDate retrieves bookings scheduled on date, optionally filtered by status.
func (r *GormBookingRepository) FindByEventDate(ctx context.Context, date time.Time, statuses ...bookingDomain.InquiryStatus) ([]*bookingDomain.Booking, error) {
	db := r.db.WithContext(ctx)

	query := db.Where("event_date = ?", date.Format(bookingDomain.DateLayout))
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		query = query.Where("status IN ?", names)
	}

	var models []InquiryModel
	if err := query.Order("start_time ASC").Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings by event date: %w", err)
	}
	return assemble(db, models)
}

// --- Transaction helpers ---

func allocateReference(tx *gorm.DB) (string, error) {
	var latest []string
	if err := tx.Model(&InquiryModel{}).
		Order("created_at DESC").
		Limit(1).
		Pluck("reference", &latest).Error; err != nil {
		return "", fmt.Errorf("failed to read latest reference: %w", err)
	}
	seed := 1
	if len(latest) > 0 {
		seed = bookingDomain.NextReferenceNumber(latest[0])
	}

	var next int64
	if err := tx.Raw(`INSERT INTO booking_sequences (name, last_number) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET last_number = booking_sequences.last_number + 1
		RETURNING last_number`, inquirySequence, seed).
		Scan(&next).Error; err != nil {
		return "", fmt.Errorf("failed to allocate reference: %w", err)
	}
	return bookingDomain.FormatReference(int(next)), nil
}

func insertBooking(tx *gorm.DB, bk *bookingDomain.Booking) error {
	inquiry := toInquiryModel(bk)
	if err := tx.Create(&inquiry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("reference %s is already taken", bk.Reference()))
		}
		return fmt.Errorf("failed to save inquiry: %w", err)
	}

	proposal, err := toProposalModel(bk.Proposal())
	if err != nil {
		return err
	}
	if err := tx.Create(&proposal).Error; err != nil {
		return fmt.Errorf("failed to save proposal: %w", err)
	}

	ledger := bk.Ledger()
	ledgerModel := toLedgerModel(ledger)
	if err := tx.Create(&ledgerModel).Error; err != nil {
		return fmt.Errorf("failed to save payment ledger: %w", err)
	}
	if err := insertHistory(tx, ledger.Reference, ledger.History); err != nil {
		return err
	}

	activity := bk.Activity()
	logModel := ActivityLogModel{ID: activity.ID, Reference: activity.Reference, InternalNotes: activity.InternalNotes}
	if err := tx.Create(&logModel).Error; err != nil {
		return fmt.Errorf("failed to save activity log: %w", err)
	}
	return insertEntries(tx, activity.Reference, activity.Timeline, 0)
}

func updateBooking(tx *gorm.DB, bk *bookingDomain.Booking, expectedVersion int64, historyLen, timelineLen int) error {
	inquiry := toInquiryModel(bk)
	result := tx.Model(&InquiryModel{}).
		Where("reference = ? AND version = ?", inquiry.Reference, expectedVersion).
		Updates(map[string]interface{}{
			"status":           inquiry.Status,
			"rejection_reason": inquiry.RejectionReason,
			"declined_at":      inquiry.DeclinedAt,
			"version":          inquiry.Version,
			"updated_at":       inquiry.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update inquiry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	proposal, err := toProposalModel(bk.Proposal())
	if err != nil {
		return err
	}
	if err := tx.Save(&proposal).Error; err != nil {
		return fmt.Errorf("failed to update proposal: %w", err)
	}

	ledger := bk.Ledger()
	ledgerModel := toLedgerModel(ledger)
	if err := tx.Save(&ledgerModel).Error; err != nil {
		return fmt.Errorf("failed to update payment ledger: %w", err)
	}
	if historyLen < len(ledger.History) {
		if err := insertHistory(tx, ledger.Reference, ledger.History[historyLen:]); err != nil {
			return err
		}
	}

	activity := bk.Activity()
	if timelineLen < len(activity.Timeline) {
		return insertEntries(tx, activity.Reference, activity.Timeline[timelineLen:], timelineLen)
	}
	return nil
}

func insertHistory(tx *gorm.DB, reference string, history []bookingDomain.Settlement) error {
	if len(history) == 0 {
		return nil
	}
	models := make([]PaymentHistoryModel, len(history))
	for i, s := range history {
		models[i] = PaymentHistoryModel{
			Reference:     reference,
			TransactionID: s.TransactionID,
			Amount:        int64(s.Amount),
			Description:   s.Description,
			PaidAt:        s.Date,
		}
	}
	if err := tx.Create(&models).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("transaction already applied to %s", reference))
		}
		return fmt.Errorf("failed to save payment history: %w", err)
	}
	return nil
}

func insertEntries(tx *gorm.DB, reference string, entries []bookingDomain.ActivityEntry, offset int) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]ActivityEntryModel, len(entries))
	for i, e := range entries {
		models[i] = ActivityEntryModel{
			Reference: reference,
			Seq:       offset + i + 1,
			Date:      e.Date,
			Actor:     string(e.Actor),
			Action:    e.Action,
		}
	}
	if err := tx.Create(&models).Error; err != nil {
		return fmt.Errorf("failed to save activity entries: %w", err)
	}
	return nil
}

// assemble batch-loads the child records of the given inquiries and rebuilds
// the aggregates in the same order.
func assemble(db *gorm.DB, inquiries []InquiryModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, 0, len(inquiries))
	if len(inquiries) == 0 {
		return bookings, nil
	}

	refs := make([]string, len(inquiries))
	for i, m := range inquiries {
		refs[i] = m.Reference
	}

	var proposals []ProposalModel
	if err := db.Where("reference IN ?", refs).Find(&proposals).Error; err != nil {
		return nil, fmt.Errorf("failed to load proposals: %w", err)
	}
	var ledgers []LedgerModel
	if err := db.Where("reference IN ?", refs).Find(&ledgers).Error; err != nil {
		return nil, fmt.Errorf("failed to load payment ledgers: %w", err)
	}
	var history []PaymentHistoryModel
	if err := db.Where("reference IN ?", refs).Order("id ASC").Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to load payment history: %w", err)
	}
	var logs []ActivityLogModel
	if err := db.Where("reference IN ?", refs).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load activity logs: %w", err)
	}
	var entries []ActivityEntryModel
	if err := db.Where("reference IN ?", refs).Order("seq ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load activity entries: %w", err)
	}

	proposalByRef := make(map[string]ProposalModel, len(proposals))
	for _, p := range proposals {
		proposalByRef[p.Reference] = p
	}
	ledgerByRef := make(map[string]LedgerModel, len(ledgers))
	for _, l := range ledgers {
		ledgerByRef[l.Reference] = l
	}
	historyByRef := make(map[string][]PaymentHistoryModel)
	for _, h := range history {
		historyByRef[h.Reference] = append(historyByRef[h.Reference], h)
	}
	logByRef := make(map[string]ActivityLogModel, len(logs))
	for _, l := range logs {
		logByRef[l.Reference] = l
	}
	entriesByRef := make(map[string][]ActivityEntryModel)
	for _, e := range entries {
		entriesByRef[e.Reference] = append(entriesByRef[e.Reference], e)
	}

	for i := range inquiries {
		m := &inquiries[i]
		proposal, ok := proposalByRef[m.Reference]
		if !ok {
			return nil, domain.NewNotFoundError("Proposal", m.Reference)
		}
		ledger, ok := ledgerByRef[m.Reference]
		if !ok {
			return nil, domain.NewNotFoundError("PaymentLedger", m.Reference)
		}
		activity, ok := logByRef[m.Reference]
		if !ok {
			return nil, domain.NewNotFoundError("ActivityLog", m.Reference)
		}

		bk, err := toDomainBooking(m, &proposal, &ledger, historyByRef[m.Reference], &activity, entriesByRef[m.Reference])
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, bk)
	}
	return bookings, nil
}

// --- Conversion Helpers ---

func toInquiryModel(bk *bookingDomain.Booking) InquiryModel {
	inq := bk.Inquiry()
	return InquiryModel{
		ID:              inq.ID,
		Reference:       inq.Reference,
		CustomerName:    inq.Customer.Name,
		CustomerEmail:   inq.Customer.Email,
		CustomerPhone:   inq.Customer.Phone,
		EventDate:       inq.Event.Date,
		StartTime:       inq.Event.StartTime,
		EndTime:         inq.Event.EndTime,
		Guests:          inq.Event.Guests,
		BudgetEstimate:  int64(inq.Event.BudgetEstimate),
		EventType:       string(inq.Event.EventType),
		ServiceStyle:    string(inq.Event.ServiceStyle),
		Venue:           inq.Event.Venue,
		Notes:           inq.Event.Notes,
		Status:          string(inq.Status),
		RejectionReason: inq.RejectionReason,
		DeclinedAt:      inq.DeclinedAt,
		Version:         bk.Version(),
		CreatedAt:       inq.CreatedAt,
		UpdatedAt:       inq.UpdatedAt,
	}
}

func toProposalModel(p bookingDomain.Proposal) (ProposalModel, error) {
	working, err := marshalIDs(p.WorkingAddOnIDs)
	if err != nil {
		return ProposalModel{}, fmt.Errorf("failed to marshal working add-ons: %w", err)
	}
	client, err := marshalIDs(p.ClientAddOnIDs)
	if err != nil {
		return ProposalModel{}, fmt.Errorf("failed to marshal client add-ons: %w", err)
	}

	var breakdown datatypes.JSON
	if p.Breakdown != nil {
		data, err := json.Marshal(p.Breakdown)
		if err != nil {
			return ProposalModel{}, fmt.Errorf("failed to marshal proposal breakdown: %w", err)
		}
		breakdown = data
	}

	return ProposalModel{
		ID:               p.ID,
		Reference:        p.Reference,
		WorkingPackageID: p.WorkingPackageID,
		WorkingAddOnIDs:  working,
		Breakdown:        breakdown,
		SentAt:           p.SentAt,
		ClientPackageID:  p.ClientPackageID,
		ClientAddOnIDs:   client,
		AcceptedTotal:    int64(p.AcceptedTotal),
		IsApproved:       p.IsApproved,
		ApprovedAt:       p.ApprovedAt,
		UpdatedAt:        p.UpdatedAt,
	}, nil
}

func toLedgerModel(l bookingDomain.PaymentLedger) LedgerModel {
	return LedgerModel{
		ID:                   l.ID,
		Reference:            l.Reference,
		TotalCost:            int64(l.TotalCost),
		ReservationFee:       int64(l.ReservationFee),
		Downpayment:          int64(l.Downpayment),
		Balance:              int64(l.Balance),
		Status:               string(l.Status),
		PaymentLinkGenerated: l.PaymentLinkGenerated,
		LastLinkSent:         l.LastLinkSent,
		ContractSummary:      l.ContractSummary,
		UpdatedAt:            l.UpdatedAt,
	}
}

func toDomainBooking(
	m *InquiryModel,
	p *ProposalModel,
	l *LedgerModel,
	history []PaymentHistoryModel,
	a *ActivityLogModel,
	entries []ActivityEntryModel,
) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseInquiryStatus(m.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(l.Status)
	if err != nil {
		return nil, err
	}

	inquiry := bookingDomain.Inquiry{
		ID:        m.ID,
		Reference: m.Reference,
		Customer: bookingDomain.Customer{
			Name:  m.CustomerName,
			Email: m.CustomerEmail,
			Phone: m.CustomerPhone,
		},
		Event: bookingDomain.EventDetails{
			Date:           m.EventDate.UTC(),
			StartTime:      m.StartTime,
			EndTime:        m.EndTime,
			Guests:         m.Guests,
			BudgetEstimate: bookingDomain.Money(m.BudgetEstimate),
			EventType:      bookingDomain.EventType(m.EventType),
			ServiceStyle:   bookingDomain.ServiceStyle(m.ServiceStyle),
			Venue:          m.Venue,
			Notes:          m.Notes,
		},
		Status:          status,
		RejectionReason: m.RejectionReason,
		DeclinedAt:      m.DeclinedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	working, err := unmarshalIDs(p.WorkingAddOnIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal working add-ons: %w", err)
	}
	client, err := unmarshalIDs(p.ClientAddOnIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal client add-ons: %w", err)
	}
	var breakdown *bookingDomain.Quote
	if len(p.Breakdown) > 0 && string(p.Breakdown) != "null" {
		var q bookingDomain.Quote
		if err := json.Unmarshal(p.Breakdown, &q); err != nil {
			return nil, fmt.Errorf("failed to unmarshal proposal breakdown: %w", err)
		}
		breakdown = &q
	}
	proposal := bookingDomain.Proposal{
		ID:               p.ID,
		Reference:        p.Reference,
		WorkingPackageID: p.WorkingPackageID,
		WorkingAddOnIDs:  working,
		Breakdown:        breakdown,
		SentAt:           p.SentAt,
		ClientPackageID:  p.ClientPackageID,
		ClientAddOnIDs:   client,
		AcceptedTotal:    bookingDomain.Money(p.AcceptedTotal),
		IsApproved:       p.IsApproved,
		ApprovedAt:       p.ApprovedAt,
		UpdatedAt:        p.UpdatedAt,
	}

	settlements := make([]bookingDomain.Settlement, len(history))
	for i, h := range history {
		settlements[i] = bookingDomain.Settlement{
			Date:          h.PaidAt,
			Description:   h.Description,
			Amount:        bookingDomain.Money(h.Amount),
			TransactionID: h.TransactionID,
		}
	}
	ledger := bookingDomain.PaymentLedger{
		ID:                   l.ID,
		Reference:            l.Reference,
		TotalCost:            bookingDomain.Money(l.TotalCost),
		ReservationFee:       bookingDomain.Money(l.ReservationFee),
		Downpayment:          bookingDomain.Money(l.Downpayment),
		Balance:              bookingDomain.Money(l.Balance),
		Status:               paymentStatus,
		History:              settlements,
		PaymentLinkGenerated: l.PaymentLinkGenerated,
		LastLinkSent:         l.LastLinkSent,
		ContractSummary:      l.ContractSummary,
		UpdatedAt:            l.UpdatedAt,
	}

	timeline := make([]bookingDomain.ActivityEntry, len(entries))
	for i, e := range entries {
		timeline[i] = bookingDomain.ActivityEntry{
			Date:   e.Date,
			Actor:  bookingDomain.Actor(e.Actor),
			Action: e.Action,
		}
	}
	activity := bookingDomain.ActivityLog{
		ID:            a.ID,
		Reference:     a.Reference,
		InternalNotes: a.InternalNotes,
		Timeline:      timeline,
	}

	return bookingDomain.Reconstruct(inquiry, proposal, ledger, activity, m.Version), nil
}

func marshalIDs(ids []string) (datatypes.JSON, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func unmarshalIDs(data datatypes.JSON) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}
