// Package apptest provides in-memory implementations of the booking service's
// repositories and collaborators for tests.
package apptest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	calendarDomain "github.com/hearth-catering/service-booking/internal/domain/calendar"
	reconDomain "github.com/hearth-catering/service-booking/internal/domain/reconciliation"
	"github.com/hearth-catering/service-booking/internal/gateway"
	"github.com/hearth-catering/service-booking/pkg/domain"
)

// BookingRepo serializes every operation behind one mutex, which stands in
// for the row lock of the real store.
type BookingRepo struct {
	mu       sync.Mutex
	counter  int
	bookings map[string]*bookingDomain.Booking
	order    []string

	// FailWith, when set, is returned by Create and Modify.
	FailWith error
	// Calendar, when set, is checked inside Create the way the store checks
	// blocked dates within its transaction.
	Calendar *Calendar
}

// NewBookingRepo creates an empty BookingRepo.
func NewBookingRepo() *BookingRepo {
	return &BookingRepo{bookings: make(map[string]*bookingDomain.Booking)}
}

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(b.Inquiry(), b.Proposal(), b.Ledger(), b.Activity(), b.Version())
}

func (r *BookingRepo) Create(ctx context.Context, build func(string) (*bookingDomain.Booking, error)) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	ref := bookingDomain.FormatReference(r.counter + 1)
	bk, err := build(ref)
	if err != nil {
		return nil, err
	}
	if r.Calendar != nil {
		date := bk.Inquiry().Event.Date
		if blocked, _ := r.Calendar.IsBlocked(ctx, date); blocked {
			return nil, domain.NewConflictError("event date " + date.Format(bookingDomain.DateLayout) + " is not available")
		}
	}
	r.counter++
	r.bookings[ref] = cloneBooking(bk)
	r.order = append(r.order, ref)
	return bk, nil
}

func (r *BookingRepo) Modify(_ context.Context, reference string, fn func(*bookingDomain.Booking) error) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	stored, ok := r.bookings[reference]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", reference)
	}
	working := cloneBooking(stored)
	if err := fn(working); err != nil {
		if errors.Is(err, bookingDomain.ErrNoChange) {
			return cloneBooking(stored), nil
		}
		return nil, err
	}
	working.IncrementVersion()
	r.bookings[reference] = cloneBooking(working)
	return working, nil
}

func (r *BookingRepo) FindByReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[reference]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", reference)
	}
	return cloneBooking(b), nil
}

func (r *BookingRepo) List(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*bookingDomain.Booking
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, cloneBooking(r.bookings[r.order[i]]))
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return []*bookingDomain.Booking{}, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *BookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *BookingRepo) FindByEventDate(_ context.Context, date time.Time, statuses ...bookingDomain.InquiryStatus) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*bookingDomain.Booking
	for _, ref := range r.order {
		b := r.bookings[ref]
		if !b.Inquiry().Event.Date.Equal(date) {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, b.Status()) {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	return out, nil
}

func containsStatus(list []bookingDomain.InquiryStatus, s bookingDomain.InquiryStatus) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// Calendar is an in-memory BlockedDateRepository.
type Calendar struct {
	mu      sync.Mutex
	blocked map[string]*calendarDomain.BlockedDate
}

// NewCalendar creates an empty Calendar.
func NewCalendar() *Calendar {
	return &Calendar{blocked: make(map[string]*calendarDomain.BlockedDate)}
}

func (c *Calendar) Save(_ context.Context, b *calendarDomain.BlockedDate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.blocked[b.Day()]; ok {
		return domain.NewConflictError("already blocked")
	}
	c.blocked[b.Day()] = b
	return nil
}

func (c *Calendar) Delete(_ context.Context, date time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	day := date.Format(calendarDomain.DateLayout)
	if _, ok := c.blocked[day]; !ok {
		return domain.NewNotFoundError("BlockedDate", day)
	}
	delete(c.blocked, day)
	return nil
}

func (c *Calendar) List(_ context.Context, from time.Time) ([]*calendarDomain.BlockedDate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*calendarDomain.BlockedDate
	for _, b := range c.blocked {
		if !b.Date().Before(from) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date().Before(out[j].Date()) })
	return out, nil
}

func (c *Calendar) IsBlocked(_ context.Context, date time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blocked[date.Format(calendarDomain.DateLayout)]
	return ok, nil
}

// Unresolved is an in-memory review queue.
type Unresolved struct {
	// FailWith, when set, is returned by Save.
	FailWith error

	mu    sync.Mutex
	items []*reconDomain.UnresolvedNotification
}

func (u *Unresolved) Save(_ context.Context, n *reconDomain.UnresolvedNotification) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.FailWith != nil {
		return false, u.FailWith
	}
	key := n.DedupeKey()
	for _, existing := range u.items {
		if existing.DedupeKey() == key {
			return false, nil
		}
	}
	u.items = append(u.items, n)
	return true, nil
}

func (u *Unresolved) List(_ context.Context, page, limit int) ([]*reconDomain.UnresolvedNotification, int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*reconDomain.UnresolvedNotification, 0, len(u.items))
	for i := len(u.items) - 1; i >= 0; i-- {
		out = append(out, u.items[i])
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return []*reconDomain.UnresolvedNotification{}, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

// Count returns the number of parked notifications.
func (u *Unresolved) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.items)
}

// NotifierCall records one notification.
type NotifierCall struct {
	Template  string
	Reference string
	Link      string
}

// Notifier records notifications and returns Err.
type Notifier struct {
	mu    sync.Mutex
	calls []NotifierCall
	Err   error
}

func (n *Notifier) record(template string, bk *bookingDomain.Booking, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, NotifierCall{Template: template, Reference: bk.Reference(), Link: link})
	return n.Err
}

func (n *Notifier) ProposalSent(_ context.Context, bk *bookingDomain.Booking) error {
	return n.record("proposal_sent", bk, "")
}

func (n *Notifier) ContractSent(_ context.Context, bk *bookingDomain.Booking, link string) error {
	return n.record("contract_sent", bk, link)
}

func (n *Notifier) BookingDeclined(_ context.Context, bk *bookingDomain.Booking) error {
	return n.record("booking_declined", bk, "")
}

// Publisher records published event types.
type Publisher struct {
	mu     sync.Mutex
	events []string
}

func (p *Publisher) Publish(_ context.Context, eventType string, _ *bookingDomain.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

// Count returns how many events of eventType were published.
func (p *Publisher) Count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == eventType {
			n++
		}
	}
	return n
}

// Links returns checkout links for every request, or Err.
type Links struct {
	mu       sync.Mutex
	requests []gateway.LinkRequest
	Err      error
}

func (s *Links) CreatePaymentLink(_ context.Context, req gateway.LinkRequest) (*gateway.PaymentLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.Err != nil {
		return nil, s.Err
	}
	return &gateway.PaymentLink{ID: "link_1", CheckoutURL: "https://pay.example/" + req.Reference}, nil
}

// Requests returns the link requests received so far.
func (s *Links) Requests() []gateway.LinkRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.LinkRequest(nil), s.requests...)
}

// Calls returns the notifications recorded so far.
func (n *Notifier) Calls() []NotifierCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]NotifierCall(nil), n.calls...)
}

// Items returns the parked notifications in arrival order.
func (u *Unresolved) Items() []*reconDomain.UnresolvedNotification {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]*reconDomain.UnresolvedNotification(nil), u.items...)
}

// Len returns the number of stored bookings.
func (r *BookingRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}
