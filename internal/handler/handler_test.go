package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hearth-catering/service-booking/internal/application"
	"github.com/hearth-catering/service-booking/internal/application/apptest"
	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	"github.com/hearth-catering/service-booking/internal/gateway"
	"github.com/hearth-catering/service-booking/pkg/response"
)

const webhookSecret = "whsec_handler"

type testServer struct {
	router     *gin.Engine
	unresolved *apptest.Unresolved
	links      *apptest.Links
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := bookingDomain.NewCatalog(
		[]bookingDomain.Package{{ID: "classic", Name: "Classic Filipino", PricePerHead: bookingDomain.MoneyFromMajor(1200)}},
		[]bookingDomain.AddOn{{ID: "lechon", Name: "Whole Lechon", Kind: bookingDomain.AddOnFlat, Price: bookingDomain.MoneyFromMajor(9000)}},
	)
	calc := bookingDomain.NewStandardSettlementCalculator(catalog, bookingDomain.DefaultTransportFee, bookingDomain.DefaultServiceChargeBps)

	repo := apptest.NewBookingRepo()
	calendar := apptest.NewCalendar()
	ts := &testServer{unresolved: &apptest.Unresolved{}, links: &apptest.Links{}}
	publisher := &apptest.Publisher{}

	bookingSvc := application.NewBookingService(repo, calendar, catalog, calc, &apptest.Notifier{}, publisher, ts.links, zap.NewNop())
	calendarSvc := application.NewCalendarService(calendar, zap.NewNop())
	processor := application.NewReconciliationProcessor(repo, ts.unresolved, publisher, webhookSecret, gateway.DefaultSignatureTolerance, zap.NewNop())

	r := gin.New()
	NewBookingHandler(bookingSvc).RegisterRoutes(&r.RouterGroup)
	NewCalendarHandler(calendarSvc).RegisterRoutes(&r.RouterGroup)
	NewAdminHandler(bookingSvc, processor).RegisterRoutes(&r.RouterGroup)
	NewWebhookHandler(processor).RegisterRoutes(&r.RouterGroup)
	ts.router = r
	return ts
}

type envelope struct {
	Success    bool                 `json:"success"`
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		raw = b
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func inquiryBody() gin.H {
	return gin.H{
		"name":          "Maria Santos",
		"email":         "maria@example.com",
		"event_date":    "2026-12-05",
		"guests":        100,
		"event_type":    "wedding",
		"service_style": "buffet",
	}
}

func TestCreateInquiry(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodPost, "/api/v1/inquiries", inquiryBody())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result application.CreateInquiryResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "BK-001", result.Reference)
	assert.Equal(t, "Pending", result.Status)
}

func TestCreateInquiry_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"malformed json", []byte(`{`), http.StatusBadRequest},
		{"missing email", gin.H{"name": "A", "event_date": "2026-12-05"}, http.StatusBadRequest},
		{"invalid email", gin.H{"name": "A", "email": "nope", "event_date": "2026-12-05"}, http.StatusBadRequest},
		{"bad date", gin.H{"name": "A", "email": "a@b.co", "event_date": "12/05/2026"}, http.StatusBadRequest},
		{"too many guests", gin.H{"name": "A", "email": "a@b.co", "event_date": "2026-12-05", "guests": 1 << 40}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := ts.do(t, http.MethodPost, "/api/v1/inquiries", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestCreateInquiry_BlockedDateConflict(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodPost, "/api/v1/blocked-dates", gin.H{"date": "2026-12-05", "reason": "Fully booked"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := ts.do(t, http.MethodPost, "/api/v1/inquiries", inquiryBody())
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "conflict", env.Error.Code)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodPost, "/api/v1/inquiries", inquiryBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/proposal", gin.H{"package_id": "classic", "add_on_ids": []string{"lechon"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = ts.do(t, http.MethodPost, "/api/v1/bookings/bk-001/accept", gin.H{"package_id": "classic", "add_on_ids": []string{"lechon"}, "total": "132000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/contract", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var bk application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &bk))
	assert.Equal(t, "Contract Sent", bk.Status)
	assert.Equal(t, "132000", bk.Ledger.TotalCost.String())
	assert.Equal(t, "66000", bk.Ledger.Downpayment.String())

	// Contract again from Contract Sent re-issues the link.
	w, _ = ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/contract", gin.H{"summary": "Reissued"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, ts.links.Requests(), 2)

	w, env = ts.do(t, http.MethodGet, "/api/v1/bookings?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)
}

func TestDeclineThenAccept_IsInvalidState(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/inquiries", inquiryBody())
	ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/proposal", gin.H{"package_id": "classic"})

	w, _ := ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/decline", gin.H{"reason": "Date Unavailable"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/accept", gin.H{"package_id": "classic"})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_state", env.Error.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/decline", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBooking_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodGet, "/api/v1/bookings/BK-404", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestQuoteAndCatalog(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodPost, "/api/v1/quotes", gin.H{"guests": 100, "package_id": "classic"})
	require.Equal(t, http.StatusOK, w.Code)
	var q application.QuoteDTO
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, "135000", q.GrandTotal.String())

	w, env = ts.do(t, http.MethodPost, "/api/v1/quotes", gin.H{"guests": 1 << 40, "package_id": "classic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, env = ts.do(t, http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catalog application.CatalogDTO
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	assert.Len(t, catalog.Packages, 1)
	assert.Len(t, catalog.AddOns, 1)
}

func TestKitchenEvents_RequiresDate(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodGet, "/api/v1/kitchen/events", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := ts.do(t, http.MethodGet, "/api/v1/kitchen/events?date=2026-12-05", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestCalendarRoutes(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodPost, "/api/v1/blocked-dates", gin.H{"date": "2026-12-24"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/blocked-dates", gin.H{"date": "Dec 24"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := ts.do(t, http.MethodGet, "/api/v1/blocked-dates?from=2026-12-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dates []application.BlockedDateDTO
	require.NoError(t, json.Unmarshal(env.Data, &dates))
	require.Len(t, dates, 1)
	assert.Equal(t, "2026-12-24", dates[0].Date)

	w, _ = ts.do(t, http.MethodDelete, "/api/v1/blocked-dates/2026-12-24", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = ts.do(t, http.MethodDelete, "/api/v1/blocked-dates/2026-12-24", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhook_SignatureAndReconciliation(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/inquiries", inquiryBody())
	ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/proposal", gin.H{"package_id": "classic", "add_on_ids": []string{"lechon"}})
	ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/accept", gin.H{"package_id": "classic", "add_on_ids": []string{"lechon"}})
	w, _ := ts.do(t, http.MethodPost, "/api/v1/bookings/BK-001/contract", nil)
	require.Equal(t, http.StatusOK, w.Code)

	payload := []byte(`{"id":"evt_1","type":"link.payment.paid","data":{"transaction_id":"txn_1","amount":6600000,"currency":"PHP","description":"Downpayment Ref: BK-001"}}`)

	w, env := ts.do(t, http.MethodPost, "/api/v1/webhooks/payments", payload, gateway.SignatureHeader, "t=1,v1=deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Code)

	signature := gateway.Sign(payload, webhookSecret, time.Now())
	w, env = ts.do(t, http.MethodPost, "/api/v1/webhooks/payments", payload, gateway.SignatureHeader, signature)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var outcome application.Outcome
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.Equal(t, application.OutcomeApplied, outcome.Status)
	assert.Equal(t, "66000", outcome.Balance.String())

	w, env = ts.do(t, http.MethodPost, "/api/v1/webhooks/payments", payload, gateway.SignatureHeader, signature)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.Equal(t, application.OutcomeDuplicate, outcome.Status)

	w, env = ts.do(t, http.MethodGet, "/api/v1/bookings/BK-001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bk application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &bk))
	assert.Equal(t, "Confirmed", bk.Status)
	assert.Len(t, bk.Ledger.History, 1)
}

func TestWebhook_UnresolvedIsAcknowledged(t *testing.T) {
	ts := newTestServer(t)
	payload := []byte(`{"id":"evt_2","type":"payment.paid","data":{"transaction_id":"txn_2","amount":500000,"description":"gcash transfer"}}`)

	w, _ := ts.do(t, http.MethodPost, "/api/v1/webhooks/payments", payload,
		gateway.SignatureHeader, gateway.Sign(payload, webhookSecret, time.Now()))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ts.unresolved.Count())

	w, env := ts.do(t, http.MethodGet, "/api/v1/admin/reconciliation/unresolved", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []application.UnresolvedDTO
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "unresolvable_reference", items[0].Reason)
	assert.Equal(t, "5000", items[0].Amount.String())
}

func TestAdminStats(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/inquiries", inquiryBody())
	ts.do(t, http.MethodPost, "/api/v1/inquiries", inquiryBody())

	w, env := ts.do(t, http.MethodGet, "/api/v1/admin/stats/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats application.BookingStatsDTO
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.ByStatus["Pending"])
}
