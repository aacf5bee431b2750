package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hearth-catering/service-booking/internal/application"
	"github.com/hearth-catering/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/api/v1/inquiries", h.CreateInquiry)
	r.POST("/api/v1/quotes", h.Quote)
	r.GET("/api/v1/catalog", h.Catalog)
	r.GET("/api/v1/kitchen/events", h.KitchenEvents)

	bookings := r.Group("/api/v1/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/:ref", h.GetBooking)
		bookings.POST("/:ref/proposal", h.SendProposal)
		bookings.POST("/:ref/accept", h.AcceptProposal)
		bookings.POST("/:ref/contract", h.SendContract)
		bookings.POST("/:ref/decline", h.DeclineBooking)
	}
}

// CreateInquiry handles POST /api/v1/inquiries.
func (h *BookingHandler) CreateInquiry(c *gin.Context) {
	var req application.CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:ref.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	result, err := h.service.GetBooking(c.Request.Context(), c.Param("ref"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SendProposal handles POST /api/v1/bookings/:ref/proposal.
func (h *BookingHandler) SendProposal(c *gin.Context) {
	var req application.SendProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SendProposal(c.Request.Context(), c.Param("ref"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AcceptProposal handles POST /api/v1/bookings/:ref/accept.
func (h *BookingHandler) AcceptProposal(c *gin.Context) {
	var req application.AcceptProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AcceptProposal(c.Request.Context(), c.Param("ref"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SendContract handles POST /api/v1/bookings/:ref/contract. An empty body
// sends the contract at the accepted total with the default downpayment.
func (h *BookingHandler) SendContract(c *gin.Context) {
	var req application.SendContractRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.service.SendContract(c.Request.Context(), c.Param("ref"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeclineBooking handles POST /api/v1/bookings/:ref/decline.
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	var req application.DeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.DeclineBooking(c.Request.Context(), c.Param("ref"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Quote handles POST /api/v1/quotes.
func (h *BookingHandler) Quote(c *gin.Context) {
	var req application.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Quote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Catalog handles GET /api/v1/catalog.
func (h *BookingHandler) Catalog(c *gin.Context) {
	response.Success(c, h.service.Catalog())
}

// KitchenEvents handles GET /api/v1/kitchen/events?date=YYYY-MM-DD.
func (h *BookingHandler) KitchenEvents(c *gin.Context) {
	result, err := h.service.KitchenEvents(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
