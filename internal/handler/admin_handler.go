package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hearth-catering/service-booking/internal/application"
	"github.com/hearth-catering/service-booking/pkg/response"
)

// AdminHandler handles staff-facing reporting endpoints.
type AdminHandler struct {
	service   *application.BookingService
	processor *application.ReconciliationProcessor
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.BookingService, processor *application.ReconciliationProcessor) *AdminHandler {
	return &AdminHandler{service: service, processor: processor}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/api/v1/admin")
	{
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/reconciliation/unresolved", h.ListUnresolved)
	}
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ListUnresolved handles GET /api/v1/admin/reconciliation/unresolved.
func (h *AdminHandler) ListUnresolved(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.processor.ListUnresolved(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}
