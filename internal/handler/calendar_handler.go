package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearth-catering/service-booking/internal/application"
	"github.com/hearth-catering/service-booking/pkg/response"
)

// CalendarHandler handles HTTP requests for blocked calendar dates.
type CalendarHandler struct {
	service *application.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(service *application.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// RegisterRoutes registers all calendar routes.
func (h *CalendarHandler) RegisterRoutes(r *gin.RouterGroup) {
	dates := r.Group("/api/v1/blocked-dates")
	{
		dates.GET("", h.ListBlockedDates)
		dates.POST("", h.BlockDate)
		dates.DELETE("/:date", h.UnblockDate)
	}
}

// BlockDate handles POST /api/v1/blocked-dates.
func (h *CalendarHandler) BlockDate(c *gin.Context) {
	var req application.BlockDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.BlockDate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBlockedDates handles GET /api/v1/blocked-dates?from=YYYY-MM-DD.
func (h *CalendarHandler) ListBlockedDates(c *gin.Context) {
	result, err := h.service.ListBlockedDates(c.Request.Context(), c.Query("from"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UnblockDate handles DELETE /api/v1/blocked-dates/:date.
func (h *CalendarHandler) UnblockDate(c *gin.Context) {
	if err := h.service.UnblockDate(c.Request.Context(), c.Param("date")); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
