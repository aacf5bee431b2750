package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearth-catering/service-booking/internal/application"
	"github.com/hearth-catering/service-booking/internal/gateway"
	"github.com/hearth-catering/service-booking/pkg/response"
)

const maxWebhookBody = 1 << 20

// WebhookHandler receives payment notifications from the gateway.
type WebhookHandler struct {
	processor *application.ReconciliationProcessor
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(processor *application.ReconciliationProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// RegisterRoutes registers the webhook route.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/api/v1/webhooks/payments", h.PaymentNotification)
}

// PaymentNotification handles POST /api/v1/webhooks/payments. The raw body is
// read untouched because the signature covers its exact bytes.
func (h *WebhookHandler) PaymentNotification(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "unreadable request body")
		return
	}

	outcome, err := h.processor.Handle(c.Request.Context(), c.GetHeader(gateway.SignatureHeader), body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, outcome)
}
