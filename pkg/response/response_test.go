package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hearth-catering/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.NewValidationError("reason is required"), http.StatusBadRequest, "validation_error"},
		{"not found", fmt.Errorf("wrap: %w", domain.NewNotFoundError("Booking", "BK-404")), http.StatusNotFound, "not_found"},
		{"invalid state", domain.NewInvalidStateError("Declined", "Declined"), http.StatusConflict, "invalid_state"},
		{"conflict", domain.NewConflictError("modified concurrently"), http.StatusConflict, "conflict"},
		{"unauthorized", domain.NewUnauthorizedError("bad signature"), http.StatusUnauthorized, "unauthorized"},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Error(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, body.Error.Message, "connection refused")
			}
		})
	}
}

func TestPaginated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Paginated(c, []string{"BK-002", "BK-001"}, 41, 2, 20)

	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Pagination)
	assert.Equal(t, int64(3), body.Pagination.TotalPages)
	assert.Equal(t, 2, body.Pagination.Page)
}
