// Package response writes the JSON envelope shared by every HTTP endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearth-catering/service-booking/pkg/domain"
)

// Envelope is the top-level JSON body.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination describes the position of a page within a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: domain.TotalPages(total, limit),
		},
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, "bad_request", message)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, "unauthorized", message)
}

// Error maps a domain error to its HTTP status. Unknown errors become a 500
// without leaking the underlying message.
func Error(c *gin.Context, err error) {
	var (
		validationErr   *domain.ValidationError
		notFoundErr     *domain.NotFoundError
		invalidStateErr *domain.InvalidStateError
		conflictErr     *domain.ConflictError
		unauthorizedErr *domain.UnauthorizedError
	)

	switch {
	case errors.As(err, &validationErr):
		abort(c, http.StatusBadRequest, "validation_error", validationErr.Error())
	case errors.As(err, &notFoundErr):
		abort(c, http.StatusNotFound, "not_found", notFoundErr.Error())
	case errors.As(err, &invalidStateErr):
		abort(c, http.StatusConflict, "invalid_state", invalidStateErr.Error())
	case errors.As(err, &conflictErr):
		abort(c, http.StatusConflict, "conflict", conflictErr.Error())
	case errors.As(err, &unauthorizedErr):
		abort(c, http.StatusUnauthorized, "unauthorized", unauthorizedErr.Error())
	default:
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}
