package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"golang-civic-backend/internal/errs"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func paginate(page, limit int, total int64) PaginationResponse {
	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}
}

// pageParams normalizes page/limit query parameters into bounds.
func pageParams(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}

// respondError maps the service error taxonomy to HTTP status codes.
// Validation carries field detail; authorization is a generic denial.
func respondError(c *gin.Context, err error) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Message: ve.Reason, Field: ve.Field})
	case errs.IsAuthorization(err):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Operation not permitted"})
	case errs.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Conflict", Message: err.Error()})
	case errs.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
