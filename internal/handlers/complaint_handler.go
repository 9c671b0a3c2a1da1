package handlers

import (
	"net/http"

	"golang-civic-backend/internal/middleware"
	"golang-civic-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ComplaintHandler struct {
	complaintService *services.ComplaintService
}

func NewComplaintHandler(complaintService *services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

func (h *ComplaintHandler) RegisterRoutes(api *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	complaints := api.Group("/complaints")
	complaints.Use(authMiddleware.AuthRequired())
	{
		complaints.POST("", h.FileComplaint)
		complaints.GET("", h.ListComplaints)
		complaints.GET("/:id", h.GetComplaint)
		complaints.PUT("/:id/status", h.UpdateStatus)
		complaints.PUT("/:id/assign", h.Assign)
	}
}

func (h *ComplaintHandler) FileComplaint(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req services.FileComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	complaint, err := h.complaintService.FileComplaint(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	page, limit, offset := pageParams(c)
	filters := services.ComplaintFilters{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("area_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid area ID"})
			return
		}
		filters.AreaID = &parsed
	}

	complaints, total, err := h.complaintService.ListComplaints(c.Request.Context(), caller, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"complaints": complaints,
		"pagination": paginate(page, limit, total),
	})
}

func (h *ComplaintHandler) GetComplaint(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid complaint ID"})
		return
	}

	complaint, err := h.complaintService.GetComplaint(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid complaint ID"})
		return
	}

	var req services.UpdateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	complaint, err := h.complaintService.UpdateStatus(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

type assignRequest struct {
	AssigneeID uuid.UUID `json:"assignee_id" binding:"required"`
}

func (h *ComplaintHandler) Assign(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid complaint ID"})
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	complaint, err := h.complaintService.Assign(c.Request.Context(), caller, id, req.AssigneeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}
