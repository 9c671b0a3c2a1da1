package handlers

import (
	"net/http"

	"golang-civic-backend/internal/middleware"
	"golang-civic-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AreaHandler struct {
	areaService *services.AreaService
}

func NewAreaHandler(areaService *services.AreaService) *AreaHandler {
	return &AreaHandler{areaService: areaService}
}

func (h *AreaHandler) RegisterRoutes(api *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	areas := api.Group("/areas")
	{
		areas.GET("", h.ListAreas)
		areas.GET("/:id", h.GetArea)
		areas.POST("", authMiddleware.AuthRequired(), h.CreateArea)
		areas.PUT("/:id", authMiddleware.AuthRequired(), h.UpdateArea)
	}
}

func (h *AreaHandler) ListAreas(c *gin.Context) {
	page, limit, offset := pageParams(c)

	areas, total, err := h.areaService.ListAreas(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"areas":      areas,
		"pagination": paginate(page, limit, total),
	})
}

func (h *AreaHandler) GetArea(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid area ID"})
		return
	}

	area, err := h.areaService.GetArea(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}

func (h *AreaHandler) CreateArea(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req services.AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	area, err := h.areaService.CreateArea(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, area)
}

func (h *AreaHandler) UpdateArea(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid area ID"})
		return
	}

	var req services.AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	area, err := h.areaService.UpdateArea(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}
