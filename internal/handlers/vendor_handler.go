package handlers

import (
	"net/http"

	"golang-civic-backend/internal/middleware"
	"golang-civic-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VendorHandler struct {
	vendorService *services.VendorService
}

func NewVendorHandler(vendorService *services.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

func (h *VendorHandler) RegisterRoutes(api *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	vendors := api.Group("/vendors")
	{
		vendors.GET("", h.SearchVendors)
		vendors.GET("/mine", authMiddleware.AuthRequired(), h.GetOwnVendors)
		vendors.GET("/:id", h.GetVendor)
		vendors.POST("", authMiddleware.AuthRequired(), h.RegisterVendor)
		vendors.PUT("/:id", authMiddleware.AuthRequired(), h.UpdateVendor)
	}
}

// SearchVendors godoc
// @Summary List vendors
// @Description Public vendor listing with area filter and search term,
// ordered by aggregate rating
// @Tags vendors
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param area_id query string false "Filter by area"
// @Param search query string false "Search by name or location"
// @Success 200 {object} map[string]interface{}
// @Router /vendors [get]
func (h *VendorHandler) SearchVendors(c *gin.Context) {
	page, limit, offset := pageParams(c)
	search := c.Query("search")

	var areaID *uuid.UUID
	if raw := c.Query("area_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid area ID"})
			return
		}
		areaID = &parsed
	}

	listing, err := h.vendorService.SearchVendors(c.Request.Context(), search, areaID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vendors":    listing.Vendors,
		"pagination": paginate(page, limit, listing.Total),
	})
}

func (h *VendorHandler) GetVendor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid vendor ID"})
		return
	}

	vendor, err := h.vendorService.GetVendor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) GetOwnVendors(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	vendors, err := h.vendorService.GetOwnVendors(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

func (h *VendorHandler) RegisterVendor(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req services.RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	vendor, err := h.vendorService.RegisterVendor(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid vendor ID"})
		return
	}

	var req services.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}
