package handlers

import (
	"net/http"

	"golang-civic-backend/internal/middleware"
	"golang-civic-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) RegisterRoutes(api *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	profiles := api.Group("/profiles")
	{
		profiles.GET("/me", authMiddleware.AuthRequired(), h.GetOwnProfile)
		profiles.GET("/:id", h.GetProfile)
		profiles.PUT("/:id", authMiddleware.AuthRequired(), h.UpdateProfile)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetOwnProfile(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	profile, err := h.profileService.GetOwnProfile(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
