package handlers

import (
	"net/http"

	"golang-civic-backend/internal/middleware"
	"golang-civic-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RatingHandler struct {
	ratingService *services.RatingService
}

func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

func (h *RatingHandler) RegisterRoutes(api *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	ratings := api.Group("/ratings")
	{
		ratings.POST("", authMiddleware.AuthRequired(), h.SubmitRating)
		ratings.GET("/mine", authMiddleware.AuthRequired(), h.ListOwnRatings)
		ratings.PUT("/:id", authMiddleware.AuthRequired(), h.UpdateRating)
		ratings.DELETE("/:id", authMiddleware.AuthRequired(), h.DeleteRating)
	}

	api.GET("/vendors/:id/ratings", h.ListVendorRatings)
	api.GET("/vendors/:id/ratings/mine", authMiddleware.AuthRequired(), h.GetOwnRating)
}

// SubmitRating godoc
// @Summary Submit a rating
// @Description Rate a vendor 1-5 with optional sub-scores. A second
// submission for the same vendor returns 409; edit the existing rating
// instead.
// @Tags ratings
// @Accept json
// @Produce json
// @Param request body services.SubmitRatingRequest true "Rating data"
// @Success 201 {object} models.Rating
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /ratings [post]
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req services.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	rating, err := h.ratingService.SubmitRating(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

func (h *RatingHandler) UpdateRating(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid rating ID"})
		return
	}

	var req services.UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Message: err.Error()})
		return
	}

	rating, err := h.ratingService.UpdateRating(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *RatingHandler) DeleteRating(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid rating ID"})
		return
	}

	if err := h.ratingService.DeleteRating(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating deleted"})
}

func (h *RatingHandler) ListVendorRatings(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid vendor ID"})
		return
	}

	page, limit, offset := pageParams(c)
	ratings, total, err := h.ratingService.ListVendorRatings(c.Request.Context(), vendorID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ratings":    ratings,
		"pagination": paginate(page, limit, total),
	})
}

func (h *RatingHandler) ListOwnRatings(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	page, limit, offset := pageParams(c)
	ratings, total, err := h.ratingService.ListOwnRatings(c.Request.Context(), caller, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ratings":    ratings,
		"pagination": paginate(page, limit, total),
	})
}

func (h *RatingHandler) GetOwnRating(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid vendor ID"})
		return
	}

	rating, err := h.ratingService.GetOwnRating(c.Request.Context(), caller, vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}
