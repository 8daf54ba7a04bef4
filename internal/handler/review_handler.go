package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cornerconsole/internal/middleware"
	"cornerconsole/internal/service"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var in service.CreateReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	review, err := h.reviewService.CreateReview(middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var in service.UpdateReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	review, err := h.reviewService.UpdateReview(middleware.GetUserID(c), uint(id), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.reviewService.DeleteReview(middleware.GetUserID(c), middleware.GetRole(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ConsoleStats returns the review page for one console: reviews, star
// breakdown, and average rating.
func (h *ReviewHandler) ConsoleStats(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	stats, err := h.reviewService.ConsoleStats(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Reviewable lists the caller's returned rentals still awaiting a review.
func (h *ReviewHandler) Reviewable(c *gin.Context) {
	rentals, err := h.reviewService.ReviewableRentals(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rentals": rentals})
}
