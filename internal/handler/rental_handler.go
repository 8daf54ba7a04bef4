package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/middleware"
	"cornerconsole/internal/repository"
	"cornerconsole/internal/service"
)

type RentalHandler struct {
	rentalService *service.RentalService
	rentalRepo    *repository.RentalRepository
}

func NewRentalHandler(rentalService *service.RentalService, rentalRepo *repository.RentalRepository) *RentalHandler {
	return &RentalHandler{rentalService: rentalService, rentalRepo: rentalRepo}
}

type createRentalRequest struct {
	ConsoleID       *uint  `json:"console_id"`
	GameIDs         []uint `json:"game_ids"`
	AccessoryIDs    []uint `json:"accessory_ids"`
	RentalType      string `json:"rental_type" binding:"required"`
	StartDate       string `json:"start_date" binding:"required"`
	EndDate         string `json:"end_date" binding:"required"`
	DeliveryOption  string `json:"delivery_option"`
	DeliveryAddress string `json:"delivery_address"`
	DeliveryNotes   string `json:"delivery_notes"`
}

func (h *RentalHandler) Create(c *gin.Context) {
	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}

	rental, err := h.rentalService.CreateRental(service.CreateRentalInput{
		UserID:          middleware.GetUserID(c),
		ConsoleID:       req.ConsoleID,
		GameIDs:         req.GameIDs,
		AccessoryIDs:    req.AccessoryIDs,
		RentalType:      req.RentalType,
		StartDate:       start,
		EndDate:         end,
		DeliveryOption:  req.DeliveryOption,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryNotes:   req.DeliveryNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rental)
}

func (h *RentalHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	rental, err := h.rentalRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	if rental.UserID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rental)
}

func (h *RentalHandler) ListMine(c *gin.Context) {
	rentals, err := h.rentalRepo.ListByUser(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rentals": rentals})
}

type returnRentalRequest struct {
	ReturnDate string `json:"return_date"`
}

// Return closes the rental, snapshots any late fee, and releases stock.
func (h *RentalHandler) Return(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req returnRentalRequest
	_ = c.ShouldBindJSON(&req)

	var returnDate *time.Time
	if req.ReturnDate != "" {
		t, err := parseDate(req.ReturnDate)
		if err != nil {
			respondError(c, err)
			return
		}
		returnDate = &t
	}

	rental, err := h.rentalService.ReturnRental(uint(id), returnDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

func (h *RentalHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	rental, err := h.rentalRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	if rental.UserID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	updated, err := h.rentalService.CancelRental(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Activate marks a confirmed rental as picked up / delivered. Admin only.
func (h *RentalHandler) Activate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	rental, err := h.rentalService.MarkRentalActive(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}
