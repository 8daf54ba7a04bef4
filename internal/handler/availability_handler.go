package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
	"cornerconsole/internal/repository"
	"cornerconsole/internal/service"
)

type AvailabilityHandler struct {
	availability  *service.AvailabilityService
	inventoryRepo *repository.InventoryRepository
}

func NewAvailabilityHandler(availability *service.AvailabilityService, inventoryRepo *repository.InventoryRepository) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, inventoryRepo: inventoryRepo}
}

// CheckItem answers "is item N free for these dates" for a single catalog
// item. GET /availability/:id?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *AvailabilityHandler) CheckItem(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	start, err := parseDate(c.Query("start"))
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.inventoryRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.availability.CheckItem(item, start, end, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":   result,
		"reason": result.Reason(),
	})
}

type bulkAvailabilityRequest struct {
	ConsoleID    *uint  `json:"console_id"`
	GameIDs      []uint `json:"game_ids"`
	AccessoryIDs []uint `json:"accessory_ids"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
}

// CheckBulk checks a whole cart in one round trip. POST /availability/check
func (h *AvailabilityHandler) CheckBulk(c *gin.Context) {
	var req bulkAvailabilityRequest
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

	var console *models.InventoryItem
	if req.ConsoleID != nil {
		console, err = h.inventoryRepo.GetActiveByID(*req.ConsoleID, domain.KindConsole)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	games, err := h.inventoryRepo.GetActiveByIDs(req.GameIDs, domain.KindGame)
	if err != nil {
		respondError(c, err)
		return
	}
	accessories, err := h.inventoryRepo.GetActiveByIDs(req.AccessoryIDs, domain.KindAccessory)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.availability.CheckBulk(console, games, accessories, start, end, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"all_available": result.AllAvailable(),
		"result":        result,
		"unavailable":   result.UnavailableItems(),
	})
}
