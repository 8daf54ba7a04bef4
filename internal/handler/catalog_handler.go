package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/repository"
)

type CatalogHandler struct {
	inventoryRepo *repository.InventoryRepository
}

func NewCatalogHandler(inventoryRepo *repository.InventoryRepository) *CatalogHandler {
	return &CatalogHandler{inventoryRepo: inventoryRepo}
}

func (h *CatalogHandler) ListConsoles(c *gin.Context) {
	h.list(c, domain.KindConsole, "consoles")
}

func (h *CatalogHandler) ListGames(c *gin.Context) {
	h.list(c, domain.KindGame, "games")
}

func (h *CatalogHandler) ListAccessories(c *gin.Context) {
	h.list(c, domain.KindAccessory, "accessories")
}

func (h *CatalogHandler) list(c *gin.Context, kind, key string) {
	items, err := h.inventoryRepo.ListActive(kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: items})
}

func (h *CatalogHandler) GetBySlug(c *gin.Context) {
	item, err := h.inventoryRepo.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
