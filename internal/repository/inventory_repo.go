package repository

import (
	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"

	"gorm.io/gorm"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *InventoryRepository) WithTx(tx *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: tx}
}

func (r *InventoryRepository) GetByID(id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) GetActiveByID(id uint, kind string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.Where("id = ? AND kind = ? AND is_active = ?", id, kind, true).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetActiveByIDs loads the requested items of one kind, preserving no
// particular order. Missing or inactive ids simply don't come back; the
// caller decides whether that is an error.
func (r *InventoryRepository) GetActiveByIDs(ids []uint, kind string) ([]models.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.InventoryItem
	err := r.db.Where("id IN ? AND kind = ? AND is_active = ?", ids, kind, true).Find(&items).Error
	return items, err
}

func (r *InventoryRepository) ListActive(kind string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.Where("kind = ? AND is_active = ?", kind, true).
		Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *InventoryRepository) GetBySlug(slug string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.Where("slug = ?", slug).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ReserveOne atomically takes one unit of stock. The conditional relative
// update both locks the row and guards against going negative; zero rows
// affected means someone else took the last unit.
func (r *InventoryRepository) ReserveOne(item *models.InventoryItem) error {
	res := r.db.Model(&models.InventoryItem{}).
		Where("id = ? AND available_quantity >= 1", item.ID).
		Update("available_quantity", gorm.Expr("available_quantity - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.StockConflictError{ItemName: item.Name}
	}
	return nil
}

// ReleaseOne returns one unit of stock, capped at total stock so repeated
// releases can never inflate availability.
func (r *InventoryRepository) ReleaseOne(itemID uint) error {
	return r.db.Model(&models.InventoryItem{}).
		Where("id = ? AND available_quantity < stock_quantity", itemID).
		Update("available_quantity", gorm.Expr("available_quantity + 1")).Error
}
