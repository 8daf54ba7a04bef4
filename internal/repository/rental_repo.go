package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
)

type RentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

func (r *RentalRepository) WithTx(tx *gorm.DB) *RentalRepository {
	return &RentalRepository{db: tx}
}

// forUpdate adds a row lock on dialects that support it. SQLite has no
// FOR UPDATE; its single-writer transactions already serialize mutations.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *RentalRepository) Create(rental *models.Rental) error {
	return r.db.Create(rental).Error
}

func (r *RentalRepository) GetByID(id uint) (*models.Rental, error) {
	var rental models.Rental
	err := r.db.Preload("Console").Preload("Games").Preload("Accessories").
		First(&rental, id).Error
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

// GetByIDForUpdate re-reads a rental inside the current transaction with a
// row lock, so status transitions can't race each other.
func (r *RentalRepository) GetByIDForUpdate(id uint) (*models.Rental, error) {
	var rental models.Rental
	err := forUpdate(r.db).Preload("Games").Preload("Accessories").
		First(&rental, id).Error
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *RentalRepository) GetByNumber(number string) (*models.Rental, error) {
	var rental models.Rental
	err := r.db.Preload("Console").Preload("Games").Preload("Accessories").
		Where("rental_number = ?", number).First(&rental).Error
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *RentalRepository) ListByUser(userID uint) ([]models.Rental, error) {
	var rentals []models.Rental
	err := r.db.Preload("Console").
		Where("user_id = ?", userID).
		Order("created_at DESC").Find(&rentals).Error
	return rentals, err
}

func (r *RentalRepository) UpdateFields(id uint, fields map[string]any) error {
	return r.db.Model(&models.Rental{}).Where("id = ?", id).Updates(fields).Error
}

func (r *RentalRepository) ReplaceGames(rental *models.Rental, games []models.InventoryItem) error {
	return r.db.Model(rental).Association("Games").Replace(games)
}

func (r *RentalRepository) ReplaceAccessories(rental *models.Rental, accessories []models.InventoryItem) error {
	return r.db.Model(rental).Association("Accessories").Replace(accessories)
}

// overlap counting

// CountOverlappingConsole counts blocking rentals of one console whose window
// overlaps [start, end). Half-open overlap: existing.start < end AND
// existing.end > start, so a rental ending on start does not block.
func (r *RentalRepository) CountOverlappingConsole(consoleID uint, start, end time.Time, excludeRentalID uint) (int, error) {
	q := r.db.Model(&models.Rental{}).
		Where("console_id = ?", consoleID).
		Where("status IN ?", domain.BlockingRentalStatuses).
		Where("rental_start_date < ? AND rental_end_date > ?", domain.Date(end), domain.Date(start))
	if excludeRentalID != 0 {
		q = q.Where("id <> ?", excludeRentalID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

type overlapRow struct {
	ItemID uint `gorm:"column:item_id"`
	Cnt    int  `gorm:"column:cnt"`
}

// CountOverlappingJoined returns, per item id, how many blocking rentals hold
// the item via the given many-to-many join table. One grouped query for the
// whole id set regardless of its size.
func (r *RentalRepository) CountOverlappingJoined(joinTable string, itemIDs []uint, start, end time.Time, excludeRentalID uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(itemIDs))
	if len(itemIDs) == 0 {
		return counts, nil
	}
	q := r.db.Table("rentals").
		Select(joinTable+".inventory_item_id AS item_id, COUNT(DISTINCT rentals.id) AS cnt").
		Joins("JOIN "+joinTable+" ON "+joinTable+".rental_id = rentals.id").
		Where(joinTable+".inventory_item_id IN ?", itemIDs).
		Where("rentals.status IN ?", domain.BlockingRentalStatuses).
		Where("rentals.rental_start_date < ? AND rentals.rental_end_date > ?", domain.Date(end), domain.Date(start)).
		Group(joinTable + ".inventory_item_id")
	if excludeRentalID != 0 {
		q = q.Where("rentals.id <> ?", excludeRentalID)
	}
	var rows []overlapRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ItemID] = row.Cnt
	}
	return counts, nil
}

// sweep queries

// ListActiveEndedBefore finds active rentals whose end date has passed,
// candidates for late-marking.
func (r *RentalRepository) ListActiveEndedBefore(day time.Time) ([]models.Rental, error) {
	var rentals []models.Rental
	err := r.db.Where("status = ? AND rental_end_date < ?", domain.RentalActive, domain.Date(day)).
		Find(&rentals).Error
	return rentals, err
}

// ListActiveEndingOn finds active rentals ending exactly on the given day,
// for return reminders.
func (r *RentalRepository) ListActiveEndingOn(day time.Time) ([]models.Rental, error) {
	var rentals []models.Rental
	err := r.db.Preload("Console").Preload("User").
		Where("status = ? AND rental_end_date = ?", domain.RentalActive, domain.Date(day)).
		Find(&rentals).Error
	return rentals, err
}

// ListReturnedOnTime finds returned rentals with no late fee, candidates for
// the deposit auto-refund sweep.
func (r *RentalRepository) ListReturnedOnTime() ([]models.Rental, error) {
	var rentals []models.Rental
	err := r.db.Where("status = ? AND late_fee = 0", domain.RentalReturned).
		Find(&rentals).Error
	return rentals, err
}
