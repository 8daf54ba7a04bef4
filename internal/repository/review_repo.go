package repository

import (
	"errors"

	"gorm.io/gorm"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review; the unique index on rental_id catches concurrent
// duplicates the service-level existence check missed.
func (r *ReviewRepository) Create(review *models.Review) error {
	err := r.db.Create(review).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateReview
	}
	return err
}

func (r *ReviewRepository) GetByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ExistsForRental(rentalID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.Review{}).Where("rental_id = ?", rentalID).Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepository) ListByConsole(consoleID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Where("console_id = ? AND is_verified = ?", consoleID, true).
		Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) UpdateFields(id uint, fields map[string]any) error {
	return r.db.Model(&models.Review{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ReviewRepository) Delete(id uint) error {
	return r.db.Delete(&models.Review{}, id).Error
}

type ratingRow struct {
	Rating int   `gorm:"column:rating"`
	Count  int64 `gorm:"column:count"`
}

// RatingBreakdown returns review counts per rating (1..5) for a console in
// one grouped query.
func (r *ReviewRepository) RatingBreakdown(consoleID uint) (map[int]int64, error) {
	var rows []ratingRow
	err := r.db.Model(&models.Review{}).
		Select("rating, COUNT(id) AS count").
		Where("console_id = ? AND is_verified = ?", consoleID, true).
		Group("rating").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	breakdown := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, row := range rows {
		breakdown[row.Rating] = row.Count
	}
	return breakdown, nil
}

// ListReviewableRentals returns a user's returned rentals that don't have a
// review yet.
func (r *ReviewRepository) ListReviewableRentals(userID uint) ([]models.Rental, error) {
	var rentals []models.Rental
	err := r.db.Preload("Console").
		Where("rentals.user_id = ? AND rentals.status = ?", userID, domain.RentalReturned).
		Where("NOT EXISTS (SELECT 1 FROM reviews WHERE reviews.rental_id = rentals.id)").
		Order("rentals.actual_return_date DESC").
		Find(&rentals).Error
	return rentals, err
}
