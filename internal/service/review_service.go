package service

import (
	"errors"

	"gorm.io/gorm"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
	"cornerconsole/internal/repository"
)

// ReviewService enforces the one-verified-review-per-rental rule.
type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	rentalRepo *repository.RentalRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, rentalRepo *repository.RentalRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, rentalRepo: rentalRepo}
}

type CreateReviewInput struct {
	RentalID uint   `json:"rental_id" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Title    string `json:"title"`
	Comment  string `json:"comment"`
}

// CreateReview accepts a review only from the renter, only after the rental
// was returned, and only once per rental.
func (s *ReviewService) CreateReview(userID uint, in CreateReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, domain.Validationf("rating must be between 1 and 5")
	}

	rental, err := s.rentalRepo.GetByID(in.RentalID)
	if err != nil {
		return nil, domain.ErrRentalNotFound
	}
	if rental.UserID != userID {
		return nil, domain.ErrNotReviewOwner
	}
	if rental.Status != domain.RentalReturned {
		return nil, &domain.StateConflictError{Op: "review", Current: rental.Status}
	}

	exists, err := s.reviewRepo.ExistsForRental(in.RentalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateReview
	}

	review := &models.Review{
		RentalID:   in.RentalID,
		UserID:     userID,
		ConsoleID:  rental.ConsoleID,
		Rating:     in.Rating,
		Title:      in.Title,
		Comment:    in.Comment,
		IsVerified: true,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}
	return review, nil
}

type UpdateReviewInput struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

// UpdateReview lets the author revise rating, title, or comment.
func (s *ReviewService) UpdateReview(userID, reviewID uint, in UpdateReviewInput) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.Validationf("review %d not found", reviewID)
	}
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, domain.ErrNotReviewOwner
	}

	fields := map[string]any{}
	if in.Rating != nil {
		if *in.Rating < 1 || *in.Rating > 5 {
			return nil, domain.Validationf("rating must be between 1 and 5")
		}
		fields["rating"] = *in.Rating
		review.Rating = *in.Rating
	}
	if in.Title != nil {
		fields["title"] = *in.Title
		review.Title = *in.Title
	}
	if in.Comment != nil {
		fields["comment"] = *in.Comment
		review.Comment = *in.Comment
	}
	if len(fields) == 0 {
		return review, nil
	}
	if err := s.reviewRepo.UpdateFields(reviewID, fields); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview allows the author or an admin to remove a review.
func (s *ReviewService) DeleteReview(userID uint, role string, reviewID uint) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Validationf("review %d not found", reviewID)
	}
	if err != nil {
		return err
	}
	if review.UserID != userID && role != domain.RoleAdmin {
		return domain.ErrNotReviewOwner
	}
	return s.reviewRepo.Delete(reviewID)
}

type ConsoleReviewStats struct {
	ConsoleID     uint            `json:"console_id"`
	AverageRating float64         `json:"average_rating"`
	TotalReviews  int64           `json:"total_reviews"`
	Breakdown     map[int]int64   `json:"breakdown"`
	Reviews       []models.Review `json:"reviews"`
}

// ConsoleStats aggregates the review page for one console: recent reviews,
// star breakdown, and the average rounded to one decimal place.
func (s *ReviewService) ConsoleStats(consoleID uint) (*ConsoleReviewStats, error) {
	reviews, err := s.reviewRepo.ListByConsole(consoleID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.reviewRepo.RatingBreakdown(consoleID)
	if err != nil {
		return nil, err
	}

	var total, sum int64
	for star, count := range breakdown {
		total += count
		sum += int64(star) * count
	}
	avg := 0.0
	if total > 0 {
		avg = float64(sum) / float64(total)
		avg = float64(int(avg*10+0.5)) / 10
	}

	return &ConsoleReviewStats{
		ConsoleID:     consoleID,
		AverageRating: avg,
		TotalReviews:  total,
		Breakdown:     breakdown,
		Reviews:       reviews,
	}, nil
}

// ReviewableRentals lists the caller's returned rentals that have no review
// yet.
func (s *ReviewService) ReviewableRentals(userID uint) ([]models.Rental, error) {
	return s.reviewRepo.ListReviewableRentals(userID)
}
