package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDForUpdate locks the row for the rest of the transaction.
func (r *PaymentRepository) GetByIDForUpdate(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := forUpdate(r.db).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetBySessionID(sessionID string) (*models.Payment, error) {
	var p models.Payment
	err := forUpdate(r.db).Where("checkout_session_id = ?", sessionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByTransactionID(transactionID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("transaction_id = ?", transactionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByUser(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) UpdateFields(id uint, fields map[string]any) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", id).Updates(fields).Error
}

// ListStaleCheckouts returns pending/processing payments created before the
// cutoff, oldest first.
func (r *PaymentRepository) ListStaleCheckouts(cutoff time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.
		Where("status IN ? AND created_at < ?", []string{domain.PaymentPending, domain.PaymentProcessing}, cutoff).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

// ExpireStaleBefore flips pending/processing payments created before the
// cutoff to expired, returning how many were touched.
func (r *PaymentRepository) ExpireStaleBefore(cutoff time.Time) (int64, error) {
	res := r.db.Model(&models.Payment{}).
		Where("status IN ? AND created_at < ?", []string{domain.PaymentPending, domain.PaymentProcessing}, cutoff).
		Updates(map[string]any{
			"status":         domain.PaymentExpired,
			"failure_reason": "Checkout session expired.",
		})
	return res.RowsAffected, res.Error
}

// GetCompletedDeposit returns the completed deposit payment for a rental, or
// domain.ErrPaymentNotFound when there is none.
func (r *PaymentRepository) GetCompletedDeposit(rentalID uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("rental_id = ? AND payment_type = ? AND status = ?",
		rentalID, domain.PaymentKindDeposit, domain.PaymentCompleted).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
