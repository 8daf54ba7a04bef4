package models

import (
	"time"

	"github.com/shopspring/decimal"

	"cornerconsole/internal/domain"
)

// Payment is one gateway charge (or refund target) tied to a rental.
//
// The gateway identifiers fill in progressively: CheckoutSessionID at
// initiation, TransactionID (payment intent) and ChargeID once the
// completion webhook lands. TransactionID is the authoritative reference
// for refunds.
type Payment struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;index" json:"user_id"`
	RentalID uint `gorm:"not null;index:idx_payments_rental_status" json:"rental_id"`

	PaymentType string          `gorm:"size:20;not null;default:'rental'" json:"payment_type"`
	Status      string          `gorm:"size:20;not null;default:'pending';index;index:idx_payments_rental_status" json:"status"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency    string          `gorm:"size:3;default:'INR'" json:"currency"`

	CheckoutSessionID string `gorm:"size:255;index" json:"checkout_session_id,omitempty"`
	TransactionID     string `gorm:"size:255;index" json:"transaction_id,omitempty"`
	ChargeID          string `gorm:"size:255" json:"charge_id,omitempty"`
	CustomerID        string `gorm:"size:255" json:"-"`

	FailureReason string `gorm:"type:text" json:"failure_reason,omitempty"`
	Metadata      string `gorm:"type:text" json:"metadata,omitempty"` // JSON

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Rental Rental `gorm:"foreignKey:RentalID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsSuccessful() bool {
	return p.Status == domain.PaymentCompleted
}

// IsRefundable: only completed or partially refunded payments that carry a
// gateway transaction id can be refunded.
func (p *Payment) IsRefundable() bool {
	if p.TransactionID == "" {
		return false
	}
	return p.Status == domain.PaymentCompleted || p.Status == domain.PaymentPartiallyRefunded
}
