package models

import (
	"time"

	"github.com/shopspring/decimal"

	"cornerconsole/internal/domain"
)

// Rental is a date-ranged booking. The rental window is half-open:
// RentalStartDate is inclusive, RentalEndDate is exclusive, so an item
// returned on the end date can be re-rented the same day.
//
// Pricing columns are snapshots taken at booking time and never recomputed,
// except LateFee which is re-stamped at return or by the late-marking sweep.
// Rentals are never hard-deleted; cancellation and return are retained
// terminal states.
type Rental struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index:idx_rentals_user_status" json:"user_id"`

	ConsoleID   *uint           `gorm:"index" json:"console_id,omitempty"`
	Console     *InventoryItem  `gorm:"foreignKey:ConsoleID;constraint:OnDelete:RESTRICT" json:"console,omitempty"`
	Games       []InventoryItem `gorm:"many2many:rental_games;constraint:OnDelete:RESTRICT" json:"games,omitempty"`
	Accessories []InventoryItem `gorm:"many2many:rental_accessories;constraint:OnDelete:RESTRICT" json:"accessories,omitempty"`

	RentalType string `gorm:"size:10;not null;default:'daily'" json:"rental_type"`
	Status     string `gorm:"size:20;not null;default:'pending';index;index:idx_rentals_user_status" json:"status"`

	RentalStartDate  time.Time  `gorm:"type:date;not null;index:idx_rentals_dates" json:"rental_start_date"`
	RentalEndDate    time.Time  `gorm:"type:date;not null;index:idx_rentals_dates" json:"rental_end_date"`
	ActualReturnDate *time.Time `gorm:"type:date" json:"actual_return_date,omitempty"`

	DailyRate      decimal.Decimal `gorm:"type:decimal(8,2);default:0" json:"daily_rate"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_price"`
	DepositAmount  decimal.Decimal `gorm:"type:decimal(8,2);default:0" json:"deposit_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(8,2);default:0" json:"discount_amount"`
	LateFee        decimal.Decimal `gorm:"type:decimal(8,2);default:0" json:"late_fee"`

	DeliveryOption  string `gorm:"size:20;not null;default:'pickup'" json:"delivery_option"`
	DeliveryAddress string `gorm:"type:text" json:"delivery_address"`
	DeliveryNotes   string `gorm:"type:text" json:"delivery_notes"`

	PaymentStatus string `gorm:"size:20;not null;default:'unpaid';index" json:"payment_status"`
	RentalNumber  string `gorm:"size:20;uniqueIndex;not null" json:"rental_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Rental) TableName() string {
	return "rentals"
}

func (r *Rental) DurationDays() int {
	return domain.DaysBetween(r.RentalStartDate, r.RentalEndDate)
}

// IsOverdue reports whether an active or late rental is past its end date.
func (r *Rental) IsOverdue(today time.Time) bool {
	if r.Status != domain.RentalActive && r.Status != domain.RentalLate {
		return false
	}
	return domain.Date(r.RentalEndDate).Before(domain.Date(today))
}
