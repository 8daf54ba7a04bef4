package models

import "time"

// Review is post-rental feedback. Exactly one review per rental, enforced by
// the unique index; only returned rentals are reviewable (service guard).
type Review struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	RentalID uint `gorm:"uniqueIndex;not null" json:"rental_id"`
	UserID   uint `gorm:"not null;index" json:"user_id"`

	// Nil for game/accessory-only rentals.
	ConsoleID *uint `gorm:"index:idx_reviews_console_rating" json:"console_id,omitempty"`

	Rating     int    `gorm:"not null;index:idx_reviews_console_rating" json:"rating"` // 1..5
	Title      string `gorm:"size:255" json:"title"`
	Comment    string `gorm:"type:text" json:"comment"`
	IsVerified bool   `gorm:"default:true" json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Rental  Rental         `gorm:"foreignKey:RentalID" json:"-"`
	User    User           `gorm:"foreignKey:UserID" json:"-"`
	Console *InventoryItem `gorm:"foreignKey:ConsoleID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
