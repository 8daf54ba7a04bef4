package models

import "time"

// User is the minimal account row the rental core references. Registration
// and login live elsewhere; the core only needs an owner for rentals,
// payments, and reviews, plus the cached gateway customer id.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName         string    `gorm:"size:255" json:"full_name"`
	Role             string    `gorm:"size:20;default:'CUSTOMER'" json:"role"`
	StripeCustomerID string    `gorm:"size:255" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
