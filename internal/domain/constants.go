package domain

import "github.com/shopspring/decimal"

// Inventory item kinds
const (
	KindConsole   = "console"
	KindGame      = "game"
	KindAccessory = "accessory"
)

// Rental statuses
const (
	RentalPending   = "pending"
	RentalConfirmed = "confirmed"
	RentalActive    = "active"
	RentalReturned  = "returned"
	RentalLate      = "late"
	RentalCancelled = "cancelled"
	RentalOverdue   = "overdue"
)

// BlockingRentalStatuses hold physical inventory: the item is not back
// on the shelf yet. Returned and cancelled rentals never block.
var BlockingRentalStatuses = []string{
	RentalPending,
	RentalConfirmed,
	RentalActive,
	RentalLate,
	RentalOverdue,
}

// Rate plans
const (
	PlanDaily   = "daily"
	PlanWeekly  = "weekly"
	PlanMonthly = "monthly"
)

// Delivery options
const (
	DeliveryPickup = "pickup"
	DeliveryHome   = "home_delivery"
)

// Rental payment statuses
const (
	RentalUnpaid        = "unpaid"
	RentalPartiallyPaid = "partially_paid"
	RentalPaid          = "paid"
	RentalRefunded      = "refunded"
)

// Payment statuses
const (
	PaymentPending           = "pending"
	PaymentProcessing        = "processing"
	PaymentCompleted         = "completed"
	PaymentFailed            = "failed"
	PaymentExpired           = "expired"
	PaymentRefunded          = "refunded"
	PaymentPartiallyRefunded = "partially_refunded"
)

// Payment kinds
const (
	PaymentKindRental  = "rental"
	PaymentKindDeposit = "deposit"
	PaymentKindLateFee = "late_fee"
	PaymentKindDamage  = "damage"
	PaymentKindRefund  = "refund"
)

// User roles
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// Late fees charged per overdue day, flat per item.
var (
	LateFeePerDayConsole   = decimal.NewFromInt(150)
	LateFeePerDayGame      = decimal.NewFromInt(30)
	LateFeePerDayAccessory = decimal.NewFromInt(20)
)
