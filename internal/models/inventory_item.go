package models

import (
	"time"

	"github.com/shopspring/decimal"

	"cornerconsole/internal/domain"
)

// InventoryItem is a rentable catalog entry. Consoles, games, and accessories
// share one table: the stock and pricing columns are common, the Kind column
// tags the variant, and the extension columns below only apply to one kind.
type InventoryItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Kind        string `gorm:"size:20;not null;index" json:"kind"` // console, game, accessory
	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:512" json:"image_url"`

	// Pricing. WeeklyPrice/MonthlyPrice are native for consoles only; the
	// pricing engine derives them for games and ignores them for accessories.
	DailyPrice      decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"daily_price"`
	WeeklyPrice     decimal.Decimal `gorm:"type:decimal(8,2);default:0" json:"weekly_price"`
	MonthlyPrice    decimal.Decimal `gorm:"type:decimal(8,2);default:0" json:"monthly_price"`
	SecurityDeposit decimal.Decimal `gorm:"type:decimal(8,2);default:0" json:"security_deposit"`

	// Inventory. AvailableQuantity is live non-date-aware stock; it is only
	// ever mutated by the rental lifecycle, via atomic relative updates.
	StockQuantity     int `gorm:"not null;default:0" json:"stock_quantity"`
	AvailableQuantity int `gorm:"not null;default:0;index:idx_items_availability" json:"available_quantity"`

	// Console extension
	ConsoleType     string `gorm:"size:20" json:"console_type,omitempty"`
	ConditionStatus string `gorm:"size:20" json:"condition_status,omitempty"`

	// Game extension
	Platform string          `gorm:"size:20" json:"platform,omitempty"`
	Genre    string          `gorm:"size:20" json:"genre,omitempty"`
	Rating   decimal.Decimal `gorm:"type:decimal(3,1);default:0" json:"rating,omitempty"`

	// Accessory extension
	Category       string `gorm:"size:20" json:"category,omitempty"`
	CompatibleWith string `gorm:"size:20" json:"compatible_with,omitempty"`

	IsActive  bool      `gorm:"default:true;index:idx_items_availability" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

func (i *InventoryItem) IsInStock() bool {
	return i.AvailableQuantity > 0
}

func (i *InventoryItem) IsConsole() bool {
	return i.Kind == domain.KindConsole
}
