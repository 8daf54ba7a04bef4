package database

import (
	"errors"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// Seed inserts sample users and catalog items for development. Rows are keyed
// by slug/email, so running it again is a no-op.
func Seed(db *gorm.DB) error {
	users := []models.User{
		{Email: "admin@cornerconsole.in", FullName: "Admin", Role: domain.RoleAdmin},
		{Email: "demo@cornerconsole.in", FullName: "Demo Customer", Role: domain.RoleCustomer},
	}
	for i := range users {
		err := db.Where("email = ?", users[i].Email).First(&models.User{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&users[i]).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}

	items := []models.InventoryItem{
		{
			Kind: domain.KindConsole, Name: "PlayStation 5 Standard",
			Description: "Latest PS5 with disc drive. Includes 1 DualSense controller.",
			ConsoleType: "ps5", ConditionStatus: "excellent",
			DailyPrice: dec("299.00"), WeeklyPrice: dec("1799.00"), MonthlyPrice: dec("5999.00"),
			SecurityDeposit: dec("5000.00"), StockQuantity: 5, AvailableQuantity: 5,
		},
		{
			Kind: domain.KindConsole, Name: "PlayStation 5 Digital Edition",
			Description: "PS5 Digital Edition, no disc drive. 1 DualSense controller.",
			ConsoleType: "ps5_digital", ConditionStatus: "excellent",
			DailyPrice: dec("249.00"), WeeklyPrice: dec("1499.00"), MonthlyPrice: dec("4999.00"),
			SecurityDeposit: dec("4000.00"), StockQuantity: 4, AvailableQuantity: 4,
		},
		{
			Kind: domain.KindConsole, Name: "PlayStation 4 Pro",
			Description: "PS4 Pro 1TB, great for 4K gaming on a budget.",
			ConsoleType: "ps4_pro", ConditionStatus: "good",
			DailyPrice: dec("149.00"), WeeklyPrice: dec("899.00"), MonthlyPrice: dec("2999.00"),
			SecurityDeposit: dec("3000.00"), StockQuantity: 6, AvailableQuantity: 6,
		},
		{
			Kind: domain.KindGame, Name: "God of War Ragnarok",
			Description: "Embark on an epic journey with Kratos and Atreus.",
			Platform: "ps5", Genre: "action", Rating: dec("9.5"),
			DailyPrice: dec("49.00"), StockQuantity: 10, AvailableQuantity: 10,
		},
		{
			Kind: domain.KindGame, Name: "Spider-Man 2",
			Description: "Swing through Marvel's New York as Peter and Miles.",
			Platform: "ps5", Genre: "action", Rating: dec("9.2"),
			DailyPrice: dec("49.00"), StockQuantity: 10, AvailableQuantity: 10,
		},
		{
			Kind: domain.KindGame, Name: "Gran Turismo 7",
			Description: "The real driving simulator returns.",
			Platform: "cross_gen", Genre: "racing", Rating: dec("8.7"),
			DailyPrice: dec("39.00"), StockQuantity: 8, AvailableQuantity: 8,
		},
		{
			Kind: domain.KindAccessory, Name: "DualSense Wireless Controller (Extra)",
			Description: "Extra DualSense controller with haptic feedback.",
			Category: "controller", CompatibleWith: "ps5",
			DailyPrice: dec("29.00"), StockQuantity: 15, AvailableQuantity: 15,
		},
		{
			Kind: domain.KindAccessory, Name: "PlayStation VR2",
			Description: "Next-gen VR headset with OLED displays.",
			Category: "vr_headset", CompatibleWith: "ps5",
			DailyPrice: dec("99.00"), StockQuantity: 4, AvailableQuantity: 4,
		},
		{
			Kind: domain.KindAccessory, Name: "Pulse 3D Wireless Headset",
			Description: "3D Audio-enabled wireless headset for PS5.",
			Category: "headset", CompatibleWith: "ps5",
			DailyPrice: dec("19.00"), StockQuantity: 10, AvailableQuantity: 10,
		},
	}

	created := 0
	for i := range items {
		items[i].Slug = slugify(items[i].Name)
		items[i].IsActive = true
		err := db.Where("slug = ?", items[i].Slug).First(&models.InventoryItem{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&items[i]).Error; err != nil {
				return err
			}
			created++
			continue
		}
		if err != nil {
			return err
		}
	}
	log.Printf("[seed] %d catalog item(s) created", created)
	return nil
}
