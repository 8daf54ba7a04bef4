package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.InventoryItem{},
		&models.Rental{},
		&models.Payment{},
		&models.WebhookEvent{},
		&models.Review{},
	))
	return db
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func ptrTime(t time.Time) *time.Time { return &t }

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{Email: "renter@example.com", FullName: "Renter", Role: domain.RoleCustomer}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedConsole(t *testing.T, db *gorm.DB, name string, stock int, daily, weekly, monthly, deposit string) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		Kind:              domain.KindConsole,
		Name:              name,
		Slug:              name,
		ConsoleType:       "ps5",
		ConditionStatus:   "excellent",
		DailyPrice:        dec(t, daily),
		WeeklyPrice:       dec(t, weekly),
		MonthlyPrice:      dec(t, monthly),
		SecurityDeposit:   dec(t, deposit),
		StockQuantity:     stock,
		AvailableQuantity: stock,
		IsActive:          true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedGame(t *testing.T, db *gorm.DB, name string, stock int, daily string) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		Kind:              domain.KindGame,
		Name:              name,
		Slug:              name,
		Platform:          "ps5",
		Genre:             "action",
		DailyPrice:        dec(t, daily),
		StockQuantity:     stock,
		AvailableQuantity: stock,
		IsActive:          true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedAccessory(t *testing.T, db *gorm.DB, name string, stock int, daily string) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		Kind:              domain.KindAccessory,
		Name:              name,
		Slug:              name,
		Category:          "controller",
		CompatibleWith:    "ps5",
		DailyPrice:        dec(t, daily),
		StockQuantity:     stock,
		AvailableQuantity: stock,
		IsActive:          true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func reloadItem(t *testing.T, db *gorm.DB, id uint) *models.InventoryItem {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, db.First(&item, id).Error)
	return &item
}

func reloadRental(t *testing.T, db *gorm.DB, id uint) *models.Rental {
	t.Helper()
	var rental models.Rental
	require.NoError(t, db.Preload("Games").Preload("Accessories").First(&rental, id).Error)
	return &rental
}
