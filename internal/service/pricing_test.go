package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
)

func TestCalculateRentalPriceDailyPlan(t *testing.T) {
	console := &models.InventoryItem{
		Kind:            domain.KindConsole,
		DailyPrice:      dec(t, "100"),
		WeeklyPrice:     dec(t, "600"),
		MonthlyPrice:    dec(t, "2000"),
		SecurityDeposit: dec(t, "5000"),
	}

	quote, err := CalculateRentalPrice(console, nil, nil, domain.PlanDaily,
		day(t, "2026-03-01"), day(t, "2026-03-11"))
	require.NoError(t, err)

	assert.Equal(t, 10, quote.DurationDays)
	assert.True(t, quote.ConsolePrice.Equal(dec(t, "1000")), "got %s", quote.ConsolePrice)
	assert.True(t, quote.TotalPrice.Equal(dec(t, "1000")))
	assert.True(t, quote.DepositAmount.Equal(dec(t, "5000")))
	assert.True(t, quote.DailyRate.Equal(dec(t, "100")))
}

func TestCalculateRentalPriceWeeklyPlanRemainderDays(t *testing.T) {
	// 10 days = 1 full week at 600 + 3 remainder days at 100.
	console := &models.InventoryItem{
		Kind:         domain.KindConsole,
		DailyPrice:   dec(t, "100"),
		WeeklyPrice:  dec(t, "600"),
		MonthlyPrice: dec(t, "2000"),
	}

	quote, err := CalculateRentalPrice(console, nil, nil, domain.PlanWeekly,
		day(t, "2026-03-01"), day(t, "2026-03-11"))
	require.NoError(t, err)
	assert.True(t, quote.ConsolePrice.Equal(dec(t, "900")), "got %s", quote.ConsolePrice)
}

func TestCalculateRentalPriceMonthlyPlanRemainderDays(t *testing.T) {
	// 40 days = 1 thirty-day month at 2000 + 10 remainder days at 80.
	console := &models.InventoryItem{
		Kind:         domain.KindConsole,
		DailyPrice:   dec(t, "80"),
		WeeklyPrice:  dec(t, "500"),
		MonthlyPrice: dec(t, "2000"),
	}

	quote, err := CalculateRentalPrice(console, nil, nil, domain.PlanMonthly,
		day(t, "2026-03-01"), day(t, "2026-04-10"))
	require.NoError(t, err)
	assert.True(t, quote.ConsolePrice.Equal(dec(t, "2800")), "got %s", quote.ConsolePrice)
}

func TestCalculateRentalPriceGameWeeklyDefaultsFromDaily(t *testing.T) {
	// Games without a weekly rate charge daily*7 per week.
	game := models.InventoryItem{Kind: domain.KindGame, DailyPrice: dec(t, "50")}

	quote, err := CalculateRentalPrice(nil, []models.InventoryItem{game}, nil,
		domain.PlanWeekly, day(t, "2026-03-01"), day(t, "2026-03-11"))
	require.NoError(t, err)

	// 1 week at 350 + 3 days at 50 = 500
	assert.True(t, quote.GamesPrice.Equal(dec(t, "500")), "got %s", quote.GamesPrice)
}

func TestCalculateRentalPriceAccessoriesAlwaysDaily(t *testing.T) {
	accessory := models.InventoryItem{Kind: domain.KindAccessory, DailyPrice: dec(t, "20")}

	quote, err := CalculateRentalPrice(nil, nil, []models.InventoryItem{accessory},
		domain.PlanMonthly, day(t, "2026-03-01"), day(t, "2026-04-10"))
	require.NoError(t, err)

	// 40 days at 20 regardless of the monthly plan.
	assert.True(t, quote.AccessoriesPrice.Equal(dec(t, "800")), "got %s", quote.AccessoriesPrice)
}

func TestCalculateRentalPriceCartTotals(t *testing.T) {
	console := &models.InventoryItem{
		Kind:            domain.KindConsole,
		DailyPrice:      dec(t, "100"),
		WeeklyPrice:     dec(t, "600"),
		SecurityDeposit: dec(t, "3000"),
	}
	game := models.InventoryItem{Kind: domain.KindGame, DailyPrice: dec(t, "40")}
	accessory := models.InventoryItem{Kind: domain.KindAccessory, DailyPrice: dec(t, "10")}

	quote, err := CalculateRentalPrice(console, []models.InventoryItem{game},
		[]models.InventoryItem{accessory}, domain.PlanDaily,
		day(t, "2026-03-01"), day(t, "2026-03-06"))
	require.NoError(t, err)

	assert.True(t, quote.ConsolePrice.Equal(dec(t, "500")))
	assert.True(t, quote.GamesPrice.Equal(dec(t, "200")))
	assert.True(t, quote.AccessoriesPrice.Equal(dec(t, "50")))
	assert.True(t, quote.TotalPrice.Equal(dec(t, "750")), "got %s", quote.TotalPrice)
}

func TestCalculateRentalPriceRejectsEmptyWindow(t *testing.T) {
	console := &models.InventoryItem{Kind: domain.KindConsole, DailyPrice: dec(t, "100")}

	_, err := CalculateRentalPrice(console, nil, nil, domain.PlanDaily,
		day(t, "2026-03-05"), day(t, "2026-03-05"))
	assert.True(t, domain.IsValidation(err))

	_, err = CalculateRentalPrice(console, nil, nil, domain.PlanDaily,
		day(t, "2026-03-05"), day(t, "2026-03-01"))
	assert.True(t, domain.IsValidation(err))
}
