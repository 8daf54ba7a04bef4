package service

import (
	"time"

	"github.com/shopspring/decimal"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
)

// PriceQuote is the booking-time price breakdown snapshotted onto the rental.
type PriceQuote struct {
	ConsolePrice     decimal.Decimal `json:"console_price"`
	GamesPrice       decimal.Decimal `json:"games_price"`
	AccessoriesPrice decimal.Decimal `json:"accessories_price"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	DepositAmount    decimal.Decimal `json:"deposit_amount"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
	DurationDays     int             `json:"duration_days"`
}

// CalculateRentalPrice prices a cart over [start, end) under the chosen plan.
//
// Consoles use their native daily/weekly/monthly rates. Games carry only a
// daily (and sometimes weekly) rate, so weekly defaults to daily×7 and
// monthly to daily×30. Accessories are always daily×days whatever the plan.
// Months are a flat 30 days, not calendar-aware; billing depends on that
// staying so.
func CalculateRentalPrice(console *models.InventoryItem, games, accessories []models.InventoryItem, rentalType string, start, end time.Time) (*PriceQuote, error) {
	durationDays := domain.DaysBetween(start, end)
	if durationDays <= 0 {
		return nil, domain.Validationf("end date must be after start date")
	}

	quote := &PriceQuote{
		ConsolePrice:     decimal.Zero,
		GamesPrice:       decimal.Zero,
		AccessoriesPrice: decimal.Zero,
		DepositAmount:    decimal.Zero,
		DailyRate:        decimal.Zero,
		DurationDays:     durationDays,
	}

	if console != nil {
		quote.DailyRate = console.DailyPrice
		quote.DepositAmount = console.SecurityDeposit
		quote.ConsolePrice = priceForItem(
			console.DailyPrice, console.WeeklyPrice, console.MonthlyPrice,
			rentalType, durationDays,
		)
	}

	for i := range games {
		g := &games[i]
		weekly := g.WeeklyPrice
		if weekly.IsZero() {
			weekly = g.DailyPrice.Mul(decimal.NewFromInt(7))
		}
		monthly := g.DailyPrice.Mul(decimal.NewFromInt(30))
		quote.GamesPrice = quote.GamesPrice.Add(
			priceForItem(g.DailyPrice, weekly, monthly, rentalType, durationDays),
		)
	}

	for i := range accessories {
		quote.AccessoriesPrice = quote.AccessoriesPrice.Add(
			accessories[i].DailyPrice.Mul(decimal.NewFromInt(int64(durationDays))),
		)
	}

	quote.TotalPrice = quote.ConsolePrice.Add(quote.GamesPrice).Add(quote.AccessoriesPrice)
	return quote, nil
}

// priceForItem picks the rate bucket for one item. Weekly and monthly plans
// bill full periods at the period rate and leftover days at the daily rate.
func priceForItem(daily, weekly, monthly decimal.Decimal, rentalType string, durationDays int) decimal.Decimal {
	days := decimal.NewFromInt(int64(durationDays))
	switch rentalType {
	case domain.PlanWeekly:
		fullWeeks := durationDays / 7
		leftover := durationDays % 7
		return weekly.Mul(decimal.NewFromInt(int64(fullWeeks))).
			Add(daily.Mul(decimal.NewFromInt(int64(leftover))))
	case domain.PlanMonthly:
		fullMonths := durationDays / 30
		leftover := durationDays % 30
		return monthly.Mul(decimal.NewFromInt(int64(fullMonths))).
			Add(daily.Mul(decimal.NewFromInt(int64(leftover))))
	default:
		return daily.Mul(days)
	}
}
