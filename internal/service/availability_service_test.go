package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
	"cornerconsole/internal/repository"
)

func seedBlockingRental(t *testing.T, db *gorm.DB, userID uint, console *models.InventoryItem, games []models.InventoryItem, status string, start, end time.Time) *models.Rental {
	t.Helper()
	rental := &models.Rental{
		UserID:          userID,
		RentalType:      domain.PlanDaily,
		Status:          status,
		RentalStartDate: domain.Date(start),
		RentalEndDate:   domain.Date(end),
		RentalNumber:    "CC-TEST" + time.Now().Format("150405.000000"),
	}
	if console != nil {
		rental.ConsoleID = &console.ID
	}
	rental.Games = games
	require.NoError(t, db.Create(rental).Error)
	return rental
}

func TestCheckItemAdjacentWindowsDoNotOverlap(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	console := seedConsole(t, db, "ps5", 1, "100", "600", "2000", "5000")
	svc := NewAvailabilityService(repository.NewRentalRepository(db))

	seedBlockingRental(t, db, user.ID, console, nil, domain.RentalConfirmed,
		day(t, "2026-03-01"), day(t, "2026-03-05"))

	// Same-day turnover: a request starting on the existing end date fits.
	result, err := svc.CheckItem(console, day(t, "2026-03-05"), day(t, "2026-03-10"), 0)
	require.NoError(t, err)
	assert.True(t, result.IsAvailable)
	assert.Equal(t, 0, result.OverlappingRentals)

	// One day of conflict blocks the single unit.
	result, err = svc.CheckItem(console, day(t, "2026-03-04"), day(t, "2026-03-10"), 0)
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
	assert.Equal(t, 1, result.OverlappingRentals)
	assert.Equal(t, "All 1 unit(s) booked (1 overlapping rental(s))", result.Reason())
}

func TestCheckItemCountsOnlyBlockingStatuses(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	console := seedConsole(t, db, "ps5", 1, "100", "600", "2000", "5000")
	svc := NewAvailabilityService(repository.NewRentalRepository(db))

	start, end := day(t, "2026-03-01"), day(t, "2026-03-05")
	seedBlockingRental(t, db, user.ID, console, nil, domain.RentalReturned, start, end)
	seedBlockingRental(t, db, user.ID, console, nil, domain.RentalCancelled, start, end)

	result, err := svc.CheckItem(console, start, end, 0)
	require.NoError(t, err)
	assert.True(t, result.IsAvailable, "terminal statuses must not block")

	seedBlockingRental(t, db, user.ID, console, nil, domain.RentalLate, start, end)
	result, err = svc.CheckItem(console, start, end, 0)
	require.NoError(t, err)
	assert.False(t, result.IsAvailable, "late rentals still hold the unit")
}

func TestCheckItemStockMinusOverlap(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	console := seedConsole(t, db, "ps5", 3, "100", "600", "2000", "5000")
	svc := NewAvailabilityService(repository.NewRentalRepository(db))

	start, end := day(t, "2026-03-01"), day(t, "2026-03-08")
	seedBlockingRental(t, db, user.ID, console, nil, domain.RentalActive, start, end)
	seedBlockingRental(t, db, user.ID, console, nil, domain.RentalPending, start, end)

	result, err := svc.CheckItem(console, day(t, "2026-03-03"), day(t, "2026-03-06"), 0)
	require.NoError(t, err)
	assert.True(t, result.IsAvailable)
	assert.Equal(t, 1, result.AvailableForDates)
	assert.Equal(t, "1 unit(s) available", result.Reason())
}

func TestCheckItemExcludesOwnRental(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	console := seedConsole(t, db, "ps5", 1, "100", "600", "2000", "5000")
	svc := NewAvailabilityService(repository.NewRentalRepository(db))

	mine := seedBlockingRental(t, db, user.ID, console, nil, domain.RentalConfirmed,
		day(t, "2026-03-01"), day(t, "2026-03-05"))

	result, err := svc.CheckItem(console, day(t, "2026-03-02"), day(t, "2026-03-06"), mine.ID)
	require.NoError(t, err)
	assert.True(t, result.IsAvailable, "own rental must not count against an edit")
}

func TestCheckItemGameOverlapViaJoinTable(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	game := seedGame(t, db, "gow", 1, "49")
	svc := NewAvailabilityService(repository.NewRentalRepository(db))

	seedBlockingRental(t, db, user.ID, nil, []models.InventoryItem{*game},
		domain.RentalConfirmed, day(t, "2026-03-01"), day(t, "2026-03-05"))

	result, err := svc.CheckItem(game, day(t, "2026-03-02"), day(t, "2026-03-04"), 0)
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)

	result, err = svc.CheckItem(game, day(t, "2026-03-05"), day(t, "2026-03-08"), 0)
	require.NoError(t, err)
	assert.True(t, result.IsAvailable)
}

func TestCheckItemRejectsInvalidWindow(t *testing.T) {
	db := newTestDB(t)
	console := seedConsole(t, db, "ps5", 1, "100", "600", "2000", "5000")
	svc := NewAvailabilityService(repository.NewRentalRepository(db))

	_, err := svc.CheckItem(console, day(t, "2026-03-05"), day(t, "2026-03-05"), 0)
	assert.True(t, domain.IsValidation(err))
}

func TestCheckBulkVerdictsPerItem(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	console := seedConsole(t, db, "ps5", 1, "100", "600", "2000", "5000")
	gameFree := seedGame(t, db, "gt7", 2, "39")
	gameTaken := seedGame(t, db, "gow", 1, "49")
	accessory := seedAccessory(t, db, "dualsense", 2, "29")
	svc := NewAvailabilityService(repository.NewRentalRepository(db))

	seedBlockingRental(t, db, user.ID, nil, []models.InventoryItem{*gameTaken},
		domain.RentalActive, day(t, "2026-03-01"), day(t, "2026-03-10"))

	result, err := svc.CheckBulk(console,
		[]models.InventoryItem{*gameFree, *gameTaken},
		[]models.InventoryItem{*accessory},
		day(t, "2026-03-02"), day(t, "2026-03-06"), 0)
	require.NoError(t, err)

	assert.False(t, result.AllAvailable())
	require.NotNil(t, result.Console)
	assert.True(t, result.Console.IsAvailable)
	require.Len(t, result.Games, 2)
	assert.True(t, result.Games[0].IsAvailable)
	assert.False(t, result.Games[1].IsAvailable)
	require.Len(t, result.Accessories, 1)
	assert.True(t, result.Accessories[0].IsAvailable)

	unavailable := result.UnavailableItems()
	require.Len(t, unavailable, 1)
	assert.Equal(t, gameTaken.ID, unavailable[0].ItemID)
}

func TestCheckBulkBoundedQueryCount(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	console := seedConsole(t, db, "ps5", 2, "100", "600", "2000", "5000")
	svc := NewAvailabilityService(repository.NewRentalRepository(db))

	games := make([]models.InventoryItem, 0, 8)
	for _, name := range []string{"g1", "g2", "g3", "g4", "g5", "g6", "g7", "g8"} {
		games = append(games, *seedGame(t, db, name, 2, "39"))
	}
	accessories := make([]models.InventoryItem, 0, 5)
	for _, name := range []string{"a1", "a2", "a3", "a4", "a5"} {
		accessories = append(accessories, *seedAccessory(t, db, name, 2, "19"))
	}
	seedBlockingRental(t, db, user.ID, console, games[:3], domain.RentalConfirmed,
		day(t, "2026-03-01"), day(t, "2026-03-10"))

	var queries int
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("count_queries", func(*gorm.DB) {
		queries++
	}))
	t.Cleanup(func() {
		_ = db.Callback().Query().Remove("count_queries")
	})

	queries = 0
	_, err := svc.CheckBulk(console, games, accessories, day(t, "2026-03-02"), day(t, "2026-03-06"), 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, queries, 3, "bulk check must not issue per-item queries")
}
