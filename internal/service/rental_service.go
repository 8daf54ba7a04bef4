package service

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
	"cornerconsole/internal/repository"
)

// RentalService orchestrates the rental lifecycle:
//
//	pending -> confirmed -> active -> {late, overdue} -> returned
//	pending|confirmed -> cancelled
//
// It is the sole writer of inventory counters. Every transition that touches
// stock runs the status write and the counter update in one transaction, so a
// crash can't leave them split.
type RentalService struct {
	db            *gorm.DB
	rentalRepo    *repository.RentalRepository
	inventoryRepo *repository.InventoryRepository
}

func NewRentalService(db *gorm.DB, rentalRepo *repository.RentalRepository, inventoryRepo *repository.InventoryRepository) *RentalService {
	return &RentalService{db: db, rentalRepo: rentalRepo, inventoryRepo: inventoryRepo}
}

type CreateRentalInput struct {
	UserID          uint
	ConsoleID       *uint
	GameIDs         []uint
	AccessoryIDs    []uint
	RentalType      string
	StartDate       time.Time
	EndDate         time.Time
	DeliveryOption  string
	DeliveryAddress string
	DeliveryNotes   string
}

// CreateRental books a cart: validates, prices, persists the rental, and
// reserves one unit of every selected item, all in a single transaction.
// Insufficient stock on any item rolls the whole booking back; no partial
// reservation is ever committed.
func (s *RentalService) CreateRental(in CreateRentalInput) (*models.Rental, error) {
	if err := validateWindow(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if in.ConsoleID == nil && len(in.GameIDs) == 0 && len(in.AccessoryIDs) == 0 {
		return nil, &domain.ValidationError{Msg: domain.ErrEmptyCart.Error()}
	}
	switch in.RentalType {
	case domain.PlanDaily, domain.PlanWeekly, domain.PlanMonthly:
	default:
		return nil, domain.Validationf("unknown rental type %q", in.RentalType)
	}
	if in.DeliveryOption == "" {
		in.DeliveryOption = domain.DeliveryPickup
	}
	if in.DeliveryOption == domain.DeliveryHome && strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, domain.Validationf("delivery address is required for home delivery")
	}

	var console *models.InventoryItem
	if in.ConsoleID != nil {
		item, err := s.inventoryRepo.GetActiveByID(*in.ConsoleID, domain.KindConsole)
		if err != nil {
			return nil, domain.Validationf("console %d not found or inactive", *in.ConsoleID)
		}
		console = item
	}
	games, err := s.loadItems(in.GameIDs, domain.KindGame)
	if err != nil {
		return nil, err
	}
	accessories, err := s.loadItems(in.AccessoryIDs, domain.KindAccessory)
	if err != nil {
		return nil, err
	}

	// Fast non-date-aware guard. The date-aware check happens at the API
	// boundary via the availability engine; the authoritative guard is the
	// conditional decrement below.
	for _, item := range cartItems(console, games, accessories) {
		if item.AvailableQuantity < 1 {
			return nil, &domain.StockConflictError{ItemName: item.Name}
		}
	}

	quote, err := CalculateRentalPrice(console, games, accessories, in.RentalType, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	rental := &models.Rental{
		UserID:          in.UserID,
		ConsoleID:       in.ConsoleID,
		RentalType:      in.RentalType,
		Status:          domain.RentalPending,
		RentalStartDate: domain.Date(in.StartDate),
		RentalEndDate:   domain.Date(in.EndDate),
		DailyRate:       quote.DailyRate,
		TotalPrice:      quote.TotalPrice,
		DepositAmount:   quote.DepositAmount,
		DiscountAmount:  decimal.Zero,
		LateFee:         decimal.Zero,
		DeliveryOption:  in.DeliveryOption,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryNotes:   in.DeliveryNotes,
		PaymentStatus:   domain.RentalUnpaid,
		RentalNumber:    generateRentalNumber(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		rentals := s.rentalRepo.WithTx(tx)
		inventory := s.inventoryRepo.WithTx(tx)

		if err := rentals.Create(rental); err != nil {
			return err
		}
		if len(games) > 0 {
			if err := rentals.ReplaceGames(rental, games); err != nil {
				return err
			}
		}
		if len(accessories) > 0 {
			if err := rentals.ReplaceAccessories(rental, accessories); err != nil {
				return err
			}
		}
		for _, item := range cartItems(console, games, accessories) {
			if err := inventory.ReserveOne(item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[rental] %s created for user %d (total %s)",
		rental.RentalNumber, in.UserID, quote.TotalPrice.StringFixed(2))
	return s.rentalRepo.GetByID(rental.ID)
}

// ReturnRental closes out an active/late/overdue rental: stamps the actual
// return date, snapshots the late fee, and restores stock atomically.
func (s *RentalService) ReturnRental(rentalID uint, returnDate *time.Time) (*models.Rental, error) {
	effective := domain.Today()
	if returnDate != nil {
		effective = domain.Date(*returnDate)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		rentals := s.rentalRepo.WithTx(tx)
		rental, err := rentals.GetByIDForUpdate(rentalID)
		if err != nil {
			return err
		}
		switch rental.Status {
		case domain.RentalActive, domain.RentalLate, domain.RentalOverdue:
		default:
			return &domain.StateConflictError{Op: "return", Current: rental.Status}
		}

		lateFee := CalculateLateFee(rental, effective)
		if err := rentals.UpdateFields(rental.ID, map[string]any{
			"status":             domain.RentalReturned,
			"actual_return_date": effective,
			"late_fee":           lateFee,
		}); err != nil {
			return err
		}
		if err := s.restoreStock(tx, rental); err != nil {
			return err
		}
		log.Printf("[rental] %s returned (late fee %s)", rental.RentalNumber, lateFee.StringFixed(2))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(rentalID)
}

// CancelRental cancels a pending/confirmed rental and restores stock.
func (s *RentalService) CancelRental(rentalID uint) (*models.Rental, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rentals := s.rentalRepo.WithTx(tx)
		rental, err := rentals.GetByIDForUpdate(rentalID)
		if err != nil {
			return err
		}
		if rental.Status != domain.RentalPending && rental.Status != domain.RentalConfirmed {
			return &domain.StateConflictError{Op: "cancel", Current: rental.Status}
		}
		if err := rentals.UpdateFields(rental.ID, map[string]any{
			"status": domain.RentalCancelled,
		}); err != nil {
			return err
		}
		if err := s.restoreStock(tx, rental); err != nil {
			return err
		}
		log.Printf("[rental] %s cancelled", rental.RentalNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(rentalID)
}

// MarkRentalActive transitions a confirmed rental to active after delivery
// or pickup. Stock was already reserved at creation, so no counter moves.
func (s *RentalService) MarkRentalActive(rentalID uint) (*models.Rental, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rentals := s.rentalRepo.WithTx(tx)
		rental, err := rentals.GetByIDForUpdate(rentalID)
		if err != nil {
			return err
		}
		if rental.Status != domain.RentalConfirmed {
			return &domain.StateConflictError{Op: "activate", Current: rental.Status}
		}
		return rentals.UpdateFields(rental.ID, map[string]any{
			"status": domain.RentalActive,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(rentalID)
}

// MarkRentalLate flips an overdue active rental to late and snapshots the
// fee. Outside that window it is a deliberate no-op, so the periodic sweep
// can re-run it safely.
func (s *RentalService) MarkRentalLate(rentalID uint) (*models.Rental, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rentals := s.rentalRepo.WithTx(tx)
		rental, err := rentals.GetByIDForUpdate(rentalID)
		if err != nil {
			return err
		}
		if rental.Status != domain.RentalActive || !rental.IsOverdue(domain.Today()) {
			return nil
		}
		fee := CalculateLateFee(rental, domain.Today())
		if err := rentals.UpdateFields(rental.ID, map[string]any{
			"status":   domain.RentalLate,
			"late_fee": fee,
		}); err != nil {
			return err
		}
		log.Printf("[rental] %s marked late (fee %s)", rental.RentalNumber, fee.StringFixed(2))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(rentalID)
}

// CalculateLateFee charges a flat per-day fee per overdue item: every
// overdue day costs the same regardless of how many have already elapsed.
// Requires rental.Games/Accessories to be loaded.
func CalculateLateFee(rental *models.Rental, asOf time.Time) decimal.Decimal {
	overdueDays := domain.DaysBetween(rental.RentalEndDate, asOf)
	if overdueDays <= 0 {
		return decimal.Zero
	}
	days := decimal.NewFromInt(int64(overdueDays))

	fee := decimal.Zero
	if rental.ConsoleID != nil {
		fee = fee.Add(domain.LateFeePerDayConsole.Mul(days))
	}
	if n := len(rental.Games); n > 0 {
		fee = fee.Add(domain.LateFeePerDayGame.Mul(days).Mul(decimal.NewFromInt(int64(n))))
	}
	if n := len(rental.Accessories); n > 0 {
		fee = fee.Add(domain.LateFeePerDayAccessory.Mul(days).Mul(decimal.NewFromInt(int64(n))))
	}
	return fee
}

func (s *RentalService) loadItems(ids []uint, kind string) ([]models.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := s.inventoryRepo.GetActiveByIDs(ids, kind)
	if err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		return nil, domain.Validationf("one or more %ss not found or inactive", kind)
	}
	return items, nil
}

func (s *RentalService) restoreStock(tx *gorm.DB, rental *models.Rental) error {
	inventory := s.inventoryRepo.WithTx(tx)
	if rental.ConsoleID != nil {
		if err := inventory.ReleaseOne(*rental.ConsoleID); err != nil {
			return err
		}
	}
	for i := range rental.Games {
		if err := inventory.ReleaseOne(rental.Games[i].ID); err != nil {
			return err
		}
	}
	for i := range rental.Accessories {
		if err := inventory.ReleaseOne(rental.Accessories[i].ID); err != nil {
			return err
		}
	}
	return nil
}

func cartItems(console *models.InventoryItem, games, accessories []models.InventoryItem) []*models.InventoryItem {
	items := make([]*models.InventoryItem, 0, 1+len(games)+len(accessories))
	if console != nil {
		items = append(items, console)
	}
	for i := range games {
		items = append(items, &games[i])
	}
	for i := range accessories {
		items = append(items, &accessories[i])
	}
	return items
}

func generateRentalNumber() string {
	return "CC-" + strings.ToUpper(uuid.NewString()[:8])
}
