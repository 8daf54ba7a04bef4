package service

import (
	"fmt"
	"log"
	"time"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
	"cornerconsole/internal/repository"
)

// AvailabilityService answers "can this cart be fulfilled for [start, end)?".
//
// AvailableQuantity on each item only reflects current stock; for a future
// window we also count rentals already booked over that window. A stored
// rental [rs, re) overlaps the request [start, end) iff rs < end AND
// re > start. Half-open, so a rental ending exactly on start does not block
// and same-day turnover works.
//
// This is a pure read component: a bulk check costs at most three grouped
// queries (console, all games, all accessories) no matter the cart size.
type AvailabilityService struct {
	rentalRepo *repository.RentalRepository
}

func NewAvailabilityService(rentalRepo *repository.RentalRepository) *AvailabilityService {
	return &AvailabilityService{rentalRepo: rentalRepo}
}

// AvailabilityResult is the verdict for a single item.
type AvailabilityResult struct {
	ItemID             uint   `json:"item_id"`
	ItemKind           string `json:"item_kind"`
	ItemName           string `json:"item_name"`
	IsAvailable        bool   `json:"is_available"`
	StockQuantity      int    `json:"stock_quantity"`
	OverlappingRentals int    `json:"overlapping_rentals"`
	AvailableForDates  int    `json:"available_for_dates"`
}

func (a AvailabilityResult) Reason() string {
	if a.IsAvailable {
		return fmt.Sprintf("%d unit(s) available", a.AvailableForDates)
	}
	return fmt.Sprintf("All %d unit(s) booked (%d overlapping rental(s))",
		a.StockQuantity, a.OverlappingRentals)
}

// BulkAvailabilityResult combines the verdicts for a whole cart.
type BulkAvailabilityResult struct {
	Console     *AvailabilityResult  `json:"console,omitempty"`
	Games       []AvailabilityResult `json:"games"`
	Accessories []AvailabilityResult `json:"accessories"`
}

func (b BulkAvailabilityResult) AllAvailable() bool {
	if b.Console != nil && !b.Console.IsAvailable {
		return false
	}
	for _, g := range b.Games {
		if !g.IsAvailable {
			return false
		}
	}
	for _, a := range b.Accessories {
		if !a.IsAvailable {
			return false
		}
	}
	return true
}

func (b BulkAvailabilityResult) UnavailableItems() []AvailabilityResult {
	var out []AvailabilityResult
	if b.Console != nil && !b.Console.IsAvailable {
		out = append(out, *b.Console)
	}
	for _, g := range b.Games {
		if !g.IsAvailable {
			out = append(out, g)
		}
	}
	for _, a := range b.Accessories {
		if !a.IsAvailable {
			out = append(out, a)
		}
	}
	return out
}

func validateWindow(start, end time.Time) error {
	if !domain.Date(end).After(domain.Date(start)) {
		return domain.Validationf("end date must be after start date")
	}
	return nil
}

// CheckItem checks one item's availability for [start, end). A non-zero
// excludeRentalID drops that rental from the overlap count, for "would I
// still fit if I keep my own booking" checks during edits.
func (s *AvailabilityService) CheckItem(item *models.InventoryItem, start, end time.Time, excludeRentalID uint) (*AvailabilityResult, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	var overlapping int
	switch item.Kind {
	case domain.KindConsole:
		n, err := s.rentalRepo.CountOverlappingConsole(item.ID, start, end, excludeRentalID)
		if err != nil {
			return nil, err
		}
		overlapping = n
	case domain.KindGame:
		counts, err := s.rentalRepo.CountOverlappingJoined("rental_games", []uint{item.ID}, start, end, excludeRentalID)
		if err != nil {
			return nil, err
		}
		overlapping = counts[item.ID]
	case domain.KindAccessory:
		counts, err := s.rentalRepo.CountOverlappingJoined("rental_accessories", []uint{item.ID}, start, end, excludeRentalID)
		if err != nil {
			return nil, err
		}
		overlapping = counts[item.ID]
	default:
		return nil, domain.Validationf("unknown item kind %q", item.Kind)
	}

	return verdict(item, overlapping), nil
}

// CheckBulk checks a whole cart in at most three grouped queries: one for
// the console (if present), one for all games, one for all accessories.
func (s *AvailabilityService) CheckBulk(console *models.InventoryItem, games, accessories []models.InventoryItem, start, end time.Time, excludeRentalID uint) (*BulkAvailabilityResult, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	result := &BulkAvailabilityResult{
		Games:       make([]AvailabilityResult, 0, len(games)),
		Accessories: make([]AvailabilityResult, 0, len(accessories)),
	}

	if console != nil {
		n, err := s.rentalRepo.CountOverlappingConsole(console.ID, start, end, excludeRentalID)
		if err != nil {
			return nil, err
		}
		result.Console = verdict(console, n)
	}

	if len(games) > 0 {
		ids := itemIDs(games)
		counts, err := s.rentalRepo.CountOverlappingJoined("rental_games", ids, start, end, excludeRentalID)
		if err != nil {
			return nil, err
		}
		for i := range games {
			result.Games = append(result.Games, *verdict(&games[i], counts[games[i].ID]))
		}
	}

	if len(accessories) > 0 {
		ids := itemIDs(accessories)
		counts, err := s.rentalRepo.CountOverlappingJoined("rental_accessories", ids, start, end, excludeRentalID)
		if err != nil {
			return nil, err
		}
		for i := range accessories {
			result.Accessories = append(result.Accessories, *verdict(&accessories[i], counts[accessories[i].ID]))
		}
	}

	if !result.AllAvailable() {
		names := make([]string, 0, 4)
		for _, u := range result.UnavailableItems() {
			names = append(names, u.ItemName)
		}
		log.Printf("[availability] %s to %s unavailable: %v",
			domain.Date(start).Format("2006-01-02"), domain.Date(end).Format("2006-01-02"), names)
	}
	return result, nil
}

func verdict(item *models.InventoryItem, overlapping int) *AvailabilityResult {
	available := item.StockQuantity - overlapping
	res := &AvailabilityResult{
		ItemID:             item.ID,
		ItemKind:           item.Kind,
		ItemName:           item.Name,
		IsAvailable:        available > 0,
		StockQuantity:      item.StockQuantity,
		OverlappingRentals: overlapping,
		AvailableForDates:  available,
	}
	if res.AvailableForDates < 0 {
		res.AvailableForDates = 0
	}
	return res
}

func itemIDs(items []models.InventoryItem) []uint {
	ids := make([]uint, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}
