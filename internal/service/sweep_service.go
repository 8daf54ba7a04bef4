package service

import (
	"context"
	"errors"
	"log"
	"time"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
	"cornerconsole/internal/repository"
)

// Notifier delivers return reminders. The default implementation only logs;
// wiring a real channel (email, push) is a deployment concern.
type Notifier interface {
	SendReturnReminder(rental *models.Rental) error
}

type LogNotifier struct{}

func (LogNotifier) SendReturnReminder(rental *models.Rental) error {
	log.Printf("[notify] return reminder for rental %s (due %s)",
		rental.RentalNumber, rental.RentalEndDate.Format("2006-01-02"))
	return nil
}

// SweepService runs the periodic maintenance passes. Every sweep is
// idempotent: running it twice in a row changes nothing the second time.
type SweepService struct {
	rentalRepo     *repository.RentalRepository
	paymentRepo    *repository.PaymentRepository
	rentalService  *RentalService
	paymentService *PaymentService
	notifier       Notifier
	checkoutExpiry time.Duration
}

func NewSweepService(
	rentalRepo *repository.RentalRepository,
	paymentRepo *repository.PaymentRepository,
	rentalService *RentalService,
	paymentService *PaymentService,
	notifier Notifier,
	checkoutExpiry time.Duration,
) *SweepService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &SweepService{
		rentalRepo:     rentalRepo,
		paymentRepo:    paymentRepo,
		rentalService:  rentalService,
		paymentService: paymentService,
		notifier:       notifier,
		checkoutExpiry: checkoutExpiry,
	}
}

// ExpireStaleCheckouts marks pending/processing payments older than the
// checkout window as expired, closing the gateway session for each so a
// stale link can no longer be paid.
func (s *SweepService) ExpireStaleCheckouts(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.checkoutExpiry)
	n, err := s.paymentService.ExpireStaleCheckouts(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[sweep] expired %d stale checkout payment(s)", n)
	}
	return n, nil
}

// MarkLateRentals flips active rentals past their end date to late and
// snapshots the accrued fee.
func (s *SweepService) MarkLateRentals(ctx context.Context) (int, error) {
	overdue, err := s.rentalRepo.ListActiveEndedBefore(domain.Today())
	if err != nil {
		return 0, err
	}
	marked := 0
	for i := range overdue {
		if _, err := s.rentalService.MarkRentalLate(overdue[i].ID); err != nil {
			log.Printf("[sweep] mark late failed for rental %s: %v", overdue[i].RentalNumber, err)
			continue
		}
		marked++
	}
	if marked > 0 {
		log.Printf("[sweep] marked %d rental(s) late", marked)
	}
	return marked, nil
}

// SendReturnReminders notifies renters whose rental ends tomorrow.
func (s *SweepService) SendReturnReminders(ctx context.Context) (int, error) {
	due, err := s.rentalRepo.ListActiveEndingOn(domain.Today().AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range due {
		if err := s.notifier.SendReturnReminder(&due[i]); err != nil {
			log.Printf("[sweep] reminder failed for rental %s: %v", due[i].RentalNumber, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// AutoRefundDeposits refunds the security deposit for rentals returned
// without a late fee. A refunded deposit drops out of the completed set, so
// the next run skips it.
func (s *SweepService) AutoRefundDeposits(ctx context.Context) (int, error) {
	rentals, err := s.rentalRepo.ListReturnedOnTime()
	if err != nil {
		return 0, err
	}
	refunded := 0
	for i := range rentals {
		deposit, err := s.paymentRepo.GetCompletedDeposit(rentals[i].ID)
		if errors.Is(err, domain.ErrPaymentNotFound) {
			continue
		}
		if err != nil {
			return refunded, err
		}
		if _, err := s.paymentService.Refund(ctx, deposit.ID, nil, "requested_by_customer"); err != nil {
			log.Printf("[sweep] deposit refund failed for rental %s: %v", rentals[i].RentalNumber, err)
			continue
		}
		refunded++
	}
	if refunded > 0 {
		log.Printf("[sweep] auto-refunded %d deposit(s)", refunded)
	}
	return refunded, nil
}
