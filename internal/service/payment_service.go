package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cornerconsole/config"
	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
	"cornerconsole/internal/repository"
	"cornerconsole/pkg/gateway"
)

// PaymentService bridges the gateway's asynchronous event stream into local
// payment/rental state.
//
// The gateway delivers at least once and without ordering guarantees, so
// every event is logged under its unique id before processing (duplicate id
// = no-op) and each handler acts only on the identifiers it is given.
type PaymentService struct {
	db          *gorm.DB
	paymentRepo *repository.PaymentRepository
	rentalRepo  *repository.RentalRepository
	userRepo    *repository.UserRepository
	webhookRepo *repository.WebhookEventRepository
	gw          gateway.Gateway
	cfg         *config.PaymentConfig
}

func NewPaymentService(
	db *gorm.DB,
	paymentRepo *repository.PaymentRepository,
	rentalRepo *repository.RentalRepository,
	userRepo *repository.UserRepository,
	webhookRepo *repository.WebhookEventRepository,
	gw gateway.Gateway,
	cfg *config.PaymentConfig,
) *PaymentService {
	return &PaymentService{
		db:          db,
		paymentRepo: paymentRepo,
		rentalRepo:  rentalRepo,
		userRepo:    userRepo,
		webhookRepo: webhookRepo,
		gw:          gw,
		cfg:         cfg,
	}
}

type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
	PaymentID   uint   `json:"payment_id"`
}

// CreateCheckoutSession opens a hosted checkout for a rental charge, deposit,
// or late fee, and records the local Payment row in processing state. This is
// the only place a forward-charge Payment is born.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, userID, rentalID uint, paymentType, successURL, cancelURL string) (*CheckoutResult, error) {
	rental, err := s.rentalRepo.GetByID(rentalID)
	if err != nil {
		return nil, domain.ErrRentalNotFound
	}
	if rental.UserID != userID {
		return nil, domain.ErrRentalNotFound
	}

	var amount decimal.Decimal
	var description string
	switch paymentType {
	case domain.PaymentKindDeposit:
		amount = rental.DepositAmount
		description = fmt.Sprintf("Security deposit for Rental #%s", rental.RentalNumber)
	case domain.PaymentKindLateFee:
		amount = rental.LateFee
		description = fmt.Sprintf("Late fee for Rental #%s", rental.RentalNumber)
	case domain.PaymentKindRental:
		amount = rental.TotalPrice
		description = fmt.Sprintf("Rental payment for #%s", rental.RentalNumber)
	default:
		return nil, domain.Validationf("unknown payment type %q", paymentType)
	}
	if !amount.IsPositive() {
		return nil, domain.Validationf("payment amount must be positive, got %s", amount.StringFixed(2))
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	customerID, err := s.gw.EnsureCustomer(ctx, user.StripeCustomerID, user.Email, user.FullName, user.ID)
	if err != nil {
		return nil, &domain.GatewayError{Op: "ensure customer", Err: err}
	}
	if customerID != user.StripeCustomerID {
		if err := s.userRepo.SetStripeCustomerID(user.ID, customerID); err != nil {
			return nil, err
		}
	}

	if successURL == "" {
		successURL = s.cfg.FrontendURL + "/payments/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if cancelURL == "" {
		cancelURL = s.cfg.FrontendURL + "/payments/cancel"
	}

	sess, err := s.gw.CreateCheckoutSession(ctx, gateway.CheckoutParams{
		CustomerID:  customerID,
		AmountCents: amount.Shift(2).IntPart(),
		Currency:    s.cfg.Currency,
		Description: description,
		Reference:   rental.RentalNumber,
		Metadata: map[string]string{
			"rental_id":     fmt.Sprint(rental.ID),
			"rental_number": rental.RentalNumber,
			"payment_type":  paymentType,
			"user_id":       fmt.Sprint(userID),
		},
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		ExpiresIn:  s.cfg.CheckoutExpiry,
	})
	if err != nil {
		// Gateway failed before any local write; nothing to undo.
		return nil, &domain.GatewayError{Op: "create checkout session", Err: err}
	}

	meta, _ := json.Marshal(map[string]string{
		"rental_number": rental.RentalNumber,
		"session_url":   sess.URL,
	})
	payment := &models.Payment{
		UserID:            userID,
		RentalID:          rental.ID,
		PaymentType:       paymentType,
		Status:            domain.PaymentProcessing,
		Amount:            amount,
		Currency:          s.cfg.Currency,
		CheckoutSessionID: sess.ID,
		CustomerID:        customerID,
		Metadata:          string(meta),
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	log.Printf("[payment] checkout session %s created for rental %s (%s %s)",
		sess.ID, rental.RentalNumber, amount.StringFixed(2), s.cfg.Currency)
	return &CheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID, PaymentID: payment.ID}, nil
}

// HandleWebhookEvent ingests one verified gateway event. Duplicate event ids
// are acknowledged as no-ops. Handler failures are recorded on the event log
// and never propagate (the gateway must not be induced to retry forever),
// but a failed log insert does propagate, since without the log row the
// idempotency gate never ran.
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, ev *gateway.Event) error {
	logRow := &models.WebhookEvent{
		EventID:   ev.ID,
		EventType: ev.Type,
		Payload:   string(ev.Raw),
	}
	if err := s.webhookRepo.Insert(logRow); err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			log.Printf("[payment] duplicate event %s ignored", ev.ID)
			return nil
		}
		return err
	}

	var handlerErr error
	switch ev.Type {
	case gateway.EventCheckoutCompleted:
		handlerErr = s.db.Transaction(func(tx *gorm.DB) error {
			return s.handleCheckoutCompleted(ctx, tx, ev)
		})
	case gateway.EventCheckoutExpired:
		handlerErr = s.db.Transaction(func(tx *gorm.DB) error {
			return s.handleCheckoutExpired(tx, ev)
		})
	case gateway.EventPaymentFailed:
		handlerErr = s.db.Transaction(func(tx *gorm.DB) error {
			return s.handlePaymentFailed(tx, ev)
		})
	default:
		log.Printf("[payment] unhandled event type %s (%s)", ev.Type, ev.ID)
	}

	if handlerErr != nil {
		log.Printf("[payment] handler failed for %s (%s): %v", ev.Type, ev.ID, handlerErr)
		if err := s.webhookRepo.MarkFailed(logRow.ID, handlerErr.Error()); err != nil {
			log.Printf("[payment] could not record handler failure for %s: %v", ev.ID, err)
		}
		return nil
	}
	return s.webhookRepo.MarkProcessed(logRow.ID)
}

func (s *PaymentService) handleCheckoutCompleted(ctx context.Context, tx *gorm.DB, ev *gateway.Event) error {
	payments := s.paymentRepo.WithTx(tx)
	payment, err := payments.GetBySessionID(ev.SessionID)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		// The event may race the session-creation write or reference a
		// session we never made. Logged, not fatal.
		log.Printf("[payment] no payment for completed session %s", ev.SessionID)
		return nil
	}
	if err != nil {
		return err
	}

	fields := map[string]any{
		"status":         domain.PaymentCompleted,
		"transaction_id": ev.PaymentIntentID,
	}
	// Charge id is informational; a lookup failure must not fail the event.
	if ev.PaymentIntentID != "" {
		if chargeID, err := s.gw.LatestCharge(ctx, ev.PaymentIntentID); err == nil && chargeID != "" {
			fields["charge_id"] = chargeID
		}
	}
	if err := payments.UpdateFields(payment.ID, fields); err != nil {
		return err
	}

	if payment.PaymentType == domain.PaymentKindRental || payment.PaymentType == domain.PaymentKindDeposit {
		rentals := s.rentalRepo.WithTx(tx)
		rental, err := rentals.GetByIDForUpdate(payment.RentalID)
		if err != nil {
			return err
		}
		rentalFields := map[string]any{"payment_status": domain.RentalPaid}
		if rental.Status == domain.RentalPending {
			rentalFields["status"] = domain.RentalConfirmed
		}
		if err := rentals.UpdateFields(rental.ID, rentalFields); err != nil {
			return err
		}
		log.Printf("[payment] payment %d completed, rental %s confirmed", payment.ID, rental.RentalNumber)
	} else {
		log.Printf("[payment] payment %d (%s) completed", payment.ID, payment.PaymentType)
	}
	return nil
}

func (s *PaymentService) handleCheckoutExpired(tx *gorm.DB, ev *gateway.Event) error {
	payments := s.paymentRepo.WithTx(tx)
	payment, err := payments.GetBySessionID(ev.SessionID)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		log.Printf("[payment] no payment for expired session %s", ev.SessionID)
		return nil
	}
	if err != nil {
		return err
	}
	return payments.UpdateFields(payment.ID, map[string]any{
		"status":         domain.PaymentExpired,
		"failure_reason": "Checkout session expired.",
	})
}

func (s *PaymentService) handlePaymentFailed(tx *gorm.DB, ev *gateway.Event) error {
	payments := s.paymentRepo.WithTx(tx)
	payment, err := payments.GetByTransactionID(ev.PaymentIntentID)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		log.Printf("[payment] no payment for failed intent %s", ev.PaymentIntentID)
		return nil
	}
	if err != nil {
		return err
	}
	return payments.UpdateFields(payment.ID, map[string]any{
		"status":         domain.PaymentFailed,
		"failure_reason": ev.FailureMessage,
	})
}

// ExpireStaleCheckouts closes checkout sessions that outlived the window.
// The gateway session is expired first, best effort since the gateway may
// have expired it on its own already, then the local rows are flipped.
func (s *PaymentService) ExpireStaleCheckouts(ctx context.Context, cutoff time.Time) (int64, error) {
	stale, err := s.paymentRepo.ListStaleCheckouts(cutoff)
	if err != nil {
		return 0, err
	}
	for i := range stale {
		if stale[i].CheckoutSessionID == "" {
			continue
		}
		if err := s.gw.ExpireCheckoutSession(ctx, stale[i].CheckoutSessionID); err != nil {
			log.Printf("[payment] could not expire session %s: %v", stale[i].CheckoutSessionID, err)
		}
	}
	return s.paymentRepo.ExpireStaleBefore(cutoff)
}

// Refund issues a full (amount nil) or partial refund. Only completed or
// partially refunded payments carrying a transaction id are eligible. The
// eligibility check runs on a locked row in the same transaction as the
// gateway call, so two racing refunds cannot both pass the gate; if the
// gateway call fails, no local state changes.
func (s *PaymentService) Refund(ctx context.Context, paymentID uint, amount *decimal.Decimal, reason string) (*models.Payment, error) {
	if reason == "" {
		reason = "requested_by_customer"
	}

	var payment *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		payments := s.paymentRepo.WithTx(tx)
		payment, err = payments.GetByIDForUpdate(paymentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrPaymentNotFound
		}
		if err != nil {
			return err
		}
		if !payment.IsRefundable() {
			return domain.ErrNotRefundable
		}
		if amount != nil && (!amount.IsPositive() || amount.GreaterThan(payment.Amount)) {
			return domain.Validationf("refund amount must be positive and at most %s", payment.Amount.StringFixed(2))
		}

		var amountCents *int64
		if amount != nil {
			cents := amount.Shift(2).IntPart()
			amountCents = &cents
		}
		refundID, err := s.gw.CreateRefund(ctx, payment.TransactionID, amountCents, reason)
		if err != nil {
			return &domain.GatewayError{Op: "create refund", Err: err}
		}

		status := domain.PaymentRefunded
		if amount != nil {
			status = domain.PaymentPartiallyRefunded
		}
		if err := payments.UpdateFields(payment.ID, map[string]any{"status": status}); err != nil {
			return err
		}
		if err := s.rentalRepo.WithTx(tx).UpdateFields(payment.RentalID, map[string]any{
			"payment_status": domain.RentalRefunded,
		}); err != nil {
			return err
		}
		payment.Status = status

		amt := payment.Amount
		if amount != nil {
			amt = *amount
		}
		log.Printf("[payment] refund %s issued on payment %d (%s)", refundID, payment.ID, amt.StringFixed(2))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}
