package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cornerconsole/config"
	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
	"cornerconsole/internal/repository"
	"cornerconsole/pkg/gateway"
)

type paymentFixture struct {
	db	*gorm.DB
	stub	*gateway.Stub
	svc	*PaymentService
	rentals	*RentalService
	user	*models.User
	rental	*models.Rental
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := newTestDB(t)
	stub := gateway.NewStub()
	user := seedUser(t, db)
	console := seedConsole(t, db, "ps5", 2, "100", "600", "2000", "5000")

	rentals := newRentalService(db)
	rental, err := rentals.CreateRental(CreateRentalInput{
		UserID:		user.ID,
		ConsoleID:	&console.ID,
		RentalType:	domain.PlanDaily,
		StartDate:	day(t, "2026-03-01"),
		EndDate:	day(t, "2026-03-06"),
	})
	require.NoError(t, err)

	cfg := &config.PaymentConfig{Currency: "inr", FrontendURL: "http://localhost:3000"}
	svc := NewPaymentService(db,
		repository.NewPaymentRepository(db),
		repository.NewRentalRepository(db),
		repository.NewUserRepository(db),
		repository.NewWebhookEventRepository(db),
		stub, cfg)

	return &paymentFixture{db: db, stub: stub, svc: svc, rentals: rentals, user: user, rental: rental}
}

func completedEvent(t *testing.T, eventID, sessionID, intentID string) *gateway.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"id": sessionID, "payment_intent": intentID})
	require.NoError(t, err)
	ev, err := gateway.ParseEvent(eventID, gateway.EventCheckoutCompleted, raw)
	require.NoError(t, err)
	return ev
}

func TestCreateCheckoutSessionPersistsProcessingPayment(t *testing.T) {
	f := newPaymentFixture(t)

	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.CheckoutURL)
	assert.NotEmpty(t, result.SessionID)

	var payment models.Payment
	require.NoError(t, f.db.First(&payment, result.PaymentID).Error)
	assert.Equal(t, domain.PaymentProcessing, payment.Status)
	assert.Equal(t, result.SessionID, payment.CheckoutSessionID)
	assert.True(t, payment.Amount.Equal(f.rental.TotalPrice))
	assert.Equal(t, domain.PaymentKindRental, payment.PaymentType)
	assert.NotEmpty(t, payment.CustomerID)

	// The gateway customer id is cached on the user.
	var user models.User
	require.NoError(t, f.db.First(&user, f.user.ID).Error)
	assert.Equal(t, payment.CustomerID, user.StripeCustomerID)
}

func TestCreateCheckoutSessionAmountByPurpose(t *testing.T) {
	f := newPaymentFixture(t)

	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindDeposit, "", "")
	require.NoError(t, err)
	var payment models.Payment
	require.NoError(t, f.db.First(&payment, result.PaymentID).Error)
	assert.True(t, payment.Amount.Equal(dec(t, "5000")))

	// Late fee is zero on a fresh rental, so a late-fee checkout is invalid.
	_, err = f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindLateFee, "", "")
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		"tip", "", "")
	assert.True(t, domain.IsValidation(err))
}

func TestCreateCheckoutSessionGatewayFailureLeavesNoState(t *testing.T) {
	f := newPaymentFixture(t)
	f.stub.FailNext = errors.New("gateway down")

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.Error(t, err)
	var ge *domain.GatewayError
	assert.True(t, errors.As(err, &ge))

	var count int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateCheckoutSessionRejectsForeignRental(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID+1, f.rental.ID,
		domain.PaymentKindRental, "", "")
	assert.ErrorIs(t, err, domain.ErrRentalNotFound)
}

func TestWebhookCheckoutCompletedConfirmsRental(t *testing.T) {
	f := newPaymentFixture(t)
	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.NoError(t, err)

	ev := completedEvent(t, "evt_1", result.SessionID, "pi_123")
	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	var payment models.Payment
	require.NoError(t, f.db.First(&payment, result.PaymentID).Error)
	assert.Equal(t, domain.PaymentCompleted, payment.Status)
	assert.Equal(t, "pi_123", payment.TransactionID)
	assert.Equal(t, "ch_pi_123", payment.ChargeID)

	rental := reloadRental(t, f.db, f.rental.ID)
	assert.Equal(t, domain.RentalConfirmed, rental.Status)
	assert.Equal(t, domain.RentalPaid, rental.PaymentStatus)

	var logRow models.WebhookEvent
	require.NoError(t, f.db.Where("event_id = ?", "evt_1").First(&logRow).Error)
	assert.True(t, logRow.Processed)
	assert.Empty(t, logRow.ErrorMessage)
}

func TestWebhookDuplicateEventIsNoop(t *testing.T) {
	f := newPaymentFixture(t)
	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.NoError(t, err)

	ev := completedEvent(t, "evt_dup", result.SessionID, "pi_123")
	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	// Manually knock the rental back so a re-applied event would be visible.
	require.NoError(t, f.db.Model(&models.Rental{}).Where("id = ?", f.rental.ID).
		Update("status", domain.RentalPending).Error)

	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	rental := reloadRental(t, f.db, f.rental.ID)
	assert.Equal(t, domain.RentalPending, rental.Status, "replay must not re-apply side effects")

	var count int64
	require.NoError(t, f.db.Model(&models.WebhookEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "one log row per event id")
}

func TestWebhookCompletedForUnknownSessionIsSwallowed(t *testing.T) {
	f := newPaymentFixture(t)

	ev := completedEvent(t, "evt_unknown", "cs_never_created", "pi_999")
	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	var logRow models.WebhookEvent
	require.NoError(t, f.db.Where("event_id = ?", "evt_unknown").First(&logRow).Error)
	assert.True(t, logRow.Processed)
}

func TestWebhookCheckoutExpired(t *testing.T) {
	f := newPaymentFixture(t)
	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.NoError(t, err)

	raw, err := json.Marshal(map[string]any{"id": result.SessionID})
	require.NoError(t, err)
	ev, err := gateway.ParseEvent("evt_exp", gateway.EventCheckoutExpired, raw)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	var payment models.Payment
	require.NoError(t, f.db.First(&payment, result.PaymentID).Error)
	assert.Equal(t, domain.PaymentExpired, payment.Status)
	assert.NotEmpty(t, payment.FailureReason)

	rental := reloadRental(t, f.db, f.rental.ID)
	assert.Equal(t, domain.RentalPending, rental.Status, "expiry never touches the rental")
}

func TestWebhookPaymentFailedCapturesReasonVerbatim(t *testing.T) {
	f := newPaymentFixture(t)
	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Payment{}).Where("id = ?", result.PaymentID).
		Update("transaction_id", "pi_fail").Error)

	raw, err := json.Marshal(map[string]any{
		"id": "pi_fail",
		"last_payment_error": map[string]any{"message": "Your card was declined."},
	})
	require.NoError(t, err)
	ev, err := gateway.ParseEvent("evt_fail", gateway.EventPaymentFailed, raw)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	var payment models.Payment
	require.NoError(t, f.db.First(&payment, result.PaymentID).Error)
	assert.Equal(t, domain.PaymentFailed, payment.Status)
	assert.Equal(t, "Your card was declined.", payment.FailureReason)
}

func TestWebhookUnknownTypeIsAcknowledged(t *testing.T) {
	f := newPaymentFixture(t)

	ev, err := gateway.ParseEvent("evt_other", "customer.created", []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	var logRow models.WebhookEvent
	require.NoError(t, f.db.Where("event_id = ?", "evt_other").First(&logRow).Error)
	assert.True(t, logRow.Processed, "unhandled types are acknowledged and closed out")
}

func TestRefundEligibility(t *testing.T) {
	f := newPaymentFixture(t)
	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.NoError(t, err)

	// Processing payments without a settled transaction are not refundable.
	_, err = f.svc.Refund(context.Background(), result.PaymentID, nil, "")
	assert.ErrorIs(t, err, domain.ErrNotRefundable)

	// Completed but with an empty transaction id: still not refundable.
	require.NoError(t, f.db.Model(&models.Payment{}).Where("id = ?", result.PaymentID).
		Update("status", domain.PaymentCompleted).Error)
	_, err = f.svc.Refund(context.Background(), result.PaymentID, nil, "")
	assert.ErrorIs(t, err, domain.ErrNotRefundable)

	_, err = f.svc.Refund(context.Background(), 9999, nil, "")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestRefundFullAndPartial(t *testing.T) {
	f := newPaymentFixture(t)
	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.NoError(t, err)
	ev := completedEvent(t, "evt_ok", result.SessionID, "pi_ok")
	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	partial := dec(t, "100.50")
	payment, err := f.svc.Refund(context.Background(), result.PaymentID, &partial, "damaged box")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartiallyRefunded, payment.Status)

	require.Len(t, f.stub.Refunds, 1)
	assert.Equal(t, "pi_ok", f.stub.Refunds[0].TransactionID)
	require.NotNil(t, f.stub.Refunds[0].AmountCents)
	assert.Equal(t, int64(10050), *f.stub.Refunds[0].AmountCents)
	assert.Equal(t, "damaged box", f.stub.Refunds[0].Reason)

	// Partially refunded payments remain eligible for the rest.
	payment, err = f.svc.Refund(context.Background(), result.PaymentID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, payment.Status)
	require.Len(t, f.stub.Refunds, 2)
	assert.Nil(t, f.stub.Refunds[1].AmountCents, "full refund sends no amount")

	rental := reloadRental(t, f.db, f.rental.ID)
	assert.Equal(t, domain.RentalRefunded, rental.PaymentStatus)

	// Fully refunded payments are done. Eligibility is re-checked on the
	// locked row inside the transaction, so the rejection happens before
	// the gateway is ever called.
	_, err = f.svc.Refund(context.Background(), result.PaymentID, nil, "")
	assert.ErrorIs(t, err, domain.ErrNotRefundable)
	assert.Len(t, f.stub.Refunds, 2, "rejected refunds never reach the gateway")
}

func TestRefundGatewayFailureLeavesStatusUntouched(t *testing.T) {
	f := newPaymentFixture(t)
	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.NoError(t, err)
	ev := completedEvent(t, "evt_ok2", result.SessionID, "pi_ok2")
	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	f.stub.FailNext = errors.New("refund rejected")
	_, err = f.svc.Refund(context.Background(), result.PaymentID, nil, "")
	require.Error(t, err)
	var ge *domain.GatewayError
	assert.True(t, errors.As(err, &ge))

	var payment models.Payment
	require.NoError(t, f.db.First(&payment, result.PaymentID).Error)
	assert.Equal(t, domain.PaymentCompleted, payment.Status, "failed gateway call must not change local state")
}

func TestRefundRejectsExcessiveAmount(t *testing.T) {
	f := newPaymentFixture(t)
	result, err := f.svc.CreateCheckoutSession(context.Background(), f.user.ID, f.rental.ID,
		domain.PaymentKindRental, "", "")
	require.NoError(t, err)
	ev := completedEvent(t, "evt_ok3", result.SessionID, "pi_ok3")
	require.NoError(t, f.svc.HandleWebhookEvent(context.Background(), ev))

	tooMuch := dec(t, "999999")
	_, err = f.svc.Refund(context.Background(), result.PaymentID, &tooMuch, "")
	assert.True(t, domain.IsValidation(err))
}
