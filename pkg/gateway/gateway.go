package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Event types the reconciliation layer handles. Everything else is logged
// and acknowledged without side effects.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// ErrInvalidSignature is returned by ConstructEvent when the webhook
// signature does not verify. Callers must reject the request at the
// boundary, distinct from "event/session not found".
var ErrInvalidSignature = errors.New("webhook signature verification failed")

type CheckoutParams struct {
	CustomerID  string
	AmountCents int64
	Currency    string
	Description string
	Reference   string // local rental number, echoed back in metadata
	Metadata    map[string]string
	SuccessURL  string
	CancelURL   string
	ExpiresIn   time.Duration
}

type CheckoutSession struct {
	ID        string
	URL       string
	ExpiresAt time.Time
}

// Event is a verified, parsed webhook delivery. ID is globally unique and
// serves as the idempotency key.
type Event struct {
	ID   string
	Type string
	Raw  json.RawMessage

	// checkout.session.* events
	SessionID       string
	PaymentIntentID string

	// payment_intent.payment_failed
	FailureMessage string
}

// Gateway is the narrow contract the payment core consumes. Implementations
// must bound every call with the supplied context.
type Gateway interface {
	// EnsureCustomer returns a usable gateway customer id, re-creating it
	// when the cached id has gone stale.
	EnsureCustomer(ctx context.Context, cachedID, email, name string, userID uint) (string, error)
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
	ExpireCheckoutSession(ctx context.Context, sessionID string) error
	// CreateRefund refunds a completed transaction. amountCents nil means a
	// full refund.
	CreateRefund(ctx context.Context, transactionID string, amountCents *int64, reason string) (string, error)
	// LatestCharge looks up the charge id behind a payment intent. Callers
	// treat failures as non-critical.
	LatestCharge(ctx context.Context, paymentIntentID string) (string, error)
	// ConstructEvent verifies the signature header against the raw body and
	// returns the parsed event, or ErrInvalidSignature.
	ConstructEvent(payload []byte, sigHeader string) (*Event, error)
}

// ParseEvent decodes the event-specific payload into the typed fields.
func ParseEvent(id, eventType string, raw json.RawMessage) (*Event, error) {
	ev := &Event{ID: id, Type: eventType, Raw: raw}
	switch eventType {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var body struct {
			ID            string `json:"id"`
			PaymentIntent string `json:"payment_intent"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		ev.SessionID = body.ID
		ev.PaymentIntentID = body.PaymentIntent
	case EventPaymentFailed:
		var body struct {
			ID               string `json:"id"`
			LastPaymentError *struct {
				Message string `json:"message"`
			} `json:"last_payment_error"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		ev.PaymentIntentID = body.ID
		ev.FailureMessage = "Unknown error"
		if body.LastPaymentError != nil && body.LastPaymentError.Message != "" {
			ev.FailureMessage = body.LastPaymentError.Message
		}
	}
	return ev, nil
}
