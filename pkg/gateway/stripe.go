package gateway

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Stripe implements Gateway on Stripe Checkout Sessions. The API key and
// webhook secret are injected at construction; nothing touches the package
// global stripe.Key.
type Stripe struct {
	api           *client.API
	webhookSecret string
	timeout       time.Duration
}

func NewStripe(secretKey, webhookSecret string, timeout time.Duration) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Stripe{api: api, webhookSecret: webhookSecret, timeout: timeout}
}

func (s *Stripe) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Stripe) EnsureCustomer(ctx context.Context, cachedID, email, name string, userID uint) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if cachedID != "" {
		params := &stripe.CustomerParams{}
		params.Context = ctx
		if cus, err := s.api.Customers.Get(cachedID, params); err == nil && cus != nil && !cus.Deleted {
			return cus.ID, nil
		}
		// Stale id, fall through and create a fresh customer.
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatUint(uint64(userID), 10))
	cus, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return cus.ID, nil
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		Customer:   stripe.String(p.CustomerID),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
						Metadata: map[string]string{
							"rental_number": p.Reference,
						},
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	if p.ExpiresIn > 0 {
		params.ExpiresAt = stripe.Int64(time.Now().Add(p.ExpiresIn).Unix())
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{
		ID:        sess.ID,
		URL:       sess.URL,
		ExpiresAt: time.Unix(sess.ExpiresAt, 0),
	}, nil
}

func (s *Stripe) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := s.api.CheckoutSessions.Expire(sessionID, params); err != nil {
		return fmt.Errorf("expire session %s: %w", sessionID, err)
	}
	return nil
}

func (s *Stripe) CreateRefund(ctx context.Context, transactionID string, amountCents *int64, reason string) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
	}
	params.Context = ctx
	if reason != "" {
		params.Reason = stripe.String(reason)
	}
	if amountCents != nil {
		params.Amount = stripe.Int64(*amountCents)
	}
	ref, err := s.api.Refunds.New(params)
	if err != nil {
		return "", fmt.Errorf("create refund: %w", err)
	}
	return ref.ID, nil
}

func (s *Stripe) LatestCharge(ctx context.Context, paymentIntentID string) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return "", fmt.Errorf("retrieve payment intent: %w", err)
	}
	if pi.LatestCharge == nil {
		return "", nil
	}
	return pi.LatestCharge.ID, nil
}

func (s *Stripe) ConstructEvent(payload []byte, sigHeader string) (*Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return ParseEvent(ev.ID, string(ev.Type), ev.Data.Raw)
}
