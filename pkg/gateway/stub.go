package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Stub is an in-memory no-op gateway for development and tests; swap in
// Stripe via config for real checkouts.
type Stub struct {
	mu  sync.Mutex
	seq int

	// Refunds records every CreateRefund call in order.
	Refunds []StubRefund

	// Expired records every ExpireCheckoutSession call in order.
	Expired []string

	// FailNext, when set, is returned by the next mutating call and cleared.
	FailNext error
}

type StubRefund struct {
	TransactionID string
	AmountCents   *int64
	Reason        string
}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("%s_stub_%d", prefix, s.seq)
}

func (s *Stub) takeFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.FailNext
	s.FailNext = nil
	return err
}

func (s *Stub) EnsureCustomer(_ context.Context, cachedID, _, _ string, _ uint) (string, error) {
	if cachedID != "" {
		return cachedID, nil
	}
	return s.next("cus"), nil
}

func (s *Stub) CreateCheckoutSession(_ context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	expiresIn := p.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 30 * time.Minute
	}
	id := s.next("cs")
	return &CheckoutSession{
		ID:        id,
		URL:       "https://checkout.example.test/" + id,
		ExpiresAt: time.Now().Add(expiresIn),
	}, nil
}

func (s *Stub) ExpireCheckoutSession(_ context.Context, sessionID string) error {
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.mu.Lock()
	s.Expired = append(s.Expired, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *Stub) CreateRefund(_ context.Context, transactionID string, amountCents *int64, reason string) (string, error) {
	if err := s.takeFailure(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.Refunds = append(s.Refunds, StubRefund{TransactionID: transactionID, AmountCents: amountCents, Reason: reason})
	s.mu.Unlock()
	return s.next("re"), nil
}

func (s *Stub) LatestCharge(_ context.Context, paymentIntentID string) (string, error) {
	if paymentIntentID == "" {
		return "", nil
	}
	return "ch_" + paymentIntentID, nil
}

// ConstructEvent on the stub skips signature verification and decodes the
// body as an already-parsed event envelope.
func (s *Stub) ConstructEvent(payload []byte, _ string) (*Event, error) {
	var env struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object map[string]any `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(env.Data.Object)
	if err != nil {
		return nil, err
	}
	return ParseEvent(env.ID, env.Type, raw)
}
