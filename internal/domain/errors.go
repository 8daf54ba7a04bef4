package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart		= errors.New("at least a console, game, or accessory is required")
	ErrDuplicateReview	= errors.New("a review already exists for this rental")
	ErrNotReviewOwner	= errors.New("only the review author may modify it")
	ErrDuplicateEvent	= errors.New("webhook event already processed")
	ErrPaymentNotFound	= errors.New("payment not found")
	ErrRentalNotFound	= errors.New("rental not found")
	ErrNotRefundable	= errors.New("payment is not eligible for refund")
)

// ValidationError marks malformed caller input, rejected before any side effect.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError is returned when a lifecycle precondition fails; it
// carries the current state for caller diagnostics.
type StateConflictError struct {
	Op      string
	Current string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s a rental in %q status", e.Op, e.Current)
}

// StockConflictError signals transient resource contention, not bad input.
type StockConflictError struct {
	ItemName string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("%q is out of stock", e.ItemName)
}

// GatewayError wraps a failed or timed-out payment-gateway call. Callers may
// treat it as retryable.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string { return fmt.Sprintf("gateway %s: %v", e.Op, e.Err) }
func (e *GatewayError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStateConflict(err error) bool {
	var se *StateConflictError
	return errors.As(err, &se)
}

func IsStockConflict(err error) bool {
	var se *StockConflictError
	return errors.As(err, &se)
}
