// Package service holds the money-moving business flows: the balance
// ledger and order placement and fulfilment.
package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrServiceUnavailable  = errors.New("service is not available")
	ErrQuantityOutOfRange  = errors.New("quantity out of range")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// InsufficientBalanceError carries the figures shown to the client.
type InsufficientBalanceError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %s, available %s", e.Required, e.Available)
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrInsufficientBalance }

// QuantityError reports the bounds a quantity violated.
type QuantityError struct {
	Min, Max int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("Quantity must be between %d and %d", e.Min, e.Max)
}

func (e *QuantityError) Is(target error) bool { return target == ErrQuantityOutOfRange }

// TransitionError names a rejected status move.
type TransitionError struct {
	From, To model.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
