package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrAlreadyCanceled = errors.New("order is already canceled")
	ErrForbidden       = errors.New("forbidden")
)

// InsufficientStockError is returned when a reservation is refused. Available
// is the stock level observed when the reservation was rejected.
type InsufficientStockError struct {
	VariantID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: requested=%d available=%d",
		e.VariantID, e.Requested, e.Available)
}

// InvalidTransitionError is returned for an order status change that is not
// reachable from the current status.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}

// PersistenceError wraps a durable-store failure. Handlers surface it as an
// opaque 5xx; the wrapped cause stays in the logs.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
