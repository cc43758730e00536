package model

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when no order matches the given ID.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition is returned for an illegal status change.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrEmptyOrder is returned when an order has no line items.
	ErrEmptyOrder = errors.New("order must contain at least one item")

	// ErrMissingDestination is returned when a dealer order has no
	// destination location.
	ErrMissingDestination = errors.New("dealer orders require a destination location")

	// ErrDuplicateOrderNumber is returned on an order number collision.
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

// NewInvalidTransitionError creates a detailed transition error.
func NewInvalidTransitionError(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// IsInvalidTransitionError checks if err is a state machine violation.
func IsInvalidTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
