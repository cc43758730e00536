package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ===================================
// DOMAIN ERRORS
// ===================================

var (
	// ErrRecordNotFound is returned when no inventory record exists for a
	// location expected to have one.
	ErrRecordNotFound = errors.New("inventory record not found")

	// ErrInsufficientStock is returned when available stock cannot cover a
	// reserve, sale or transfer.
	ErrInsufficientStock = errors.New("insufficient stock available")

	// ErrInvalidMovementType is returned for a movement type outside the enum
	// or outside the set an operation accepts.
	ErrInvalidMovementType = errors.New("invalid movement type")

	// ErrInvalidQuantity is returned when a quantity is zero or negative where
	// a positive one is required.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrReservedExceedsStock is returned when a rebalance would push total
	// stock below the reserved amount.
	ErrReservedExceedsStock = errors.New("total stock cannot drop below reserved stock")

	// ErrBusy is returned when the per-record lock could not be acquired
	// within the configured bound.
	ErrBusy = errors.New("inventory record busy, try again")

	// ErrConcurrentUpdate is returned on an optimistic-lock version mismatch.
	ErrConcurrentUpdate = errors.New("inventory record was modified concurrently")

	// ErrSameLocationTransfer is returned when source and destination match.
	ErrSameLocationTransfer = errors.New("transfer source and destination must differ")
)

// ===================================
// ERROR HELPERS
// ===================================

// NewRecordNotFoundError creates a detailed not found error.
func NewRecordNotFoundError(productID, locationID uuid.UUID) error {
	return fmt.Errorf("%w: product_id=%s, location_id=%s", ErrRecordNotFound, productID, locationID)
}

// NewInsufficientStockError creates an error with stock details.
func NewInsufficientStockError(requested, available int) error {
	return fmt.Errorf("%w: requested=%d, available=%d", ErrInsufficientStock, requested, available)
}

// IsNotFoundError checks if err is a record not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsInsufficientStockError checks if err is an insufficient stock error.
func IsInsufficientStockError(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsBusyError checks if err is a lock contention error.
func IsBusyError(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsValidationError checks if err is caused by bad operation input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidMovementType) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrReservedExceedsStock) ||
		errors.Is(err, ErrSameLocationTransfer)
}
