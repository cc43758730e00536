package model

import (
	"time"

	"github.com/google/uuid"
)

// Inventory is the per (product, location) stock record. It is a running
// aggregate: current numbers live here, history lives in inventory_movements.
type Inventory struct {
	ID         uuid.UUID `db:"id"`
	ProductID  uuid.UUID `db:"product_id"`
	LocationID uuid.UUID `db:"location_id"`

	// Stock levels. Available stock is derived, never stored.
	TotalStock    int `db:"total_stock"`
	ReservedStock int `db:"reserved_stock"`

	ReorderLevel int `db:"reorder_level"`

	// Optimistic locking
	Version int `db:"version"`

	UpdatedAt time.Time `db:"updated_at"`
}

// AvailableStock is the quantity open to new claims.
func (i *Inventory) AvailableStock() int {
	return i.TotalStock - i.ReservedStock
}

// IsLowStock reports whether available stock fell below the reorder level.
func (i *Inventory) IsLowStock() bool {
	return i.AvailableStock() < i.ReorderLevel
}

// Movement types. The enum carries the full set used across the audit trail;
// reserve and release_reserve exist for history filtering although the ledger
// only records physical changes (reservation bookkeeping is not logged).
const (
	MovementManufacture    = "manufacture"
	MovementTransfer       = "transfer"
	MovementSale           = "sale"
	MovementReturn         = "return"
	MovementAdjustment     = "adjustment"
	MovementReserve        = "reserve"
	MovementReleaseReserve = "release_reserve"
	MovementFulfillReserve = "fulfill_reserve"
)

var movementTypes = map[string]struct{}{
	MovementManufacture:    {},
	MovementTransfer:       {},
	MovementSale:           {},
	MovementReturn:         {},
	MovementAdjustment:     {},
	MovementReserve:        {},
	MovementReleaseReserve: {},
	MovementFulfillReserve: {},
}

// IsValidMovementType checks membership in the movement type enum.
func IsValidMovementType(t string) bool {
	_, ok := movementTypes[t]
	return ok
}

// IsAdjustType reports whether t is accepted by the adjust operation.
func IsAdjustType(t string) bool {
	return t == MovementManufacture || t == MovementReturn || t == MovementAdjustment
}

// Movement is one immutable audit trail entry. Quantity is always positive;
// direction is carried by the location fields: stock-in movements set
// ToLocationID, stock-out movements set FromLocationID, transfers set both.
type Movement struct {
	ID             uuid.UUID  `db:"id"`
	ProductID      uuid.UUID  `db:"product_id"`
	FromLocationID *uuid.UUID `db:"from_location_id"`
	ToLocationID   *uuid.UUID `db:"to_location_id"`
	Quantity       int        `db:"quantity"`
	MovementType   string     `db:"movement_type"`
	OrderID        *uuid.UUID `db:"order_id"`
	Actor          string     `db:"actor"`
	CreatedAt      time.Time  `db:"created_at"`
}

// StockChange is one atomic ledger mutation: every record update and every
// movement row in it commits together or not at all.
type StockChange struct {
	Records   []*Inventory
	Movements []*Movement
}
