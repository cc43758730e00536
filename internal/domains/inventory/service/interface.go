package service

import (
	"context"

	"supplychain-backend/internal/domains/inventory/model"

	"github.com/google/uuid"
)

// OrderItemQuantity is one (product, quantity) pair of an order-driven batch
// operation.
type OrderItemQuantity struct {
	ProductID uuid.UUID
	Quantity  int
}

// ServiceInterface is the inventory ledger contract. Every mutation is atomic
// per record; batch operations are atomic across all touched records.
type ServiceInterface interface {
	// Adjust applies a manufacture, return or adjustment movement. Quantity
	// may be negative only for adjustment. Creates the record lazily for
	// stock-increasing movements.
	Adjust(ctx context.Context, req model.AdjustStockRequest) (*model.InventoryResponse, error)

	// Sell deducts available stock without touching reservations.
	Sell(ctx context.Context, req model.SellStockRequest) (*model.InventoryResponse, error)

	// Reserve places a soft hold on available stock.
	Reserve(ctx context.Context, productID, locationID uuid.UUID, quantity int, orderID *uuid.UUID) error

	// ReleaseReservation drops up to quantity from the reserved amount.
	// Releasing more than is reserved is tolerated.
	ReleaseReservation(ctx context.Context, productID, locationID uuid.UUID, quantity int, orderID *uuid.UUID) error

	// FulfillReservation converts a reservation into a physical deduction.
	FulfillReservation(ctx context.Context, productID, locationID uuid.UUID, quantity int, orderID *uuid.UUID) error

	// FulfillItems fulfills all line items of an order at one location as a
	// single atomic change.
	FulfillItems(ctx context.Context, locationID uuid.UUID, items []OrderItemQuantity, orderID uuid.UUID) error

	// ReleaseItems releases the reservations of all line items of an order.
	ReleaseItems(ctx context.Context, locationID uuid.UUID, items []OrderItemQuantity, orderID uuid.UUID) error

	// Transfer moves stock between two locations as one atomic operation
	// recorded as a single movement.
	Transfer(ctx context.Context, req model.TransferStockRequest) error

	// TransferInItems credits a destination location with an order's line
	// items on dealer-order delivery.
	TransferInItems(ctx context.Context, fromLocationID, toLocationID uuid.UUID, items []OrderItemQuantity, orderID uuid.UUID) error

	// Reads
	GetInventory(ctx context.Context, req model.SearchInventoryRequest) (*model.InventoryResponse, error)
	ListInventories(ctx context.Context, req model.ListInventoryRequest) (*model.ListInventoryResponse, error)
	ListMovements(ctx context.Context, req model.ListMovementsRequest) (*model.ListMovementsResponse, error)
}

// AlertNotifier triggers alert re-evaluation for a ledger record. Delivery is
// best-effort: implementations log failures and never return them.
type AlertNotifier interface {
	TriggerEvaluation(productID, locationID uuid.UUID)
}
