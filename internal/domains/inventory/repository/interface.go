package repository

import (
	"context"

	"supplychain-backend/internal/domains/inventory/model"

	"github.com/google/uuid"
)

// RepositoryInterface is the data access contract for the inventory ledger.
type RepositoryInterface interface {
	// Get returns the record for (product, location), or ErrRecordNotFound.
	Get(ctx context.Context, productID, locationID uuid.UUID) (*model.Inventory, error)

	// List returns records matching the filter plus the unpaged total.
	List(ctx context.Context, filter model.ListInventoryRequest) ([]model.Inventory, int, error)

	// ApplyChange commits all record updates and movement rows of one ledger
	// mutation in a single transaction. Records with Version == 0 are
	// inserted, others are updated with an optimistic version check.
	ApplyChange(ctx context.Context, change *model.StockChange) error

	// ListMovements returns audit trail entries matching the filter plus the
	// unpaged total.
	ListMovements(ctx context.Context, filter model.ListMovementsRequest) ([]model.Movement, int, error)
}
