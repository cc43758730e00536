package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supplychain-backend/internal/domains/inventory/model"
	"supplychain-backend/internal/domains/inventory/repository"
	"supplychain-backend/internal/shared/metrics"
	"supplychain-backend/pkg/keylock"

	"github.com/google/uuid"
)

// DefaultReorderLevel applies to lazily created records until an operator
// sets an explicit threshold.
const DefaultReorderLevel = 10

// actorOrderWorkflow tags movements written on behalf of order transitions.
const actorOrderWorkflow = "order_workflow"

// LedgerService implements ServiceInterface. All mutations on a given
// (product, location) record are serialized through a per-key lock, so the
// availability check and the write behave as one atomic step with respect to
// other writers on the same key.
type LedgerService struct {
	repo   repository.RepositoryInterface
	locks  *keylock.KeyLock
	alerts AlertNotifier
}

// NewLedgerService creates the ledger. alerts may be nil (no re-evaluation
// trigger), which the tests use.
func NewLedgerService(repo repository.RepositoryInterface, locks *keylock.KeyLock, alerts AlertNotifier) *LedgerService {
	return &LedgerService{
		repo:   repo,
		locks:  locks,
		alerts: alerts,
	}
}

// lockKey orders composite keys by location first, then product.
func lockKey(locationID, productID uuid.UUID) string {
	return locationID.String() + ":" + productID.String()
}

func (s *LedgerService) acquire(ctx context.Context, keys ...string) (func(), error) {
	release, err := s.locks.AcquireMany(ctx, keys...)
	if err != nil {
		if errors.Is(err, keylock.ErrTimeout) {
			metrics.LockTimeoutsTotal.Inc()
			return nil, fmt.Errorf("%w: %v", model.ErrBusy, err)
		}
		return nil, err
	}
	return release, nil
}

func (s *LedgerService) notify(productID, locationID uuid.UUID) {
	if s.alerts != nil {
		s.alerts.TriggerEvaluation(productID, locationID)
	}
}

func newMovement(productID uuid.UUID, movementType string, quantity int, from, to, orderID *uuid.UUID, actor string) *model.Movement {
	return &model.Movement{
		ID:             uuid.New(),
		ProductID:      productID,
		FromLocationID: from,
		ToLocationID:   to,
		Quantity:       quantity,
		MovementType:   movementType,
		OrderID:        orderID,
		Actor:          actor,
		CreatedAt:      time.Now(),
	}
}

// mergeItems sums quantities per product, preserving first-seen order. Orders
// may carry several lines for one product; each record must be loaded once and
// mutated once, or later lines would overwrite earlier ones.
func mergeItems(items []OrderItemQuantity) []OrderItemQuantity {
	merged := make([]OrderItemQuantity, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if at, ok := index[item.ProductID]; ok {
			merged[at].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// getOrInit returns the current record, or a fresh zero-stock one when
// createIfMissing is set and no record exists yet.
func (s *LedgerService) getOrInit(ctx context.Context, productID, locationID uuid.UUID, createIfMissing bool) (*model.Inventory, error) {
	rec, err := s.repo.Get(ctx, productID, locationID)
	if err == nil {
		return rec, nil
	}
	if !model.IsNotFoundError(err) || !createIfMissing {
		return nil, err
	}

	return &model.Inventory{
		ID:           uuid.New(),
		ProductID:    productID,
		LocationID:   locationID,
		ReorderLevel: DefaultReorderLevel,
		Version:      0, // signals insert
	}, nil
}

// Adjust implements ServiceInterface.Adjust
func (s *LedgerService) Adjust(ctx context.Context, req model.AdjustStockRequest) (*model.InventoryResponse, error) {
	if !model.IsAdjustType(req.Type) {
		return nil, fmt.Errorf("%w: %q is not an adjust type", model.ErrInvalidMovementType, req.Type)
	}
	if req.Quantity == 0 {
		return nil, fmt.Errorf("%w: adjustment quantity cannot be zero", model.ErrInvalidQuantity)
	}
	if req.Quantity < 0 && req.Type != model.MovementAdjustment {
		return nil, fmt.Errorf("%w: %s movements must be positive", model.ErrInvalidQuantity, req.Type)
	}

	release, err := s.acquire(ctx, lockKey(req.LocationID, req.ProductID))
	if err != nil {
		return nil, err
	}
	defer release()

	// Lazy record creation only for stock-increasing movements.
	rec, err := s.getOrInit(ctx, req.ProductID, req.LocationID, req.Quantity > 0)
	if err != nil {
		return nil, err
	}

	newTotal := rec.TotalStock + req.Quantity
	if newTotal < rec.ReservedStock {
		return nil, fmt.Errorf("%w: total would be %d with %d reserved",
			model.ErrReservedExceedsStock, newTotal, rec.ReservedStock)
	}
	rec.TotalStock = newTotal

	quantity := req.Quantity
	var from, to *uuid.UUID
	if quantity > 0 {
		to = &req.LocationID
	} else {
		quantity = -quantity
		from = &req.LocationID
	}

	change := &model.StockChange{
		Records:   []*model.Inventory{rec},
		Movements: []*model.Movement{newMovement(req.ProductID, req.Type, quantity, from, to, nil, req.Actor)},
	}
	if err := s.repo.ApplyChange(ctx, change); err != nil {
		return nil, err
	}

	metrics.MovementsTotal.WithLabelValues(req.Type).Inc()
	s.notify(req.ProductID, req.LocationID)

	resp := rec.ToResponse()
	return &resp, nil
}

// Sell implements ServiceInterface.Sell. An unreserved sale deducts total
// stock directly and leaves reservations alone.
func (s *LedgerService) Sell(ctx context.Context, req model.SellStockRequest) (*model.InventoryResponse, error) {
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	release, err := s.acquire(ctx, lockKey(req.LocationID, req.ProductID))
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := s.repo.Get(ctx, req.ProductID, req.LocationID)
	if err != nil {
		return nil, err
	}

	if rec.AvailableStock() < req.Quantity {
		metrics.InsufficientStockTotal.Inc()
		return nil, model.NewInsufficientStockError(req.Quantity, rec.AvailableStock())
	}
	rec.TotalStock -= req.Quantity

	change := &model.StockChange{
		Records:   []*model.Inventory{rec},
		Movements: []*model.Movement{newMovement(req.ProductID, model.MovementSale, req.Quantity, &req.LocationID, nil, nil, req.Actor)},
	}
	if err := s.repo.ApplyChange(ctx, change); err != nil {
		return nil, err
	}

	metrics.MovementsTotal.WithLabelValues(model.MovementSale).Inc()
	s.notify(req.ProductID, req.LocationID)

	resp := rec.ToResponse()
	return &resp, nil
}

// Reserve implements ServiceInterface.Reserve. Reservation bookkeeping is not
// logged as a movement, but it does change availability and therefore
// triggers alert re-evaluation.
func (s *LedgerService) Reserve(ctx context.Context, productID, locationID uuid.UUID, quantity int, orderID *uuid.UUID) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	release, err := s.acquire(ctx, lockKey(locationID, productID))
	if err != nil {
		return err
	}
	defer release()

	rec, err := s.repo.Get(ctx, productID, locationID)
	if err != nil {
		return err
	}

	if rec.AvailableStock() < quantity {
		metrics.InsufficientStockTotal.Inc()
		return model.NewInsufficientStockError(quantity, rec.AvailableStock())
	}
	rec.ReservedStock += quantity

	if err := s.repo.ApplyChange(ctx, &model.StockChange{Records: []*model.Inventory{rec}}); err != nil {
		return err
	}

	s.notify(productID, locationID)
	return nil
}

// ReleaseReservation implements ServiceInterface.ReleaseReservation.
// Releases are clamped at the reserved amount so duplicate release calls do
// not compound into negative reservations.
func (s *LedgerService) ReleaseReservation(ctx context.Context, productID, locationID uuid.UUID, quantity int, orderID *uuid.UUID) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	release, err := s.acquire(ctx, lockKey(locationID, productID))
	if err != nil {
		return err
	}
	defer release()

	rec, err := s.repo.Get(ctx, productID, locationID)
	if err != nil {
		return err
	}

	if quantity > rec.ReservedStock {
		quantity = rec.ReservedStock
	}
	if quantity == 0 {
		return nil
	}
	rec.ReservedStock -= quantity

	if err := s.repo.ApplyChange(ctx, &model.StockChange{Records: []*model.Inventory{rec}}); err != nil {
		return err
	}

	s.notify(productID, locationID)
	return nil
}

// fulfillRecord applies a single fulfillment to rec and returns the movement.
func fulfillRecord(rec *model.Inventory, quantity int, orderID uuid.UUID) (*model.Movement, error) {
	released := quantity
	if released > rec.ReservedStock {
		released = rec.ReservedStock
	}

	newTotal := rec.TotalStock - quantity
	newReserved := rec.ReservedStock - released
	if newTotal < 0 || newTotal < newReserved {
		metrics.InsufficientStockTotal.Inc()
		return nil, model.NewInsufficientStockError(quantity, rec.AvailableStock()+released)
	}

	rec.TotalStock = newTotal
	rec.ReservedStock = newReserved

	oid := orderID
	return newMovement(rec.ProductID, model.MovementFulfillReserve, quantity, &rec.LocationID, nil, &oid, actorOrderWorkflow), nil
}

// FulfillReservation implements ServiceInterface.FulfillReservation.
// The only operation that moves both reserved and total stock together.
func (s *LedgerService) FulfillReservation(ctx context.Context, productID, locationID uuid.UUID, quantity int, orderID *uuid.UUID) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	release, err := s.acquire(ctx, lockKey(locationID, productID))
	if err != nil {
		return err
	}
	defer release()

	rec, err := s.repo.Get(ctx, productID, locationID)
	if err != nil {
		return err
	}

	var oid uuid.UUID
	if orderID != nil {
		oid = *orderID
	}
	movement, err := fulfillRecord(rec, quantity, oid)
	if err != nil {
		return err
	}
	if orderID == nil {
		movement.OrderID = nil
	}

	change := &model.StockChange{
		Records:   []*model.Inventory{rec},
		Movements: []*model.Movement{movement},
	}
	if err := s.repo.ApplyChange(ctx, change); err != nil {
		return err
	}

	metrics.MovementsTotal.WithLabelValues(model.MovementFulfillReserve).Inc()
	s.notify(productID, locationID)
	return nil
}

// FulfillItems implements ServiceInterface.FulfillItems. All line items of an
// order commit together; a failing item leaves every record untouched.
func (s *LedgerService) FulfillItems(ctx context.Context, locationID uuid.UUID, items []OrderItemQuantity, orderID uuid.UUID) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}
	items = mergeItems(items)

	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = lockKey(locationID, item.ProductID)
	}

	release, err := s.acquire(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()

	change := &model.StockChange{}
	for _, item := range items {
		rec, err := s.repo.Get(ctx, item.ProductID, locationID)
		if err != nil {
			return err
		}

		movement, err := fulfillRecord(rec, item.Quantity, orderID)
		if err != nil {
			return fmt.Errorf("product %s: %w", item.ProductID, err)
		}

		change.Records = append(change.Records, rec)
		change.Movements = append(change.Movements, movement)
	}

	if err := s.repo.ApplyChange(ctx, change); err != nil {
		return err
	}

	for range items {
		metrics.MovementsTotal.WithLabelValues(model.MovementFulfillReserve).Inc()
	}
	for _, item := range items {
		s.notify(item.ProductID, locationID)
	}
	return nil
}

// ReleaseItems implements ServiceInterface.ReleaseItems.
func (s *LedgerService) ReleaseItems(ctx context.Context, locationID uuid.UUID, items []OrderItemQuantity, orderID uuid.UUID) error {
	if len(items) == 0 {
		return nil
	}
	items = mergeItems(items)

	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = lockKey(locationID, item.ProductID)
	}

	release, err := s.acquire(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()

	change := &model.StockChange{}
	for _, item := range items {
		rec, err := s.repo.Get(ctx, item.ProductID, locationID)
		if err != nil {
			return err
		}

		quantity := item.Quantity
		if quantity > rec.ReservedStock {
			quantity = rec.ReservedStock
		}
		if quantity == 0 {
			continue
		}
		rec.ReservedStock -= quantity
		change.Records = append(change.Records, rec)
	}

	if len(change.Records) == 0 {
		return nil
	}

	if err := s.repo.ApplyChange(ctx, change); err != nil {
		return err
	}

	for _, item := range items {
		s.notify(item.ProductID, locationID)
	}
	return nil
}

// Transfer implements ServiceInterface.Transfer. Both legs commit as one
// change with exactly one movement tagged with both locations; a failed
// source check applies neither leg and writes nothing.
func (s *LedgerService) Transfer(ctx context.Context, req model.TransferStockRequest) error {
	if req.Quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	if req.FromLocationID == req.ToLocationID {
		return model.ErrSameLocationTransfer
	}

	release, err := s.acquire(ctx,
		lockKey(req.FromLocationID, req.ProductID),
		lockKey(req.ToLocationID, req.ProductID),
	)
	if err != nil {
		return err
	}
	defer release()

	source, err := s.repo.Get(ctx, req.ProductID, req.FromLocationID)
	if err != nil {
		return err
	}

	if source.AvailableStock() < req.Quantity {
		metrics.InsufficientStockTotal.Inc()
		return model.NewInsufficientStockError(req.Quantity, source.AvailableStock())
	}
	source.TotalStock -= req.Quantity

	// Transfer-in creates the destination record lazily.
	dest, err := s.getOrInit(ctx, req.ProductID, req.ToLocationID, true)
	if err != nil {
		return err
	}
	dest.TotalStock += req.Quantity

	change := &model.StockChange{
		Records: []*model.Inventory{source, dest},
		Movements: []*model.Movement{
			newMovement(req.ProductID, model.MovementTransfer, req.Quantity, &req.FromLocationID, &req.ToLocationID, nil, req.Actor),
		},
	}
	if err := s.repo.ApplyChange(ctx, change); err != nil {
		return err
	}

	metrics.MovementsTotal.WithLabelValues(model.MovementTransfer).Inc()
	s.notify(req.ProductID, req.FromLocationID)
	s.notify(req.ProductID, req.ToLocationID)
	return nil
}

// TransferInItems implements ServiceInterface.TransferInItems. The source
// deduction already happened at fulfillment; this credits the destination on
// dealer-order delivery, with the origin recorded on each movement.
func (s *LedgerService) TransferInItems(ctx context.Context, fromLocationID, toLocationID uuid.UUID, items []OrderItemQuantity, orderID uuid.UUID) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}
	items = mergeItems(items)

	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = lockKey(toLocationID, item.ProductID)
	}

	release, err := s.acquire(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()

	change := &model.StockChange{}
	for _, item := range items {
		rec, err := s.getOrInit(ctx, item.ProductID, toLocationID, true)
		if err != nil {
			return err
		}
		rec.TotalStock += item.Quantity

		oid := orderID
		from := fromLocationID
		to := toLocationID
		change.Records = append(change.Records, rec)
		change.Movements = append(change.Movements,
			newMovement(item.ProductID, model.MovementTransfer, item.Quantity, &from, &to, &oid, actorOrderWorkflow))
	}

	if err := s.repo.ApplyChange(ctx, change); err != nil {
		return err
	}

	for range items {
		metrics.MovementsTotal.WithLabelValues(model.MovementTransfer).Inc()
	}
	for _, item := range items {
		s.notify(item.ProductID, toLocationID)
	}
	return nil
}

// GetInventory implements ServiceInterface.GetInventory
func (s *LedgerService) GetInventory(ctx context.Context, req model.SearchInventoryRequest) (*model.InventoryResponse, error) {
	rec, err := s.repo.Get(ctx, req.ProductID, req.LocationID)
	if err != nil {
		return nil, err
	}

	resp := rec.ToResponse()
	return &resp, nil
}

// ListInventories implements ServiceInterface.ListInventories
func (s *LedgerService) ListInventories(ctx context.Context, req model.ListInventoryRequest) (*model.ListInventoryResponse, error) {
	records, totalItems, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}

	totalPages := (totalItems + req.Limit - 1) / req.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	return &model.ListInventoryResponse{
		Items:      model.ToResponseList(records),
		TotalItems: totalItems,
		TotalPages: totalPages,
		Page:       req.Page,
		Limit:      req.Limit,
	}, nil
}

// ListMovements implements ServiceInterface.ListMovements
func (s *LedgerService) ListMovements(ctx context.Context, req model.ListMovementsRequest) (*model.ListMovementsResponse, error) {
	movements, totalItems, err := s.repo.ListMovements(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	return &model.ListMovementsResponse{
		Items:      model.ToMovementResponseList(movements),
		TotalItems: totalItems,
		Page:       req.Page,
		Limit:      req.Limit,
	}, nil
}
