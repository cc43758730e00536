package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	inventorymodel "supplychain-backend/internal/domains/inventory/model"
	inventoryservice "supplychain-backend/internal/domains/inventory/service"
	locationmodel "supplychain-backend/internal/domains/location/model"
	"supplychain-backend/internal/domains/order/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reservation struct {
	productID uuid.UUID
	quantity  int
}

// fakeInventory records ledger calls and can be told to fail specific
// products.
type fakeInventory struct {
	reserveCalls   []reservation
	releaseCalls   []reservation
	fulfillCalls   [][]inventoryservice.OrderItemQuantity
	transferCalls  [][]inventoryservice.OrderItemQuantity
	failReserveFor map[uuid.UUID]bool
	failFulfill    bool
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{failReserveFor: make(map[uuid.UUID]bool)}
}

func (f *fakeInventory) Adjust(ctx context.Context, req inventorymodel.AdjustStockRequest) (*inventorymodel.InventoryResponse, error) {
	return nil, errors.New("not supported")
}

func (f *fakeInventory) Sell(ctx context.Context, req inventorymodel.SellStockRequest) (*inventorymodel.InventoryResponse, error) {
	return nil, errors.New("not supported")
}

func (f *fakeInventory) Reserve(ctx context.Context, productID, locationID uuid.UUID, quantity int, orderID *uuid.UUID) error {
	if f.failReserveFor[productID] {
		return inventorymodel.NewInsufficientStockError(quantity, 0)
	}
	f.reserveCalls = append(f.reserveCalls, reservation{productID, quantity})
	return nil
}

func (f *fakeInventory) ReleaseReservation(ctx context.Context, productID, locationID uuid.UUID, quantity int, orderID *uuid.UUID) error {
	f.releaseCalls = append(f.releaseCalls, reservation{productID, quantity})
	return nil
}

func (f *fakeInventory) FulfillReservation(ctx context.Context, productID, locationID uuid.UUID, quantity int, orderID *uuid.UUID) error {
	return errors.New("not supported")
}

func (f *fakeInventory) FulfillItems(ctx context.Context, locationID uuid.UUID, items []inventoryservice.OrderItemQuantity, orderID uuid.UUID) error {
	if f.failFulfill {
		return inventorymodel.NewInsufficientStockError(1, 0)
	}
	f.fulfillCalls = append(f.fulfillCalls, items)
	return nil
}

func (f *fakeInventory) ReleaseItems(ctx context.Context, locationID uuid.UUID, items []inventoryservice.OrderItemQuantity, orderID uuid.UUID) error {
	for _, item := range items {
		f.releaseCalls = append(f.releaseCalls, reservation{item.ProductID, item.Quantity})
	}
	return nil
}

func (f *fakeInventory) Transfer(ctx context.Context, req inventorymodel.TransferStockRequest) error {
	return errors.New("not supported")
}

func (f *fakeInventory) TransferInItems(ctx context.Context, fromLocationID, toLocationID uuid.UUID, items []inventoryservice.OrderItemQuantity, orderID uuid.UUID) error {
	f.transferCalls = append(f.transferCalls, items)
	return nil
}

func (f *fakeInventory) GetInventory(ctx context.Context, req inventorymodel.SearchInventoryRequest) (*inventorymodel.InventoryResponse, error) {
	return nil, errors.New("not supported")
}

func (f *fakeInventory) ListInventories(ctx context.Context, req inventorymodel.ListInventoryRequest) (*inventorymodel.ListInventoryResponse, error) {
	return nil, errors.New("not supported")
}

func (f *fakeInventory) ListMovements(ctx context.Context, req inventorymodel.ListMovementsRequest) (*inventorymodel.ListMovementsResponse, error) {
	return nil, errors.New("not supported")
}

// fakeOrderRepo is an in-memory order store.
type fakeOrderRepo struct {
	orders     map[uuid.UUID]*model.Order
	history    []model.OrderStatusHistory
	failCreate bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *model.Order, actor string) error {
	if f.failCreate {
		return errors.New("insert failed")
	}
	copied := *order
	f.orders[order.ID] = &copied
	f.history = append(f.history, model.OrderStatusHistory{
		OrderID: order.ID, ToStatus: order.Status, Actor: actor,
	})
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrOrderNotFound, id)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, filter model.ListOrdersRequest) ([]model.Order, int, error) {
	var out []model.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (f *fakeOrderRepo) ClaimStatus(ctx context.Context, orderID uuid.UUID, from, to, actor string) error {
	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrOrderNotFound, orderID)
	}
	if order.Status != from {
		return errors.New("order status changed concurrently")
	}
	order.Status = to
	f.history = append(f.history, model.OrderStatusHistory{
		OrderID: orderID, FromStatus: from, ToStatus: to, Actor: actor,
	})
	return nil
}

func (f *fakeOrderRepo) GetHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	var out []model.OrderStatusHistory
	for _, h := range f.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	prices map[uuid.UUID]decimal.Decimal
}

func (f *fakeCatalog) PriceOf(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	price, ok := f.prices[productID]
	if !ok {
		return decimal.Zero, errors.New("product not found in catalog")
	}
	return price, nil
}

type fakeLocations struct{}

func (f *fakeLocations) Create(ctx context.Context, loc *locationmodel.Location) error { return nil }

func (f *fakeLocations) GetByID(ctx context.Context, id uuid.UUID) (*locationmodel.Location, error) {
	return &locationmodel.Location{ID: id, CompanyID: uuid.New(), Kind: locationmodel.KindWarehouse, IsActive: true}, nil
}

func (f *fakeLocations) Update(ctx context.Context, loc *locationmodel.Location) error { return nil }

func (f *fakeLocations) List(ctx context.Context, filter locationmodel.ListLocationFilter) ([]locationmodel.Location, error) {
	return nil, nil
}

type testEnv struct {
	svc       ServiceInterface
	repo      *fakeOrderRepo
	inventory *fakeInventory
	catalog   *fakeCatalog
}

func newTestEnv() *testEnv {
	repo := newFakeOrderRepo()
	inventory := newFakeInventory()
	catalog := &fakeCatalog{prices: make(map[uuid.UUID]decimal.Decimal)}
	return &testEnv{
		svc:       NewService(repo, inventory, catalog, &fakeLocations{}),
		repo:      repo,
		inventory: inventory,
		catalog:   catalog,
	}
}

func (e *testEnv) addProduct(price string) uuid.UUID {
	id := uuid.New()
	e.catalog.prices[id] = decimal.RequireFromString(price)
	return id
}

func dealerRequest(from uuid.UUID, to *uuid.UUID, items ...model.CreateOrderItemRequest) model.CreateOrderRequest {
	return model.CreateOrderRequest{
		OrderType:      model.TypeDealerOrder,
		FromLocationID: from,
		ToLocationID:   to,
		Items:          items,
		Actor:          "dealer-portal",
	}
}

func TestCreateOrderReservesAndSnapshotsPrices(t *testing.T) {
	env := newTestEnv()
	productA := env.addProduct("12.50")
	productB := env.addProduct("3.00")
	from := uuid.New()
	to := uuid.New()

	order, err := env.svc.Create(context.Background(), dealerRequest(from, &to,
		model.CreateOrderItemRequest{ProductID: productA, Quantity: 4},
		model.CreateOrderItemRequest{ProductID: productB, Quantity: 10},
	))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("80.00")))
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].PriceAtTime.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("50.00")))

	require.Len(t, env.inventory.reserveCalls, 2)
	assert.Equal(t, reservation{productA, 4}, env.inventory.reserveCalls[0])
	assert.Equal(t, reservation{productB, 10}, env.inventory.reserveCalls[1])
	assert.Empty(t, env.inventory.releaseCalls)
	assert.NotEmpty(t, order.OrderNumber)
}

func TestCreateOrderUnwindsReservationsOnFailure(t *testing.T) {
	env := newTestEnv()
	productA := env.addProduct("5.00")
	productB := env.addProduct("5.00")
	env.inventory.failReserveFor[productB] = true
	to := uuid.New()

	_, err := env.svc.Create(context.Background(), dealerRequest(uuid.New(), &to,
		model.CreateOrderItemRequest{ProductID: productA, Quantity: 2},
		model.CreateOrderItemRequest{ProductID: productB, Quantity: 2},
	))
	require.Error(t, err)
	assert.True(t, inventorymodel.IsInsufficientStockError(err))

	// productA's reservation was released, the order never persisted
	require.Len(t, env.inventory.releaseCalls, 1)
	assert.Equal(t, reservation{productA, 2}, env.inventory.releaseCalls[0])
	assert.Empty(t, env.repo.orders)
}

func TestCreateOrderUnwindsOnPersistFailure(t *testing.T) {
	env := newTestEnv()
	env.repo.failCreate = true
	productA := env.addProduct("1.00")
	to := uuid.New()

	_, err := env.svc.Create(context.Background(), dealerRequest(uuid.New(), &to,
		model.CreateOrderItemRequest{ProductID: productA, Quantity: 3},
	))
	require.Error(t, err)
	require.Len(t, env.inventory.releaseCalls, 1)
	assert.Equal(t, reservation{productA, 3}, env.inventory.releaseCalls[0])
}

func TestCreateDealerOrderRequiresDestination(t *testing.T) {
	env := newTestEnv()
	productA := env.addProduct("1.00")

	_, err := env.svc.Create(context.Background(), dealerRequest(uuid.New(), nil,
		model.CreateOrderItemRequest{ProductID: productA, Quantity: 1},
	))
	assert.ErrorIs(t, err, model.ErrMissingDestination)
}

func createTestOrder(t *testing.T, env *testEnv, orderType string) *model.Order {
	t.Helper()
	productA := env.addProduct("2.00")
	to := uuid.New()
	req := model.CreateOrderRequest{
		OrderType:      orderType,
		FromLocationID: uuid.New(),
		Items:          []model.CreateOrderItemRequest{{ProductID: productA, Quantity: 5}},
		Actor:          "test",
	}
	if orderType == model.TypeDealerOrder {
		req.ToLocationID = &to
	}
	order, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)
	return order
}

func TestTransitionPendingToConfirmedHasNoLedgerSideEffects(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeDealerOrder)

	updated, err := env.svc.Transition(context.Background(), order.ID, model.StatusConfirmed, "ops")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, updated.Status)
	assert.Empty(t, env.inventory.fulfillCalls)
	assert.Empty(t, env.inventory.releaseCalls)
}

func TestTransitionConfirmedToShippedFulfills(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeDealerOrder)

	_, err := env.svc.Transition(context.Background(), order.ID, model.StatusConfirmed, "ops")
	require.NoError(t, err)

	updated, err := env.svc.Transition(context.Background(), order.ID, model.StatusShipped, "ops")
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, updated.Status)
	require.Len(t, env.inventory.fulfillCalls, 1)
	assert.Equal(t, order.Items[0].ProductID, env.inventory.fulfillCalls[0][0].ProductID)
	assert.Equal(t, 5, env.inventory.fulfillCalls[0][0].Quantity)
}

func TestShipRevertsStatusWhenFulfillmentFails(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeDealerOrder)
	_, err := env.svc.Transition(context.Background(), order.ID, model.StatusConfirmed, "ops")
	require.NoError(t, err)

	env.inventory.failFulfill = true
	_, err = env.svc.Transition(context.Background(), order.ID, model.StatusShipped, "ops")
	require.Error(t, err)

	current, err := env.svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, current.Status)
}

func TestDealerDeliveryCreditsDestination(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeDealerOrder)
	for _, status := range []string{model.StatusConfirmed, model.StatusShipped} {
		_, err := env.svc.Transition(context.Background(), order.ID, status, "ops")
		require.NoError(t, err)
	}

	updated, err := env.svc.Transition(context.Background(), order.ID, model.StatusDelivered, "ops")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, updated.Status)
	require.Len(t, env.inventory.transferCalls, 1)
}

func TestCustomerDeliveryHasNoTransfer(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeCustomerOrder)
	for _, status := range []string{model.StatusConfirmed, model.StatusShipped} {
		_, err := env.svc.Transition(context.Background(), order.ID, status, "ops")
		require.NoError(t, err)
	}

	_, err := env.svc.Transition(context.Background(), order.ID, model.StatusDelivered, "ops")
	require.NoError(t, err)
	assert.Empty(t, env.inventory.transferCalls)
}

func TestCancelPendingReleasesReservations(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeDealerOrder)

	updated, err := env.svc.Transition(context.Background(), order.ID, model.StatusCancelled, "dealer-portal")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, updated.Status)
	require.Len(t, env.inventory.releaseCalls, 1)
	assert.Equal(t, 5, env.inventory.releaseCalls[0].quantity)
}

func TestCancelShippedOrderisRejected(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeDealerOrder)
	for _, status := range []string{model.StatusConfirmed, model.StatusShipped} {
		_, err := env.svc.Transition(context.Background(), order.ID, status, "ops")
		require.NoError(t, err)
	}

	_, err := env.svc.Transition(context.Background(), order.ID, model.StatusCancelled, "dealer-portal")
	assert.True(t, model.IsInvalidTransitionError(err))
}

func TestFailFromConfirmedReleasesReservations(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeDealerOrder)
	_, err := env.svc.Transition(context.Background(), order.ID, model.StatusConfirmed, "ops")
	require.NoError(t, err)

	updated, err := env.svc.Transition(context.Background(), order.ID, model.StatusFailed, "system")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, updated.Status)
	require.Len(t, env.inventory.releaseCalls, 1)
}

func TestTransitionToCurrentStatusIsNoop(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeDealerOrder)
	_, err := env.svc.Transition(context.Background(), order.ID, model.StatusConfirmed, "ops")
	require.NoError(t, err)

	historyBefore, err := env.svc.GetHistory(context.Background(), order.ID)
	require.NoError(t, err)

	updated, err := env.svc.Transition(context.Background(), order.ID, model.StatusConfirmed, "ops")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, updated.Status)

	historyAfter, err := env.svc.GetHistory(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, historyAfter, len(historyBefore))
}

func TestSkippingStatusIsRejected(t *testing.T) {
	env := newTestEnv()
	order := createTestOrder(t, env, model.TypeDealerOrder)

	_, err := env.svc.Transition(context.Background(), order.ID, model.StatusDelivered, "ops")
	assert.True(t, model.IsInvalidTransitionError(err))
	assert.Empty(t, env.inventory.transferCalls)
}
