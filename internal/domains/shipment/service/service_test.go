package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	ordermodel "supplychain-backend/internal/domains/order/model"
	"supplychain-backend/internal/domains/shipment/model"
	"supplychain-backend/internal/domains/shipment/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShipmentRepo struct {
	shipments map[uuid.UUID]*model.Shipment
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{shipments: make(map[uuid.UUID]*model.Shipment)}
}

func (f *fakeShipmentRepo) Create(ctx context.Context, shipment *model.Shipment) error {
	for _, s := range f.shipments {
		if s.OrderID == shipment.OrderID {
			return fmt.Errorf("%w: order %s", model.ErrShipmentExists, shipment.OrderID)
		}
	}
	copied := *shipment
	f.shipments[shipment.ID] = &copied
	return nil
}

func (f *fakeShipmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	s, ok := f.shipments[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrShipmentNotFound, id)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeShipmentRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Shipment, error) {
	for _, s := range f.shipments {
		if s.OrderID == orderID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: order %s", model.ErrShipmentNotFound, orderID)
}

func (f *fakeShipmentRepo) ClaimStatus(ctx context.Context, id uuid.UUID, from, to string, actualDelivery *time.Time) error {
	s, ok := f.shipments[id]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrShipmentNotFound, id)
	}
	if s.Status != from {
		return repository.ErrStatusConflict
	}
	s.Status = to
	if actualDelivery != nil {
		s.ActualDelivery = actualDelivery
	}
	return nil
}

func (f *fakeShipmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.shipments, id)
	return nil
}

// fakeOrders is a minimal order workflow tracking transitions.
type fakeOrders struct {
	orders      map[uuid.UUID]*ordermodel.Order
	transitions []string
	failTargets map[string]bool
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders:      make(map[uuid.UUID]*ordermodel.Order),
		failTargets: make(map[string]bool),
	}
}

func (f *fakeOrders) addOrder(status string) uuid.UUID {
	id := uuid.New()
	f.orders[id] = &ordermodel.Order{ID: id, Status: status, OrderType: ordermodel.TypeDealerOrder}
	return id
}

func (f *fakeOrders) Create(ctx context.Context, req ordermodel.CreateOrderRequest) (*ordermodel.Order, error) {
	return nil, errors.New("not supported")
}

func (f *fakeOrders) Transition(ctx context.Context, orderID uuid.UUID, target, actor string) (*ordermodel.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ordermodel.ErrOrderNotFound, orderID)
	}
	if f.failTargets[target] {
		return nil, errors.New("order transition failed")
	}
	if order.Status == target {
		return order, nil
	}
	if !ordermodel.CanTransition(order.Status, target) {
		return nil, ordermodel.NewInvalidTransitionError(order.Status, target)
	}
	order.Status = target
	f.transitions = append(f.transitions, target)
	return order, nil
}

func (f *fakeOrders) GetByID(ctx context.Context, id uuid.UUID) (*ordermodel.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ordermodel.ErrOrderNotFound, id)
	}
	return order, nil
}

func (f *fakeOrders) List(ctx context.Context, filter ordermodel.ListOrdersRequest) ([]ordermodel.Order, int, error) {
	return nil, 0, nil
}

func (f *fakeOrders) GetHistory(ctx context.Context, orderID uuid.UUID) ([]ordermodel.OrderStatusHistory, error) {
	return nil, nil
}

func createRequest(orderID uuid.UUID) model.CreateShipmentRequest {
	return model.CreateShipmentRequest{
		OrderID: orderID,
		Carrier: "DHL",
		Actor:   "logistics",
	}
}

func TestCreateShipmentConfirmsOrder(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	orderID := orders.addOrder(ordermodel.StatusPending)

	shipment, err := svc.Create(context.Background(), createRequest(orderID))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, shipment.Status)
	assert.NotEmpty(t, shipment.TrackingNumber)
	assert.Equal(t, []string{ordermodel.StatusConfirmed}, orders.transitions)
}

func TestCreateSecondShipmentRejected(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	orderID := orders.addOrder(ordermodel.StatusPending)

	_, err := svc.Create(context.Background(), createRequest(orderID))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createRequest(orderID))
	assert.ErrorIs(t, err, model.ErrShipmentExists)
}

func TestCreateShipmentRejectsShippedOrder(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	orderID := orders.addOrder(ordermodel.StatusShipped)

	_, err := svc.Create(context.Background(), createRequest(orderID))
	assert.True(t, ordermodel.IsInvalidTransitionError(err))
	assert.Empty(t, repo.shipments)
}

func TestCreateShipmentDeletedWhenConfirmationFails(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	orderID := orders.addOrder(ordermodel.StatusPending)
	orders.failTargets[ordermodel.StatusConfirmed] = true

	_, err := svc.Create(context.Background(), createRequest(orderID))
	require.Error(t, err)
	assert.Empty(t, repo.shipments)
}

func setupShipment(t *testing.T, repo *fakeShipmentRepo, orders *fakeOrders, svc ServiceInterface) (uuid.UUID, uuid.UUID) {
	t.Helper()
	orderID := orders.addOrder(ordermodel.StatusPending)
	shipment, err := svc.Create(context.Background(), createRequest(orderID))
	require.NoError(t, err)
	return shipment.ID, orderID
}

func TestInTransitShipsOrder(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	shipmentID, orderID := setupShipment(t, repo, orders, svc)

	updated, err := svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusInTransit, Actor: "carrier",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInTransit, updated.Status)
	assert.Equal(t, ordermodel.StatusShipped, orders.orders[orderID].Status)
}

func TestDeliveredSetsActualDeliveryAndDeliversOrder(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	shipmentID, orderID := setupShipment(t, repo, orders, svc)

	_, err := svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusInTransit, Actor: "carrier",
	})
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusDelivered, Actor: "carrier",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, updated.Status)
	assert.NotNil(t, updated.ActualDelivery)
	assert.Equal(t, ordermodel.StatusDelivered, orders.orders[orderID].Status)
}

func TestReturnedLeavesOrderAlone(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	shipmentID, orderID := setupShipment(t, repo, orders, svc)

	for _, status := range []string{model.StatusInTransit, model.StatusDelivered} {
		_, err := svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
			Status: status, Actor: "carrier",
		})
		require.NoError(t, err)
	}

	updated, err := svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusReturned, Actor: "carrier",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, updated.Status)
	// the order keeps its delivered status
	assert.Equal(t, ordermodel.StatusDelivered, orders.orders[orderID].Status)
}

func TestBackwardTransitionRejected(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	shipmentID, _ := setupShipment(t, repo, orders, svc)

	_, err := svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusInTransit, Actor: "carrier",
	})
	require.NoError(t, err)

	// delivered first, then attempt to go back to in_transit
	_, err = svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusDelivered, Actor: "carrier",
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusInTransit, Actor: "carrier",
	})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestShipmentRevertedWhenOrderTransitionFails(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	shipmentID, _ := setupShipment(t, repo, orders, svc)
	orders.failTargets[ordermodel.StatusShipped] = true

	_, err := svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusInTransit, Actor: "carrier",
	})
	require.Error(t, err)

	current, err := svc.GetByID(context.Background(), shipmentID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, current.Status)
}

func TestSetStatusIdempotent(t *testing.T) {
	repo := newFakeShipmentRepo()
	orders := newFakeOrders()
	svc := NewService(repo, orders)
	shipmentID, _ := setupShipment(t, repo, orders, svc)

	_, err := svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusInTransit, Actor: "carrier",
	})
	require.NoError(t, err)
	transitionsBefore := len(orders.transitions)

	updated, err := svc.SetStatus(context.Background(), shipmentID, model.UpdateShipmentStatusRequest{
		Status: model.StatusInTransit, Actor: "carrier",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInTransit, updated.Status)
	assert.Len(t, orders.transitions, transitionsBefore)
}
