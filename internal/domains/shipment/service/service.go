package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ordermodel "supplychain-backend/internal/domains/order/model"
	orderservice "supplychain-backend/internal/domains/order/service"
	"supplychain-backend/internal/domains/shipment/model"
	"supplychain-backend/internal/domains/shipment/repository"
	"supplychain-backend/pkg/logger"

	"github.com/google/uuid"
)

// ServiceInterface manages shipments and drives the order workflow from
// carrier status updates.
type ServiceInterface interface {
	// Create registers a shipment for a pending order and confirms the
	// order.
	Create(ctx context.Context, req model.CreateShipmentRequest) (*model.Shipment, error)

	// SetStatus advances the shipment. in_transit ships the order,
	// delivered delivers it. returned is shipment-level only.
	SetStatus(ctx context.Context, id uuid.UUID, req model.UpdateShipmentStatusRequest) (*model.Shipment, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Shipment, error)
}

type shipmentService struct {
	repo   repository.RepositoryInterface
	orders orderservice.ServiceInterface
	now    func() time.Time
}

func NewService(repo repository.RepositoryInterface, orders orderservice.ServiceInterface) ServiceInterface {
	return &shipmentService{
		repo:   repo,
		orders: orders,
		now:    time.Now,
	}
}

func generateTrackingNumber() string {
	return "TRK-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}

func (s *shipmentService) Create(ctx context.Context, req model.CreateShipmentRequest) (*model.Shipment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != ordermodel.StatusPending && order.Status != ordermodel.StatusConfirmed {
		return nil, ordermodel.NewInvalidTransitionError(order.Status, ordermodel.StatusConfirmed)
	}

	shipment := &model.Shipment{
		ID:                uuid.New(),
		OrderID:           req.OrderID,
		TrackingNumber:    generateTrackingNumber(),
		Carrier:           req.Carrier,
		Status:            model.StatusPending,
		EstimatedDelivery: req.EstimatedDelivery,
	}
	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, err
	}

	// Registering a shipment confirms the order. Compensate with a delete
	// when the confirmation loses a race.
	if _, err := s.orders.Transition(ctx, req.OrderID, ordermodel.StatusConfirmed, req.Actor); err != nil {
		if delErr := s.repo.Delete(ctx, shipment.ID); delErr != nil {
			logger.Error(fmt.Sprintf("failed to delete shipment %s after confirmation failure", shipment.ID), delErr)
		}
		return nil, err
	}

	return shipment, nil
}

func (s *shipmentService) SetStatus(ctx context.Context, id uuid.UUID, req model.UpdateShipmentStatusRequest) (*model.Shipment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	shipment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Already at target: idempotent no-op.
	if shipment.Status == req.Status {
		return shipment, nil
	}
	if !model.CanTransition(shipment.Status, req.Status) {
		return nil, model.NewInvalidTransitionError(shipment.Status, req.Status)
	}

	from := shipment.Status
	var actualDelivery *time.Time
	if req.Status == model.StatusDelivered {
		now := s.now()
		actualDelivery = &now
	}

	if err := s.repo.ClaimStatus(ctx, id, from, req.Status, actualDelivery); err != nil {
		return nil, err
	}

	if err := s.driveOrder(ctx, shipment.OrderID, req.Status, req.Actor); err != nil {
		if revertErr := s.repo.ClaimStatus(ctx, id, req.Status, from, nil); revertErr != nil {
			logger.Error(fmt.Sprintf("failed to revert shipment %s to %s", id, from), revertErr)
		}
		return nil, err
	}

	shipment.Status = req.Status
	shipment.ActualDelivery = actualDelivery
	return shipment, nil
}

// driveOrder maps a shipment status to the order transition it implies.
// A physical return is booked separately with a ledger return adjustment, so
// returned has no order side effect.
func (s *shipmentService) driveOrder(ctx context.Context, orderID uuid.UUID, shipmentStatus, actor string) error {
	switch shipmentStatus {
	case model.StatusInTransit:
		_, err := s.orders.Transition(ctx, orderID, ordermodel.StatusShipped, actor)
		return err
	case model.StatusDelivered:
		_, err := s.orders.Transition(ctx, orderID, ordermodel.StatusDelivered, actor)
		return err
	default:
		return nil
	}
}

func (s *shipmentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *shipmentService) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Shipment, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}
