package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	catalogservice "supplychain-backend/internal/domains/catalog/service"
	inventoryservice "supplychain-backend/internal/domains/inventory/service"
	locationrepo "supplychain-backend/internal/domains/location/repository"
	"supplychain-backend/internal/domains/order/model"
	"supplychain-backend/internal/domains/order/repository"
	"supplychain-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceInterface runs the order fulfillment workflow.
type ServiceInterface interface {
	// Create reserves stock for every line item, snapshots catalog prices
	// and persists the order in pending status. The first reservation
	// failure releases all earlier ones and aborts.
	Create(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error)

	// Transition moves the order to the target status, running the ledger
	// side effects the transition implies. Transitioning to the current
	// status is a no-op.
	Transition(ctx context.Context, orderID uuid.UUID, target, actor string) (*model.Order, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter model.ListOrdersRequest) ([]model.Order, int, error)
	GetHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error)
}

type orderService struct {
	repo      repository.RepositoryInterface
	inventory inventoryservice.ServiceInterface
	catalog   catalogservice.PriceClient
	locations locationrepo.RepositoryInterface
}

func NewService(
	repo repository.RepositoryInterface,
	inventory inventoryservice.ServiceInterface,
	catalog catalogservice.PriceClient,
	locations locationrepo.RepositoryInterface,
) ServiceInterface {
	return &orderService{
		repo:      repo,
		inventory: inventory,
		catalog:   catalog,
		locations: locations,
	}
}

// generateOrderNumber builds a human-readable unique order number.
func generateOrderNumber(orderType string) string {
	prefix := "CO"
	if orderType == model.TypeDealerOrder {
		prefix = "DO"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), suffix)
}

func itemQuantities(items []model.OrderItem) []inventoryservice.OrderItemQuantity {
	out := make([]inventoryservice.OrderItemQuantity, len(items))
	for i, item := range items {
		out[i] = inventoryservice.OrderItemQuantity{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}

func (s *orderService) Create(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.locations.GetByID(ctx, req.FromLocationID); err != nil {
		return nil, fmt.Errorf("source location: %w", err)
	}
	if req.ToLocationID != nil {
		if _, err := s.locations.GetByID(ctx, *req.ToLocationID); err != nil {
			return nil, fmt.Errorf("destination location: %w", err)
		}
	}

	orderID := uuid.New()
	order := &model.Order{
		ID:             orderID,
		OrderNumber:    generateOrderNumber(req.OrderType),
		OrderType:      req.OrderType,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Status:         model.StatusPending,
		TotalAmount:    decimal.Zero,
	}

	for _, item := range req.Items {
		price, err := s.catalog.PriceOf(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("price lookup for %s: %w", item.ProductID, err)
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.Items = append(order.Items, model.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			PriceAtTime: price,
			Subtotal:    subtotal,
		})
		order.TotalAmount = order.TotalAmount.Add(subtotal)
	}

	// Reserve sequentially; unwind already-placed reservations on the first
	// failure.
	var reserved []model.OrderItem
	for _, item := range order.Items {
		if err := s.inventory.Reserve(ctx, item.ProductID, req.FromLocationID, item.Quantity, &orderID); err != nil {
			s.releaseReservations(ctx, order, reserved)
			return nil, err
		}
		reserved = append(reserved, item)
	}

	if err := s.repo.Create(ctx, order, req.Actor); err != nil {
		s.releaseReservations(ctx, order, reserved)
		return nil, err
	}
	return order, nil
}

// releaseReservations unwinds reservations best-effort. Failures are logged:
// the reservation stays until an operator releases it or the order is failed.
func (s *orderService) releaseReservations(ctx context.Context, order *model.Order, items []model.OrderItem) {
	for _, item := range items {
		err := s.inventory.ReleaseReservation(ctx, item.ProductID, order.FromLocationID, item.Quantity, &order.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("failed to release reservation for product %s at %s",
				item.ProductID, order.FromLocationID), err)
		}
	}
}

func (s *orderService) Transition(ctx context.Context, orderID uuid.UUID, target, actor string) (*model.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Already at target: idempotent no-op.
	if order.Status == target {
		return order, nil
	}
	if !model.CanTransition(order.Status, target) {
		return nil, model.NewInvalidTransitionError(order.Status, target)
	}

	from := order.Status

	// Claim the status first so a concurrent transition cannot run the side
	// effects twice, then run them, reverting the claim on failure.
	if err := s.repo.ClaimStatus(ctx, orderID, from, target, actor); err != nil {
		return nil, err
	}

	if err := s.runSideEffects(ctx, order, target); err != nil {
		if revertErr := s.repo.ClaimStatus(ctx, orderID, target, from, "system:revert"); revertErr != nil {
			logger.Error(fmt.Sprintf("failed to revert order %s to %s after side effect failure", orderID, from), revertErr)
		}
		return nil, err
	}

	order.Status = target
	return order, nil
}

// runSideEffects applies the ledger consequences of reaching target.
func (s *orderService) runSideEffects(ctx context.Context, order *model.Order, target string) error {
	items := itemQuantities(order.Items)

	switch target {
	case model.StatusConfirmed:
		// Reservation already holds the stock; confirmation is bookkeeping.
		return nil

	case model.StatusShipped:
		return s.inventory.FulfillItems(ctx, order.FromLocationID, items, order.ID)

	case model.StatusDelivered:
		if order.OrderType != model.TypeDealerOrder {
			return nil
		}
		return s.inventory.TransferInItems(ctx, order.FromLocationID, *order.ToLocationID, items, order.ID)

	case model.StatusCancelled, model.StatusFailed:
		return s.inventory.ReleaseItems(ctx, order.FromLocationID, items, order.ID)

	default:
		return nil
	}
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *orderService) List(ctx context.Context, filter model.ListOrdersRequest) ([]model.Order, int, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if filter.Status != nil {
		switch *filter.Status {
		case model.StatusPending, model.StatusConfirmed, model.StatusShipped,
			model.StatusDelivered, model.StatusCancelled, model.StatusFailed:
		default:
			return nil, 0, fmt.Errorf("unknown order status %q", *filter.Status)
		}
	}
	return s.repo.List(ctx, filter)
}

func (s *orderService) GetHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	if _, err := s.repo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.GetHistory(ctx, orderID)
}
