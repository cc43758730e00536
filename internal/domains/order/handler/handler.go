package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	catalogservice "supplychain-backend/internal/domains/catalog/service"
	inventorymodel "supplychain-backend/internal/domains/inventory/model"
	locationmodel "supplychain-backend/internal/domains/location/model"
	"supplychain-backend/internal/domains/order/model"
	"supplychain-backend/internal/domains/order/service"
	"supplychain-backend/internal/shared/response"
	"supplychain-backend/pkg/logger"
)

type Handler struct {
	svc service.ServiceInterface
}

func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func respondOrderError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", verrs)
	case errors.Is(err, model.ErrEmptyOrder), errors.Is(err, model.ErrMissingDestination):
		response.BadRequest(c, err.Error())
	case errors.Is(err, model.ErrOrderNotFound):
		response.NotFound(c, "Order not found")
	case model.IsInvalidTransitionError(err):
		response.UnprocessableEntity(c, err.Error())
	case inventorymodel.IsInsufficientStockError(err):
		response.Conflict(c, err.Error())
	case inventorymodel.IsBusyError(err):
		response.ServiceUnavailable(c, "Inventory is busy, please retry")
	case inventorymodel.IsNotFoundError(err):
		response.Conflict(c, "No inventory record for an ordered product at the source location")
	case errors.Is(err, locationmodel.ErrLocationNotFound):
		response.BadRequest(c, err.Error())
	case errors.Is(err, catalogservice.ErrProductNotFound):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("order operation failed", err)
		response.InternalServerError(c, "Failed to process order operation")
	}
}

// CreateOrder places a new order, reserving stock for every line item.
// POST /api/v1/orders
func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, order)
}

// GetOrder returns one order with its items.
// GET /api/v1/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// ListOrders lists orders with optional filters.
// GET /api/v1/orders?order_type=&status=&from_location_id=&to_location_id=&page=&limit=
func (h *Handler) ListOrders(c *gin.Context) {
	var filter model.ListOrdersRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}

	orders, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, orders, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// UpdateOrderStatus moves an order through its state machine.
// PATCH /api/v1/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondOrderError(c, err)
		return
	}

	order, err := h.svc.Transition(c.Request.Context(), id, req.Status, req.Actor)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// GetOrderHistory returns the audit trail of an order's status changes.
// GET /api/v1/orders/:id/history
func (h *Handler) GetOrderHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	history, err := h.svc.GetHistory(c.Request.Context(), id)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, history)
}
