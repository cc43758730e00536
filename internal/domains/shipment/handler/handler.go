package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	inventorymodel "supplychain-backend/internal/domains/inventory/model"
	ordermodel "supplychain-backend/internal/domains/order/model"
	"supplychain-backend/internal/domains/shipment/model"
	"supplychain-backend/internal/domains/shipment/service"
	"supplychain-backend/internal/shared/response"
	"supplychain-backend/pkg/logger"
)

type Handler struct {
	svc service.ServiceInterface
}

func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func respondShipmentError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", verrs)
	case errors.Is(err, model.ErrShipmentNotFound):
		response.NotFound(c, "Shipment not found")
	case errors.Is(err, ordermodel.ErrOrderNotFound):
		response.NotFound(c, "Order not found")
	case errors.Is(err, model.ErrShipmentExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrInvalidTransition), ordermodel.IsInvalidTransitionError(err):
		response.UnprocessableEntity(c, err.Error())
	case inventorymodel.IsInsufficientStockError(err):
		response.Conflict(c, err.Error())
	case inventorymodel.IsBusyError(err):
		response.ServiceUnavailable(c, "Inventory is busy, please retry")
	default:
		logger.Error("shipment operation failed", err)
		response.InternalServerError(c, "Failed to process shipment operation")
	}
}

// CreateShipment registers a shipment for a pending order.
// POST /api/v1/shipments
func (h *Handler) CreateShipment(c *gin.Context) {
	var req model.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	shipment, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondShipmentError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, shipment)
}

// GetShipment returns one shipment.
// GET /api/v1/shipments/:id
func (h *Handler) GetShipment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid shipment ID")
		return
	}

	shipment, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondShipmentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, shipment)
}

// GetShipmentByOrder returns the shipment of an order.
// GET /api/v1/orders/:id/shipment
func (h *Handler) GetShipmentByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	shipment, err := h.svc.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		respondShipmentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, shipment)
}

// UpdateShipmentStatus advances a shipment, driving the order workflow.
// PATCH /api/v1/shipments/:id/status
func (h *Handler) UpdateShipmentStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid shipment ID")
		return
	}

	var req model.UpdateShipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	shipment, err := h.svc.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		respondShipmentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, shipment)
}
