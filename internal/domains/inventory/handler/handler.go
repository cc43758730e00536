package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"supplychain-backend/internal/domains/inventory/model"
	"supplychain-backend/internal/domains/inventory/service"
	"supplychain-backend/internal/shared/response"
	"supplychain-backend/pkg/logger"
)

type Handler struct {
	svc service.ServiceInterface
}

func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// respondLedgerError translates ledger errors into the HTTP status they map
// to. Unknown errors are logged and returned as 500 without leaking detail.
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case model.IsBusyError(err):
		response.ServiceUnavailable(c, "Inventory record is busy, please retry")
	case model.IsNotFoundError(err):
		response.NotFound(c, "Inventory record not found")
	case model.IsInsufficientStockError(err):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrReservedExceedsStock):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, model.ErrConcurrentUpdate):
		response.Conflict(c, "Inventory record was modified concurrently, please retry")
	case model.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("inventory operation failed", err)
		response.InternalServerError(c, "Failed to process inventory operation")
	}
}

// AdjustStock books a manufacture, return or manual adjustment movement.
// POST /api/v1/inventories/adjust
func (h *Handler) AdjustStock(c *gin.Context) {
	var req model.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inv, err := h.svc.Adjust(c.Request.Context(), req)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	response.Success(c, http.StatusOK, inv)
}

// SellStock books a direct, unreserved sale.
// POST /api/v1/inventories/sell
func (h *Handler) SellStock(c *gin.Context) {
	var req model.SellStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inv, err := h.svc.Sell(c.Request.Context(), req)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	response.Success(c, http.StatusOK, inv)
}

// TransferStock moves stock between two locations.
// POST /api/v1/inventories/transfer
func (h *Handler) TransferStock(c *gin.Context) {
	var req model.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.Transfer(c.Request.Context(), req); err != nil {
		respondLedgerError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"product_id":       req.ProductID,
		"from_location_id": req.FromLocationID,
		"to_location_id":   req.ToLocationID,
		"quantity":         req.Quantity,
	})
}

// GetInventory returns one ledger record.
// GET /api/v1/inventories/record?product_id=&location_id=
func (h *Handler) GetInventory(c *gin.Context) {
	var req model.SearchInventoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "product_id and location_id are required: "+err.Error())
		return
	}

	inv, err := h.svc.GetInventory(c.Request.Context(), req)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	response.Success(c, http.StatusOK, inv)
}

// ListInventories lists ledger records with optional product, location and
// low stock filters.
// GET /api/v1/inventories?product_id=&location_id=&low_stock=&page=&limit=
func (h *Handler) ListInventories(c *gin.Context) {
	var req model.ListInventoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	result, err := h.svc.ListInventories(c.Request.Context(), req)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Items, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// ListMovements returns the movement audit trail, newest first.
// GET /api/v1/movements?product_id=&location_id=&movement_type=&order_id=&page=&limit=
func (h *Handler) ListMovements(c *gin.Context) {
	var req model.ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if req.MovementType != nil && !model.IsValidMovementType(*req.MovementType) {
		response.BadRequest(c, "Unknown movement type: "+*req.MovementType)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	result, err := h.svc.ListMovements(c.Request.Context(), req)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Items, &response.Meta{
		Page:  result.Page,
		Limit: result.Limit,
		Total: result.TotalItems,
	})
}
