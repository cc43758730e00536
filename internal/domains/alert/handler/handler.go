package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"supplychain-backend/internal/domains/alert/model"
	"supplychain-backend/internal/domains/alert/service"
	"supplychain-backend/internal/shared/response"
	"supplychain-backend/pkg/logger"
)

type Handler struct {
	svc service.ServiceInterface
}

func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// ListAlerts lists alerts with optional filters, newest first.
// GET /api/v1/alerts?company_id=&type=&status=&product_id=&location_id=&page=&limit=
func (h *Handler) ListAlerts(c *gin.Context) {
	var filter model.ListAlertsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if filter.Type != nil && !model.IsValidType(*filter.Type) {
		response.BadRequest(c, "Unknown alert type: "+*filter.Type)
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}

	alerts, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		logger.Error("failed to list alerts", err)
		response.InternalServerError(c, "Failed to list alerts")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, alerts, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// GetAlert returns one alert.
// GET /api/v1/alerts/:id
func (h *Handler) GetAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid alert ID")
		return
	}

	alert, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrAlertNotFound) {
			response.NotFound(c, "Alert not found")
			return
		}
		logger.Error("failed to get alert", err)
		response.InternalServerError(c, "Failed to get alert")
		return
	}

	response.Success(c, http.StatusOK, alert)
}

// ResolveAlert marks an active alert resolved.
// POST /api/v1/alerts/:id/resolve
func (h *Handler) ResolveAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid alert ID")
		return
	}

	alert, err := h.svc.Resolve(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAlertNotFound):
			response.NotFound(c, "Alert not found")
		case errors.Is(err, model.ErrAlreadyResolved):
			response.Conflict(c, "Alert is already resolved")
		default:
			logger.Error("failed to resolve alert", err)
			response.InternalServerError(c, "Failed to resolve alert")
		}
		return
	}

	response.Success(c, http.StatusOK, alert)
}

// EvaluateAlerts runs the alert rules on demand for the given scope.
// POST /api/v1/alerts/evaluate?product_id=&location_id=
func (h *Handler) EvaluateAlerts(c *gin.Context) {
	var productID, locationID *uuid.UUID

	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid product_id")
			return
		}
		productID = &id
	}
	if raw := c.Query("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid location_id")
			return
		}
		locationID = &id
	}

	h.svc.EvaluateScope(c.Request.Context(), productID, locationID)
	response.Success(c, http.StatusAccepted, gin.H{"evaluated": true})
}
