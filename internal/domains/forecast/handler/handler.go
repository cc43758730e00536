package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"supplychain-backend/internal/domains/forecast/model"
	"supplychain-backend/internal/domains/forecast/service"
	"supplychain-backend/internal/shared/response"
	"supplychain-backend/pkg/logger"
)

type Handler struct {
	svc service.ServiceInterface
}

func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// GetForecast returns the predicted demand for a (product, location) pair
// exactly as the forecasting service reported it.
// GET /api/v1/forecasts?product_id=&location_id=
func (h *Handler) GetForecast(c *gin.Context) {
	var req model.GetForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "product_id and location_id are required: "+err.Error())
		return
	}

	forecast, err := h.svc.Get(c.Request.Context(), req.ProductID, req.LocationID)
	if err != nil {
		logger.Error("forecast lookup failed", err)
		response.ServiceUnavailable(c, "Forecast service is unavailable")
		return
	}
	if forecast == nil {
		response.NotFound(c, "No forecast for this product and location")
		return
	}

	response.Success(c, http.StatusOK, forecast)
}
