package model

import (
	"time"

	"github.com/google/uuid"
)

// GetForecastRequest identifies the pair a caller wants the prediction for.
type GetForecastRequest struct {
	ProductID  uuid.UUID `form:"product_id" binding:"required"`
	LocationID uuid.UUID `form:"location_id" binding:"required"`
}

// Forecast is the predicted demand for a (product, location) pair over the
// upcoming period, as computed by the external forecasting service.
type Forecast struct {
	ProductID       uuid.UUID `json:"product_id"`
	LocationID      uuid.UUID `json:"location_id"`
	PredictedDemand int       `json:"predicted_demand"`
	Confidence      *float64  `json:"confidence,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}
