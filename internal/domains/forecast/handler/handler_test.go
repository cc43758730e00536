package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplychain-backend/internal/domains/forecast/model"
)

type fakeForecasts struct {
	forecast *model.Forecast
	err      error
}

func (f *fakeForecasts) Get(ctx context.Context, productID, locationID uuid.UUID) (*model.Forecast, error) {
	return f.forecast, f.err
}

func serveForecast(t *testing.T, svc *fakeForecasts, query string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/forecasts", NewHandler(svc).GetForecast)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecasts"+query, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetForecastReturnsPredictionUnmodified(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	svc := &fakeForecasts{forecast: &model.Forecast{
		ProductID:       productID,
		LocationID:      locationID,
		PredictedDemand: 42,
		GeneratedAt:     time.Now(),
	}}

	w := serveForecast(t, svc, fmt.Sprintf("?product_id=%s&location_id=%s", productID, locationID))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool           `json:"success"`
		Data    model.Forecast `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, productID, body.Data.ProductID)
	assert.Equal(t, 42, body.Data.PredictedDemand)
}

func TestGetForecastMissingPairReturns404(t *testing.T) {
	w := serveForecast(t, &fakeForecasts{}, fmt.Sprintf("?product_id=%s&location_id=%s", uuid.New(), uuid.New()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetForecastRequiresBothIDs(t *testing.T) {
	w := serveForecast(t, &fakeForecasts{}, "?product_id="+uuid.New().String())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetForecastUpstreamFailureReturns503(t *testing.T) {
	svc := &fakeForecasts{err: errors.New("connection refused")}
	w := serveForecast(t, svc, fmt.Sprintf("?product_id=%s&location_id=%s", uuid.New(), uuid.New()))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
