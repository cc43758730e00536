package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"supplychain-backend/internal/config"
	"supplychain-backend/internal/domains/forecast/model"
	"supplychain-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ServiceInterface fetches demand forecasts. Get returns (nil, nil) when the
// forecasting service has no prediction for the pair.
type ServiceInterface interface {
	Get(ctx context.Context, productID, locationID uuid.UUID) (*model.Forecast, error)
}

type forecastService struct {
	cfg    config.ForecastConfig
	client *http.Client
	cache  *redis.Client
}

// NewService creates the forecast client. cache may be nil to disable
// caching.
func NewService(cfg config.ForecastConfig, cache *redis.Client) ServiceInterface {
	return &forecastService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
	}
}

func cacheKey(productID, locationID uuid.UUID) string {
	return fmt.Sprintf("forecast:%s:%s", productID, locationID)
}

func (s *forecastService) Get(ctx context.Context, productID, locationID uuid.UUID) (*model.Forecast, error) {
	if cached := s.fromCache(ctx, productID, locationID); cached != nil {
		return cached, nil
	}

	url := fmt.Sprintf("%s/api/v1/forecasts?product_id=%s&location_id=%s",
		s.cfg.BaseURL, productID, locationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// No prediction for this pair is a normal outcome.
		return nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("forecast service returned %d: %s", resp.StatusCode, body)
	}

	var forecast model.Forecast
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	s.toCache(ctx, productID, locationID, &forecast)
	return &forecast, nil
}

func (s *forecastService) fromCache(ctx context.Context, productID, locationID uuid.UUID) *model.Forecast {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, cacheKey(productID, locationID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("forecast cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}

	var forecast model.Forecast
	if err := json.Unmarshal(data, &forecast); err != nil {
		return nil
	}
	return &forecast
}

func (s *forecastService) toCache(ctx context.Context, productID, locationID uuid.UUID, forecast *model.Forecast) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(forecast)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(productID, locationID), data, s.cfg.CacheTTL).Err(); err != nil {
		logger.Warn("forecast cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
