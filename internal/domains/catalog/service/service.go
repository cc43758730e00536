package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"supplychain-backend/internal/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when the catalog has no such product.
var ErrProductNotFound = errors.New("product not found in catalog")

// PriceClient resolves current catalog prices. Order creation snapshots the
// returned price per line item.
type PriceClient interface {
	PriceOf(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}

type httpPriceClient struct {
	cfg    config.CatalogConfig
	client *http.Client
}

func NewPriceClient(cfg config.CatalogConfig) PriceClient {
	return &httpPriceClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type priceResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
}

func (c *httpPriceClient) PriceOf(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/v1/products/%s/price", c.cfg.BaseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("catalog service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return decimal.Zero, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("catalog service returned %d: %s", resp.StatusCode, body)
	}

	var price priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&price); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return price.Price, nil
}
