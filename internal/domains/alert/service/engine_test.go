package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"supplychain-backend/internal/config"
	"supplychain-backend/internal/domains/alert/model"
	forecastmodel "supplychain-backend/internal/domains/forecast/model"
	inventorymodel "supplychain-backend/internal/domains/inventory/model"
	locationmodel "supplychain-backend/internal/domains/location/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlertRepo struct {
	alerts []model.Alert
}

func (f *fakeAlertRepo) Create(ctx context.Context, alert *model.Alert) error {
	alert.CreatedAt = time.Now()
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeAlertRepo) HasActiveSince(ctx context.Context, alertType string, productID, locationID uuid.UUID, since time.Time) (bool, error) {
	for _, a := range f.alerts {
		if a.Type == alertType && a.ProductID == productID && a.LocationID == locationID &&
			a.Status == model.StatusActive && !a.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlertRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			return &f.alerts[i], nil
		}
	}
	return nil, model.ErrAlertNotFound
}

func (f *fakeAlertRepo) List(ctx context.Context, filter model.ListAlertsFilter) ([]model.Alert, int, error) {
	return f.alerts, len(f.alerts), nil
}

func (f *fakeAlertRepo) Resolve(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			if f.alerts[i].Status == model.StatusResolved {
				return nil, model.ErrAlreadyResolved
			}
			now := time.Now()
			f.alerts[i].Status = model.StatusResolved
			f.alerts[i].ResolvedAt = &now
			return &f.alerts[i], nil
		}
	}
	return nil, model.ErrAlertNotFound
}

func (f *fakeAlertRepo) byType(alertType string) []model.Alert {
	var out []model.Alert
	for _, a := range f.alerts {
		if a.Type == alertType {
			out = append(out, a)
		}
	}
	return out
}

type fakeInventoryRepo struct {
	records []inventorymodel.Inventory
}

func (f *fakeInventoryRepo) Get(ctx context.Context, productID, locationID uuid.UUID) (*inventorymodel.Inventory, error) {
	for i := range f.records {
		if f.records[i].ProductID == productID && f.records[i].LocationID == locationID {
			return &f.records[i], nil
		}
	}
	return nil, inventorymodel.NewRecordNotFoundError(productID, locationID)
}

func (f *fakeInventoryRepo) List(ctx context.Context, filter inventorymodel.ListInventoryRequest) ([]inventorymodel.Inventory, int, error) {
	if filter.Page > 1 {
		return nil, len(f.records), nil
	}
	return f.records, len(f.records), nil
}

func (f *fakeInventoryRepo) ApplyChange(ctx context.Context, change *inventorymodel.StockChange) error {
	return errors.New("not supported")
}

func (f *fakeInventoryRepo) ListMovements(ctx context.Context, filter inventorymodel.ListMovementsRequest) ([]inventorymodel.Movement, int, error) {
	return nil, 0, nil
}

type fakeLocationRepo struct {
	companyID uuid.UUID
}

func (f *fakeLocationRepo) Create(ctx context.Context, loc *locationmodel.Location) error {
	return nil
}

func (f *fakeLocationRepo) GetByID(ctx context.Context, id uuid.UUID) (*locationmodel.Location, error) {
	return &locationmodel.Location{
		ID:        id,
		CompanyID: f.companyID,
		Name:      "Test Warehouse",
		Code:      "WH-1",
		Kind:      locationmodel.KindWarehouse,
		IsActive:  true,
	}, nil
}

func (f *fakeLocationRepo) Update(ctx context.Context, loc *locationmodel.Location) error {
	return nil
}

func (f *fakeLocationRepo) List(ctx context.Context, filter locationmodel.ListLocationFilter) ([]locationmodel.Location, error) {
	return nil, nil
}

type fakeForecastService struct {
	forecast *forecastmodel.Forecast
	err      error
}

func (f *fakeForecastService) Get(ctx context.Context, productID, locationID uuid.UUID) (*forecastmodel.Forecast, error) {
	return f.forecast, f.err
}

func newTestEngine(inv *fakeInventoryRepo, forecasts *fakeForecastService) (*alertEngine, *fakeAlertRepo) {
	alerts := &fakeAlertRepo{}
	engine := &alertEngine{
		cfg:       config.AlertConfig{DedupWindow: 24 * time.Hour, SweepInterval: 6 * time.Hour},
		alerts:    alerts,
		inventory: inv,
		locations: &fakeLocationRepo{companyID: uuid.New()},
		forecasts: forecasts,
		now:       time.Now,
	}
	return engine, alerts
}

func TestLowStockAlertEmitted(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: productID, LocationID: locationID, TotalStock: 12, ReservedStock: 8, ReorderLevel: 10},
	}}
	engine, alerts := newTestEngine(inv, &fakeForecastService{})

	engine.EvaluatePair(context.Background(), productID, locationID)

	emitted := alerts.byType(model.TypeLowStock)
	require.Len(t, emitted, 1)
	assert.Equal(t, model.StatusActive, emitted[0].Status)
	assert.Equal(t, productID, emitted[0].ProductID)
	assert.Contains(t, emitted[0].Message, "below reorder level")
}

func TestLowStockNotEmittedAtReorderLevel(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	// available == reorder level is not low stock
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: productID, LocationID: locationID, TotalStock: 10, ReservedStock: 0, ReorderLevel: 10},
	}}
	engine, alerts := newTestEngine(inv, &fakeForecastService{})

	engine.EvaluatePair(context.Background(), productID, locationID)
	assert.Empty(t, alerts.alerts)
}

func TestDuplicateAlertSuppressedWithinWindow(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: productID, LocationID: locationID, TotalStock: 2, ReservedStock: 0, ReorderLevel: 10},
	}}
	engine, alerts := newTestEngine(inv, &fakeForecastService{})

	engine.EvaluatePair(context.Background(), productID, locationID)
	engine.EvaluatePair(context.Background(), productID, locationID)

	assert.Len(t, alerts.byType(model.TypeLowStock), 1)
}

func TestDuplicateAlertAllowedAfterWindow(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: productID, LocationID: locationID, TotalStock: 2, ReservedStock: 0, ReorderLevel: 10},
	}}
	engine, alerts := newTestEngine(inv, &fakeForecastService{})

	engine.EvaluatePair(context.Background(), productID, locationID)

	// move the clock past the dedup window
	engine.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	engine.EvaluatePair(context.Background(), productID, locationID)

	assert.Len(t, alerts.byType(model.TypeLowStock), 2)
}

func TestResolvedAlertDoesNotSuppress(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: productID, LocationID: locationID, TotalStock: 2, ReservedStock: 0, ReorderLevel: 10},
	}}
	engine, alerts := newTestEngine(inv, &fakeForecastService{})

	engine.EvaluatePair(context.Background(), productID, locationID)
	require.Len(t, alerts.alerts, 1)

	_, err := engine.Resolve(context.Background(), alerts.alerts[0].ID)
	require.NoError(t, err)

	engine.EvaluatePair(context.Background(), productID, locationID)
	assert.Len(t, alerts.byType(model.TypeLowStock), 2)
}

func TestHighDemandAlert(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: productID, LocationID: locationID, TotalStock: 50, ReservedStock: 10, ReorderLevel: 5},
	}}
	forecasts := &fakeForecastService{forecast: &forecastmodel.Forecast{
		ProductID: productID, LocationID: locationID, PredictedDemand: 60,
	}}
	engine, alerts := newTestEngine(inv, forecasts)

	engine.EvaluatePair(context.Background(), productID, locationID)

	require.Len(t, alerts.byType(model.TypeHighDemand), 1)
	assert.Empty(t, alerts.byType(model.TypeLowStock))
	assert.Empty(t, alerts.byType(model.TypeOverstock))
}

func TestOverstockAlert(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: productID, LocationID: locationID, TotalStock: 100, ReservedStock: 0, ReorderLevel: 5},
	}}
	forecasts := &fakeForecastService{forecast: &forecastmodel.Forecast{
		ProductID: productID, LocationID: locationID, PredictedDemand: 10,
	}}
	engine, alerts := newTestEngine(inv, forecasts)

	engine.EvaluatePair(context.Background(), productID, locationID)

	require.Len(t, alerts.byType(model.TypeOverstock), 1)
	assert.Empty(t, alerts.byType(model.TypeHighDemand))
}

func TestNoDemandRulesWithoutForecast(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: productID, LocationID: locationID, TotalStock: 1000, ReservedStock: 0, ReorderLevel: 5},
	}}
	engine, alerts := newTestEngine(inv, &fakeForecastService{forecast: nil})

	engine.EvaluatePair(context.Background(), productID, locationID)
	assert.Empty(t, alerts.alerts)
}

func TestForecastFailureIsSwallowed(t *testing.T) {
	productID := uuid.New()
	locationID := uuid.New()
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: productID, LocationID: locationID, TotalStock: 2, ReservedStock: 0, ReorderLevel: 10},
	}}
	engine, alerts := newTestEngine(inv, &fakeForecastService{err: errors.New("upstream down")})

	engine.EvaluatePair(context.Background(), productID, locationID)

	// the low stock rule still ran before the forecast lookup
	assert.Len(t, alerts.byType(model.TypeLowStock), 1)
}

func TestEvaluateScopeCoversAllRecords(t *testing.T) {
	locationID := uuid.New()
	inv := &fakeInventoryRepo{records: []inventorymodel.Inventory{
		{ProductID: uuid.New(), LocationID: locationID, TotalStock: 2, ReservedStock: 0, ReorderLevel: 10},
		{ProductID: uuid.New(), LocationID: locationID, TotalStock: 100, ReservedStock: 0, ReorderLevel: 10},
		{ProductID: uuid.New(), LocationID: locationID, TotalStock: 1, ReservedStock: 0, ReorderLevel: 5},
	}}
	engine, alerts := newTestEngine(inv, &fakeForecastService{})

	engine.EvaluateScope(context.Background(), nil, &locationID)
	assert.Len(t, alerts.byType(model.TypeLowStock), 2)
}

func TestEvaluatePairMissingRecordIsNoop(t *testing.T) {
	engine, alerts := newTestEngine(&fakeInventoryRepo{}, &fakeForecastService{})
	engine.EvaluatePair(context.Background(), uuid.New(), uuid.New())
	assert.Empty(t, alerts.alerts)
}
