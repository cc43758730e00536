package service

import (
	"context"
	"fmt"
	"time"

	"supplychain-backend/internal/config"
	"supplychain-backend/internal/domains/alert/model"
	"supplychain-backend/internal/domains/alert/repository"
	forecastservice "supplychain-backend/internal/domains/forecast/service"
	inventorymodel "supplychain-backend/internal/domains/inventory/model"
	inventoryrepo "supplychain-backend/internal/domains/inventory/repository"
	locationrepo "supplychain-backend/internal/domains/location/repository"
	"supplychain-backend/internal/shared/metrics"
	"supplychain-backend/pkg/logger"

	"github.com/google/uuid"
)

// ServiceInterface evaluates ledger records against the alert rules and
// manages the resulting alerts. Evaluation never fails the caller: rule or
// dependency errors are logged and swallowed.
type ServiceInterface interface {
	// EvaluatePair evaluates one (product, location) record. A missing
	// record is a no-op.
	EvaluatePair(ctx context.Context, productID, locationID uuid.UUID)

	// EvaluateScope evaluates every record matching the optional product and
	// location filters.
	EvaluateScope(ctx context.Context, productID, locationID *uuid.UUID)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Alert, error)
	List(ctx context.Context, filter model.ListAlertsFilter) ([]model.Alert, int, error)
	Resolve(ctx context.Context, id uuid.UUID) (*model.Alert, error)
}

// overstockFactor is the multiple of predicted demand above which available
// stock counts as overstock.
const overstockFactor = 2

const sweepPageSize = 200

type alertEngine struct {
	cfg       config.AlertConfig
	alerts    repository.RepositoryInterface
	inventory inventoryrepo.RepositoryInterface
	locations locationrepo.RepositoryInterface
	forecasts forecastservice.ServiceInterface
	now       func() time.Time
}

func NewService(
	cfg config.AlertConfig,
	alerts repository.RepositoryInterface,
	inventory inventoryrepo.RepositoryInterface,
	locations locationrepo.RepositoryInterface,
	forecasts forecastservice.ServiceInterface,
) ServiceInterface {
	return &alertEngine{
		cfg:       cfg,
		alerts:    alerts,
		inventory: inventory,
		locations: locations,
		forecasts: forecasts,
		now:       time.Now,
	}
}

func (e *alertEngine) EvaluatePair(ctx context.Context, productID, locationID uuid.UUID) {
	rec, err := e.inventory.Get(ctx, productID, locationID)
	if err != nil {
		if !inventorymodel.IsNotFoundError(err) {
			logger.Error("alert evaluation: failed to load inventory record", err)
		}
		return
	}
	e.evaluateRecord(ctx, rec)
}

func (e *alertEngine) EvaluateScope(ctx context.Context, productID, locationID *uuid.UUID) {
	page := 1
	for {
		filter := inventorymodel.ListInventoryRequest{
			ProductID:  productID,
			LocationID: locationID,
			Page:       page,
			Limit:      sweepPageSize,
		}
		records, _, err := e.inventory.List(ctx, filter)
		if err != nil {
			logger.Error("alert evaluation: failed to list inventory records", err)
			return
		}

		for i := range records {
			e.evaluateRecord(ctx, &records[i])
		}

		if len(records) < sweepPageSize {
			return
		}
		page++
	}
}

// evaluateRecord runs all rules against one record and emits the alerts
// whose condition holds and that are not suppressed by deduplication.
func (e *alertEngine) evaluateRecord(ctx context.Context, rec *inventorymodel.Inventory) {
	available := rec.AvailableStock()

	if rec.IsLowStock() {
		e.emit(ctx, rec, model.TypeLowStock,
			fmt.Sprintf("available stock %d is below reorder level %d", available, rec.ReorderLevel))
	}

	forecast, err := e.forecasts.Get(ctx, rec.ProductID, rec.LocationID)
	if err != nil {
		logger.Warn("alert evaluation: forecast lookup failed", map[string]interface{}{
			"product_id":  rec.ProductID.String(),
			"location_id": rec.LocationID.String(),
			"error":       err.Error(),
		})
		return
	}
	if forecast == nil {
		return
	}

	if forecast.PredictedDemand > available {
		e.emit(ctx, rec, model.TypeHighDemand,
			fmt.Sprintf("predicted demand %d exceeds available stock %d", forecast.PredictedDemand, available))
	}
	if forecast.PredictedDemand > 0 && available > overstockFactor*forecast.PredictedDemand {
		e.emit(ctx, rec, model.TypeOverstock,
			fmt.Sprintf("available stock %d is more than %dx predicted demand %d",
				available, overstockFactor, forecast.PredictedDemand))
	}
}

func (e *alertEngine) emit(ctx context.Context, rec *inventorymodel.Inventory, alertType, message string) {
	since := e.now().Add(-e.cfg.DedupWindow)
	exists, err := e.alerts.HasActiveSince(ctx, alertType, rec.ProductID, rec.LocationID, since)
	if err != nil {
		logger.Error("alert evaluation: dedup check failed", err)
		return
	}
	if exists {
		return
	}

	loc, err := e.locations.GetByID(ctx, rec.LocationID)
	if err != nil {
		logger.Error("alert evaluation: failed to load location", err)
		return
	}

	alert := &model.Alert{
		ID:         uuid.New(),
		CompanyID:  loc.CompanyID,
		Type:       alertType,
		ProductID:  rec.ProductID,
		LocationID: rec.LocationID,
		Message:    message,
		Status:     model.StatusActive,
	}
	if err := e.alerts.Create(ctx, alert); err != nil {
		logger.Error("alert evaluation: failed to create alert", err)
		return
	}

	metrics.AlertsEmittedTotal.WithLabelValues(alertType).Inc()
	logger.Info("alert emitted", map[string]interface{}{
		"alert_id":    alert.ID.String(),
		"type":        alertType,
		"product_id":  rec.ProductID.String(),
		"location_id": rec.LocationID.String(),
	})
}

func (e *alertEngine) GetByID(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	return e.alerts.GetByID(ctx, id)
}

func (e *alertEngine) List(ctx context.Context, filter model.ListAlertsFilter) ([]model.Alert, int, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	return e.alerts.List(ctx, filter)
}

func (e *alertEngine) Resolve(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	return e.alerts.Resolve(ctx, id)
}
