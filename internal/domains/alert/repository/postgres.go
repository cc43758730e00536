package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supplychain-backend/internal/domains/alert/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface is the data access contract for alerts.
type RepositoryInterface interface {
	Create(ctx context.Context, alert *model.Alert) error

	// HasActiveSince reports whether an active alert of the same
	// (type, product, location) was created at or after since.
	HasActiveSince(ctx context.Context, alertType string, productID, locationID uuid.UUID, since time.Time) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Alert, error)
	List(ctx context.Context, filter model.ListAlertsFilter) ([]model.Alert, int, error)

	// Resolve marks an active alert resolved. ErrAlreadyResolved when it is
	// not active.
	Resolve(ctx context.Context, id uuid.UUID) (*model.Alert, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const alertColumns = `
	id, company_id, type, product_id, location_id, message, status,
	created_at, resolved_at
`

func scanAlert(row pgx.Row) (*model.Alert, error) {
	var a model.Alert
	err := row.Scan(
		&a.ID,
		&a.CompanyID,
		&a.Type,
		&a.ProductID,
		&a.LocationID,
		&a.Message,
		&a.Status,
		&a.CreatedAt,
		&a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepository) Create(ctx context.Context, alert *model.Alert) error {
	query := `
		INSERT INTO alerts (id, company_id, type, product_id, location_id, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		alert.ID, alert.CompanyID, alert.Type, alert.ProductID,
		alert.LocationID, alert.Message, alert.Status,
	).Scan(&alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *postgresRepository) HasActiveSince(ctx context.Context, alertType string, productID, locationID uuid.UUID, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE type = $1 AND product_id = $2 AND location_id = $3
			  AND status = 'active' AND created_at >= $4
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, alertType, productID, locationID, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active alerts: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE id = $1
	`

	alert, err := scanAlert(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", model.ErrAlertNotFound, id)
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListAlertsFilter) ([]model.Alert, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	addFilter := func(clause string, value interface{}) {
		where += fmt.Sprintf(" AND %s = $%d", clause, argNum)
		args = append(args, value)
		argNum++
	}

	if filter.CompanyID != nil {
		addFilter("company_id", *filter.CompanyID)
	}
	if filter.Type != nil {
		addFilter("type", *filter.Type)
	}
	if filter.Status != nil {
		addFilter("status", *filter.Status)
	}
	if filter.ProductID != nil {
		addFilter("product_id", *filter.ProductID)
	}
	if filter.LocationID != nil {
		addFilter("location_id", *filter.LocationID)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM alerts" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	query := "SELECT " + alertColumns + " FROM alerts" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, total, rows.Err()
}

func (r *postgresRepository) Resolve(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	query := `
		UPDATE alerts
		SET status = 'resolved', resolved_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING ` + alertColumns + `
	`

	alert, err := scanAlert(r.pool.QueryRow(ctx, query, id))
	if err == nil {
		return alert, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}

	// Distinguish missing from already resolved.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status == model.StatusResolved {
		return nil, fmt.Errorf("%w: %s", model.ErrAlreadyResolved, id)
	}
	return nil, fmt.Errorf("failed to resolve alert %s", id)
}
