package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supplychain-backend/internal/domains/shipment/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStatusConflict is returned when a status claim loses against a
// concurrent transition.
var ErrStatusConflict = errors.New("shipment status changed concurrently")

// RepositoryInterface is the data access contract for shipments.
type RepositoryInterface interface {
	Create(ctx context.Context, shipment *model.Shipment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Shipment, error)

	// ClaimStatus atomically moves the shipment from one status to another,
	// setting actual_delivery when provided.
	ClaimStatus(ctx context.Context, id uuid.UUID, from, to string, actualDelivery *time.Time) error

	// Delete removes a shipment. Used to compensate when order confirmation
	// fails after the shipment row was created.
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const shipmentColumns = `
	id, order_id, tracking_number, carrier, status,
	estimated_delivery, actual_delivery, created_at, updated_at
`

func scanShipment(row pgx.Row) (*model.Shipment, error) {
	var s model.Shipment
	err := row.Scan(
		&s.ID,
		&s.OrderID,
		&s.TrackingNumber,
		&s.Carrier,
		&s.Status,
		&s.EstimatedDelivery,
		&s.ActualDelivery,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) Create(ctx context.Context, shipment *model.Shipment) error {
	query := `
		INSERT INTO shipments (id, order_id, tracking_number, carrier, status, estimated_delivery)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		shipment.ID, shipment.OrderID, shipment.TrackingNumber,
		shipment.Carrier, shipment.Status, shipment.EstimatedDelivery,
	).Scan(&shipment.CreatedAt, &shipment.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: order %s", model.ErrShipmentExists, shipment.OrderID)
		}
		return fmt.Errorf("failed to create shipment: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + `
		FROM shipments
		WHERE id = $1
	`

	shipment, err := scanShipment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", model.ErrShipmentNotFound, id)
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	return shipment, nil
}

func (r *postgresRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + `
		FROM shipments
		WHERE order_id = $1
	`

	shipment, err := scanShipment(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", model.ErrShipmentNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	return shipment, nil
}

func (r *postgresRepository) ClaimStatus(ctx context.Context, id uuid.UUID, from, to string, actualDelivery *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shipments
		SET status = $3, actual_delivery = COALESCE($4, actual_delivery), updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to, actualDelivery)
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shipments WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check shipment: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", model.ErrShipmentNotFound, id)
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shipment: %w", err)
	}
	return nil
}
