package repository

import (
	"context"
	"errors"
	"fmt"

	"supplychain-backend/internal/domains/order/model"
	"supplychain-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStatusConflict is returned when a status claim loses against a
// concurrent transition.
var ErrStatusConflict = errors.New("order status changed concurrently")

// RepositoryInterface is the data access contract for orders.
type RepositoryInterface interface {
	// Create persists the order, its items and the initial history entry in
	// one transaction.
	Create(ctx context.Context, order *model.Order, actor string) error

	// GetByID returns the order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	List(ctx context.Context, filter model.ListOrdersRequest) ([]model.Order, int, error)

	// ClaimStatus atomically moves the order from one status to another and
	// appends a history entry. ErrStatusConflict when the order is no longer
	// in the expected status.
	ClaimStatus(ctx context.Context, orderID uuid.UUID, from, to, actor string) error

	GetHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const orderColumns = `
	id, order_number, order_type, from_location_id, to_location_id,
	status, total_amount, created_at, updated_at
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.OrderType,
		&o.FromLocationID,
		&o.ToLocationID,
		&o.Status,
		&o.TotalAmount,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) Create(ctx context.Context, order *model.Order, actor string) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO orders (id, order_number, order_type, from_location_id, to_location_id, status, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			order.ID, order.OrderNumber, order.OrderType,
			order.FromLocationID, order.ToLocationID, order.Status, order.TotalAmount,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: %s", model.ErrDuplicateOrderNumber, order.OrderNumber)
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, product_id, quantity, price_at_time, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.PriceAtTime, item.Subtotal)
			if err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		return insertHistory(ctx, tx, order.ID, "", order.Status, actor)
	})
}

func insertHistory(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to, actor string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, actor)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), orderID, from, to, actor)
	if err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", model.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *postgresRepository) getItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_time, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.PriceAtTime, &item.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListOrdersRequest) ([]model.Order, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	addFilter := func(column string, value interface{}) {
		where += fmt.Sprintf(" AND %s = $%d", column, argNum)
		args = append(args, value)
		argNum++
	}

	if filter.OrderType != nil {
		addFilter("order_type", *filter.OrderType)
	}
	if filter.Status != nil {
		addFilter("status", *filter.Status)
	}
	if filter.FromLocationID != nil {
		addFilter("from_location_id", *filter.FromLocationID)
	}
	if filter.ToLocationID != nil {
		addFilter("to_location_id", *filter.ToLocationID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := "SELECT " + orderColumns + " FROM orders" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, total, rows.Err()
}

func (r *postgresRepository) ClaimStatus(ctx context.Context, orderID uuid.UUID, from, to, actor string) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders
			SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`, orderID, from, to)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check order: %w", err)
			}
			if !exists {
				return fmt.Errorf("%w: %s", model.ErrOrderNotFound, orderID)
			}
			return ErrStatusConflict
		}

		return insertHistory(ctx, tx, orderID, from, to, actor)
	})
}

func (r *postgresRepository) GetHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, from_status, to_status, actor, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	defer rows.Close()

	var history []model.OrderStatusHistory
	for rows.Next() {
		var h model.OrderStatusHistory
		err := rows.Scan(&h.ID, &h.OrderID, &h.FromStatus, &h.ToStatus, &h.Actor, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
