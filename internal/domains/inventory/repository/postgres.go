package repository

import (
	"context"
	"errors"
	"fmt"

	"supplychain-backend/internal/domains/inventory/model"
	"supplychain-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresRepository implements RepositoryInterface on pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const inventoryColumns = `
	id, product_id, location_id, total_stock, reserved_stock,
	reorder_level, version, updated_at
`

func scanInventory(row pgx.Row) (*model.Inventory, error) {
	var inv model.Inventory
	err := row.Scan(
		&inv.ID,
		&inv.ProductID,
		&inv.LocationID,
		&inv.TotalStock,
		&inv.ReservedStock,
		&inv.ReorderLevel,
		&inv.Version,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Get implements RepositoryInterface.Get
func (r *postgresRepository) Get(ctx context.Context, productID, locationID uuid.UUID) (*model.Inventory, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventories
		WHERE product_id = $1 AND location_id = $2
	`

	inv, err := scanInventory(r.pool.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewRecordNotFoundError(productID, locationID)
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}

	return inv, nil
}

// List implements RepositoryInterface.List
func (r *postgresRepository) List(ctx context.Context, filter model.ListInventoryRequest) ([]model.Inventory, int, error) {
	queryBuilder := `
		SELECT ` + inventoryColumns + `
		FROM inventories
		WHERE 1=1
	`
	countQuery := "SELECT COUNT(*) FROM inventories WHERE 1=1"

	args := []interface{}{}
	argCount := 1

	if filter.ProductID != nil {
		queryBuilder += fmt.Sprintf(" AND product_id = $%d", argCount)
		countQuery += fmt.Sprintf(" AND product_id = $%d", argCount)
		args = append(args, *filter.ProductID)
		argCount++
	}

	if filter.LocationID != nil {
		queryBuilder += fmt.Sprintf(" AND location_id = $%d", argCount)
		countQuery += fmt.Sprintf(" AND location_id = $%d", argCount)
		args = append(args, *filter.LocationID)
		argCount++
	}

	if filter.LowStock != nil {
		if *filter.LowStock {
			queryBuilder += " AND total_stock - reserved_stock < reorder_level"
			countQuery += " AND total_stock - reserved_stock < reorder_level"
		} else {
			queryBuilder += " AND total_stock - reserved_stock >= reorder_level"
			countQuery += " AND total_stock - reserved_stock >= reorder_level"
		}
	}

	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count inventories: %w", err)
	}

	queryBuilder += " ORDER BY updated_at DESC, id ASC"
	offset := (filter.Page - 1) * filter.Limit
	queryBuilder += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, queryBuilder, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inventories: %w", err)
	}
	defer rows.Close()

	records := make([]model.Inventory, 0, filter.Limit)
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		records = append(records, *inv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating inventory rows: %w", err)
	}

	return records, totalCount, nil
}

// ApplyChange implements RepositoryInterface.ApplyChange
//
// Record updates re-lock the row with FOR UPDATE and check the version read
// by the service; the service already serializes per key, so a mismatch means
// an out-of-band writer and the whole change rolls back.
func (r *postgresRepository) ApplyChange(ctx context.Context, change *model.StockChange) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for _, rec := range change.Records {
			if rec.Version == 0 {
				if err := r.insertRecord(ctx, tx, rec); err != nil {
					return err
				}
				continue
			}
			if err := r.updateRecord(ctx, tx, rec); err != nil {
				return err
			}
		}

		for _, m := range change.Movements {
			if err := r.insertMovement(ctx, tx, m); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *postgresRepository) insertRecord(ctx context.Context, tx pgx.Tx, rec *model.Inventory) error {
	query := `
		INSERT INTO inventories (
			id, product_id, location_id, total_stock, reserved_stock,
			reorder_level, version, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 1, NOW())
		RETURNING version, updated_at
	`

	err := tx.QueryRow(ctx, query,
		rec.ID,
		rec.ProductID,
		rec.LocationID,
		rec.TotalStock,
		rec.ReservedStock,
		rec.ReorderLevel,
	).Scan(&rec.Version, &rec.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrConcurrentUpdate
		}
		return fmt.Errorf("failed to insert inventory: %w", err)
	}

	return nil
}

func (r *postgresRepository) updateRecord(ctx context.Context, tx pgx.Tx, rec *model.Inventory) error {
	lockQuery := `
		SELECT version FROM inventories
		WHERE id = $1
		FOR UPDATE
	`

	var current int
	if err := tx.QueryRow(ctx, lockQuery, rec.ID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewRecordNotFoundError(rec.ProductID, rec.LocationID)
		}
		return fmt.Errorf("failed to lock inventory: %w", err)
	}

	if current != rec.Version {
		return model.ErrConcurrentUpdate
	}

	updateQuery := `
		UPDATE inventories
		SET
			total_stock = $2,
			reserved_stock = $3,
			reorder_level = $4,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING version, updated_at
	`

	err := tx.QueryRow(ctx, updateQuery,
		rec.ID,
		rec.TotalStock,
		rec.ReservedStock,
		rec.ReorderLevel,
	).Scan(&rec.Version, &rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}

	return nil
}

func (r *postgresRepository) insertMovement(ctx context.Context, tx pgx.Tx, m *model.Movement) error {
	query := `
		INSERT INTO inventory_movements (
			id, product_id, from_location_id, to_location_id,
			quantity, movement_type, order_id, actor, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		m.ID,
		m.ProductID,
		m.FromLocationID,
		m.ToLocationID,
		m.Quantity,
		m.MovementType,
		m.OrderID,
		m.Actor,
		m.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	return nil
}

// ListMovements implements RepositoryInterface.ListMovements
func (r *postgresRepository) ListMovements(ctx context.Context, filter model.ListMovementsRequest) ([]model.Movement, int, error) {
	queryBuilder := `
		SELECT
			id, product_id, from_location_id, to_location_id,
			quantity, movement_type, order_id, actor, created_at
		FROM inventory_movements
		WHERE 1=1
	`
	countQuery := "SELECT COUNT(*) FROM inventory_movements WHERE 1=1"

	args := []interface{}{}
	argCount := 1

	if filter.ProductID != nil {
		queryBuilder += fmt.Sprintf(" AND product_id = $%d", argCount)
		countQuery += fmt.Sprintf(" AND product_id = $%d", argCount)
		args = append(args, *filter.ProductID)
		argCount++
	}

	if filter.LocationID != nil {
		clause := fmt.Sprintf(" AND (from_location_id = $%d OR to_location_id = $%d)", argCount, argCount)
		queryBuilder += clause
		countQuery += clause
		args = append(args, *filter.LocationID)
		argCount++
	}

	if filter.MovementType != nil {
		queryBuilder += fmt.Sprintf(" AND movement_type = $%d", argCount)
		countQuery += fmt.Sprintf(" AND movement_type = $%d", argCount)
		args = append(args, *filter.MovementType)
		argCount++
	}

	if filter.OrderID != nil {
		queryBuilder += fmt.Sprintf(" AND order_id = $%d", argCount)
		countQuery += fmt.Sprintf(" AND order_id = $%d", argCount)
		args = append(args, *filter.OrderID)
		argCount++
	}

	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	queryBuilder += " ORDER BY created_at DESC, id ASC"
	offset := (filter.Page - 1) * filter.Limit
	queryBuilder += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, queryBuilder, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	movements := make([]model.Movement, 0, filter.Limit)
	for rows.Next() {
		var m model.Movement
		err := rows.Scan(
			&m.ID,
			&m.ProductID,
			&m.FromLocationID,
			&m.ToLocationID,
			&m.Quantity,
			&m.MovementType,
			&m.OrderID,
			&m.Actor,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating movements: %w", err)
	}

	return movements, totalCount, nil
}
