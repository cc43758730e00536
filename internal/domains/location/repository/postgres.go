package repository

import (
	"context"
	"errors"
	"fmt"

	"supplychain-backend/internal/domains/location/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface is the data access contract for locations.
type RepositoryInterface interface {
	Create(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	Update(ctx context.Context, loc *model.Location) error
	List(ctx context.Context, filter model.ListLocationFilter) ([]model.Location, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const locationColumns = `
	id, company_id, name, code, kind, is_active, created_at, updated_at
`

func scanLocation(row pgx.Row) (*model.Location, error) {
	var loc model.Location
	err := row.Scan(
		&loc.ID,
		&loc.CompanyID,
		&loc.Name,
		&loc.Code,
		&loc.Kind,
		&loc.IsActive,
		&loc.CreatedAt,
		&loc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *postgresRepository) Create(ctx context.Context, loc *model.Location) error {
	query := `
		INSERT INTO locations (id, company_id, name, code, kind, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		loc.ID, loc.CompanyID, loc.Name, loc.Code, loc.Kind, loc.IsActive,
	).Scan(&loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", model.ErrDuplicateCode, loc.Code)
		}
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE id = $1
	`

	loc, err := scanLocation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", model.ErrLocationNotFound, id)
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return loc, nil
}

func (r *postgresRepository) Update(ctx context.Context, loc *model.Location) error {
	query := `
		UPDATE locations
		SET name = $2, is_active = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, loc.ID, loc.Name, loc.IsActive).Scan(&loc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", model.ErrLocationNotFound, loc.ID)
		}
		return fmt.Errorf("failed to update location: %w", err)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListLocationFilter) ([]model.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.CompanyID != nil {
		query += fmt.Sprintf(" AND company_id = $%d", argNum)
		args = append(args, *filter.CompanyID)
		argNum++
	}
	if filter.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, *filter.Kind)
		argNum++
	}
	if filter.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argNum)
		args = append(args, *filter.IsActive)
		argNum++
	}
	query += " ORDER BY created_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, *loc)
	}
	return locations, rows.Err()
}
