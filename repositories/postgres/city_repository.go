package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/repositories"
	"go.uber.org/zap"
)

const cityColumns = `id, lat_d, ns, long_d, ew, city, state, created_at, updated_at`

// CityRepository implements the repositories.CityRepository interface
type CityRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCityRepository creates a new city repository
func NewCityRepository(db *DB, logger *zap.Logger) repositories.CityRepository {
	return &CityRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a city and stores the generated ID on it
func (r *CityRepository) Create(ctx context.Context, city *models.City) error {
	query := `
		INSERT INTO cities (lat_d, ns, long_d, ew, city, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		city.LatD,
		city.NS,
		city.LongD,
		city.EW,
		city.Name,
		city.State,
		city.CreatedAt,
		city.UpdatedAt,
	).Scan(&city.ID)
	if err != nil {
		return fmt.Errorf("failed to create city: %w", err)
	}

	r.logger.Debug("city created", zap.Int64("id", city.ID), zap.String("city", city.Name))
	return nil
}

// CreateBatch inserts cities one by one on the executor carried by ctx.
// Callers wanting all-or-nothing semantics run it inside a transaction.
func (r *CityRepository) CreateBatch(ctx context.Context, cities []*models.City) error {
	for i, city := range cities {
		if err := r.Create(ctx, city); err != nil {
			return fmt.Errorf("batch row %d: %w", i, err)
		}
	}
	return nil
}

// GetByID retrieves a city by ID
func (r *CityRepository) GetByID(ctx context.Context, id int64) (*models.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	city, err := scanCity(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("city %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}

	return city, nil
}

// List returns every city ordered by ID
func (r *CityRepository) List(ctx context.Context) ([]*models.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities ORDER BY id`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	cities := make([]*models.City, 0)
	for rows.Next() {
		city, err := scanCity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cities: %w", err)
	}

	return cities, nil
}

// Count returns the number of stored cities
func (r *CityRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM cities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cities: %w", err)
	}
	return n, nil
}

// Update replaces the mutable fields of a city
func (r *CityRepository) Update(ctx context.Context, city *models.City) error {
	query := `
		UPDATE cities
		SET lat_d = $2, ns = $3, long_d = $4, ew = $5, city = $6, state = $7, updated_at = $8
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		city.ID,
		city.LatD,
		city.NS,
		city.LongD,
		city.EW,
		city.Name,
		city.State,
		city.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update city: %w", err)
	}

	if err := expectAffected(result, "city", city.ID); err != nil {
		return err
	}

	r.logger.Debug("city updated", zap.Int64("id", city.ID))
	return nil
}

// Delete deletes a city
func (r *CityRepository) Delete(ctx context.Context, id int64) error {
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM cities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete city: %w", err)
	}

	if err := expectAffected(result, "city", id); err != nil {
		return err
	}

	r.logger.Debug("city deleted", zap.Int64("id", id))
	return nil
}

func scanCity(row rowScanner) (*models.City, error) {
	city := &models.City{}
	err := row.Scan(
		&city.ID,
		&city.LatD,
		&city.NS,
		&city.LongD,
		&city.EW,
		&city.Name,
		&city.State,
		&city.CreatedAt,
		&city.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return city, nil
}
