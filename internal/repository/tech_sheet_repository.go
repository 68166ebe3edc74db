package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/vehicle-pricing/internal/domain"
)

// TechSheetRepository persists generated technical sheets.
type TechSheetRepository interface {
	Get(ctx context.Context, key string) (domain.TechSheet, bool, error)
	Save(ctx context.Context, sheet domain.TechSheet) error
}

type techSheetRepository struct {
	pool *pgxpool.Pool
}

// NewTechSheetRepository returns a Postgres-backed implementation.
func NewTechSheetRepository(pool *pgxpool.Pool) TechSheetRepository {
	return &techSheetRepository{pool: pool}
}

func (r *techSheetRepository) Get(ctx context.Context, key string) (domain.TechSheet, bool, error) {
	const query = `
        SELECT cache_key, fipe_code, model_year, brand, model, sheet, model_name, created_at, updated_at
        FROM tech_sheets WHERE cache_key=$1`

	var sheet domain.TechSheet
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&sheet.Key,
		&sheet.FipeCode,
		&sheet.ModelYear,
		&sheet.Brand,
		&sheet.Model,
		&sheet.Sheet,
		&sheet.ModelName,
		&sheet.CreatedAt,
		&sheet.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TechSheet{}, false, nil
	}
	if err != nil {
		return domain.TechSheet{}, false, err
	}
	return sheet, true, nil
}

// Save inserts the sheet or replaces the one stored under the same key.
func (r *techSheetRepository) Save(ctx context.Context, sheet domain.TechSheet) error {
	const query = `
        INSERT INTO tech_sheets (cache_key, fipe_code, model_year, brand, model, sheet, model_name)
        VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
        ON CONFLICT (cache_key) DO UPDATE SET
            sheet=EXCLUDED.sheet, model_name=EXCLUDED.model_name, updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query,
		sheet.Key,
		sheet.FipeCode,
		sheet.ModelYear,
		sheet.Brand,
		sheet.Model,
		string(sheet.Sheet),
		sheet.ModelName,
	)
	return err
}
