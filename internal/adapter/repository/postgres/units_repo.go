package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/usecase"
)

// UnitsRepository implements usecase.UnitsRepository over the
// units_production table, one row per (asset, year, month).
type UnitsRepository struct {
	pool *pgxpool.Pool
}

// NewUnitsRepository creates a new UnitsRepository.
func NewUnitsRepository(pool *pgxpool.Pool) *UnitsRepository {
	return &UnitsRepository{pool: pool}
}

// Add accumulates units onto the period record and returns the period total.
func (r *UnitsRepository) Add(ctx context.Context, tx usecase.Transaction, assetID string, year, month int, units decimal.Decimal) (decimal.Decimal, error) {
	query := `
		INSERT INTO units_production (asset_id, period_year, period_month, units, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (asset_id, period_year, period_month)
		DO UPDATE SET units = units_production.units + EXCLUDED.units, updated_at = now()
		RETURNING units::text
	`

	var total string
	err := tx.(*Tx).PgxTx().QueryRow(ctx, query, assetID, year, month, units.String()).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	return textToDecimal(total), nil
}

// GetForPeriod returns the units recorded for the period, or nil when no
// record exists.
func (r *UnitsRepository) GetForPeriod(ctx context.Context, assetID string, year, month int) (*decimal.Decimal, error) {
	query := `
		SELECT units::text FROM units_production
		WHERE asset_id = $1 AND period_year = $2 AND period_month = $3
	`

	var units string
	err := r.pool.QueryRow(ctx, query, assetID, year, month).Scan(&units)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	d := textToDecimal(units)

	return &d, nil
}
