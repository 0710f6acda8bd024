package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
)

// AssetRepository implements usecase.AssetRepository.
type AssetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

const assetColumns = `
	id, name, category_id, department_id,
	total_cost::text, salvage_value::text, useful_life_months,
	method, declining_rate::text, total_estimated_units::text, units_produced_to_date::text,
	accumulated_depreciation::text, book_value::text,
	acquired_at, depreciation_start_date, last_depreciation_date,
	depreciation_suspended, suspension_reason,
	is_fully_depreciated, fully_depreciated_date,
	status, created_at, updated_at
`

// GetByID retrieves an asset by ID.
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	return scanAsset(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an asset by ID with a FOR UPDATE lock.
func (r *AssetRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 FOR UPDATE`

	return scanAsset(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// ListEligible retrieves active, unsuspended, not fully depreciated assets in
// the given scope. Ordered by ID so run entry generation is deterministic.
func (r *AssetRepository) ListEligible(ctx context.Context, filter usecase.EligibleAssetFilter) ([]*domain.Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE status = 'active'
		  AND NOT is_fully_depreciated
		  AND NOT depreciation_suspended
		  AND ($1::text IS NULL OR category_id = $1)
		  AND ($2::text IS NULL OR department_id = $2)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, filter.CategoryID, filter.DepartmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	return assets, rows.Err()
}

// UpdateDepreciationState applies a posting or reversal to the asset's
// depreciation fields. Nothing else on the asset row is touched.
func (r *AssetRepository) UpdateDepreciationState(ctx context.Context, tx usecase.Transaction, state usecase.AssetDepreciationState) error {
	query := `
		UPDATE assets SET
			accumulated_depreciation = $2,
			book_value = $3,
			last_depreciation_date = $4,
			is_fully_depreciated = $5,
			fully_depreciated_date = $6,
			status = $7,
			updated_at = $8
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		state.AssetID,
		state.AccumulatedDepreciation.String(),
		state.BookValue.String(),
		state.LastDepreciationDate,
		state.IsFullyDepreciated,
		state.FullyDepreciatedDate,
		string(state.Status),
		state.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssetNotFound
	}

	return nil
}

// UpdateUnitsProduced sets the asset's lifetime units counter.
func (r *AssetRepository) UpdateUnitsProduced(ctx context.Context, tx usecase.Transaction, assetID string, total decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE assets SET units_produced_to_date = $2, updated_at = $3 WHERE id = $1`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, assetID, total.String(), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssetNotFound
	}

	return nil
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var (
		asset         domain.Asset
		method        string
		status        string
		cost          string
		salvage       string
		decliningRate *string
		estimated     *string
		unitsToDate   string
		accumulated   string
		bookValue     string
	)

	err := row.Scan(
		&asset.ID,
		&asset.Name,
		&asset.CategoryID,
		&asset.DepartmentID,
		&cost,
		&salvage,
		&asset.UsefulLifeMonths,
		&method,
		&decliningRate,
		&estimated,
		&unitsToDate,
		&accumulated,
		&bookValue,
		&asset.AcquiredAt,
		&asset.DepreciationStartDate,
		&asset.LastDepreciationDate,
		&asset.DepreciationSuspended,
		&asset.SuspensionReason,
		&asset.IsFullyDepreciated,
		&asset.FullyDepreciatedDate,
		&status,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, err
	}

	asset.Method = domain.DepreciationMethod(method)
	asset.Status = domain.AssetStatus(status)
	asset.TotalCost = textToDecimal(cost)
	asset.SalvageValue = textToDecimal(salvage)
	asset.DecliningRate = textPtrToDecimalPtr(decliningRate)
	asset.TotalEstimatedUnits = textPtrToDecimalPtr(estimated)
	asset.UnitsProducedToDate = textToDecimal(unitsToDate)
	asset.AccumulatedDepreciation = textToDecimal(accumulated)
	asset.BookValue = textToDecimal(bookValue)

	return &asset, nil
}
