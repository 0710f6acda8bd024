package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
)

// RunRepository implements usecase.RunRepository.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

const runColumns = `
	id, run_number, period_year, period_month, category_id, department_id,
	status, assets_processed, assets_skipped, total_depreciation::text, errors,
	posted_at, posted_by, reversal_reason, reversed_by, reversed_at,
	created_by, created_at, updated_at
`

// Create inserts a new run. The partial unique index on non-cancelled runs
// reserves the period+scope slot; a violation maps to ErrRunAlreadyExists.
func (r *RunRepository) Create(ctx context.Context, tx usecase.Transaction, run *domain.DepreciationRun) error {
	query := `
		INSERT INTO depreciation_runs (
			id, run_number, period_year, period_month, category_id, department_id,
			status, assets_processed, assets_skipped, total_depreciation, errors,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		run.ID,
		run.RunNumber,
		run.PeriodYear,
		run.PeriodMonth,
		run.CategoryID,
		run.DepartmentID,
		string(run.Status),
		run.AssetsProcessed,
		run.AssetsSkipped,
		run.TotalDepreciation.String(),
		run.Errors,
		run.CreatedBy,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrRunAlreadyExists
	}

	return err
}

// Update persists run status, counters and lifecycle fields.
func (r *RunRepository) Update(ctx context.Context, tx usecase.Transaction, run *domain.DepreciationRun) error {
	query := `
		UPDATE depreciation_runs SET
			status = $2,
			assets_processed = $3,
			assets_skipped = $4,
			total_depreciation = $5,
			errors = $6,
			posted_at = $7,
			posted_by = $8,
			reversal_reason = $9,
			reversed_by = $10,
			reversed_at = $11,
			updated_at = $12
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		run.ID,
		string(run.Status),
		run.AssetsProcessed,
		run.AssetsSkipped,
		run.TotalDepreciation.String(),
		run.Errors,
		run.PostedAt,
		run.PostedBy,
		run.ReversalReason,
		run.ReversedBy,
		run.ReversedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}

	return nil
}

// GetByID retrieves a run by ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.DepreciationRun, error) {
	query := `SELECT ` + runColumns + ` FROM depreciation_runs WHERE id = $1`

	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a run by ID with a FOR UPDATE lock.
func (r *RunRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.DepreciationRun, error) {
	query := `SELECT ` + runColumns + ` FROM depreciation_runs WHERE id = $1 FOR UPDATE`

	return scanRun(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// ExistsForScope reports whether a non-cancelled run occupies the slot.
func (r *RunRepository) ExistsForScope(ctx context.Context, year, month int, categoryID, departmentID *string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM depreciation_runs
			WHERE period_year = $1 AND period_month = $2
			  AND category_id IS NOT DISTINCT FROM $3
			  AND department_id IS NOT DISTINCT FROM $4
			  AND status <> 'cancelled'
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, year, month, categoryID, departmentID).Scan(&exists)

	return exists, err
}

// List retrieves runs matching the filter, newest first, with the total count.
func (r *RunRepository) List(ctx context.Context, filter usecase.RunFilter) ([]*domain.DepreciationRun, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filter.PeriodYear != nil {
		args = append(args, *filter.PeriodYear)
		where += fmt.Sprintf(` AND period_year = $%d`, len(args))
	}
	if filter.PeriodMonth != nil {
		args = append(args, *filter.PeriodMonth)
		where += fmt.Sprintf(` AND period_month = $%d`, len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM depreciation_runs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)

	query := `SELECT ` + runColumns + ` FROM depreciation_runs` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, limitPos, limitPos+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*domain.DepreciationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}

	return runs, total, rows.Err()
}

func scanRun(row pgx.Row) (*domain.DepreciationRun, error) {
	var (
		run    domain.DepreciationRun
		status string
		total  string
	)

	err := row.Scan(
		&run.ID,
		&run.RunNumber,
		&run.PeriodYear,
		&run.PeriodMonth,
		&run.CategoryID,
		&run.DepartmentID,
		&status,
		&run.AssetsProcessed,
		&run.AssetsSkipped,
		&total,
		&run.Errors,
		&run.PostedAt,
		&run.PostedBy,
		&run.ReversalReason,
		&run.ReversedBy,
		&run.ReversedAt,
		&run.CreatedBy,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	run.TotalDepreciation = textToDecimal(total)

	return &run, nil
}
