package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `
	id, run_id, asset_id, period_year, period_month, entry_date,
	category_name, method, amount::text,
	book_value_before::text, book_value_after::text,
	accumulated_before::text, accumulated_after::text,
	last_depreciation_before, expense_account_id, accumulated_account_id,
	status, skip_reason, created_at, updated_at
`

// Create inserts a new entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.DepreciationEntry) error {
	query := `
		INSERT INTO depreciation_entries (
			id, run_id, asset_id, period_year, period_month, entry_date,
			category_name, method, amount,
			book_value_before, book_value_after,
			accumulated_before, accumulated_after,
			last_depreciation_before, expense_account_id, accumulated_account_id,
			status, skip_reason, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		entry.ID,
		entry.RunID,
		entry.AssetID,
		entry.PeriodYear,
		entry.PeriodMonth,
		entry.EntryDate,
		entry.CategoryName,
		string(entry.Method),
		entry.Amount.String(),
		entry.BookValueBefore.String(),
		entry.BookValueAfter.String(),
		entry.AccumulatedBefore.String(),
		entry.AccumulatedAfter.String(),
		entry.LastDepreciationBefore,
		entry.ExpenseAccountID,
		entry.AccumulatedAccountID,
		string(entry.Status),
		entry.SkipReason,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	return err
}

// ListByRun retrieves every entry of a run, ordered by asset ID.
func (r *EntryRepository) ListByRun(ctx context.Context, runID string) ([]*domain.DepreciationEntry, error) {
	return r.listByRun(ctx, r.pool, runID, "")
}

// ListByRunForUpdate retrieves a run's entries with FOR UPDATE locks.
func (r *EntryRepository) ListByRunForUpdate(ctx context.Context, tx usecase.Transaction, runID string) ([]*domain.DepreciationEntry, error) {
	return r.listByRun(ctx, tx.(*Tx).PgxTx(), runID, " FOR UPDATE")
}

func (r *EntryRepository) listByRun(ctx context.Context, db dbtx, runID, locking string) ([]*domain.DepreciationEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM depreciation_entries WHERE run_id = $1 ORDER BY asset_id` + locking

	rows, err := db.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// UpdateStatus transitions one entry's status, optionally recording a skip
// reason.
func (r *EntryRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus, skipReason *string, updatedAt time.Time) error {
	query := `
		UPDATE depreciation_entries SET
			status = $2,
			skip_reason = COALESCE($3, skip_reason),
			updated_at = $4
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, string(status), skipReason, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// List retrieves entries matching the filter with the total count.
func (r *EntryRepository) List(ctx context.Context, filter usecase.EntryFilter) ([]*domain.DepreciationEntry, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filter.RunID != nil {
		args = append(args, *filter.RunID)
		where += fmt.Sprintf(` AND run_id = $%d`, len(args))
	}
	if filter.AssetID != nil {
		args = append(args, *filter.AssetID)
		where += fmt.Sprintf(` AND asset_id = $%d`, len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.PeriodYear != nil {
		args = append(args, *filter.PeriodYear)
		where += fmt.Sprintf(` AND period_year = $%d`, len(args))
	}
	if filter.PeriodMonth != nil {
		args = append(args, *filter.PeriodMonth)
		where += fmt.Sprintf(` AND period_month = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM depreciation_entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)

	query := `SELECT ` + entryColumns + ` FROM depreciation_entries` + where +
		fmt.Sprintf(` ORDER BY entry_date DESC, asset_id LIMIT $%d OFFSET $%d`, limitPos, limitPos+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func collectEntries(rows pgx.Rows) ([]*domain.DepreciationEntry, error) {
	var entries []*domain.DepreciationEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.DepreciationEntry, error) {
	var (
		entry       domain.DepreciationEntry
		method      string
		status      string
		amount      string
		bookBefore  string
		bookAfter   string
		accumBefore string
		accumAfter  string
	)

	err := row.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.AssetID,
		&entry.PeriodYear,
		&entry.PeriodMonth,
		&entry.EntryDate,
		&entry.CategoryName,
		&method,
		&amount,
		&bookBefore,
		&bookAfter,
		&accumBefore,
		&accumAfter,
		&entry.LastDepreciationBefore,
		&entry.ExpenseAccountID,
		&entry.AccumulatedAccountID,
		&status,
		&entry.SkipReason,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Method = domain.DepreciationMethod(method)
	entry.Status = domain.EntryStatus(status)
	entry.Amount = textToDecimal(amount)
	entry.BookValueBefore = textToDecimal(bookBefore)
	entry.BookValueAfter = textToDecimal(bookAfter)
	entry.AccumulatedBefore = textToDecimal(accumBefore)
	entry.AccumulatedAfter = textToDecimal(accumAfter)

	return &entry, nil
}
