package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RunStatus string

const (
	RunStatusDraft      RunStatus = "draft"
	RunStatusCalculated RunStatus = "calculated"
	RunStatusPosted     RunStatus = "posted"
	RunStatusCancelled  RunStatus = "cancelled"
)

// RunNumber derives the human-readable run identifier for a period.
func RunNumber(year, month int) string {
	return fmt.Sprintf("DEP-%d-%02d", year, month)
}

// ValidatePeriod checks a target year/month combination.
func ValidatePeriod(year, month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidPeriod
	}
	if year < 1900 || year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, year)
	}
	return nil
}

// DepreciationRun is one batch depreciation computation for a year/month and
// optional category/department scope. Entries are generated eagerly at
// creation; posting commits them into the assets' permanent state.
type DepreciationRun struct {
	ID          string
	RunNumber   string
	PeriodYear  int
	PeriodMonth int

	CategoryID   *string
	DepartmentID *string

	Status            RunStatus
	AssetsProcessed   int
	AssetsSkipped     int
	TotalDepreciation decimal.Decimal
	Errors            []string

	PostedAt *time.Time
	PostedBy *string

	ReversalReason *string
	ReversedBy     *string
	ReversedAt     *time.Time

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanPost guards the CALCULATED -> POSTED transition.
func (r *DepreciationRun) CanPost() error {
	if r.Status != RunStatusCalculated {
		return fmt.Errorf("%w: cannot post a %s run", ErrInvalidRunStatus, r.Status)
	}
	if !r.TotalDepreciation.IsPositive() {
		return ErrZeroTotalRun
	}
	return nil
}

// CanCancel guards cancellation. Posted runs must be reversed instead.
func (r *DepreciationRun) CanCancel() error {
	if r.Status == RunStatusPosted {
		return fmt.Errorf("%w: posted runs must be reversed, not cancelled", ErrInvalidRunStatus)
	}
	if r.Status == RunStatusCancelled {
		return fmt.Errorf("%w: run is already cancelled", ErrInvalidRunStatus)
	}
	return nil
}

// CanReverse guards reversal. Only posted runs carry asset mutations to undo.
func (r *DepreciationRun) CanReverse() error {
	if r.Status != RunStatusPosted {
		return fmt.Errorf("%w: cannot reverse a %s run", ErrInvalidRunStatus, r.Status)
	}
	return nil
}

// PeriodEnd is the last day of the run's period, used as the entry date.
func (r *DepreciationRun) PeriodEnd() time.Time {
	return time.Date(r.PeriodYear, time.Month(r.PeriodMonth)+1, 0, 0, 0, 0, 0, time.UTC)
}

type EntryStatus string

const (
	EntryStatusCalculated EntryStatus = "calculated"
	EntryStatusPosted     EntryStatus = "posted"
	EntryStatusSkipped    EntryStatus = "skipped"
	EntryStatusReversed   EntryStatus = "reversed"
)

// DepreciationEntry is the per-asset result of a run: either a computed
// amount with full before/after state for audit, or a skip with reason.
// Category name and method are denormalized so the audit trail survives later
// asset changes. Entries are immutable once posted except for the transition
// to reversed.
type DepreciationEntry struct {
	ID          string
	RunID       string
	AssetID     string
	PeriodYear  int
	PeriodMonth int
	EntryDate   time.Time

	CategoryName string
	Method       DepreciationMethod

	Amount            decimal.Decimal
	BookValueBefore   decimal.Decimal
	BookValueAfter    decimal.Decimal
	AccumulatedBefore decimal.Decimal
	AccumulatedAfter  decimal.Decimal

	// LastDepreciationBefore preserves the asset's prior last-depreciation
	// date so a reversal can restore it exactly.
	LastDepreciationBefore *time.Time

	ExpenseAccountID     *string
	AccumulatedAccountID *string

	Status     EntryStatus
	SkipReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Skipped reports whether the entry carries no depreciation.
func (e *DepreciationEntry) Skipped() bool {
	return e.Status == EntryStatusSkipped
}

// FlippedFullyDepreciated reports whether this entry is the one that brought
// the asset's book value down to salvage. Used by reversal to know when to
// un-flip the asset back to active.
func (e *DepreciationEntry) FlippedFullyDepreciated(salvage decimal.Decimal) bool {
	return e.BookValueAfter.LessThanOrEqual(salvage) && e.BookValueBefore.GreaterThan(salvage)
}
