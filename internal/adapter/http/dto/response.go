package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
)

// RunResponse represents a depreciation run in API responses.
type RunResponse struct {
	ID                string          `json:"id"`
	RunNumber         string          `json:"run_number"`
	PeriodYear        int             `json:"period_year"`
	PeriodMonth       int             `json:"period_month"`
	CategoryID        *string         `json:"category_id,omitempty"`
	DepartmentID      *string         `json:"department_id,omitempty"`
	Status            string          `json:"status"`
	AssetsProcessed   int             `json:"assets_processed"`
	AssetsSkipped     int             `json:"assets_skipped"`
	TotalDepreciation decimal.Decimal `json:"total_depreciation"`
	Errors            []string        `json:"errors,omitempty"`
	PostedAt          *time.Time      `json:"posted_at,omitempty"`
	PostedBy          *string         `json:"posted_by,omitempty"`
	ReversalReason    *string         `json:"reversal_reason,omitempty"`
	ReversedBy        *string         `json:"reversed_by,omitempty"`
	ReversedAt        *time.Time      `json:"reversed_at,omitempty"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// RunFromDomain converts a domain run to a response.
func RunFromDomain(r *domain.DepreciationRun) *RunResponse {
	return &RunResponse{
		ID:                r.ID,
		RunNumber:         r.RunNumber,
		PeriodYear:        r.PeriodYear,
		PeriodMonth:       r.PeriodMonth,
		CategoryID:        r.CategoryID,
		DepartmentID:      r.DepartmentID,
		Status:            string(r.Status),
		AssetsProcessed:   r.AssetsProcessed,
		AssetsSkipped:     r.AssetsSkipped,
		TotalDepreciation: r.TotalDepreciation,
		Errors:            r.Errors,
		PostedAt:          r.PostedAt,
		PostedBy:          r.PostedBy,
		ReversalReason:    r.ReversalReason,
		ReversedBy:        r.ReversedBy,
		ReversedAt:        r.ReversedAt,
		CreatedBy:         r.CreatedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// RunsFromDomain converts domain runs to responses.
func RunsFromDomain(runs []*domain.DepreciationRun) []*RunResponse {
	result := make([]*RunResponse, len(runs))
	for i, r := range runs {
		result[i] = RunFromDomain(r)
	}
	return result
}

// RunListResponse wraps a page of runs with the total match count.
type RunListResponse struct {
	Runs  []*RunResponse `json:"runs"`
	Total int            `json:"total"`
}

// EntryResponse represents a depreciation entry in API responses.
type EntryResponse struct {
	ID                   string          `json:"id"`
	RunID                string          `json:"run_id"`
	AssetID              string          `json:"asset_id"`
	PeriodYear           int             `json:"period_year"`
	PeriodMonth          int             `json:"period_month"`
	EntryDate            time.Time       `json:"entry_date"`
	CategoryName         string          `json:"category_name"`
	Method               string          `json:"method"`
	Amount               decimal.Decimal `json:"amount"`
	BookValueBefore      decimal.Decimal `json:"book_value_before"`
	BookValueAfter       decimal.Decimal `json:"book_value_after"`
	AccumulatedBefore    decimal.Decimal `json:"accumulated_before"`
	AccumulatedAfter     decimal.Decimal `json:"accumulated_after"`
	ExpenseAccountID     *string         `json:"expense_account_id,omitempty"`
	AccumulatedAccountID *string         `json:"accumulated_account_id,omitempty"`
	Status               string          `json:"status"`
	SkipReason           *string         `json:"skip_reason,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.DepreciationEntry) *EntryResponse {
	return &EntryResponse{
		ID:                   e.ID,
		RunID:                e.RunID,
		AssetID:              e.AssetID,
		PeriodYear:           e.PeriodYear,
		PeriodMonth:          e.PeriodMonth,
		EntryDate:            e.EntryDate,
		CategoryName:         e.CategoryName,
		Method:               string(e.Method),
		Amount:               e.Amount,
		BookValueBefore:      e.BookValueBefore,
		BookValueAfter:       e.BookValueAfter,
		AccumulatedBefore:    e.AccumulatedBefore,
		AccumulatedAfter:     e.AccumulatedAfter,
		ExpenseAccountID:     e.ExpenseAccountID,
		AccumulatedAccountID: e.AccumulatedAccountID,
		Status:               string(e.Status),
		SkipReason:           e.SkipReason,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.DepreciationEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// EntryListResponse wraps a page of entries with the total match count.
type EntryListResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int              `json:"total"`
}

// PreviewResponse represents a dry-run projection for a period.
type PreviewResponse struct {
	PeriodYear        int                     `json:"period_year"`
	PeriodMonth       int                     `json:"period_month"`
	TotalDepreciation decimal.Decimal         `json:"total_depreciation"`
	Entries           []*usecase.EntryPreview `json:"entries"`
}

// PreviewFromUseCase assembles the preview response, totalling the
// non-skipped entries.
func PreviewFromUseCase(year, month int, previews []*usecase.EntryPreview) *PreviewResponse {
	total := decimal.Zero
	for _, p := range previews {
		if p.SkipReason == nil {
			total = total.Add(p.Amount)
		}
	}
	return &PreviewResponse{
		PeriodYear:        year,
		PeriodMonth:       month,
		TotalDepreciation: total,
		Entries:           previews,
	}
}

// AssetResponse represents an asset in API responses.
type AssetResponse struct {
	ID                      string           `json:"id"`
	Name                    string           `json:"name"`
	CategoryID              string           `json:"category_id"`
	DepartmentID            *string          `json:"department_id,omitempty"`
	TotalCost               decimal.Decimal  `json:"total_cost"`
	SalvageValue            decimal.Decimal  `json:"salvage_value"`
	UsefulLifeMonths        int              `json:"useful_life_months"`
	Method                  string           `json:"method"`
	DecliningRate           *decimal.Decimal `json:"declining_rate,omitempty"`
	TotalEstimatedUnits     *decimal.Decimal `json:"total_estimated_units,omitempty"`
	UnitsProducedToDate     decimal.Decimal  `json:"units_produced_to_date"`
	AccumulatedDepreciation decimal.Decimal  `json:"accumulated_depreciation"`
	BookValue               decimal.Decimal  `json:"book_value"`
	DepreciationStartDate   *time.Time       `json:"depreciation_start_date,omitempty"`
	LastDepreciationDate    *time.Time       `json:"last_depreciation_date,omitempty"`
	DepreciationSuspended   bool             `json:"depreciation_suspended"`
	SuspensionReason        *string          `json:"suspension_reason,omitempty"`
	IsFullyDepreciated      bool             `json:"is_fully_depreciated"`
	FullyDepreciatedDate    *time.Time       `json:"fully_depreciated_date,omitempty"`
	Status                  string           `json:"status"`
}

// AssetFromDomain converts a domain asset to a response.
func AssetFromDomain(a *domain.Asset) *AssetResponse {
	return &AssetResponse{
		ID:                      a.ID,
		Name:                    a.Name,
		CategoryID:              a.CategoryID,
		DepartmentID:            a.DepartmentID,
		TotalCost:               a.TotalCost,
		SalvageValue:            a.SalvageValue,
		UsefulLifeMonths:        a.UsefulLifeMonths,
		Method:                  string(a.Method),
		DecliningRate:           a.DecliningRate,
		TotalEstimatedUnits:     a.TotalEstimatedUnits,
		UnitsProducedToDate:     a.UnitsProducedToDate,
		AccumulatedDepreciation: a.AccumulatedDepreciation,
		BookValue:               a.BookValue,
		DepreciationStartDate:   a.DepreciationStartDate,
		LastDepreciationDate:    a.LastDepreciationDate,
		DepreciationSuspended:   a.DepreciationSuspended,
		SuspensionReason:        a.SuspensionReason,
		IsFullyDepreciated:      a.IsFullyDepreciated,
		FullyDepreciatedDate:    a.FullyDepreciatedDate,
		Status:                  string(a.Status),
	}
}

// SchedulePeriodResponse represents one projected month in a schedule.
type SchedulePeriodResponse struct {
	Sequence          int             `json:"sequence"`
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	PeriodStart       time.Time       `json:"period_start"`
	PeriodEnd         time.Time       `json:"period_end"`
	Amount            decimal.Decimal `json:"amount"`
	BookValueBefore   decimal.Decimal `json:"book_value_before"`
	BookValueAfter    decimal.Decimal `json:"book_value_after"`
	AccumulatedBefore decimal.Decimal `json:"accumulated_before"`
	AccumulatedAfter  decimal.Decimal `json:"accumulated_after"`
	IsFinalPeriod     bool            `json:"is_final_period"`
}

// ScheduleResponse wraps a full projected schedule for an asset.
type ScheduleResponse struct {
	AssetID string                    `json:"asset_id"`
	Periods []*SchedulePeriodResponse `json:"periods"`
}

// ScheduleFromDomain converts a projected schedule to a response.
func ScheduleFromDomain(assetID string, periods []domain.SchedulePeriod) *ScheduleResponse {
	result := make([]*SchedulePeriodResponse, len(periods))
	for i, p := range periods {
		result[i] = &SchedulePeriodResponse{
			Sequence:          p.Sequence,
			Year:              p.Year,
			Month:             p.Month,
			PeriodStart:       p.PeriodStart,
			PeriodEnd:         p.PeriodEnd,
			Amount:            p.Amount,
			BookValueBefore:   p.BookValueBefore,
			BookValueAfter:    p.BookValueAfter,
			AccumulatedBefore: p.AccumulatedBefore,
			AccumulatedAfter:  p.AccumulatedAfter,
			IsFinalPeriod:     p.IsFinalPeriod,
		}
	}
	return &ScheduleResponse{AssetID: assetID, Periods: result}
}

// RecordUnitsResponse represents the totals after a units recording.
type RecordUnitsResponse struct {
	AssetID     string          `json:"asset_id"`
	PeriodYear  int             `json:"period_year"`
	PeriodMonth int             `json:"period_month"`
	PeriodUnits decimal.Decimal `json:"period_units"`
	TotalUnits  decimal.Decimal `json:"total_units"`
}

// RecordUnitsFromResult converts a use case result to a response.
func RecordUnitsFromResult(r *usecase.RecordUnitsResult) *RecordUnitsResponse {
	return &RecordUnitsResponse{
		AssetID:     r.AssetID,
		PeriodYear:  r.PeriodYear,
		PeriodMonth: r.PeriodMonth,
		PeriodUnits: r.PeriodUnits,
		TotalUnits:  r.TotalUnits,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
