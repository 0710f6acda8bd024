package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Skip reasons recorded on entries that were not calculated.
const (
	SkipReasonFullyDepreciated = "asset is fully depreciated"
	SkipReasonNoStartDate      = "asset has no depreciation start date"
	SkipReasonBeforeStart      = "period is before depreciation start"
	SkipReasonAlreadyProcessed = "already depreciated for this period"
	SkipReasonMissingAccounts  = "category is missing GL account references"
	SkipReasonRunCancelled     = "run cancelled"
)

// CalculateForAsset runs the eligibility checks for one asset and, when
// eligible, delegates to the Engine. The first failing check wins and is
// returned as the skip reason with a zero amount. Engine errors are converted
// to skip reasons as well, so a single bad asset never aborts a batch.
func CalculateForAsset(asset *Asset, year, month int, unitsProduced *decimal.Decimal) (decimal.Decimal, string) {
	if !asset.Depreciable() {
		return decimal.Zero, fmt.Sprintf("asset status %q is not depreciable", asset.Status)
	}

	if asset.IsFullyDepreciated {
		return decimal.Zero, SkipReasonFullyDepreciated
	}

	if asset.DepreciationSuspended {
		reason := "depreciation suspended"
		if asset.SuspensionReason != nil && *asset.SuspensionReason != "" {
			reason = fmt.Sprintf("depreciation suspended: %s", *asset.SuspensionReason)
		}
		return decimal.Zero, reason
	}

	if asset.DepreciationStartDate == nil {
		return decimal.Zero, SkipReasonNoStartDate
	}

	target := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	start := *asset.DepreciationStartDate
	startMonth := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if target.Before(startMonth) {
		return decimal.Zero, SkipReasonBeforeStart
	}

	// Idempotency guard: a period at or before the last depreciated month
	// must never be processed again.
	if asset.LastDepreciationDate != nil {
		last := *asset.LastDepreciationDate
		lastMonth := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
		if !target.After(lastMonth) {
			return decimal.Zero, SkipReasonAlreadyProcessed
		}
	}

	amount, err := NewEngine(asset).MonthlyDepreciation(year, month, asset.AccumulatedDepreciation, unitsProduced)
	if err != nil {
		return decimal.Zero, fmt.Sprintf("calculation failed: %v", err)
	}

	return amount, ""
}
