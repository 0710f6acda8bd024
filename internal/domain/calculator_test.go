package domain

import (
	"strings"
	"testing"
)

func eligibleAsset() *Asset {
	return testAsset(MethodStraightLine, "12000", "0", 12)
}

func TestCalculateForAsset_Eligible(t *testing.T) {
	amount, skipReason := CalculateForAsset(eligibleAsset(), 2024, 3, nil)

	if skipReason != "" {
		t.Fatalf("expected no skip reason, got %q", skipReason)
	}
	if !amount.Equal(dec("1000")) {
		t.Fatalf("expected 1000.00, got %s", amount)
	}
}

func TestCalculateForAsset_SkipChecks(t *testing.T) {
	suspension := "pending disposal review"
	lastMarch := date(2024, 3, 31)

	tests := []struct {
		name       string
		mutate     func(*Asset)
		year       int
		month      int
		wantReason string
	}{
		{
			name:       "draft status",
			mutate:     func(a *Asset) { a.Status = AssetStatusDraft },
			year:       2024,
			month:      3,
			wantReason: `asset status "draft" is not depreciable`,
		},
		{
			name:       "disposed status",
			mutate:     func(a *Asset) { a.Status = AssetStatusDisposed },
			year:       2024,
			month:      3,
			wantReason: `asset status "disposed" is not depreciable`,
		},
		{
			name:       "fully depreciated flag",
			mutate:     func(a *Asset) { a.IsFullyDepreciated = true },
			year:       2024,
			month:      3,
			wantReason: SkipReasonFullyDepreciated,
		},
		{
			name: "suspended with reason",
			mutate: func(a *Asset) {
				a.DepreciationSuspended = true
				a.SuspensionReason = &suspension
			},
			year:       2024,
			month:      3,
			wantReason: "depreciation suspended: pending disposal review",
		},
		{
			name:       "no start date",
			mutate:     func(a *Asset) { a.DepreciationStartDate = nil },
			year:       2024,
			month:      3,
			wantReason: SkipReasonNoStartDate,
		},
		{
			name:       "period before start",
			mutate:     func(a *Asset) {},
			year:       2023,
			month:      12,
			wantReason: SkipReasonBeforeStart,
		},
		{
			name:       "same period as last depreciation",
			mutate:     func(a *Asset) { a.LastDepreciationDate = lastMarch },
			year:       2024,
			month:      3,
			wantReason: SkipReasonAlreadyProcessed,
		},
		{
			name:       "period older than last depreciation",
			mutate:     func(a *Asset) { a.LastDepreciationDate = lastMarch },
			year:       2024,
			month:      2,
			wantReason: SkipReasonAlreadyProcessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset := eligibleAsset()
			tt.mutate(asset)

			amount, skipReason := CalculateForAsset(asset, tt.year, tt.month, nil)

			if skipReason != tt.wantReason {
				t.Fatalf("expected skip reason %q, got %q", tt.wantReason, skipReason)
			}
			if !amount.IsZero() {
				t.Fatalf("expected zero amount on skip, got %s", amount)
			}
		})
	}
}

func TestCalculateForAsset_SuspensionAlwaysSkips(t *testing.T) {
	methods := []DepreciationMethod{
		MethodStraightLine, MethodDecliningBalance, MethodDoubleDeclining,
		MethodSumOfYears, MethodUnitsOfProduction,
	}

	for _, method := range methods {
		asset := eligibleAsset()
		asset.Method = method
		asset.DepreciationSuspended = true

		amount, skipReason := CalculateForAsset(asset, 2024, 3, nil)

		if !amount.IsZero() || !strings.Contains(skipReason, "suspended") {
			t.Fatalf("method %s: expected suspension skip, got amount=%s reason=%q", method, amount, skipReason)
		}
	}
}

func TestCalculateForAsset_PeriodAfterLastDepreciation(t *testing.T) {
	asset := eligibleAsset()
	asset.LastDepreciationDate = date(2024, 3, 31)
	asset.AccumulatedDepreciation = dec("3000")

	amount, skipReason := CalculateForAsset(asset, 2024, 4, nil)

	if skipReason != "" {
		t.Fatalf("expected no skip reason, got %q", skipReason)
	}
	if !amount.Equal(dec("1000")) {
		t.Fatalf("expected 1000.00, got %s", amount)
	}
}

func TestCalculateForAsset_EngineErrorBecomesSkip(t *testing.T) {
	asset := eligibleAsset()
	asset.Method = MethodUnitsOfProduction
	estimated := dec("10000")
	asset.TotalEstimatedUnits = &estimated

	// Missing units: the engine error is caught and reported as a skip so a
	// single bad asset never aborts a batch.
	amount, skipReason := CalculateForAsset(asset, 2024, 3, nil)

	if !amount.IsZero() {
		t.Fatalf("expected zero amount, got %s", amount)
	}
	if !strings.Contains(skipReason, "calculation failed") {
		t.Fatalf("expected calculation failure skip reason, got %q", skipReason)
	}
}

func TestCalculateForAsset_UnitsOfProduction(t *testing.T) {
	asset := eligibleAsset()
	asset.Method = MethodUnitsOfProduction
	asset.TotalCost = dec("10000")
	asset.SalvageValue = dec("1000")
	estimated := dec("10000")
	asset.TotalEstimatedUnits = &estimated

	units := dec("500")
	amount, skipReason := CalculateForAsset(asset, 2024, 3, &units)

	if skipReason != "" {
		t.Fatalf("expected no skip reason, got %q", skipReason)
	}
	if !amount.Equal(dec("450")) {
		t.Fatalf("expected 450.00, got %s", amount)
	}
}
