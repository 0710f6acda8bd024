package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
	"github.com/iho/goassets/internal/usecase/mocks"
)

func newAssetFixture() (*usecase.AssetUseCase, *mocks.MockAssetRepository, *mocks.MockUnitsRepository) {
	assetRepo := mocks.NewMockAssetRepository()
	unitsRepo := mocks.NewMockUnitsRepository()
	uc := usecase.NewAssetUseCase(&mocks.MockTransactionManager{}, assetRepo, unitsRepo)
	return uc, assetRepo, unitsRepo
}

func unitsAsset() *domain.Asset {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	estimated := decimal.RequireFromString("10000")
	return &domain.Asset{
		ID:                    "asset-press",
		Name:                  "hydraulic press",
		CategoryID:            "cat-machinery",
		TotalCost:             decimal.RequireFromString("10000"),
		SalvageValue:          decimal.RequireFromString("1000"),
		UsefulLifeMonths:      60,
		Method:                domain.MethodUnitsOfProduction,
		TotalEstimatedUnits:   &estimated,
		UnitsProducedToDate:   decimal.RequireFromString("200"),
		BookValue:             decimal.RequireFromString("10000"),
		DepreciationStartDate: &start,
		Status:                domain.AssetStatusActive,
	}
}

func TestAssetUseCase_RecordUnits(t *testing.T) {
	uc, assetRepo, unitsRepo := newAssetFixture()
	assetRepo.Put(unitsAsset())

	result, err := uc.RecordUnits(context.Background(), usecase.RecordUnitsInput{
		AssetID:     "asset-press",
		PeriodYear:  2024,
		PeriodMonth: 3,
		Units:       decimal.RequireFromString("300"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.PeriodUnits.Equal(decimal.RequireFromString("300")) {
		t.Errorf("expected period units 300, got %s", result.PeriodUnits)
	}
	if !result.TotalUnits.Equal(decimal.RequireFromString("500")) {
		t.Errorf("expected total units 500, got %s", result.TotalUnits)
	}

	// Recording again for the same period accumulates.
	result, err = uc.RecordUnits(context.Background(), usecase.RecordUnitsInput{
		AssetID:     "asset-press",
		PeriodYear:  2024,
		PeriodMonth: 3,
		Units:       decimal.RequireFromString("200"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.PeriodUnits.Equal(decimal.RequireFromString("500")) {
		t.Errorf("expected period units 500 after second recording, got %s", result.PeriodUnits)
	}

	period, err := unitsRepo.GetForPeriod(context.Background(), "asset-press", 2024, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if period == nil || !period.Equal(decimal.RequireFromString("500")) {
		t.Errorf("expected stored period total 500, got %v", period)
	}

	asset, _ := assetRepo.GetByID(context.Background(), "asset-press")
	if !asset.UnitsProducedToDate.Equal(decimal.RequireFromString("700")) {
		t.Errorf("expected lifetime units 700, got %s", asset.UnitsProducedToDate)
	}
}

func TestAssetUseCase_RecordUnits_Validation(t *testing.T) {
	uc, assetRepo, _ := newAssetFixture()
	assetRepo.Put(unitsAsset())

	straightLine := unitsAsset()
	straightLine.ID = "asset-sl"
	straightLine.Method = domain.MethodStraightLine
	assetRepo.Put(straightLine)

	tests := []struct {
		name      string
		input     usecase.RecordUnitsInput
		expectErr error
	}{
		{
			name:      "zero units",
			input:     usecase.RecordUnitsInput{AssetID: "asset-press", PeriodYear: 2024, PeriodMonth: 3, Units: decimal.Zero},
			expectErr: domain.ErrInvalidUnits,
		},
		{
			name:      "negative units",
			input:     usecase.RecordUnitsInput{AssetID: "asset-press", PeriodYear: 2024, PeriodMonth: 3, Units: decimal.RequireFromString("-10")},
			expectErr: domain.ErrInvalidUnits,
		},
		{
			name:      "bad period",
			input:     usecase.RecordUnitsInput{AssetID: "asset-press", PeriodYear: 2024, PeriodMonth: 0, Units: decimal.RequireFromString("10")},
			expectErr: domain.ErrInvalidPeriod,
		},
		{
			name:      "unknown asset",
			input:     usecase.RecordUnitsInput{AssetID: "nope", PeriodYear: 2024, PeriodMonth: 3, Units: decimal.RequireFromString("10")},
			expectErr: domain.ErrAssetNotFound,
		},
		{
			name:      "wrong method",
			input:     usecase.RecordUnitsInput{AssetID: "asset-sl", PeriodYear: 2024, PeriodMonth: 3, Units: decimal.RequireFromString("10")},
			expectErr: domain.ErrNotUnitsMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.RecordUnits(context.Background(), tt.input)
			if !errors.Is(err, tt.expectErr) {
				t.Fatalf("expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestAssetUseCase_GetSchedule(t *testing.T) {
	uc, assetRepo, _ := newAssetFixture()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assetRepo.Put(&domain.Asset{
		ID:                    "asset-laptop",
		Name:                  "laptop",
		CategoryID:            "cat-it",
		TotalCost:             decimal.RequireFromString("12000"),
		SalvageValue:          decimal.Zero,
		UsefulLifeMonths:      12,
		Method:                domain.MethodStraightLine,
		BookValue:             decimal.RequireFromString("12000"),
		DepreciationStartDate: &start,
		Status:                domain.AssetStatusActive,
	})

	schedule, err := uc.GetSchedule(context.Background(), "asset-laptop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(schedule) != 12 {
		t.Fatalf("expected 12 periods, got %d", len(schedule))
	}
	last := schedule[len(schedule)-1]
	if !last.IsFinalPeriod || !last.BookValueAfter.IsZero() {
		t.Errorf("expected final period ending at zero book value, got %+v", last)
	}

	if _, err := uc.GetSchedule(context.Background(), "missing"); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}
