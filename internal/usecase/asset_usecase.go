package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/infrastructure/metrics"
)

// AssetUseCase handles asset-side depreciation operations: recording
// production units and projecting full schedules.
type AssetUseCase struct {
	txManager TransactionManager
	assetRepo AssetRepository
	unitsRepo UnitsRepository
	metrics   *metrics.Metrics
}

// NewAssetUseCase creates a new AssetUseCase.
func NewAssetUseCase(txManager TransactionManager, assetRepo AssetRepository, unitsRepo UnitsRepository) *AssetUseCase {
	return &AssetUseCase{
		txManager: txManager,
		assetRepo: assetRepo,
		unitsRepo: unitsRepo,
	}
}

// WithMetrics enables Prometheus instrumentation.
func (uc *AssetUseCase) WithMetrics(m *metrics.Metrics) *AssetUseCase {
	uc.metrics = m
	return uc
}

// RecordUnitsInput represents input for recording production units.
type RecordUnitsInput struct {
	AssetID     string
	PeriodYear  int
	PeriodMonth int
	Units       decimal.Decimal
}

// RecordUnitsResult reports the totals after a units recording.
type RecordUnitsResult struct {
	AssetID     string
	PeriodYear  int
	PeriodMonth int
	PeriodUnits decimal.Decimal
	TotalUnits  decimal.Decimal
}

// RecordUnits accumulates production units onto an asset's period record.
// Repeated calls for the same period add up; the run for that period reads
// the period total when it calculates units-of-production depreciation.
func (uc *AssetUseCase) RecordUnits(ctx context.Context, input RecordUnitsInput) (*RecordUnitsResult, error) {
	if err := domain.ValidatePeriod(input.PeriodYear, input.PeriodMonth); err != nil {
		return nil, err
	}
	if !input.Units.IsPositive() {
		return nil, domain.ErrInvalidUnits
	}

	asset, err := uc.assetRepo.GetByID(ctx, input.AssetID)
	if err != nil {
		return nil, err
	}
	if asset.Method != domain.MethodUnitsOfProduction {
		return nil, domain.ErrNotUnitsMethod
	}

	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	periodTotal, err := uc.unitsRepo.Add(ctx, tx, input.AssetID, input.PeriodYear, input.PeriodMonth, input.Units)
	if err != nil {
		return nil, err
	}

	newTotal := asset.UnitsProducedToDate.Add(input.Units)
	if err := uc.assetRepo.UpdateUnitsProduced(ctx, tx, input.AssetID, newTotal, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.UnitsRecorded.Inc()
	}

	return &RecordUnitsResult{
		AssetID:     input.AssetID,
		PeriodYear:  input.PeriodYear,
		PeriodMonth: input.PeriodMonth,
		PeriodUnits: periodTotal,
		TotalUnits:  newTotal,
	}, nil
}

// GetSchedule projects the asset's full depreciation schedule from its
// current state to full depreciation.
func (uc *AssetUseCase) GetSchedule(ctx context.Context, assetID string) ([]domain.SchedulePeriod, error) {
	asset, err := uc.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return domain.NewEngine(asset).FullSchedule(asset.DepreciationStartDate)
}

// GetAsset retrieves an asset by ID.
func (uc *AssetUseCase) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	return uc.assetRepo.GetByID(ctx, id)
}
