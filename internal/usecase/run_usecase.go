package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/infrastructure/metrics"
)

// RunUseCase orchestrates the depreciation run lifecycle: create (calculate),
// post, cancel, reverse, list and preview.
type RunUseCase struct {
	txManager    TransactionManager
	runRepo      RunRepository
	entryRepo    EntryRepository
	assetRepo    AssetRepository
	categoryRepo CategoryRepository
	unitsRepo    UnitsRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	cache        Cache
	metrics      *metrics.Metrics
}

// NewRunUseCase creates a new RunUseCase.
func NewRunUseCase(
	txManager TransactionManager,
	runRepo RunRepository,
	entryRepo EntryRepository,
	assetRepo AssetRepository,
	categoryRepo CategoryRepository,
	unitsRepo UnitsRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *RunUseCase {
	return &RunUseCase{
		txManager:    txManager,
		runRepo:      runRepo,
		entryRepo:    entryRepo,
		assetRepo:    assetRepo,
		categoryRepo: categoryRepo,
		unitsRepo:    unitsRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
	}
}

// WithRetrier enables transient-failure retries on posting and reversal.
func (uc *RunUseCase) WithRetrier(r Retrier) *RunUseCase {
	uc.retrier = r
	return uc
}

// WithCache enables preview result caching.
func (uc *RunUseCase) WithCache(c Cache) *RunUseCase {
	uc.cache = c
	return uc
}

// WithMetrics enables Prometheus instrumentation.
func (uc *RunUseCase) WithMetrics(m *metrics.Metrics) *RunUseCase {
	uc.metrics = m
	return uc
}

// CreateRunInput represents input for creating a depreciation run.
type CreateRunInput struct {
	PeriodYear   int
	PeriodMonth  int
	CategoryID   *string
	DepartmentID *string
	CreatedBy    string
}

// CreateRun creates a run for the period and eagerly calculates one entry per
// eligible asset. The run lands in CALCULATED status; nothing touches the
// assets until PostRun.
func (uc *RunUseCase) CreateRun(ctx context.Context, input CreateRunInput) (*domain.DepreciationRun, error) {
	if err := domain.ValidatePeriod(input.PeriodYear, input.PeriodMonth); err != nil {
		return nil, err
	}

	// Friendly pre-check; the partial unique index on non-cancelled runs is
	// the real guard against concurrent creation.
	exists, err := uc.runRepo.ExistsForScope(ctx, input.PeriodYear, input.PeriodMonth, input.CategoryID, input.DepartmentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrRunAlreadyExists
	}

	assets, err := uc.assetRepo.ListEligible(ctx, EligibleAssetFilter{
		CategoryID:   input.CategoryID,
		DepartmentID: input.DepartmentID,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &domain.DepreciationRun{
		ID:                uc.idGen.Generate(),
		RunNumber:         domain.RunNumber(input.PeriodYear, input.PeriodMonth),
		PeriodYear:        input.PeriodYear,
		PeriodMonth:       input.PeriodMonth,
		CategoryID:        input.CategoryID,
		DepartmentID:      input.DepartmentID,
		Status:            domain.RunStatusDraft,
		TotalDepreciation: decimal.Zero,
		CreatedBy:         input.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.runRepo.Create(ctx, tx, run); err != nil {
		return nil, err
	}

	total := decimal.Zero
	skipCounts := make(map[string]int)
	var entryAmounts []float64
	for _, asset := range assets {
		entry, runErr, err := uc.calculateEntry(ctx, run, asset, now)
		if err != nil {
			return nil, err
		}

		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return nil, err
		}

		if runErr != "" {
			run.Errors = append(run.Errors, runErr)
		}

		if entry.Skipped() {
			run.AssetsSkipped++
			skipCounts[*entry.SkipReason]++
		} else {
			run.AssetsProcessed++
			total = total.Add(entry.Amount)
			entryAmounts = append(entryAmounts, entry.Amount.InexactFloat64())
		}
	}

	run.Status = domain.RunStatusCalculated
	run.TotalDepreciation = total
	if err := uc.runRepo.Update(ctx, tx, run); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   run.ID,
		AggregateType: domain.AggregateTypeRun,
		EventType:     domain.EventTypeRunCreated,
		Payload: map[string]any{
			"run_id":             run.ID,
			"run_number":         run.RunNumber,
			"period_year":        run.PeriodYear,
			"period_month":       run.PeriodMonth,
			"assets_processed":   run.AssetsProcessed,
			"assets_skipped":     run.AssetsSkipped,
			"total_depreciation": run.TotalDepreciation.String(),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RunsCreated.Inc()
		uc.metrics.RunDuration.Observe(time.Since(now).Seconds())
		uc.metrics.RunTotalAmount.Observe(total.InexactFloat64())
		uc.metrics.EntriesCalculated.Add(float64(run.AssetsProcessed))
		for reason, count := range skipCounts {
			uc.metrics.EntriesSkipped.WithLabelValues(reason).Add(float64(count))
		}
		for _, amount := range entryAmounts {
			uc.metrics.EntryAmount.Observe(amount)
		}
		if len(run.Errors) > 0 {
			uc.metrics.RunErrors.WithLabelValues("missing_gl_accounts").Add(float64(len(run.Errors)))
		}
	}

	return run, nil
}

// calculateEntry builds the entry for one asset inside a run. Skips are
// recorded on the entry; GL configuration problems additionally surface as a
// run-level error string so the operator sees them without opening entries.
func (uc *RunUseCase) calculateEntry(
	ctx context.Context,
	run *domain.DepreciationRun,
	asset *domain.Asset,
	now time.Time,
) (*domain.DepreciationEntry, string, error) {
	entry := &domain.DepreciationEntry{
		ID:                     uc.idGen.Generate(),
		RunID:                  run.ID,
		AssetID:                asset.ID,
		PeriodYear:             run.PeriodYear,
		PeriodMonth:            run.PeriodMonth,
		EntryDate:              run.PeriodEnd(),
		Method:                 asset.Method,
		Amount:                 decimal.Zero,
		BookValueBefore:        asset.CurrentBookValue(),
		BookValueAfter:         asset.CurrentBookValue(),
		AccumulatedBefore:      asset.AccumulatedDepreciation,
		AccumulatedAfter:       asset.AccumulatedDepreciation,
		LastDepreciationBefore: asset.LastDepreciationDate,
		Status:                 domain.EntryStatusCalculated,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	category, err := uc.categoryRepo.GetByID(ctx, asset.CategoryID)
	if err != nil {
		return nil, "", err
	}
	entry.CategoryName = category.Name
	entry.ExpenseAccountID = category.ExpenseAccountID
	entry.AccumulatedAccountID = category.AccumulatedAccountID

	var unitsProduced *decimal.Decimal
	if asset.Method == domain.MethodUnitsOfProduction {
		unitsProduced, err = uc.unitsRepo.GetForPeriod(ctx, asset.ID, run.PeriodYear, run.PeriodMonth)
		if err != nil {
			return nil, "", err
		}
	}

	amount, skipReason := domain.CalculateForAsset(asset, run.PeriodYear, run.PeriodMonth, unitsProduced)
	if skipReason != "" {
		entry.Status = domain.EntryStatusSkipped
		entry.SkipReason = &skipReason
		return entry, "", nil
	}

	if !category.HasGLAccounts() {
		reason := domain.SkipReasonMissingAccounts
		entry.Status = domain.EntryStatusSkipped
		entry.SkipReason = &reason
		runErr := fmt.Sprintf("asset %s: category %q has no GL accounts configured", asset.ID, category.Name)
		return entry, runErr, nil
	}

	entry.Amount = amount
	entry.AccumulatedAfter = entry.AccumulatedBefore.Add(amount)
	entry.BookValueAfter = entry.BookValueBefore.Sub(amount)

	return entry, "", nil
}

// PostRun commits a calculated run: every calculated entry becomes POSTED and
// its asset's accumulated depreciation, book value and last depreciation date
// move forward. Assets that reach salvage value are flipped to fully
// depreciated. The whole run posts in one transaction.
func (uc *RunUseCase) PostRun(ctx context.Context, runID, postedBy string) (*domain.DepreciationRun, error) {
	start := time.Now()
	var posted *domain.DepreciationRun
	var flipped int

	operation := func() error {
		run, n, err := uc.postRunTx(ctx, runID, postedBy)
		if err != nil {
			return err
		}
		posted = run
		flipped = n
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RunsPosted.Inc()
		uc.metrics.RunDuration.Observe(time.Since(start).Seconds())
		uc.metrics.AssetsFullyDepreciated.Add(float64(flipped))
	}

	return posted, nil
}

func (uc *RunUseCase) postRunTx(ctx context.Context, runID, postedBy string) (*domain.DepreciationRun, int, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	run, err := uc.runRepo.GetByIDForUpdate(ctx, tx, runID)
	if err != nil {
		return nil, 0, err
	}

	if err := run.CanPost(); err != nil {
		return nil, 0, err
	}

	entries, err := uc.entryRepo.ListByRunForUpdate(ctx, tx, runID)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	entryDate := run.PeriodEnd()
	flipped := 0

	for _, entry := range entries {
		if entry.Status != domain.EntryStatusCalculated {
			continue
		}

		asset, err := uc.assetRepo.GetByIDForUpdate(ctx, tx, entry.AssetID)
		if err != nil {
			return nil, 0, err
		}

		state := AssetDepreciationState{
			AssetID:                 asset.ID,
			AccumulatedDepreciation: entry.AccumulatedAfter,
			BookValue:               entry.BookValueAfter,
			LastDepreciationDate:    &entryDate,
			IsFullyDepreciated:      asset.IsFullyDepreciated,
			FullyDepreciatedDate:    asset.FullyDepreciatedDate,
			Status:                  asset.Status,
			UpdatedAt:               now,
		}

		if entry.BookValueAfter.LessThanOrEqual(asset.SalvageValue) {
			state.IsFullyDepreciated = true
			state.FullyDepreciatedDate = &entryDate
			state.Status = domain.AssetStatusFullyDepreciated
			flipped++
		}

		if err := uc.assetRepo.UpdateDepreciationState(ctx, tx, state); err != nil {
			return nil, 0, err
		}

		if err := uc.entryRepo.UpdateStatus(ctx, tx, entry.ID, domain.EntryStatusPosted, nil, now); err != nil {
			return nil, 0, err
		}
	}

	run.Status = domain.RunStatusPosted
	run.PostedAt = &now
	run.PostedBy = &postedBy
	run.UpdatedAt = now
	if err := uc.runRepo.Update(ctx, tx, run); err != nil {
		return nil, 0, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   run.ID,
		AggregateType: domain.AggregateTypeRun,
		EventType:     domain.EventTypeRunPosted,
		Payload: map[string]any{
			"run_id":             run.ID,
			"run_number":         run.RunNumber,
			"period_year":        run.PeriodYear,
			"period_month":       run.PeriodMonth,
			"total_depreciation": run.TotalDepreciation.String(),
			"posted_by":          postedBy,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}

	return run, flipped, nil
}

// CancelRun discards a draft or calculated run. Entries flip to skipped so
// listings show why they never posted. Posted runs must be reversed instead.
func (uc *RunUseCase) CancelRun(ctx context.Context, runID string) (*domain.DepreciationRun, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	run, err := uc.runRepo.GetByIDForUpdate(ctx, tx, runID)
	if err != nil {
		return nil, err
	}

	if err := run.CanCancel(); err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByRunForUpdate(ctx, tx, runID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cancelled := domain.SkipReasonRunCancelled

	for _, entry := range entries {
		if entry.Status != domain.EntryStatusCalculated {
			continue
		}
		if err := uc.entryRepo.UpdateStatus(ctx, tx, entry.ID, domain.EntryStatusSkipped, &cancelled, now); err != nil {
			return nil, err
		}
	}

	run.Status = domain.RunStatusCancelled
	run.UpdatedAt = now
	if err := uc.runRepo.Update(ctx, tx, run); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RunsCancelled.Inc()
	}

	return run, nil
}

// ReverseRunInput represents input for reversing a posted run.
type ReverseRunInput struct {
	RunID      string
	Reason     string
	ReversedBy string
}

// ReverseRun undoes a posted run exactly: every posted entry's asset is
// restored to the before-values captured on the entry, including the prior
// last depreciation date, and assets flipped to fully depreciated by this run
// are flipped back. The run ends cancelled and the period slot frees up.
func (uc *RunUseCase) ReverseRun(ctx context.Context, input ReverseRunInput) (*domain.DepreciationRun, error) {
	if input.Reason == "" {
		return nil, domain.ErrReasonRequired
	}

	start := time.Now()
	var reversed *domain.DepreciationRun

	operation := func() error {
		run, err := uc.reverseRunTx(ctx, input)
		if err != nil {
			return err
		}
		reversed = run
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RunsReversed.Inc()
		uc.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}

	return reversed, nil
}

func (uc *RunUseCase) reverseRunTx(ctx context.Context, input ReverseRunInput) (*domain.DepreciationRun, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	run, err := uc.runRepo.GetByIDForUpdate(ctx, tx, input.RunID)
	if err != nil {
		return nil, err
	}

	if err := run.CanReverse(); err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByRunForUpdate(ctx, tx, input.RunID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	for _, entry := range entries {
		if entry.Status != domain.EntryStatusPosted {
			continue
		}

		asset, err := uc.assetRepo.GetByIDForUpdate(ctx, tx, entry.AssetID)
		if err != nil {
			return nil, err
		}

		state := AssetDepreciationState{
			AssetID:                 asset.ID,
			AccumulatedDepreciation: entry.AccumulatedBefore,
			BookValue:               entry.BookValueBefore,
			LastDepreciationDate:    entry.LastDepreciationBefore,
			IsFullyDepreciated:      asset.IsFullyDepreciated,
			FullyDepreciatedDate:    asset.FullyDepreciatedDate,
			Status:                  asset.Status,
			UpdatedAt:               now,
		}

		if entry.FlippedFullyDepreciated(asset.SalvageValue) {
			state.IsFullyDepreciated = false
			state.FullyDepreciatedDate = nil
			state.Status = domain.AssetStatusActive
		}

		if err := uc.assetRepo.UpdateDepreciationState(ctx, tx, state); err != nil {
			return nil, err
		}

		if err := uc.entryRepo.UpdateStatus(ctx, tx, entry.ID, domain.EntryStatusReversed, nil, now); err != nil {
			return nil, err
		}
	}

	run.Status = domain.RunStatusCancelled
	run.ReversalReason = &input.Reason
	run.ReversedBy = &input.ReversedBy
	run.ReversedAt = &now
	run.UpdatedAt = now
	if err := uc.runRepo.Update(ctx, tx, run); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   run.ID,
		AggregateType: domain.AggregateTypeRun,
		EventType:     domain.EventTypeRunReversed,
		Payload: map[string]any{
			"run_id":      run.ID,
			"run_number":  run.RunNumber,
			"reason":      input.Reason,
			"reversed_by": input.ReversedBy,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return run, nil
}

// GetRun retrieves a run by ID.
func (uc *RunUseCase) GetRun(ctx context.Context, id string) (*domain.DepreciationRun, error) {
	return uc.runRepo.GetByID(ctx, id)
}

// ListRuns lists runs matching the filter, newest first.
func (uc *RunUseCase) ListRuns(ctx context.Context, filter RunFilter) ([]*domain.DepreciationRun, int, error) {
	filter.Limit, filter.Offset = domain.NormalizePagination(filter.Limit, filter.Offset)
	return uc.runRepo.List(ctx, filter)
}

// EntryPreview is one asset's projected result in a dry run.
type EntryPreview struct {
	AssetID         string          `json:"asset_id"`
	AssetName       string          `json:"asset_name"`
	Method          string          `json:"method"`
	Amount          decimal.Decimal `json:"amount"`
	BookValueBefore decimal.Decimal `json:"book_value_before"`
	BookValueAfter  decimal.Decimal `json:"book_value_after"`
	SkipReason      *string         `json:"skip_reason,omitempty"`
}

// PreviewInput represents input for previewing a period.
type PreviewInput struct {
	PeriodYear  int
	PeriodMonth int
	CategoryID  *string
}

// Preview computes what a run for the period would produce without persisting
// anything. Results are cached briefly since operators typically preview the
// same period several times before creating the run.
func (uc *RunUseCase) Preview(ctx context.Context, input PreviewInput) ([]*EntryPreview, error) {
	if err := domain.ValidatePeriod(input.PeriodYear, input.PeriodMonth); err != nil {
		return nil, err
	}

	cacheKey := previewCacheKey(input)
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			var previews []*EntryPreview
			if err := json.Unmarshal(cached, &previews); err == nil {
				if uc.metrics != nil {
					uc.metrics.PreviewRequests.WithLabelValues("hit").Inc()
				}
				return previews, nil
			}
		}
	}

	assets, err := uc.assetRepo.ListEligible(ctx, EligibleAssetFilter{CategoryID: input.CategoryID})
	if err != nil {
		return nil, err
	}

	previews := make([]*EntryPreview, 0, len(assets))
	for _, asset := range assets {
		var unitsProduced *decimal.Decimal
		if asset.Method == domain.MethodUnitsOfProduction {
			unitsProduced, err = uc.unitsRepo.GetForPeriod(ctx, asset.ID, input.PeriodYear, input.PeriodMonth)
			if err != nil {
				return nil, err
			}
		}

		amount, skipReason := domain.CalculateForAsset(asset, input.PeriodYear, input.PeriodMonth, unitsProduced)

		preview := &EntryPreview{
			AssetID:         asset.ID,
			AssetName:       asset.Name,
			Method:          string(asset.Method),
			Amount:          amount,
			BookValueBefore: asset.CurrentBookValue(),
			BookValueAfter:  asset.CurrentBookValue().Sub(amount),
		}
		if skipReason != "" {
			preview.SkipReason = &skipReason
		}

		previews = append(previews, preview)
	}

	if uc.cache != nil {
		if data, err := json.Marshal(previews); err == nil {
			_ = uc.cache.Set(ctx, cacheKey, data, PreviewCacheTTL)
		}
	}

	if uc.metrics != nil {
		uc.metrics.PreviewRequests.WithLabelValues("miss").Inc()
	}

	return previews, nil
}

func previewCacheKey(input PreviewInput) string {
	scope := "all"
	if input.CategoryID != nil {
		scope = *input.CategoryID
	}
	return fmt.Sprintf("preview:%d-%02d:%s", input.PeriodYear, input.PeriodMonth, scope)
}
