package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/adapter/repository/postgres"
	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
	"github.com/iho/goassets/tests/testutil"
)

func newRunUseCase(pool *testutil.TestDB) (*usecase.RunUseCase, *postgres.AssetRepository) {
	txManager := postgres.NewTxManager(pool.Pool)
	runRepo := postgres.NewRunRepository(pool.Pool)
	entryRepo := postgres.NewEntryRepository(pool.Pool)
	assetRepo := postgres.NewAssetRepository(pool.Pool)
	categoryRepo := postgres.NewCategoryRepository(pool.Pool)
	unitsRepo := postgres.NewUnitsRepository(pool.Pool)
	outboxRepo := postgres.NewOutboxRepository(pool.Pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()

	uc := usecase.NewRunUseCase(txManager, runRepo, entryRepo, assetRepo, categoryRepo, unitsRepo, outboxRepo, idGen).
		WithRetrier(retrier)

	return uc, assetRepo
}

func TestRunLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	runUC, assetRepo := newRunUseCase(testDB)

	category := testDB.CreateTestCategory(ctx, "Machinery")
	// 12000 cost, 0 salvage, 12 months: 1000/month straight line
	asset := testDB.CreateTestAsset(ctx, category.ID, "press", decimal.NewFromInt(12000), decimal.Zero, 12)

	// Create
	run, err := runUC.CreateRun(ctx, usecase.CreateRunInput{
		PeriodYear:  2024,
		PeriodMonth: 3,
		CreatedBy:   "integration",
	})
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if run.Status != domain.RunStatusCalculated {
		t.Fatalf("expected calculated run, got %s", run.Status)
	}
	if run.AssetsProcessed != 1 || run.AssetsSkipped != 0 {
		t.Fatalf("expected 1 processed / 0 skipped, got %d/%d", run.AssetsProcessed, run.AssetsSkipped)
	}
	if !run.TotalDepreciation.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected total 1000, got %s", run.TotalDepreciation)
	}

	// A second run for the same period must be rejected
	if _, err := runUC.CreateRun(ctx, usecase.CreateRunInput{
		PeriodYear:  2024,
		PeriodMonth: 3,
		CreatedBy:   "integration",
	}); err != domain.ErrRunAlreadyExists {
		t.Fatalf("expected ErrRunAlreadyExists, got %v", err)
	}

	// Post
	posted, err := runUC.PostRun(ctx, run.ID, "integration")
	if err != nil {
		t.Fatalf("failed to post run: %v", err)
	}
	if posted.Status != domain.RunStatusPosted {
		t.Fatalf("expected posted run, got %s", posted.Status)
	}

	assetAfterPost, err := assetRepo.GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("failed to get asset after post: %v", err)
	}
	if !assetAfterPost.AccumulatedDepreciation.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected accumulated 1000, got %s", assetAfterPost.AccumulatedDepreciation)
	}
	if !assetAfterPost.BookValue.Equal(decimal.NewFromInt(11000)) {
		t.Errorf("expected book value 11000, got %s", assetAfterPost.BookValue)
	}
	if assetAfterPost.LastDepreciationDate == nil {
		t.Error("expected last depreciation date to be set")
	}

	// Reverse
	reversed, err := runUC.ReverseRun(ctx, usecase.ReverseRunInput{
		RunID:      run.ID,
		Reason:     "wrong period",
		ReversedBy: "integration",
	})
	if err != nil {
		t.Fatalf("failed to reverse run: %v", err)
	}
	if reversed.Status != domain.RunStatusCancelled {
		t.Fatalf("expected cancelled run after reversal, got %s", reversed.Status)
	}
	if reversed.ReversalReason == nil || *reversed.ReversalReason != "wrong period" {
		t.Errorf("expected reversal reason to be recorded, got %v", reversed.ReversalReason)
	}

	assetAfterReverse, err := assetRepo.GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("failed to get asset after reversal: %v", err)
	}
	if !assetAfterReverse.AccumulatedDepreciation.Equal(decimal.Zero) {
		t.Errorf("expected accumulated restored to 0, got %s", assetAfterReverse.AccumulatedDepreciation)
	}
	if !assetAfterReverse.BookValue.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("expected book value restored to 12000, got %s", assetAfterReverse.BookValue)
	}
	if assetAfterReverse.LastDepreciationDate != nil {
		t.Error("expected last depreciation date restored to nil")
	}

	// The period slot is free again after the reversal
	rerun, err := runUC.CreateRun(ctx, usecase.CreateRunInput{
		PeriodYear:  2024,
		PeriodMonth: 3,
		CreatedBy:   "integration",
	})
	if err != nil {
		t.Fatalf("expected period slot freed after reversal: %v", err)
	}
	if !rerun.TotalDepreciation.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected rerun total 1000, got %s", rerun.TotalDepreciation)
	}
}

func TestRunCancelFreesSlot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	runUC, assetRepo := newRunUseCase(testDB)

	category := testDB.CreateTestCategory(ctx, "Vehicles")
	asset := testDB.CreateTestAsset(ctx, category.ID, "van", decimal.NewFromInt(24000), decimal.NewFromInt(4000), 48)

	run, err := runUC.CreateRun(ctx, usecase.CreateRunInput{
		PeriodYear:  2024,
		PeriodMonth: 6,
		CreatedBy:   "integration",
	})
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	cancelled, err := runUC.CancelRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to cancel run: %v", err)
	}
	if cancelled.Status != domain.RunStatusCancelled {
		t.Fatalf("expected cancelled run, got %s", cancelled.Status)
	}

	// Cancellation must not touch the asset
	untouched, err := assetRepo.GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("failed to get asset: %v", err)
	}
	if !untouched.AccumulatedDepreciation.Equal(decimal.Zero) {
		t.Errorf("expected asset untouched by cancel, got accumulated %s", untouched.AccumulatedDepreciation)
	}

	if _, err := runUC.CreateRun(ctx, usecase.CreateRunInput{
		PeriodYear:  2024,
		PeriodMonth: 6,
		CreatedBy:   "integration",
	}); err != nil {
		t.Fatalf("expected period slot freed after cancel: %v", err)
	}
}
