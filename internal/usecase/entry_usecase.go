package usecase

import (
	"context"

	"github.com/iho/goassets/internal/domain"
)

// EntryUseCase handles depreciation entry queries. Entries are written only
// through the run lifecycle, so this use case is read-only.
type EntryUseCase struct {
	entryRepo EntryRepository
	runRepo   RunRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(entryRepo EntryRepository, runRepo RunRepository) *EntryUseCase {
	return &EntryUseCase{
		entryRepo: entryRepo,
		runRepo:   runRepo,
	}
}

// ListEntries lists entries matching the filter.
func (uc *EntryUseCase) ListEntries(ctx context.Context, filter EntryFilter) ([]*domain.DepreciationEntry, int, error) {
	filter.Limit, filter.Offset = domain.NormalizePagination(filter.Limit, filter.Offset)
	return uc.entryRepo.List(ctx, filter)
}

// ListByRun lists every entry of one run, ordered by asset ID. The run is
// looked up first so a bad run ID reports not-found instead of an empty list.
func (uc *EntryUseCase) ListByRun(ctx context.Context, runID string) ([]*domain.DepreciationEntry, error) {
	if _, err := uc.runRepo.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	return uc.entryRepo.ListByRun(ctx, runID)
}
