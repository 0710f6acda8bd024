package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/domain"
)

// RunFilter narrows run listings.
type RunFilter struct {
	PeriodYear  *int
	PeriodMonth *int
	Status      *domain.RunStatus
	Limit       int
	Offset      int
}

// EntryFilter narrows entry listings.
type EntryFilter struct {
	RunID       *string
	AssetID     *string
	Status      *domain.EntryStatus
	PeriodYear  *int
	PeriodMonth *int
	Limit       int
	Offset      int
}

// EligibleAssetFilter scopes the eligible-asset query for a run.
type EligibleAssetFilter struct {
	CategoryID   *string
	DepartmentID *string
}

// RunRepository defines data access for depreciation runs.
type RunRepository interface {
	// Create persists a new run. A unique constraint reserves the
	// period+scope slot; violations surface as domain.ErrRunAlreadyExists.
	Create(ctx context.Context, tx Transaction, run *domain.DepreciationRun) error
	Update(ctx context.Context, tx Transaction, run *domain.DepreciationRun) error
	GetByID(ctx context.Context, id string) (*domain.DepreciationRun, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.DepreciationRun, error)
	// ExistsForScope reports whether a non-cancelled run already occupies the
	// period+scope slot.
	ExistsForScope(ctx context.Context, year, month int, categoryID, departmentID *string) (bool, error)
	List(ctx context.Context, filter RunFilter) ([]*domain.DepreciationRun, int, error)
}

// EntryRepository defines data access for depreciation entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.DepreciationEntry) error
	ListByRun(ctx context.Context, runID string) ([]*domain.DepreciationEntry, error)
	ListByRunForUpdate(ctx context.Context, tx Transaction, runID string) ([]*domain.DepreciationEntry, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.EntryStatus, skipReason *string, updatedAt time.Time) error
	List(ctx context.Context, filter EntryFilter) ([]*domain.DepreciationEntry, int, error)
}

// AssetDepreciationState carries the asset fields a posting or reversal is
// allowed to touch. Everything else on the asset belongs to the asset master.
type AssetDepreciationState struct {
	AssetID                 string
	AccumulatedDepreciation decimal.Decimal
	BookValue               decimal.Decimal
	LastDepreciationDate    *time.Time
	IsFullyDepreciated      bool
	FullyDepreciatedDate    *time.Time
	Status                  domain.AssetStatus
	UpdatedAt               time.Time
}

// AssetRepository defines the read/write boundary with the asset master.
type AssetRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Asset, error)
	// ListEligible returns active, unsuspended, not fully depreciated assets
	// matching the scope filters, ordered by asset ID so run totals are
	// deterministic for a given asset set.
	ListEligible(ctx context.Context, filter EligibleAssetFilter) ([]*domain.Asset, error)
	UpdateDepreciationState(ctx context.Context, tx Transaction, state AssetDepreciationState) error
	UpdateUnitsProduced(ctx context.Context, tx Transaction, assetID string, total decimal.Decimal, updatedAt time.Time) error
}

// CategoryRepository resolves GL account references for an asset's category.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
}

// UnitsRepository stores per-period production counts for units-of-production
// assets.
type UnitsRepository interface {
	// Add accumulates units onto the (asset, year, month) record and returns
	// the period total after the addition.
	Add(ctx context.Context, tx Transaction, assetID string, year, month int, units decimal.Decimal) (decimal.Decimal, error)
	// GetForPeriod returns the units recorded for the period, or nil when
	// none have been recorded.
	GetForPeriod(ctx context.Context, assetID string, year, month int) (*decimal.Decimal, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient database failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
