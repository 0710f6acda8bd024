package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
)

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	Transactions []*MockTransaction
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockRunRepository is an in-memory mock implementation of RunRepository.
type MockRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*domain.DepreciationRun

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, run *domain.DepreciationRun) error
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, run *domain.DepreciationRun) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.DepreciationRun, error)
	ExistsForScopeFunc   func(ctx context.Context, year, month int, categoryID, departmentID *string) (bool, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.DepreciationRun, error)
	ListFunc             func(ctx context.Context, filter usecase.RunFilter) ([]*domain.DepreciationRun, int, error)
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{runs: make(map[string]*domain.DepreciationRun)}
}

func (m *MockRunRepository) Create(ctx context.Context, tx usecase.Transaction, run *domain.DepreciationRun) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.runs {
		if existing.Status != domain.RunStatusCancelled &&
			existing.PeriodYear == run.PeriodYear &&
			existing.PeriodMonth == run.PeriodMonth &&
			strPtrEqual(existing.CategoryID, run.CategoryID) &&
			strPtrEqual(existing.DepartmentID, run.DepartmentID) {
			return domain.ErrRunAlreadyExists
		}
	}
	m.runs[run.ID] = cloneRun(run)
	return nil
}

func (m *MockRunRepository) Update(ctx context.Context, tx usecase.Transaction, run *domain.DepreciationRun) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return domain.ErrRunNotFound
	}
	m.runs[run.ID] = cloneRun(run)
	return nil
}

func (m *MockRunRepository) GetByID(ctx context.Context, id string) (*domain.DepreciationRun, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if run, ok := m.runs[id]; ok {
		return cloneRun(run), nil
	}
	return nil, domain.ErrRunNotFound
}

func (m *MockRunRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.DepreciationRun, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockRunRepository) ExistsForScope(ctx context.Context, year, month int, categoryID, departmentID *string) (bool, error) {
	if m.ExistsForScopeFunc != nil {
		return m.ExistsForScopeFunc(ctx, year, month, categoryID, departmentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, run := range m.runs {
		if run.Status != domain.RunStatusCancelled &&
			run.PeriodYear == year && run.PeriodMonth == month &&
			strPtrEqual(run.CategoryID, categoryID) &&
			strPtrEqual(run.DepartmentID, departmentID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRunRepository) List(ctx context.Context, filter usecase.RunFilter) ([]*domain.DepreciationRun, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var runs []*domain.DepreciationRun
	for _, run := range m.runs {
		if filter.PeriodYear != nil && run.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.PeriodMonth != nil && run.PeriodMonth != *filter.PeriodMonth {
			continue
		}
		if filter.Status != nil && run.Status != *filter.Status {
			continue
		}
		runs = append(runs, cloneRun(run))
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, len(runs), nil
}

// MockEntryRepository is an in-memory mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.DepreciationEntry

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, entry *domain.DepreciationEntry) error
	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus, skipReason *string, updatedAt time.Time) error
	ListByRunFunc    func(ctx context.Context, runID string) ([]*domain.DepreciationEntry, error)
	ListFunc         func(ctx context.Context, filter usecase.EntryFilter) ([]*domain.DepreciationEntry, int, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{entries: make(map[string]*domain.DepreciationEntry)}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.DepreciationEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *entry
	m.entries[entry.ID] = &clone
	return nil
}

func (m *MockEntryRepository) ListByRun(ctx context.Context, runID string) ([]*domain.DepreciationEntry, error) {
	if m.ListByRunFunc != nil {
		return m.ListByRunFunc(ctx, runID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.DepreciationEntry
	for _, entry := range m.entries {
		if entry.RunID == runID {
			clone := *entry
			entries = append(entries, &clone)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].AssetID < entries[j].AssetID })
	return entries, nil
}

func (m *MockEntryRepository) ListByRunForUpdate(ctx context.Context, tx usecase.Transaction, runID string) ([]*domain.DepreciationEntry, error) {
	return m.ListByRun(ctx, runID)
}

func (m *MockEntryRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus, skipReason *string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, skipReason, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	entry.Status = status
	if skipReason != nil {
		entry.SkipReason = skipReason
	}
	entry.UpdatedAt = updatedAt
	return nil
}

func (m *MockEntryRepository) List(ctx context.Context, filter usecase.EntryFilter) ([]*domain.DepreciationEntry, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.DepreciationEntry
	for _, entry := range m.entries {
		if filter.RunID != nil && entry.RunID != *filter.RunID {
			continue
		}
		if filter.AssetID != nil && entry.AssetID != *filter.AssetID {
			continue
		}
		if filter.Status != nil && entry.Status != *filter.Status {
			continue
		}
		if filter.PeriodYear != nil && entry.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.PeriodMonth != nil && entry.PeriodMonth != *filter.PeriodMonth {
			continue
		}
		clone := *entry
		entries = append(entries, &clone)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].AssetID < entries[j].AssetID })
	return entries, len(entries), nil
}

// MockAssetRepository is an in-memory mock implementation of AssetRepository.
type MockAssetRepository struct {
	mu     sync.RWMutex
	assets map[string]*domain.Asset

	GetByIDFunc                 func(ctx context.Context, id string) (*domain.Asset, error)
	ListEligibleFunc            func(ctx context.Context, filter usecase.EligibleAssetFilter) ([]*domain.Asset, error)
	UpdateDepreciationStateFunc func(ctx context.Context, tx usecase.Transaction, state usecase.AssetDepreciationState) error
	UpdateUnitsProducedFunc     func(ctx context.Context, tx usecase.Transaction, assetID string, total decimal.Decimal, updatedAt time.Time) error
}

func NewMockAssetRepository() *MockAssetRepository {
	return &MockAssetRepository{assets: make(map[string]*domain.Asset)}
}

// Put seeds an asset into the mock store.
func (m *MockAssetRepository) Put(asset *domain.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *asset
	m.assets[asset.ID] = &clone
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if asset, ok := m.assets[id]; ok {
		clone := *asset
		return &clone, nil
	}
	return nil, domain.ErrAssetNotFound
}

func (m *MockAssetRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Asset, error) {
	return m.GetByID(ctx, id)
}

func (m *MockAssetRepository) ListEligible(ctx context.Context, filter usecase.EligibleAssetFilter) ([]*domain.Asset, error) {
	if m.ListEligibleFunc != nil {
		return m.ListEligibleFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var assets []*domain.Asset
	for _, asset := range m.assets {
		if asset.Status != domain.AssetStatusActive {
			continue
		}
		if asset.IsFullyDepreciated || asset.DepreciationSuspended {
			continue
		}
		if filter.CategoryID != nil && asset.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.DepartmentID != nil && !strPtrEqual(asset.DepartmentID, filter.DepartmentID) {
			continue
		}
		clone := *asset
		assets = append(assets, &clone)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets, nil
}

func (m *MockAssetRepository) UpdateDepreciationState(ctx context.Context, tx usecase.Transaction, state usecase.AssetDepreciationState) error {
	if m.UpdateDepreciationStateFunc != nil {
		return m.UpdateDepreciationStateFunc(ctx, tx, state)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[state.AssetID]
	if !ok {
		return domain.ErrAssetNotFound
	}
	asset.AccumulatedDepreciation = state.AccumulatedDepreciation
	asset.BookValue = state.BookValue
	asset.LastDepreciationDate = state.LastDepreciationDate
	asset.IsFullyDepreciated = state.IsFullyDepreciated
	asset.FullyDepreciatedDate = state.FullyDepreciatedDate
	asset.Status = state.Status
	asset.UpdatedAt = state.UpdatedAt
	return nil
}

func (m *MockAssetRepository) UpdateUnitsProduced(ctx context.Context, tx usecase.Transaction, assetID string, total decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateUnitsProducedFunc != nil {
		return m.UpdateUnitsProducedFunc(ctx, tx, assetID, total, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[assetID]
	if !ok {
		return domain.ErrAssetNotFound
	}
	asset.UnitsProducedToDate = total
	asset.UpdatedAt = updatedAt
	return nil
}

// MockUnitsRepository is an in-memory mock implementation of UnitsRepository.
type MockUnitsRepository struct {
	mu    sync.RWMutex
	units map[string]decimal.Decimal

	AddFunc          func(ctx context.Context, tx usecase.Transaction, assetID string, year, month int, units decimal.Decimal) (decimal.Decimal, error)
	GetForPeriodFunc func(ctx context.Context, assetID string, year, month int) (*decimal.Decimal, error)
}

func NewMockUnitsRepository() *MockUnitsRepository {
	return &MockUnitsRepository{units: make(map[string]decimal.Decimal)}
}

func unitsKey(assetID string, year, month int) string {
	return fmt.Sprintf("%s:%d-%02d", assetID, year, month)
}

func (m *MockUnitsRepository) Add(ctx context.Context, tx usecase.Transaction, assetID string, year, month int, units decimal.Decimal) (decimal.Decimal, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, tx, assetID, year, month, units)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := unitsKey(assetID, year, month)
	total := m.units[key].Add(units)
	m.units[key] = total
	return total, nil
}

func (m *MockUnitsRepository) GetForPeriod(ctx context.Context, assetID string, year, month int) (*decimal.Decimal, error) {
	if m.GetForPeriodFunc != nil {
		return m.GetForPeriodFunc(ctx, assetID, year, month)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if total, ok := m.units[unitsKey(assetID, year, month)]; ok {
		return &total, nil
	}
	return nil, nil
}

// MockOutboxRepository is an in-memory mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, event := range m.Events {
		if !event.Published {
			events = append(events, event)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.Events {
		if event.ID == id {
			event.Published = true
			event.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, event := range m.Events {
		if event.Published && event.PublishedAt != nil && event.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, event)
	}
	m.Events = kept
	return nil
}

// MockIDGenerator generates sequential IDs for deterministic tests.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockCache is an in-memory mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockRetrier runs the operation once with no retries.
type MockRetrier struct {
	Calls int
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	m.Calls++
	return operation()
}

func strPtrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func cloneRun(run *domain.DepreciationRun) *domain.DepreciationRun {
	clone := *run
	clone.Errors = append([]string(nil), run.Errors...)
	return &clone
}
