package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/iho/goassets/internal/adapter/http/handler"
	apimiddleware "github.com/iho/goassets/internal/adapter/http/middleware"
	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
)

type routerRunStub struct{}

func (s *routerRunStub) CreateRun(ctx context.Context, input usecase.CreateRunInput) (*domain.DepreciationRun, error) {
	return &domain.DepreciationRun{ID: "run-1", Status: domain.RunStatusCalculated}, nil
}

func (s *routerRunStub) PostRun(ctx context.Context, runID, postedBy string) (*domain.DepreciationRun, error) {
	return &domain.DepreciationRun{ID: runID, Status: domain.RunStatusPosted}, nil
}

func (s *routerRunStub) CancelRun(ctx context.Context, runID string) (*domain.DepreciationRun, error) {
	return &domain.DepreciationRun{ID: runID, Status: domain.RunStatusCancelled}, nil
}

func (s *routerRunStub) ReverseRun(ctx context.Context, input usecase.ReverseRunInput) (*domain.DepreciationRun, error) {
	return &domain.DepreciationRun{ID: input.RunID, Status: domain.RunStatusCancelled}, nil
}

func (s *routerRunStub) GetRun(ctx context.Context, id string) (*domain.DepreciationRun, error) {
	return &domain.DepreciationRun{ID: id}, nil
}

func (s *routerRunStub) ListRuns(ctx context.Context, filter usecase.RunFilter) ([]*domain.DepreciationRun, int, error) {
	return nil, 0, nil
}

func (s *routerRunStub) Preview(ctx context.Context, input usecase.PreviewInput) ([]*usecase.EntryPreview, error) {
	return nil, nil
}

type routerEntryStub struct{}

func (s *routerEntryStub) ListEntries(ctx context.Context, filter usecase.EntryFilter) ([]*domain.DepreciationEntry, int, error) {
	return nil, 0, nil
}

func (s *routerEntryStub) ListByRun(ctx context.Context, runID string) ([]*domain.DepreciationEntry, error) {
	return nil, nil
}

type routerAssetStub struct{}

func (s *routerAssetStub) RecordUnits(ctx context.Context, input usecase.RecordUnitsInput) (*usecase.RecordUnitsResult, error) {
	return &usecase.RecordUnitsResult{AssetID: input.AssetID}, nil
}

func (s *routerAssetStub) GetSchedule(ctx context.Context, assetID string) ([]domain.SchedulePeriod, error) {
	return nil, nil
}

func (s *routerAssetStub) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	return &domain.Asset{ID: id}, nil
}

type stubIdempotencyStore struct {
	mu     sync.Mutex
	checks int
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks++
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		RunHandler:    handler.NewRunHandler(&routerRunStub{}),
		EntryHandler:  handler.NewEntryHandler(&routerEntryStub{}),
		AssetHandler:  handler.NewAssetHandler(&routerAssetStub{}),
		HealthHandler: handler.NewHealthHandler(nil, nil),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RunRoutesWired(t *testing.T) {
	router := NewRouter(newRouterConfig())

	body := bytes.NewBufferString(`{"period_year":2024,"period_month":3,"created_by":"ops"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", body)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected POST /api/v1/runs to return 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/runs/run-1/post", bytes.NewBufferString(`{"posted_by":"ops"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected POST /api/v1/runs/{id}/post to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := bytes.NewBufferString(`{"period_year":2024,"period_month":3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", body)
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if store.checks != 1 {
		t.Fatalf("expected idempotency store to be consulted once, got %d", store.checks)
	}
}
