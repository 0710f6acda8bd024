package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/adapter/http/dto"
	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
)

type assetServiceStub struct {
	recordFn   func(ctx context.Context, input usecase.RecordUnitsInput) (*usecase.RecordUnitsResult, error)
	scheduleFn func(ctx context.Context, assetID string) ([]domain.SchedulePeriod, error)
	getFn      func(ctx context.Context, id string) (*domain.Asset, error)
}

func (s *assetServiceStub) RecordUnits(ctx context.Context, input usecase.RecordUnitsInput) (*usecase.RecordUnitsResult, error) {
	return s.recordFn(ctx, input)
}

func (s *assetServiceStub) GetSchedule(ctx context.Context, assetID string) ([]domain.SchedulePeriod, error) {
	return s.scheduleFn(ctx, assetID)
}

func (s *assetServiceStub) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	return s.getFn(ctx, id)
}

func TestAssetHandler_RecordUnits_Success(t *testing.T) {
	var captured usecase.RecordUnitsInput
	handler := NewAssetHandler(&assetServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordUnitsInput) (*usecase.RecordUnitsResult, error) {
			captured = input
			return &usecase.RecordUnitsResult{
				AssetID:     input.AssetID,
				PeriodYear:  input.PeriodYear,
				PeriodMonth: input.PeriodMonth,
				PeriodUnits: decimal.NewFromInt(300),
				TotalUnits:  decimal.NewFromInt(500),
			}, nil
		},
	})

	body, _ := json.Marshal(dto.RecordUnitsRequest{
		PeriodYear:  2024,
		PeriodMonth: 3,
		Units:       decimal.NewFromInt(300),
	})

	req := httptest.NewRequest(http.MethodPost, "/assets/asset-1/units", bytes.NewReader(body))
	req = withURLParam(req, "id", "asset-1")
	rec := httptest.NewRecorder()

	handler.RecordUnits(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.AssetID != "asset-1" || !captured.Units.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.RecordUnitsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.TotalUnits.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected total units 500, got %s", resp.TotalUnits)
	}
}

func TestAssetHandler_RecordUnits_WrongMethod(t *testing.T) {
	handler := NewAssetHandler(&assetServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordUnitsInput) (*usecase.RecordUnitsResult, error) {
			return nil, domain.ErrNotUnitsMethod
		},
	})

	body, _ := json.Marshal(dto.RecordUnitsRequest{PeriodYear: 2024, PeriodMonth: 3, Units: decimal.NewFromInt(10)})
	req := httptest.NewRequest(http.MethodPost, "/assets/asset-1/units", bytes.NewReader(body))
	req = withURLParam(req, "id", "asset-1")
	rec := httptest.NewRecorder()

	handler.RecordUnits(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAssetHandler_GetSchedule_Success(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	handler := NewAssetHandler(&assetServiceStub{
		scheduleFn: func(ctx context.Context, assetID string) ([]domain.SchedulePeriod, error) {
			return []domain.SchedulePeriod{
				{Sequence: 1, Year: 2024, Month: 1, PeriodStart: start, Amount: decimal.NewFromInt(1000)},
				{Sequence: 2, Year: 2024, Month: 2, Amount: decimal.NewFromInt(1000), IsFinalPeriod: true},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/assets/asset-1/schedule", nil)
	req = withURLParam(req, "id", "asset-1")
	rec := httptest.NewRecorder()

	handler.GetSchedule(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ScheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AssetID != "asset-1" || len(resp.Periods) != 2 {
		t.Fatalf("unexpected schedule response %+v", resp)
	}
	if !resp.Periods[1].IsFinalPeriod {
		t.Fatal("expected last period to be final")
	}
}

func TestAssetHandler_Get_NotFound(t *testing.T) {
	handler := NewAssetHandler(&assetServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Asset, error) {
			return nil, domain.ErrAssetNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/assets/missing", nil)
	req = withURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
