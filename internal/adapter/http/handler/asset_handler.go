package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goassets/internal/adapter/http/dto"
	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
)

// assetService is the slice of AssetUseCase this handler needs.
type assetService interface {
	RecordUnits(ctx context.Context, input usecase.RecordUnitsInput) (*usecase.RecordUnitsResult, error)
	GetSchedule(ctx context.Context, assetID string) ([]domain.SchedulePeriod, error)
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
}

// AssetHandler handles asset-side HTTP requests.
type AssetHandler struct {
	assetUC assetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetUC assetService) *AssetHandler {
	return &AssetHandler{assetUC: assetUC}
}

// Get retrieves an asset by ID.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing asset ID", "")
		return
	}

	asset, err := h.assetUC.GetAsset(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get asset", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AssetFromDomain(asset))
}

// RecordUnits records production units for a units-of-production asset.
func (h *AssetHandler) RecordUnits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing asset ID", "")
		return
	}

	var req dto.RecordUnitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.assetUC.RecordUnits(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record units", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RecordUnitsFromResult(result))
}

// GetSchedule projects the asset's full depreciation schedule.
func (h *AssetHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing asset ID", "")
		return
	}

	periods, err := h.assetUC.GetSchedule(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to project schedule", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(id, periods))
}
