package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goassets/internal/adapter/http/dto"
	"github.com/iho/goassets/internal/domain"
	"github.com/iho/goassets/internal/usecase"
)

// entryService is the slice of EntryUseCase this handler needs.
type entryService interface {
	ListEntries(ctx context.Context, filter usecase.EntryFilter) ([]*domain.DepreciationEntry, int, error)
	ListByRun(ctx context.Context, runID string) ([]*domain.DepreciationEntry, error)
}

// EntryHandler handles depreciation entry HTTP requests.
type EntryHandler struct {
	entryUC entryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC entryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// ListByRun lists every entry of one run.
func (h *EntryHandler) ListByRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "missing run ID", "")
		return
	}

	entries, err := h.entryUC.ListByRun(r.Context(), runID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list entries", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// List lists entries matching query filters.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.EntryFilter{
		RunID:       strPtrQuery(r, "run_id"),
		AssetID:     strPtrQuery(r, "asset_id"),
		PeriodYear:  intPtrQuery(r, "period_year"),
		PeriodMonth: intPtrQuery(r, "period_month"),
		Limit:       parseIntQuery(r, "limit", 20),
		Offset:      parseIntQuery(r, "offset", 0),
	}
	if status := strPtrQuery(r, "status"); status != nil {
		s := domain.EntryStatus(*status)
		filter.Status = &s
	}

	entries, total, err := h.entryUC.ListEntries(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryListResponse{
		Entries: dto.EntriesFromDomain(entries),
		Total:   total,
	})
}
