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

// runService is the slice of RunUseCase this handler needs.
type runService interface {
	CreateRun(ctx context.Context, input usecase.CreateRunInput) (*domain.DepreciationRun, error)
	PostRun(ctx context.Context, runID, postedBy string) (*domain.DepreciationRun, error)
	CancelRun(ctx context.Context, runID string) (*domain.DepreciationRun, error)
	ReverseRun(ctx context.Context, input usecase.ReverseRunInput) (*domain.DepreciationRun, error)
	GetRun(ctx context.Context, id string) (*domain.DepreciationRun, error)
	ListRuns(ctx context.Context, filter usecase.RunFilter) ([]*domain.DepreciationRun, int, error)
	Preview(ctx context.Context, input usecase.PreviewInput) ([]*usecase.EntryPreview, error)
}

// RunHandler handles depreciation run HTTP requests.
type RunHandler struct {
	runUC runService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runUC runService) *RunHandler {
	return &RunHandler{runUC: runUC}
}

// Create creates a depreciation run for a period.
func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	run, err := h.runUC.CreateRun(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create run", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.RunFromDomain(run))
}

// Post posts a calculated run.
func (h *RunHandler) Post(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing run ID", "")
		return
	}

	var req dto.PostRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	run, err := h.runUC.PostRun(r.Context(), id, req.PostedBy)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to post run", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RunFromDomain(run))
}

// Cancel cancels a draft or calculated run.
func (h *RunHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing run ID", "")
		return
	}

	run, err := h.runUC.CancelRun(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to cancel run", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RunFromDomain(run))
}

// Reverse reverses a posted run.
func (h *RunHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing run ID", "")
		return
	}

	var req dto.ReverseRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	run, err := h.runUC.ReverseRun(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reverse run", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RunFromDomain(run))
}

// Get retrieves a run by ID.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing run ID", "")
		return
	}

	run, err := h.runUC.GetRun(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get run", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RunFromDomain(run))
}

// List lists runs, newest first.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.RunFilter{
		PeriodYear:  intPtrQuery(r, "period_year"),
		PeriodMonth: intPtrQuery(r, "period_month"),
		Limit:       parseIntQuery(r, "limit", 20),
		Offset:      parseIntQuery(r, "offset", 0),
	}
	if status := strPtrQuery(r, "status"); status != nil {
		s := domain.RunStatus(*status)
		filter.Status = &s
	}

	runs, total, err := h.runUC.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunListResponse{
		Runs:  dto.RunsFromDomain(runs),
		Total: total,
	})
}

// Preview computes a dry run for a period without persisting anything.
func (h *RunHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	previews, err := h.runUC.Preview(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to preview period", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PreviewFromUseCase(req.PeriodYear, req.PeriodMonth, previews))
}
