package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/goassets/internal/usecase"
)

// CreateRunRequest represents a request to create a depreciation run.
type CreateRunRequest struct {
	PeriodYear   int     `json:"period_year"`
	PeriodMonth  int     `json:"period_month"`
	CategoryID   *string `json:"category_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	CreatedBy    string  `json:"created_by"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateRunRequest) ToUseCaseInput() usecase.CreateRunInput {
	return usecase.CreateRunInput{
		PeriodYear:   r.PeriodYear,
		PeriodMonth:  r.PeriodMonth,
		CategoryID:   r.CategoryID,
		DepartmentID: r.DepartmentID,
		CreatedBy:    r.CreatedBy,
	}
}

// PostRunRequest represents a request to post a calculated run.
type PostRunRequest struct {
	PostedBy string `json:"posted_by"`
}

// ReverseRunRequest represents a request to reverse a posted run.
type ReverseRunRequest struct {
	Reason     string `json:"reason"`
	ReversedBy string `json:"reversed_by"`
}

// ToUseCaseInput converts to use case input.
func (r *ReverseRunRequest) ToUseCaseInput(runID string) usecase.ReverseRunInput {
	return usecase.ReverseRunInput{
		RunID:      runID,
		Reason:     r.Reason,
		ReversedBy: r.ReversedBy,
	}
}

// PreviewRequest represents a request to preview a period without persisting.
type PreviewRequest struct {
	PeriodYear  int     `json:"period_year"`
	PeriodMonth int     `json:"period_month"`
	CategoryID  *string `json:"category_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PreviewRequest) ToUseCaseInput() usecase.PreviewInput {
	return usecase.PreviewInput{
		PeriodYear:  r.PeriodYear,
		PeriodMonth: r.PeriodMonth,
		CategoryID:  r.CategoryID,
	}
}

// RecordUnitsRequest represents a request to record production units.
type RecordUnitsRequest struct {
	PeriodYear  int             `json:"period_year"`
	PeriodMonth int             `json:"period_month"`
	Units       decimal.Decimal `json:"units"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordUnitsRequest) ToUseCaseInput(assetID string) usecase.RecordUnitsInput {
	return usecase.RecordUnitsInput{
		AssetID:     assetID,
		PeriodYear:  r.PeriodYear,
		PeriodMonth: r.PeriodMonth,
		Units:       r.Units,
	}
}
