package domain

import "errors"

var (
	// Lookup errors
	ErrRunNotFound      = errors.New("depreciation run not found")
	ErrEntryNotFound    = errors.New("depreciation entry not found")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrCategoryNotFound = errors.New("asset category not found")

	// Business rule errors
	ErrRunAlreadyExists = errors.New("a depreciation run already exists for this period and scope")
	ErrInvalidRunStatus = errors.New("operation not allowed in current run status")
	ErrZeroTotalRun     = errors.New("cannot post a run with zero total depreciation")

	// Validation errors
	ErrInvalidPeriod  = errors.New("period month must be between 1 and 12")
	ErrInvalidLife    = errors.New("useful life must be positive")
	ErrUnitsRequired  = errors.New("units of production method requires units produced")
	ErrInvalidUnits   = errors.New("units produced must be positive")
	ErrNoStartDate    = errors.New("asset has no depreciation start date")
	ErrNotUnitsMethod = errors.New("asset does not use the units of production method")
	ErrReasonRequired = errors.New("reversal reason is required")
	ErrUnknownMethod  = errors.New("unknown depreciation method")
)
