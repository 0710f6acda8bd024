package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepreciationMethod selects the formula used to spread an asset's
// depreciable amount over its useful life.
type DepreciationMethod string

const (
	MethodStraightLine      DepreciationMethod = "straight_line"
	MethodDecliningBalance  DepreciationMethod = "declining_balance"
	MethodDoubleDeclining   DepreciationMethod = "double_declining"
	MethodSumOfYears        DepreciationMethod = "sum_of_years"
	MethodUnitsOfProduction DepreciationMethod = "units_of_production"
)

// Valid reports whether m is a known depreciation method.
func (m DepreciationMethod) Valid() bool {
	switch m {
	case MethodStraightLine, MethodDecliningBalance, MethodDoubleDeclining,
		MethodSumOfYears, MethodUnitsOfProduction:
		return true
	}
	return false
}

type AssetStatus string

const (
	AssetStatusDraft            AssetStatus = "draft"
	AssetStatusActive           AssetStatus = "active"
	AssetStatusUnderMaintenance AssetStatus = "under_maintenance"
	AssetStatusDisposed         AssetStatus = "disposed"
	AssetStatusTransferred      AssetStatus = "transferred"
	AssetStatusFullyDepreciated AssetStatus = "fully_depreciated"
)

// Asset is an immutable snapshot of a fixed asset's cost basis, method and
// depreciation state, supplied by the asset master. The depreciation module
// references assets by ID and never owns them.
type Asset struct {
	ID           string
	Name         string
	CategoryID   string
	DepartmentID *string

	TotalCost        decimal.Decimal
	SalvageValue     decimal.Decimal
	UsefulLifeMonths int

	Method              DepreciationMethod
	DecliningRate       *decimal.Decimal // annual rate in percent; derived when absent
	TotalEstimatedUnits *decimal.Decimal
	UnitsProducedToDate decimal.Decimal

	AccumulatedDepreciation decimal.Decimal
	BookValue               decimal.Decimal

	AcquiredAt            *time.Time
	DepreciationStartDate *time.Time
	LastDepreciationDate  *time.Time

	DepreciationSuspended bool
	SuspensionReason      *string

	IsFullyDepreciated   bool
	FullyDepreciatedDate *time.Time

	Status    AssetStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DepreciableAmount is the amount actually spread over the useful life.
func (a *Asset) DepreciableAmount() decimal.Decimal {
	return a.TotalCost.Sub(a.SalvageValue)
}

// CurrentBookValue derives book value from cost and accumulated depreciation.
// The stored BookValue must always equal this.
func (a *Asset) CurrentBookValue() decimal.Decimal {
	return a.TotalCost.Sub(a.AccumulatedDepreciation)
}

// RemainingDepreciable is how much may still be depreciated before the book
// value hits salvage.
func (a *Asset) RemainingDepreciable() decimal.Decimal {
	remaining := a.CurrentBookValue().Sub(a.SalvageValue)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Depreciable reports whether the asset's status allows depreciation at all.
func (a *Asset) Depreciable() bool {
	return a.Status == AssetStatusActive || a.Status == AssetStatusFullyDepreciated
}

// Category supplies the GL account references and default method for a group
// of assets. Owned by the asset master; read-only here.
type Category struct {
	ID     string
	Name   string
	Method DepreciationMethod

	ExpenseAccountID     *string
	AccumulatedAccountID *string
}

// HasGLAccounts reports whether both ledger account references are present.
// Entries cannot be posted to the GL without them.
func (c *Category) HasGLAccounts() bool {
	return c.ExpenseAccountID != nil && *c.ExpenseAccountID != "" &&
		c.AccumulatedAccountID != nil && *c.AccumulatedAccountID != ""
}
