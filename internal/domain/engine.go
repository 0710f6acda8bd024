package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Engine computes periodic depreciation for a single asset snapshot. It is a
// pure calculator: it never touches persistence and never mutates the asset.
type Engine struct {
	asset *Asset
}

// NewEngine creates an Engine for one asset snapshot.
func NewEngine(asset *Asset) *Engine {
	return &Engine{asset: asset}
}

// MonthlyDepreciation computes the depreciation amount for a single target
// period given the accumulated depreciation going into it.
//
// Returns zero once book value has reached salvage. The result is clamped so
// book value never drops below salvage, and rounded half-up to 2 decimals.
// unitsProduced is required for the units of production method; its absence
// is a caller error, not a skip.
func (e *Engine) MonthlyDepreciation(year, month int, accumulated decimal.Decimal, unitsProduced *decimal.Decimal) (decimal.Decimal, error) {
	if month < 1 || month > 12 {
		return decimal.Zero, ErrInvalidPeriod
	}
	if e.asset.UsefulLifeMonths <= 0 {
		return decimal.Zero, ErrInvalidLife
	}

	bookBefore := e.asset.TotalCost.Sub(accumulated)
	if bookBefore.LessThanOrEqual(e.asset.SalvageValue) {
		return decimal.Zero, nil
	}

	var (
		amount decimal.Decimal
		err    error
	)
	switch e.asset.Method {
	case MethodStraightLine:
		amount = e.straightLine()
	case MethodDecliningBalance, MethodDoubleDeclining:
		amount = e.decliningBalance(year, month, bookBefore)
	case MethodSumOfYears:
		amount, err = e.sumOfYears(accumulated)
	case MethodUnitsOfProduction:
		amount, err = e.unitsOfProduction(unitsProduced)
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownMethod, e.asset.Method)
	}
	if err != nil {
		return decimal.Zero, err
	}

	amount = amount.Round(2)

	// Never depreciate past salvage.
	remaining := bookBefore.Sub(e.asset.SalvageValue)
	if amount.GreaterThan(remaining) {
		amount = remaining
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return amount, nil
}

// straightLine spreads the depreciable amount evenly over the useful life.
func (e *Engine) straightLine() decimal.Decimal {
	return e.asset.DepreciableAmount().Div(decimal.NewFromInt(int64(e.asset.UsefulLifeMonths)))
}

// decliningBalance applies the configured (or derived) annual percentage to
// the current book value. Pure declining balance asymptotically never reaches
// salvage, so each period the straight-line amount over the remaining life is
// computed as well and the larger of the two is taken.
func (e *Engine) decliningBalance(year, month int, bookBefore decimal.Decimal) decimal.Decimal {
	rate := e.decliningAnnualRate()
	declining := bookBefore.Mul(rate).Div(hundred).Div(twelve)

	remaining := e.remainingLifeMonths(year, month)
	straight := bookBefore.Sub(e.asset.SalvageValue).Div(decimal.NewFromInt(int64(remaining)))

	if straight.GreaterThan(declining) {
		return straight
	}
	return declining
}

// decliningAnnualRate returns the asset's declining rate in percent, deriving
// 150% (declining balance) or 200% (double declining) of the straight-line
// annual rate when none is configured.
func (e *Engine) decliningAnnualRate() decimal.Decimal {
	if e.asset.DecliningRate != nil && e.asset.DecliningRate.IsPositive() {
		return *e.asset.DecliningRate
	}

	factor := decimal.NewFromFloat(1.5)
	if e.asset.Method == MethodDoubleDeclining {
		factor = decimal.NewFromInt(2)
	}

	lifeYears := decimal.NewFromInt(int64(e.asset.UsefulLifeMonths)).Div(twelve)

	return factor.Mul(hundred).Div(lifeYears)
}

// remainingLifeMonths counts the months of useful life left as of the target
// period, measured from the depreciation start date. Floors at one month so
// the final straight-line catch-up never divides by zero.
func (e *Engine) remainingLifeMonths(year, month int) int {
	elapsed := 0
	if e.asset.DepreciationStartDate != nil {
		start := *e.asset.DepreciationStartDate
		elapsed = (year-start.Year())*12 + month - int(start.Month())
	}

	remaining := e.asset.UsefulLifeMonths - elapsed
	if remaining < 1 {
		remaining = 1
	}
	return remaining
}

// sumOfYears computes the sum-of-years-digits amount. The current
// depreciation year is inferred from how much straight-line depreciation the
// accumulated total would represent.
func (e *Engine) sumOfYears(accumulated decimal.Decimal) (decimal.Decimal, error) {
	years := int64(e.asset.UsefulLifeMonths / 12)
	if years < 1 {
		return decimal.Zero, fmt.Errorf("%w: sum of years requires a life of at least 12 months", ErrInvalidLife)
	}

	depreciable := e.asset.DepreciableAmount()
	sum := decimal.NewFromInt(years * (years + 1) / 2)

	straightAnnual := depreciable.Div(decimal.NewFromInt(years))
	currentYear := accumulated.Div(straightAnnual).Floor().IntPart() + 1
	if currentYear > years {
		currentYear = years
	}

	remainingYears := decimal.NewFromInt(years - currentYear + 1)
	annual := depreciable.Mul(remainingYears).Div(sum)

	return annual.Div(twelve), nil
}

// unitsOfProduction depreciates by actual usage in the period.
func (e *Engine) unitsOfProduction(unitsProduced *decimal.Decimal) (decimal.Decimal, error) {
	if unitsProduced == nil {
		return decimal.Zero, ErrUnitsRequired
	}
	if unitsProduced.IsNegative() {
		return decimal.Zero, ErrInvalidUnits
	}
	if e.asset.TotalEstimatedUnits == nil || !e.asset.TotalEstimatedUnits.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: total estimated units not set", ErrInvalidUnits)
	}

	perUnit := e.asset.DepreciableAmount().Div(*e.asset.TotalEstimatedUnits)

	return perUnit.Mul(*unitsProduced), nil
}

// SchedulePeriod is one month of a projected depreciation schedule.
type SchedulePeriod struct {
	Sequence          int
	Year              int
	Month             int
	PeriodStart       time.Time
	PeriodEnd         time.Time
	Amount            decimal.Decimal
	BookValueBefore   decimal.Decimal
	BookValueAfter    decimal.Decimal
	AccumulatedBefore decimal.Decimal
	AccumulatedAfter  decimal.Decimal
	IsFinalPeriod     bool
}

// FullSchedule projects the complete month-by-month schedule from the
// depreciation start date (or the given override), recomputing each period
// with the running accumulated total. It stops when book value reaches
// salvage, or after useful life plus twelve months as a safety cap against a
// method that never converges.
//
// Units of production assets are projected at uniform usage of total
// estimated units over the useful life.
func (e *Engine) FullSchedule(start *time.Time) ([]SchedulePeriod, error) {
	from := start
	if from == nil {
		from = e.asset.DepreciationStartDate
	}
	if from == nil {
		from = e.asset.AcquiredAt
	}
	if from == nil {
		return nil, ErrNoStartDate
	}

	var uniformUnits *decimal.Decimal
	if e.asset.Method == MethodUnitsOfProduction {
		if e.asset.TotalEstimatedUnits == nil || !e.asset.TotalEstimatedUnits.IsPositive() {
			return nil, fmt.Errorf("%w: total estimated units not set", ErrInvalidUnits)
		}
		u := e.asset.TotalEstimatedUnits.Div(decimal.NewFromInt(int64(e.asset.UsefulLifeMonths)))
		uniformUnits = &u
	}

	maxPeriods := e.asset.UsefulLifeMonths + 12
	period := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	accumulated := decimal.Zero

	var schedule []SchedulePeriod
	for i := 0; i < maxPeriods; i++ {
		year, month := period.Year(), int(period.Month())

		bookBefore := e.asset.TotalCost.Sub(accumulated)
		if bookBefore.LessThanOrEqual(e.asset.SalvageValue) {
			break
		}

		amount, err := e.MonthlyDepreciation(year, month, accumulated, uniformUnits)
		if err != nil {
			return nil, err
		}

		accumulatedAfter := accumulated.Add(amount)
		bookAfter := e.asset.TotalCost.Sub(accumulatedAfter)

		sp := SchedulePeriod{
			Sequence:          i + 1,
			Year:              year,
			Month:             month,
			PeriodStart:       period,
			PeriodEnd:         period.AddDate(0, 1, -1),
			Amount:            amount,
			BookValueBefore:   bookBefore,
			BookValueAfter:    bookAfter,
			AccumulatedBefore: accumulated,
			AccumulatedAfter:  accumulatedAfter,
			IsFinalPeriod:     bookAfter.LessThanOrEqual(e.asset.SalvageValue),
		}
		schedule = append(schedule, sp)

		if sp.IsFinalPeriod {
			break
		}

		accumulated = accumulatedAfter
		period = period.AddDate(0, 1, 0)
	}

	return schedule, nil
}

// PartialMonth prorates the target month by days owned over days in the
// month when the acquisition falls inside it. Periods after the acquisition
// month get the full amount.
func (e *Engine) PartialMonth(acquiredAt time.Time, year, month int, accumulated decimal.Decimal, unitsProduced *decimal.Decimal) (decimal.Decimal, error) {
	full, err := e.MonthlyDepreciation(year, month, accumulated, unitsProduced)
	if err != nil {
		return decimal.Zero, err
	}

	if acquiredAt.Year() != year || int(acquiredAt.Month()) != month {
		return full, nil
	}

	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	daysOwned := daysInMonth - acquiredAt.Day() + 1

	prorated := full.Mul(decimal.NewFromInt(int64(daysOwned))).Div(decimal.NewFromInt(int64(daysInMonth)))

	return prorated.Round(2), nil
}

// MidMonthConvention applies the simpler half-month rule as an alternative
// to PartialMonth: acquired before the 15th counts as a full month, on or
// after as a half month. The two policies are never combined.
func (e *Engine) MidMonthConvention(acquiredAt time.Time, year, month int, accumulated decimal.Decimal, unitsProduced *decimal.Decimal) (decimal.Decimal, error) {
	full, err := e.MonthlyDepreciation(year, month, accumulated, unitsProduced)
	if err != nil {
		return decimal.Zero, err
	}

	if acquiredAt.Year() != year || int(acquiredAt.Month()) != month {
		return full, nil
	}

	if acquiredAt.Day() < 15 {
		return full, nil
	}

	return full.Div(decimal.NewFromInt(2)).Round(2), nil
}
