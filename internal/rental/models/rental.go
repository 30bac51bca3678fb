package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dErrors "motofleet/pkg/domain-errors"
)

// LateFeePerDay is the fixed surcharge per extra day on late returns,
// independent of the contract's daily rate.
var LateFeePerDay = decimal.NewFromInt(50)

// Early-return fine percentages by plan length. Plans without an entry are
// fined 0% on purpose; the product only defined fines for the 7 and 15 day
// plans.
var earlyReturnFines = map[int]decimal.Decimal{
	7:  decimal.RequireFromString("0.20"),
	15: decimal.RequireFromString("0.40"),
}

// Rental is a contract binding one driver to one vehicle for a fixed plan.
//
// Invariants:
//   - DriverID and VehicleID are set for the lifetime of the contract
//   - PlanDays is one of the closed plan enumeration {7, 15, 30, 45, 50}
//   - DailyRate is a positive amount
//   - Once ActualEndDate is set, TotalCost is set and the contract is
//     closed; pricing fields never mutate again
//
// All monetary arithmetic uses decimal, never binary floating point.
type Rental struct {
	ID              uuid.UUID           `json:"id"`
	DriverID        uuid.UUID           `json:"driver_id"`
	VehicleID       uuid.UUID           `json:"vehicle_id"`
	PlanDays        int                 `json:"plan_days"`
	DailyRate       decimal.Decimal     `json:"daily_rate"`
	StartDate       time.Time           `json:"start_date"`
	ExpectedEndDate time.Time           `json:"expected_end_date"`
	ActualEndDate   *time.Time          `json:"actual_end_date,omitempty"`
	TotalCost       decimal.NullDecimal `json:"total_cost,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// NewRental builds an open contract. Eligibility and plan rules are checked
// by the caller (rental rules + service) before construction.
func NewRental(driverID, vehicleID uuid.UUID, planDays int, dailyRate decimal.Decimal, startDate time.Time, now time.Time) (*Rental, error) {
	if !dailyRate.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "daily rate must be positive")
	}
	return &Rental{
		ID:              uuid.New(),
		DriverID:        driverID,
		VehicleID:       vehicleID,
		PlanDays:        planDays,
		DailyRate:       dailyRate,
		StartDate:       startDate,
		ExpectedEndDate: startDate.AddDate(0, 0, planDays),
		CreatedAt:       now,
	}, nil
}

// IsClosed reports whether the contract reached its terminal state.
func (r *Rental) IsClosed() bool {
	return r.ActualEndDate != nil
}

// Close sets the actual return date and computes the final cost. Closing is
// terminal: closing an already-closed contract fails and leaves the totals
// untouched.
//
// Three mutually exclusive regimes, compared at date granularity:
//   - early:  total = rate×plan − rate×unused + fine, where the fine is
//     rate×unused×pct and pct depends on the plan (7→20%, 15→40%, else 0%)
//   - late:   total = rate×plan + 50×extra
//   - exact:  total = rate×plan
func (r *Rental) Close(returnDate time.Time) error {
	if r.IsClosed() {
		return dErrors.New(dErrors.CodeBusinessRule, "rental is already closed")
	}

	actual := dateOnly(returnDate)
	expected := dateOnly(r.ExpectedEndDate)
	planCost := r.DailyRate.Mul(decimal.NewFromInt(int64(r.PlanDays)))

	var total decimal.Decimal
	switch {
	case actual.Before(expected): // early return
		unused := decimal.NewFromInt(int64(daysBetween(actual, expected)))
		unusedCost := r.DailyRate.Mul(unused)
		fine := unusedCost.Mul(finePercentage(r.PlanDays))
		total = planCost.Sub(unusedCost).Add(fine)
	case actual.After(expected): // late return
		extra := decimal.NewFromInt(int64(daysBetween(expected, actual)))
		total = planCost.Add(LateFeePerDay.Mul(extra))
	default: // exact return
		total = planCost
	}

	r.ActualEndDate = &returnDate
	r.TotalCost = decimal.NewNullDecimal(total)
	return nil
}

func finePercentage(planDays int) decimal.Decimal {
	if pct, ok := earlyReturnFines[planDays]; ok {
		return pct
	}
	return decimal.Zero
}

// dateOnly reduces a timestamp to its zone-free calendar date. Rebuilt in
// UTC so timestamps carrying different offsets still subtract to whole days.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b, both already date-truncated.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
