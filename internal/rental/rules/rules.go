// Package rules holds the pure eligibility and plan predicates consumed by
// the rental workflow. No predicate touches storage or mutates state.
package rules

import (
	"time"

	drivermodels "motofleet/internal/driver/models"
	dErrors "motofleet/pkg/domain-errors"
)

// validPlans is the closed plan-duration enumeration, in days.
var validPlans = map[int]struct{}{
	7:  {},
	15: {},
	30: {},
	45: {},
	50: {},
}

// CanRent reports whether the driver's license category grants motorcycle
// privileges (A or A+B). Every other category, recognized or not, fails.
func CanRent(d *drivermodels.DeliveryDriver) bool {
	return d != nil && d.CanRentMotorcycles()
}

// IsPlanValid reports whether days is one of the fixed plan durations.
func IsPlanValid(days int) bool {
	_, ok := validPlans[days]
	return ok
}

// IsStartDateValid reports whether start falls strictly after today at date
// granularity: the rental must begin at least the next calendar day.
func IsStartDateValid(start, today time.Time) bool {
	return dateOnly(start).After(dateOnly(today))
}

// ValidateRental runs all three predicates and returns a business-rule
// error naming the first rule that failed.
func ValidateRental(d *drivermodels.DeliveryDriver, planDays int, start, now time.Time) error {
	if !CanRent(d) {
		return dErrors.New(dErrors.CodeBusinessRule, "driver license category must be A or A+B to rent motorcycles")
	}
	if !IsPlanValid(planDays) {
		return dErrors.Newf(dErrors.CodeBusinessRule, "invalid rental plan: %d days", planDays)
	}
	if !IsStartDateValid(start, now) {
		return dErrors.New(dErrors.CodeBusinessRule, "start date must be at least tomorrow")
	}
	return nil
}

// dateOnly reduces a timestamp to its zone-free calendar date so mixed
// offsets compare by day, not instant.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
