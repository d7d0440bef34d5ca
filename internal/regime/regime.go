// Package regime owns the due-date recurrence rule: how often a monitored
// person must check in and when the next mandatory check-in falls due.
//
// The regime never reads the wall clock. Callers supply every reference date,
// so the recurrence rule is deterministic and unit-testable regardless of
// when it runs.
package regime

import (
	"time"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

const (
	// MinPeriodicityDays and MaxPeriodicityDays bound how often a judge can
	// require check-ins: daily at most, yearly at least.
	MinPeriodicityDays = 1
	MaxPeriodicityDays = 365
)

// Regime is the periodicity contract of one monitored person. Exactly one
// regime exists per person, created at intake.
type Regime struct {
	PersonID        domain.PersonID
	PeriodicityDays int
	InitialCheckIn  time.Time
	// NextDueDate is nil before scheduling, otherwise the date of the next
	// mandatory check-in. Mutated on every qualifying event.
	NextDueDate *time.Time
	UpdatedAt   time.Time
}

// Initialize builds a regime for a person. The first due date is the initial
// check-in date itself.
//
// Errors: CodeValidation when periodicity is out of [1,365] or the initial
// date is zero.
func Initialize(personID domain.PersonID, periodicityDays int, initialCheckIn time.Time) (*Regime, error) {
	if periodicityDays < MinPeriodicityDays || periodicityDays > MaxPeriodicityDays {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"periodicity must be between %d and %d days", MinPeriodicityDays, MaxPeriodicityDays)
	}
	if initialCheckIn.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "initial check-in date is required")
	}
	first := domain.DateOf(initialCheckIn)
	return &Regime{
		PersonID:        personID,
		PeriodicityDays: periodicityDays,
		InitialCheckIn:  first,
		NextDueDate:     &first,
	}, nil
}

// Advance recomputes the next due date from a qualifying event date:
// eventDate + periodicityDays. Pure function of the two inputs.
func (r *Regime) Advance(eventDate time.Time) time.Time {
	next := domain.AddDays(eventDate, r.PeriodicityDays)
	r.NextDueDate = &next
	return next
}

// Override replaces the next due date directly, bypassing the recurrence
// rule. Used only by the administrative reschedule path; callers validate
// the new date.
func (r *Regime) Override(newDate time.Time) {
	next := domain.DateOf(newDate)
	r.NextDueDate = &next
}

// DaysOverdue returns how many whole days the regime is past due relative to
// the supplied reference date. Zero when on schedule or unscheduled.
func (r *Regime) DaysOverdue(today time.Time) int {
	if r.NextDueDate == nil {
		return 0
	}
	overdue := domain.DaysBetween(*r.NextDueDate, today)
	if overdue < 0 {
		return 0
	}
	return overdue
}
