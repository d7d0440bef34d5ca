package stats

import (
	"context"
	"time"

	"custodia/pkg/domain"
)

// PeriodCounts are the raw figures one summary is computed from.
type PeriodCounts struct {
	ActivePersons int
	Compliant     int
	Delinquent    int
	ByKind        map[domain.AttendanceKind]int
}

// DueEntry is one person on a due-date listing.
type DueEntry struct {
	PersonID    domain.PersonID         `json:"person_id"`
	FullName    string                  `json:"full_name"`
	Status      domain.ComplianceStatus `json:"status"`
	NextDueDate time.Time               `json:"next_due_date"`
}

// Store answers the aggregate queries behind the statistics endpoints.
// Listings cover active persons only.
type Store interface {
	// CountsForPeriod tallies active persons by cached status and ledger
	// events by kind within [from, to]. Administrative entries are excluded.
	// A non-empty jurisdiction restricts both tallies to its persons.
	CountsForPeriod(ctx context.Context, from, to time.Time, jurisdiction string) (*PeriodCounts, error)

	// DueWithin lists persons whose next due date falls in [from, to],
	// soonest first.
	DueWithin(ctx context.Context, from, to time.Time) ([]DueEntry, error)

	// OverdueAsOf lists persons whose next due date fell strictly before
	// today, most overdue first.
	OverdueAsOf(ctx context.Context, today time.Time) ([]DueEntry, error)
}
