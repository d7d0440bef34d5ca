// Package stats computes supervision-wide aggregates: period summaries for
// court reporting and due-date listings for officer worklists. Everything here
// is read-only; figures reflect cached statuses and the ledger as stored.
package stats

import (
	"context"
	"math"
	"strings"
	"time"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/requestcontext"
)

const (
	// MaxUpcomingDays bounds the look-ahead of the upcoming listing.
	MaxUpcomingDays = 90

	// DefaultUpcomingDays is the look-ahead when the caller names none.
	DefaultUpcomingDays = 7
)

// Service is the statistics aggregator.
type Service struct {
	store Store
	cache *Cache
}

func NewService(store Store, cache *Cache) *Service {
	return &Service{store: store, cache: cache}
}

// Summary is one reporting period's aggregate figures.
type Summary struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Jurisdiction  string    `json:"jurisdiction,omitempty"`
	ActivePersons int       `json:"active_persons"`
	Compliant     int       `json:"compliant"`
	Delinquent    int       `json:"delinquent"`
	// ComplianceRate is the percentage of active persons whose cached status
	// is COMPLIANT, rounded to two decimals. Zero when no one is supervised.
	ComplianceRate float64 `json:"compliance_rate"`

	Presential        int `json:"presential"`
	Remote            int `json:"remote"`
	JustifiedAbsences int `json:"justified_absences"`
	TotalEvents       int `json:"total_events"`
}

// PeriodSummary aggregates the period [from, to]. A non-empty jurisdiction
// narrows every figure to persons supervised there. Results may be served
// from a short-lived cache snapshot.
func (s *Service) PeriodSummary(ctx context.Context, from, to time.Time, jurisdiction string) (*Summary, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)
	jurisdiction = strings.TrimSpace(jurisdiction)
	if from.IsZero() || to.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "period start and end are required")
	}
	if to.Before(from) {
		return nil, dErrors.New(dErrors.CodeValidation, "period end must not precede its start")
	}

	if cached := s.cache.GetSummary(ctx, from, to, jurisdiction); cached != nil {
		return cached, nil
	}

	counts, err := s.store.CountsForPeriod(ctx, from, to, jurisdiction)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate period")
	}

	summary := &Summary{
		From:              from,
		To:                to,
		Jurisdiction:      jurisdiction,
		ActivePersons:     counts.ActivePersons,
		Compliant:         counts.Compliant,
		Delinquent:        counts.Delinquent,
		ComplianceRate:    rate(counts.Compliant, counts.ActivePersons),
		Presential:        counts.ByKind[domain.KindPresential],
		Remote:            counts.ByKind[domain.KindRemote],
		JustifiedAbsences: counts.ByKind[domain.KindJustifiedAbsence],
	}
	summary.TotalEvents = summary.Presential + summary.Remote + summary.JustifiedAbsences

	s.cache.SetSummary(ctx, summary)
	return summary, nil
}

// DayCount is the number of check-ins falling due on one date.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// UpcomingSchedule pairs the per-date workload with the person listing.
type UpcomingSchedule struct {
	Days    []DayCount `json:"days"`
	Entries []DueEntry `json:"entries"`
}

// OverdueReport carries the overdue headcount and who makes it up.
type OverdueReport struct {
	Count   int        `json:"count"`
	Entries []DueEntry `json:"entries"`
}

// Upcoming schedules the check-ins due within the next days, today included.
// Zero days selects the default week.
func (s *Service) Upcoming(ctx context.Context, days int) (*UpcomingSchedule, error) {
	if days == 0 {
		days = DefaultUpcomingDays
	}
	if days < 1 || days > MaxUpcomingDays {
		return nil, dErrors.Newf(dErrors.CodeValidation, "days must be between 1 and %d", MaxUpcomingDays)
	}
	today := domain.DateOf(requestcontext.Now(ctx))
	entries, err := s.store.DueWithin(ctx, today, domain.AddDays(today, days))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list upcoming check-ins")
	}
	return &UpcomingSchedule{Days: countByDate(entries), Entries: entries}, nil
}

// Overdue reports active persons whose due date has already elapsed. The
// cached status may still read COMPLIANT between sweeps; the due date decides.
func (s *Service) Overdue(ctx context.Context) (*OverdueReport, error) {
	today := domain.DateOf(requestcontext.Now(ctx))
	entries, err := s.store.OverdueAsOf(ctx, today)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue check-ins")
	}
	return &OverdueReport{Count: len(entries), Entries: entries}, nil
}

// countByDate folds a due listing into (date, count) pairs. Entries arrive
// ordered by due date, so one pass suffices.
func countByDate(entries []DueEntry) []DayCount {
	days := []DayCount{}
	for _, e := range entries {
		if n := len(days); n > 0 && days[n-1].Date.Equal(e.NextDueDate) {
			days[n-1].Count++
			continue
		}
		days = append(days, DayCount{Date: e.NextDueDate, Count: 1})
	}
	return days
}

func rate(compliant, active int) float64 {
	if active == 0 {
		return 0
	}
	return math.Round(float64(compliant)/float64(active)*10000) / 100
}
