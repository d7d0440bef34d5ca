package stats

import (
	"context"
	"sort"
	"time"

	"custodia/internal/ledger"
	"custodia/internal/person"
	"custodia/internal/regime"
	"custodia/pkg/domain"
)

// MemoryStore aggregates over the in-memory person, regime and ledger stores.
// Used for local runs and unit tests.
type MemoryStore struct {
	persons *person.MemoryStore
	regimes *regime.MemoryStore
	events  *ledger.MemoryStore
}

func NewMemoryStore(persons *person.MemoryStore, regimes *regime.MemoryStore, events *ledger.MemoryStore) *MemoryStore {
	return &MemoryStore{persons: persons, regimes: regimes, events: events}
}

func (s *MemoryStore) CountsForPeriod(_ context.Context, from, to time.Time, jurisdiction string) (*PeriodCounts, error) {
	active := make(map[domain.PersonID]struct{})
	counts := &PeriodCounts{}
	for _, p := range s.persons.Snapshot() {
		if !p.Active {
			continue
		}
		if jurisdiction != "" && p.Jurisdiction != jurisdiction {
			continue
		}
		active[p.ID] = struct{}{}
		counts.ActivePersons++
		if p.Status == domain.StatusDelinquent {
			counts.Delinquent++
		} else {
			counts.Compliant++
		}
	}
	counts.ByKind = s.events.CountInPeriod(from, to, func(id domain.PersonID) bool {
		_, ok := active[id]
		return ok
	})
	return counts, nil
}

func (s *MemoryStore) DueWithin(_ context.Context, from, to time.Time) ([]DueEntry, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)
	entries := s.join(func(next time.Time) bool {
		return !next.Before(from) && !next.After(to)
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].NextDueDate.Before(entries[j].NextDueDate)
	})
	return entries, nil
}

func (s *MemoryStore) OverdueAsOf(_ context.Context, today time.Time) ([]DueEntry, error) {
	day := domain.DateOf(today)
	entries := s.join(func(next time.Time) bool {
		return next.Before(day)
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].NextDueDate.Before(entries[j].NextDueDate)
	})
	return entries, nil
}

func (s *MemoryStore) join(match func(next time.Time) bool) []DueEntry {
	due := make(map[domain.PersonID]time.Time)
	for _, r := range s.regimes.Snapshot() {
		if r.NextDueDate != nil {
			due[r.PersonID] = *r.NextDueDate
		}
	}
	entries := []DueEntry{}
	for _, p := range s.persons.Snapshot() {
		if !p.Active {
			continue
		}
		next, ok := due[p.ID]
		if !ok || !match(next) {
			continue
		}
		entries = append(entries, DueEntry{
			PersonID:    p.ID,
			FullName:    p.FullName,
			Status:      p.Status,
			NextDueDate: next,
		})
	}
	return entries
}
