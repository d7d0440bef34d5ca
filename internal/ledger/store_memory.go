package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"custodia/pkg/domain"
	"custodia/pkg/platform/sentinel"
)

// MemoryStore keeps the ledger in per-person slices with a (person, date) key
// map enforcing uniqueness. The single mutex makes check-then-insert atomic,
// matching what the postgres unique index guarantees.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[domain.PersonID][]Event
	byDay  map[dayKey]struct{}
}

type dayKey struct {
	person domain.PersonID
	date   time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[domain.PersonID][]Event),
		byDay:  make(map[dayKey]struct{}),
	}
}

func (s *MemoryStore) Exists(_ context.Context, personID domain.PersonID, date time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byDay[dayKey{person: personID, date: domain.DateOf(date)}]
	return ok, nil
}

func (s *MemoryStore) Append(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey{person: event.PersonID, date: domain.DateOf(event.EventDate)}
	if !event.Administrative {
		if _, exists := s.byDay[key]; exists {
			return sentinel.ErrConflict
		}
		s.byDay[key] = struct{}{}
	}
	stored := *event
	stored.EventDate = domain.DateOf(event.EventDate)
	stored.AttachedDocs = append([]string(nil), event.AttachedDocs...)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.events[event.PersonID] = append(s.events[event.PersonID], stored)
	return nil
}

func (s *MemoryStore) History(_ context.Context, personID domain.PersonID, page Page) ([]Event, error) {
	page = page.Normalize()

	s.mu.RLock()
	all := append([]Event{}, s.events[personID]...)
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].EventDate.Equal(all[j].EventDate) {
			if page.SortDir == SortAsc {
				return all[i].EventDate.Before(all[j].EventDate)
			}
			return all[i].EventDate.After(all[j].EventDate)
		}
		if page.SortDir == SortAsc {
			return all[i].EventTime.Before(all[j].EventTime)
		}
		return all[i].EventTime.After(all[j].EventTime)
	})

	start := page.Offset()
	if start >= len(all) {
		return []Event{}, nil
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (s *MemoryStore) MostRecent(_ context.Context, personID domain.PersonID) (*Event, error) {
	return s.pick(personID, func(candidate, best Event) bool {
		if !candidate.EventDate.Equal(best.EventDate) {
			return candidate.EventDate.After(best.EventDate)
		}
		return candidate.EventTime.After(best.EventTime)
	})
}

func (s *MemoryStore) Earliest(_ context.Context, personID domain.PersonID) (*Event, error) {
	return s.pick(personID, func(candidate, best Event) bool {
		if !candidate.EventDate.Equal(best.EventDate) {
			return candidate.EventDate.Before(best.EventDate)
		}
		return candidate.EventTime.Before(best.EventTime)
	})
}

func (s *MemoryStore) pick(personID domain.PersonID, better func(candidate, best Event) bool) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[personID]
	if len(events) == 0 {
		return nil, sentinel.ErrNotFound
	}
	best := events[0]
	for _, candidate := range events[1:] {
		if better(candidate, best) {
			best = candidate
		}
	}
	out := best
	return &out, nil
}

// CountInPeriod returns event counts by kind between from and to inclusive,
// excluding administrative entries. A nil include predicate counts everyone.
// Used by the in-memory stats store.
func (s *MemoryStore) CountInPeriod(from, to time.Time, include func(domain.PersonID) bool) map[domain.AttendanceKind]int {
	from, to = domain.DateOf(from), domain.DateOf(to)
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.AttendanceKind]int)
	for personID, events := range s.events {
		if include != nil && !include(personID) {
			continue
		}
		for _, e := range events {
			if e.Administrative {
				continue
			}
			if e.EventDate.Before(from) || e.EventDate.After(to) {
				continue
			}
			counts[e.Kind]++
		}
	}
	return counts
}
