package compliance

import (
	"context"
	"time"

	"custodia/internal/person"
	"custodia/internal/regime"
	"custodia/pkg/domain"
)

// MemoryStore derives candidates by joining the in-memory person and regime
// stores. Used for local runs and unit tests.
type MemoryStore struct {
	persons *person.MemoryStore
	regimes *regime.MemoryStore
}

func NewMemoryStore(persons *person.MemoryStore, regimes *regime.MemoryStore) *MemoryStore {
	return &MemoryStore{persons: persons, regimes: regimes}
}

func (s *MemoryStore) ListOverdueCompliant(_ context.Context, today time.Time) ([]Candidate, error) {
	due := make(map[domain.PersonID]time.Time)
	for _, r := range s.regimes.Snapshot() {
		if r.NextDueDate != nil {
			due[r.PersonID] = *r.NextDueDate
		}
	}

	day := domain.DateOf(today)
	var out []Candidate
	for _, p := range s.persons.Snapshot() {
		if !p.Active || p.Status != domain.StatusCompliant {
			continue
		}
		next, ok := due[p.ID]
		if !ok || !next.Before(day) {
			continue
		}
		out = append(out, Candidate{PersonID: p.ID, NextDueDate: next})
	}
	return out, nil
}
