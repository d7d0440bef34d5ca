package regime

import (
	"context"
	"sync"
	"time"

	"custodia/pkg/domain"
	"custodia/pkg/platform/sentinel"
)

// MemoryStore keeps regimes in a map. Used for local runs and unit tests.
type MemoryStore struct {
	mu      sync.RWMutex
	regimes map[domain.PersonID]Regime
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{regimes: make(map[domain.PersonID]Regime)}
}

func (s *MemoryStore) Save(_ context.Context, r *Regime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *r
	if stored.NextDueDate != nil {
		next := *stored.NextDueDate
		stored.NextDueDate = &next
	}
	stored.UpdatedAt = time.Now()
	s.regimes[r.PersonID] = stored
	return nil
}

func (s *MemoryStore) Get(_ context.Context, personID domain.PersonID) (*Regime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.regimes[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := stored
	if out.NextDueDate != nil {
		next := *out.NextDueDate
		out.NextDueDate = &next
	}
	return &out, nil
}

// Snapshot returns a copy of every stored regime. Used by the in-memory
// compliance and stats stores, which join persons against due dates.
func (s *MemoryStore) Snapshot() []Regime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Regime, 0, len(s.regimes))
	for _, r := range s.regimes {
		copied := r
		if copied.NextDueDate != nil {
			next := *copied.NextDueDate
			copied.NextDueDate = &next
		}
		out = append(out, copied)
	}
	return out
}
