package person

import (
	"context"
	"sync"
	"time"

	"custodia/pkg/domain"
	"custodia/pkg/platform/sentinel"
)

// MemoryStore keeps persons in maps. Used for local runs and unit tests.
type MemoryStore struct {
	mu          sync.RWMutex
	persons     map[domain.PersonID]MonitoredPerson
	byTaxID     map[domain.TaxID]domain.PersonID
	byNatID     map[domain.NationalID]domain.PersonID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		persons: make(map[domain.PersonID]MonitoredPerson),
		byTaxID: make(map[domain.TaxID]domain.PersonID),
		byNatID: make(map[domain.NationalID]domain.PersonID),
	}
}

func (s *MemoryStore) Create(_ context.Context, p *MonitoredPerson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.TaxID != "" {
		if _, exists := s.byTaxID[p.TaxID]; exists {
			return sentinel.ErrConflict
		}
	}
	if p.NationalID != "" {
		if _, exists := s.byNatID[p.NationalID]; exists {
			return sentinel.ErrConflict
		}
	}
	stored := *p
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.persons[p.ID] = stored
	if p.TaxID != "" {
		s.byTaxID[p.TaxID] = p.ID
	}
	if p.NationalID != "" {
		s.byNatID[p.NationalID] = p.ID
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id domain.PersonID) (*MonitoredPerson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.persons[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := stored
	return &out, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, id domain.PersonID, status domain.ComplianceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.persons[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Status = status
	s.persons[id] = stored
	return nil
}

func (s *MemoryStore) Deactivate(_ context.Context, id domain.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.persons[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Active = false
	s.persons[id] = stored
	return nil
}

// Snapshot returns a copy of every stored person. Used by the in-memory
// compliance and stats stores.
func (s *MemoryStore) Snapshot() []MonitoredPerson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MonitoredPerson, 0, len(s.persons))
	for _, p := range s.persons {
		out = append(out, p)
	}
	return out
}
