package person

import (
	"context"

	"custodia/pkg/domain"
)

// Store persists monitored persons.
//
// Get returns sentinel.ErrNotFound when the person is unknown. Create returns
// sentinel.ErrConflict when the tax id or national id is already registered.
// Mutations observe the transaction carried in context.
type Store interface {
	Create(ctx context.Context, p *MonitoredPerson) error
	Get(ctx context.Context, id domain.PersonID) (*MonitoredPerson, error)
	SetStatus(ctx context.Context, id domain.PersonID, status domain.ComplianceStatus) error
	Deactivate(ctx context.Context, id domain.PersonID) error
}
