package regime

import (
	"context"

	"custodia/pkg/domain"
)

// Store persists the 1:1 person→regime relation.
//
// Get returns sentinel.ErrNotFound (wrapped) when no regime exists. Save
// upserts; within a recorder unit of work it must observe the transaction
// carried in context.
type Store interface {
	Save(ctx context.Context, r *Regime) error
	Get(ctx context.Context, personID domain.PersonID) (*Regime, error)
}
