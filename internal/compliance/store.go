package compliance

import (
	"context"
	"time"

	"custodia/pkg/domain"
)

// Candidate is a person the sweep should examine: active, currently marked
// compliant, with a due date already in the past.
type Candidate struct {
	PersonID    domain.PersonID
	NextDueDate time.Time
}

// Store lists reconciliation candidates.
type Store interface {
	// ListOverdueCompliant returns every active person whose status still
	// reads COMPLIANT while the next due date fell strictly before today.
	ListOverdueCompliant(ctx context.Context, today time.Time) ([]Candidate, error)
}
