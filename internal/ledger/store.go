package ledger

import (
	"context"
	"time"

	"custodia/pkg/domain"
)

// Store is the attendance ledger.
//
// Append returns sentinel.ErrConflict when the per-(person, date) uniqueness
// invariant would be violated; the check-then-insert must be atomic with
// respect to concurrent appends for the same person. Violations are business
// rejections, not storage faults; storage faults surface as other errors.
type Store interface {
	// Exists reports whether a non-administrative event is recorded for the
	// person on the given civil date.
	Exists(ctx context.Context, personID domain.PersonID, date time.Time) (bool, error)
	Append(ctx context.Context, event *Event) error
	// History returns entries ordered by event date then event time,
	// descending by default.
	History(ctx context.Context, personID domain.PersonID, page Page) ([]Event, error)
	MostRecent(ctx context.Context, personID domain.PersonID) (*Event, error)
	Earliest(ctx context.Context, personID domain.PersonID) (*Event, error)
}
