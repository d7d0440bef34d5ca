// Package ledger is the append-only attendance event store. Entries are never
// mutated or deleted; corrections happen by recording new facts (a justified
// absence, an administrative reschedule note).
package ledger

import (
	"time"

	"custodia/pkg/domain"
)

// Event is one immutable ledger entry.
//
// Invariant: at most one non-administrative event exists per (PersonID,
// EventDate). Justifications are keyed by the absence date they excuse, so
// the same constraint covers them. Administrative entries (the audit note a
// reschedule leaves) are exempt and never collide with a real check-in.
type Event struct {
	ID         domain.EventID
	PersonID   domain.PersonID
	EventDate  time.Time // civil date the entry is keyed on
	EventTime  time.Time // informational wall-clock instant of recording
	Kind       domain.AttendanceKind
	RecordedBy string
	Notes      string

	// Remote check-in detail.
	Platform        string
	DurationMinutes int
	MeetingLink     string

	// Justification detail.
	Reason       string
	AttachedDocs []string

	Administrative bool
	CreatedAt      time.Time
}

// SortDir orders history queries.
type SortDir string

const (
	SortDesc SortDir = "desc"
	SortAsc  SortDir = "asc"
)

// Page bounds a history query. Zero values select the first page of 50,
// newest first.
type Page struct {
	Number  int
	Size    int
	SortDir SortDir
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Normalize clamps paging parameters to supported bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	if p.SortDir != SortAsc {
		p.SortDir = SortDesc
	}
	return p
}

// Offset returns the number of entries preceding this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
