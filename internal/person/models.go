package person

import (
	"time"

	"custodia/pkg/domain"
)

// MonitoredPerson is someone released under judicial supervision and bound to
// a check-in regime. Persons are never deleted; they are soft-deactivated
// when supervision ends.
type MonitoredPerson struct {
	ID           domain.PersonID
	FullName     string
	TaxID        domain.TaxID      // empty when NationalID identifies the person
	NationalID   domain.NationalID // empty when TaxID identifies the person
	Jurisdiction string
	ContactEmail string
	ContactPhone string
	// Status is a cached projection of the regime's due date vs. "today".
	// Mutated only by the attendance recorder and the reconciliation sweep.
	Status    domain.ComplianceStatus
	Active    bool
	CreatedAt time.Time
}
