package domain

import (
	"github.com/google/uuid"

	dErrors "custodia/pkg/domain-errors"
)

// PersonID identifies a monitored person.
//
// Usage: construct via ParsePersonID at trust boundaries; direct casting
// bypasses validation.
type PersonID uuid.UUID

// NewPersonID generates a fresh person ID.
func NewPersonID() PersonID {
	return PersonID(uuid.New())
}

// ParsePersonID constructs a PersonID from external input.
//
// Errors: returns CodeValidation when the value is empty or not a UUID.
func ParsePersonID(s string) (PersonID, error) {
	if s == "" {
		return PersonID{}, dErrors.New(dErrors.CodeValidation, "person id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil || parsed == uuid.Nil {
		return PersonID{}, dErrors.New(dErrors.CodeValidation, "person id must be a valid UUID")
	}
	return PersonID(parsed), nil
}

func (id PersonID) String() string { return uuid.UUID(id).String() }

func (id PersonID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// EventID identifies a ledger entry.
type EventID uuid.UUID

func NewEventID() EventID { return EventID(uuid.New()) }

func ParseEventID(s string) (EventID, error) {
	if s == "" {
		return EventID{}, dErrors.New(dErrors.CodeValidation, "event id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil || parsed == uuid.Nil {
		return EventID{}, dErrors.New(dErrors.CodeValidation, "event id must be a valid UUID")
	}
	return EventID(parsed), nil
}

func (id EventID) String() string { return uuid.UUID(id).String() }

func (id EventID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
