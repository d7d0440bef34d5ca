package audit

import (
	"context"
	"time"
)

// Action names a compliance-relevant fact. The supervision court can demand
// the full trail for a person, so every recorder mutation emits one.
type Action string

const (
	ActionPersonRegistered   Action = "person.registered"
	ActionPersonDeactivated  Action = "person.deactivated"
	ActionPresentialRecorded Action = "attendance.presential.recorded"
	ActionRemoteRecorded     Action = "attendance.remote.recorded"
	ActionAbsenceJustified   Action = "attendance.absence.justified"
	ActionRescheduled        Action = "regime.rescheduled"
	ActionMarkedDelinquent   Action = "compliance.marked_delinquent"
)

// Event is one audit trail entry. Events are written to the outbox inside the
// recorder's unit of work and published to Kafka by the outbox worker, so the
// trail and the ledger commit or roll back together.
type Event struct {
	Action    Action
	PersonID  string
	ActorID   string
	RequestID string
	Timestamp time.Time
	Detail    string
}

// Store appends audit events. Implementations must observe the transaction
// carried in context so the event commits with the mutation it describes.
type Store interface {
	Append(ctx context.Context, event Event) error
}
