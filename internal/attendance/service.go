// Package attendance implements the transactional check-in use cases. One
// invocation is one unit of work: validate, check for a duplicate, append the
// ledger entry, advance the regime, recompute the compliance status. Any
// failing step aborts the whole invocation; no partial mutation survives.
package attendance

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"custodia/internal/attendance/metrics"
	"custodia/internal/audit"
	"custodia/internal/ledger"
	"custodia/internal/person"
	"custodia/internal/regime"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/sentinel"
	pstrings "custodia/pkg/platform/strings"
	"custodia/pkg/platform/tx"
	"custodia/pkg/requestcontext"
)

const (
	// MaxRemoteDurationMinutes caps a remote check-in at a full working day.
	MaxRemoteDurationMinutes = 480

	// JustificationLookBackDays bounds how far back an absence can be excused.
	JustificationLookBackDays = 30

	// MaxAttachedDocs caps the supporting documents on a justification.
	MaxAttachedDocs = 5

	// RescheduleHorizonDays bounds how far ahead a due date can be pushed.
	RescheduleHorizonDays = 365

	minReasonLen           = 10
	maxJustifyReasonLen    = 500
	maxRescheduleReasonLen = 200
)

// Service is the attendance recorder.
type Service struct {
	persons person.Store
	regimes regime.Store
	events  ledger.Store
	runner  tx.Runner
	audit   *audit.Publisher
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewService(
	persons person.Store,
	regimes regime.Store,
	events ledger.Store,
	runner tx.Runner,
	auditor *audit.Publisher,
	m *metrics.Metrics,
) *Service {
	return &Service{
		persons: persons,
		regimes: regimes,
		events:  events,
		runner:  runner,
		audit:   auditor,
		metrics: m,
		tracer:  otel.Tracer("custodia/attendance"),
	}
}

// Receipt reports what one successful recording changed.
type Receipt struct {
	Event       ledger.Event
	NextDueDate *time.Time
	Status      domain.ComplianceStatus
}

// RecordPresential records an in-person check-in dated today.
//
// Errors: CodeNotFound for an unknown or deactivated person, CodeConflict
// when the day already holds an event, CodeValidation for a missing
// validator identity.
func (s *Service) RecordPresential(ctx context.Context, personID domain.PersonID, validatedBy, notes string) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.RecordPresential",
		trace.WithAttributes(attribute.String("person.id", personID.String())))
	defer span.End()

	if err := requireValidator(validatedBy); err != nil {
		return s.reject(span, string(domain.KindPresential), err)
	}

	now := requestcontext.Now(ctx)
	event := &ledger.Event{
		ID:         domain.NewEventID(),
		PersonID:   personID,
		EventDate:  domain.DateOf(now),
		EventTime:  now,
		Kind:       domain.KindPresential,
		RecordedBy: validatedBy,
		Notes:      strings.TrimSpace(notes),
	}
	receipt, err := s.recordCheckIn(ctx, event, audit.ActionPresentialRecorded)
	if err != nil {
		return s.reject(span, string(domain.KindPresential), err)
	}
	s.metrics.IncrementRecording(string(domain.KindPresential), "ok")
	return receipt, nil
}

// RemoteInput carries the remote-specific detail of a virtual check-in.
type RemoteInput struct {
	Platform        string
	DurationMinutes int
	MeetingLink     string
	Notes           string
}

// RecordRemote records a check-in held over a video platform, dated today.
func (s *Service) RecordRemote(ctx context.Context, personID domain.PersonID, validatedBy string, input RemoteInput) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.RecordRemote",
		trace.WithAttributes(attribute.String("person.id", personID.String())))
	defer span.End()

	if err := requireValidator(validatedBy); err != nil {
		return s.reject(span, string(domain.KindRemote), err)
	}
	if strings.TrimSpace(input.Platform) == "" {
		return s.reject(span, string(domain.KindRemote),
			dErrors.New(dErrors.CodeValidation, "platform is required for a remote check-in"))
	}
	if input.DurationMinutes < 1 || input.DurationMinutes > MaxRemoteDurationMinutes {
		return s.reject(span, string(domain.KindRemote),
			dErrors.Newf(dErrors.CodeValidation, "duration must be between 1 and %d minutes", MaxRemoteDurationMinutes))
	}

	now := requestcontext.Now(ctx)
	event := &ledger.Event{
		ID:              domain.NewEventID(),
		PersonID:        personID,
		EventDate:       domain.DateOf(now),
		EventTime:       now,
		Kind:            domain.KindRemote,
		RecordedBy:      validatedBy,
		Notes:           strings.TrimSpace(input.Notes),
		Platform:        strings.TrimSpace(input.Platform),
		DurationMinutes: input.DurationMinutes,
		MeetingLink:     strings.TrimSpace(input.MeetingLink),
	}
	receipt, err := s.recordCheckIn(ctx, event, audit.ActionRemoteRecorded)
	if err != nil {
		return s.reject(span, string(domain.KindRemote), err)
	}
	s.metrics.IncrementRecording(string(domain.KindRemote), "ok")
	return receipt, nil
}

// JustificationInput carries a retroactive excuse for a missed check-in.
type JustificationInput struct {
	AbsenceDate  time.Time
	Reason       string
	AttachedDocs []string
	// Reschedule advances the regime from the absence date. When false the
	// regime is untouched and the next reconciliation sweep settles the
	// status, which may mean DELINQUENT if the due date has already elapsed.
	Reschedule bool
}

// RecordJustifiedAbsence excuses a specific past date. The entry is keyed on
// the absence date it excuses, so the per-day uniqueness invariant also
// rejects a second justification for the same date.
func (s *Service) RecordJustifiedAbsence(ctx context.Context, personID domain.PersonID, validatedBy string, input JustificationInput) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.RecordJustifiedAbsence",
		trace.WithAttributes(attribute.String("person.id", personID.String())))
	defer span.End()

	if err := requireValidator(validatedBy); err != nil {
		return s.reject(span, string(domain.KindJustifiedAbsence), err)
	}
	if err := validateReason(input.Reason, maxJustifyReasonLen); err != nil {
		return s.reject(span, string(domain.KindJustifiedAbsence), err)
	}
	input.AttachedDocs = pstrings.DedupeAndTrim(input.AttachedDocs)
	if len(input.AttachedDocs) > MaxAttachedDocs {
		return s.reject(span, string(domain.KindJustifiedAbsence),
			dErrors.Newf(dErrors.CodeValidation, "at most %d attached documents are allowed", MaxAttachedDocs))
	}

	now := requestcontext.Now(ctx)
	today := domain.DateOf(now)
	absence := domain.DateOf(input.AbsenceDate)
	oldest := domain.AddDays(today, -JustificationLookBackDays)
	if absence.Before(oldest) || absence.After(today) {
		return s.reject(span, string(domain.KindJustifiedAbsence),
			dErrors.Newf(dErrors.CodeValidation, "absence date must be within the last %d days", JustificationLookBackDays))
	}

	event := &ledger.Event{
		ID:           domain.NewEventID(),
		PersonID:     personID,
		EventDate:    absence,
		EventTime:    now,
		Kind:         domain.KindJustifiedAbsence,
		RecordedBy:   validatedBy,
		Reason:       strings.TrimSpace(input.Reason),
		AttachedDocs: input.AttachedDocs,
	}

	var receipt *Receipt
	err := s.runner.RunInTx(ctx, personID.String(), func(ctx context.Context) error {
		p, r, err := s.loadActive(ctx, personID)
		if err != nil {
			return err
		}
		if err := s.append(ctx, event); err != nil {
			return err
		}

		status := p.Status
		if input.Reschedule {
			r.Advance(absence)
			if err := s.regimes.Save(ctx, r); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to advance regime")
			}
			status = domain.StatusFor(r.NextDueDate, today)
			if err := s.persons.SetStatus(ctx, personID, status); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update status")
			}
		}

		receipt = &Receipt{Event: *event, NextDueDate: r.NextDueDate, Status: status}
		return s.audit.Emit(ctx, audit.Event{
			Action:   audit.ActionAbsenceJustified,
			PersonID: personID.String(),
			ActorID:  validatedBy,
			Detail:   "absence of " + absence.Format(time.DateOnly),
		})
	})
	if err != nil {
		return s.reject(span, string(domain.KindJustifiedAbsence), err)
	}
	s.metrics.IncrementRecording(string(domain.KindJustifiedAbsence), "ok")
	return receipt, nil
}

// RescheduleNextCheckIn overrides the next due date without recording an
// attendance event. It leaves an administrative ledger note dated today so
// the override is visible in the person's history, distinct from a real
// absence.
func (s *Service) RescheduleNextCheckIn(ctx context.Context, personID domain.PersonID, approvedBy string, newDate time.Time, reason string) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.RescheduleNextCheckIn",
		trace.WithAttributes(attribute.String("person.id", personID.String())))
	defer span.End()

	const kind = "reschedule"
	if err := requireValidator(approvedBy); err != nil {
		return s.reject(span, kind, err)
	}
	if err := validateReason(reason, maxRescheduleReasonLen); err != nil {
		return s.reject(span, kind, err)
	}

	now := requestcontext.Now(ctx)
	today := domain.DateOf(now)
	target := domain.DateOf(newDate)
	if !target.After(today) {
		return s.reject(span, kind,
			dErrors.New(dErrors.CodeValidation, "new due date must be in the future"))
	}
	if target.After(domain.AddDays(today, RescheduleHorizonDays)) {
		return s.reject(span, kind,
			dErrors.New(dErrors.CodeValidation, "new due date must be at most one year ahead"))
	}

	note := &ledger.Event{
		ID:             domain.NewEventID(),
		PersonID:       personID,
		EventDate:      today,
		EventTime:      now,
		Kind:           domain.KindJustifiedAbsence,
		RecordedBy:     approvedBy,
		Reason:         strings.TrimSpace(reason),
		Administrative: true,
	}

	var receipt *Receipt
	err := s.runner.RunInTx(ctx, personID.String(), func(ctx context.Context) error {
		_, r, err := s.loadActive(ctx, personID)
		if err != nil {
			return err
		}
		if err := s.append(ctx, note); err != nil {
			return err
		}
		r.Override(target)
		if err := s.regimes.Save(ctx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to override regime")
		}
		status := domain.StatusFor(r.NextDueDate, today)
		if err := s.persons.SetStatus(ctx, personID, status); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update status")
		}
		receipt = &Receipt{Event: *note, NextDueDate: r.NextDueDate, Status: status}
		return s.audit.Emit(ctx, audit.Event{
			Action:   audit.ActionRescheduled,
			PersonID: personID.String(),
			ActorID:  approvedBy,
			Detail:   "next check-in moved to " + target.Format(time.DateOnly),
		})
	})
	if err != nil {
		return s.reject(span, kind, err)
	}
	s.metrics.IncrementRecording(kind, "ok")
	return receipt, nil
}

// History returns a person's attendance ledger, newest first by default.
func (s *Service) History(ctx context.Context, personID domain.PersonID, page ledger.Page) ([]ledger.Event, error) {
	if _, err := s.persons.Get(ctx, personID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	events, err := s.events.History(ctx, personID, page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	return events, nil
}

// recordCheckIn runs the shared unit of work for presential and remote
// check-ins: duplicate check, append, advance, recompute status.
func (s *Service) recordCheckIn(ctx context.Context, event *ledger.Event, action audit.Action) (*Receipt, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRecordLatency(time.Since(start)) }()

	var receipt *Receipt
	err := s.runner.RunInTx(ctx, event.PersonID.String(), func(ctx context.Context) error {
		_, r, err := s.loadActive(ctx, event.PersonID)
		if err != nil {
			return err
		}
		if err := s.append(ctx, event); err != nil {
			return err
		}
		r.Advance(event.EventDate)
		if err := s.regimes.Save(ctx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to advance regime")
		}
		status := domain.StatusFor(r.NextDueDate, event.EventDate)
		if err := s.persons.SetStatus(ctx, event.PersonID, status); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update status")
		}
		receipt = &Receipt{Event: *event, NextDueDate: r.NextDueDate, Status: status}
		return s.audit.Emit(ctx, audit.Event{
			Action:   action,
			PersonID: event.PersonID.String(),
			ActorID:  event.RecordedBy,
		})
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// loadActive fetches the person and regime, rejecting unknown or deactivated
// persons.
func (s *Service) loadActive(ctx context.Context, personID domain.PersonID) (*person.MonitoredPerson, *regime.Regime, error) {
	p, err := s.persons.Get(ctx, personID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	if !p.Active {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "person is no longer under supervision")
	}
	r, err := s.regimes.Get(ctx, personID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load regime")
	}
	return p, r, nil
}

// append performs the duplicate pre-check and the insert. The store's unique
// constraint stays authoritative; the pre-check only produces a friendlier
// path for the common sequential duplicate.
func (s *Service) append(ctx context.Context, event *ledger.Event) error {
	if !event.Administrative {
		exists, err := s.events.Exists(ctx, event.PersonID, event.EventDate)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for duplicates")
		}
		if exists {
			return duplicateError(event.Kind)
		}
	}
	if err := s.events.Append(ctx, event); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return duplicateError(event.Kind)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append event")
	}
	return nil
}

func duplicateError(kind domain.AttendanceKind) error {
	if kind == domain.KindJustifiedAbsence {
		return dErrors.New(dErrors.CodeConflict, "a justification is already recorded for this date")
	}
	return dErrors.New(dErrors.CodeConflict, "a check-in is already recorded for this date")
}

func requireValidator(validatedBy string) error {
	if strings.TrimSpace(validatedBy) == "" {
		return dErrors.New(dErrors.CodeValidation, "validator identity is required")
	}
	return nil
}

func validateReason(reason string, maxLen int) error {
	length := utf8.RuneCountInString(strings.TrimSpace(reason))
	if length < minReasonLen || length > maxLen {
		return dErrors.Newf(dErrors.CodeValidation, "reason must be %d to %d characters", minReasonLen, maxLen)
	}
	return nil
}

// reject classifies a failure for metrics and the span, then passes it on.
func (s *Service) reject(span trace.Span, kind string, err error) (*Receipt, error) {
	span.RecordError(err)
	outcome := "error"
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation:
		outcome = "validation"
	case dErrors.CodeConflict:
		outcome = "conflict"
	case dErrors.CodeNotFound:
		outcome = "not_found"
	}
	s.metrics.IncrementRecording(kind, outcome)
	return nil, err
}
