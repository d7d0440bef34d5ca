// Package compliance reconciles each person's cached status against their
// regime's due date. Check-ins flip DELINQUENT back to COMPLIANT inline; the
// opposite transition only happens here, through the periodic sweep, so a
// person is never penalized mid-request for a date that elapsed overnight.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"custodia/internal/audit"
	"custodia/internal/compliance/metrics"
	"custodia/internal/person"
	"custodia/internal/regime"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/sentinel"
	"custodia/pkg/platform/tx"
	"custodia/pkg/requestcontext"
)

// Manager evaluates and repairs compliance statuses.
type Manager struct {
	persons     person.Store
	regimes     regime.Store
	candidates  Store
	runner      tx.Runner
	audit       *audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	parallelism int
}

func NewManager(
	persons person.Store,
	regimes regime.Store,
	candidates Store,
	runner tx.Runner,
	auditor *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	parallelism int,
) *Manager {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Manager{
		persons:     persons,
		regimes:     regimes,
		candidates:  candidates,
		runner:      runner,
		audit:       auditor,
		metrics:     m,
		logger:      logger,
		parallelism: parallelism,
	}
}

// Evaluation is a read-only compliance check for one person.
type Evaluation struct {
	PersonID    domain.PersonID
	Status      domain.ComplianceStatus
	NextDueDate *time.Time
	DaysOverdue int
}

// Evaluate computes the live status of one person from the regime and today's
// date, without touching the cached status.
func (m *Manager) Evaluate(ctx context.Context, personID domain.PersonID) (*Evaluation, error) {
	p, err := m.persons.Get(ctx, personID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	r, err := m.regimes.Get(ctx, personID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load regime")
	}

	today := domain.DateOf(requestcontext.Now(ctx))
	return &Evaluation{
		PersonID:    p.ID,
		Status:      domain.StatusFor(r.NextDueDate, today),
		NextDueDate: r.NextDueDate,
		DaysOverdue: r.DaysOverdue(today),
	}, nil
}

// Report summarizes one reconciliation sweep.
type Report struct {
	Examined         int `json:"examined"`
	MarkedDelinquent int `json:"marked_delinquent"`
	Failed           int `json:"failed"`
}

// ReconcileAll finds every active person whose due date elapsed while the
// cached status still reads COMPLIANT and flips them to DELINQUENT. A failure
// on one person never blocks the rest. Running the sweep twice in a row is a
// no-op the second time: already-delinquent persons are not candidates.
func (m *Manager) ReconcileAll(ctx context.Context) (Report, error) {
	start := time.Now()
	m.metrics.IncrementSweepRuns()
	defer func() { m.metrics.ObserveSweepDuration(time.Since(start)) }()

	today := domain.DateOf(requestcontext.Now(ctx))
	candidates, err := m.candidates.ListOverdueCompliant(ctx, today)
	if err != nil {
		return Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue persons")
	}

	type outcome struct {
		marked bool
		err    error
	}
	results := make([]outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.parallelism)
	for i, candidate := range candidates {
		g.Go(func() error {
			marked, err := m.markDelinquent(gctx, candidate, today)
			results[i] = outcome{marked: marked, err: err}
			return nil
		})
	}
	// Workers never return errors; the group only propagates cancellation.
	_ = g.Wait()

	report := Report{Examined: len(candidates)}
	for i, res := range results {
		if res.err != nil {
			report.Failed++
			m.logger.Error("reconciliation failed for person",
				"person_id", candidates[i].PersonID.String(), "error", res.err)
			continue
		}
		if res.marked {
			report.MarkedDelinquent++
		}
	}
	m.metrics.AddMarkedDelinquent(report.MarkedDelinquent)
	m.metrics.AddSweepFailures(report.Failed)

	m.logger.Info("reconciliation sweep finished",
		"examined", report.Examined,
		"marked_delinquent", report.MarkedDelinquent,
		"failed", report.Failed,
		"duration", time.Since(start))
	return report, nil
}

// markDelinquent flips one candidate inside its own unit of work. The status
// is re-read under the lock: a check-in racing with the sweep may already have
// advanced the due date, in which case the flip is skipped.
func (m *Manager) markDelinquent(ctx context.Context, candidate Candidate, today time.Time) (bool, error) {
	var marked bool
	err := m.runner.RunInTx(ctx, candidate.PersonID.String(), func(ctx context.Context) error {
		p, err := m.persons.Get(ctx, candidate.PersonID)
		if err != nil {
			return fmt.Errorf("load person: %w", err)
		}
		if !p.Active || p.Status == domain.StatusDelinquent {
			return nil
		}
		r, err := m.regimes.Get(ctx, candidate.PersonID)
		if err != nil {
			return fmt.Errorf("load regime: %w", err)
		}
		if domain.StatusFor(r.NextDueDate, today) != domain.StatusDelinquent {
			return nil
		}
		if err := m.persons.SetStatus(ctx, candidate.PersonID, domain.StatusDelinquent); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		marked = true
		return m.audit.Emit(ctx, audit.Event{
			Action:   audit.ActionMarkedDelinquent,
			PersonID: candidate.PersonID.String(),
			ActorID:  "system",
			Detail:   fmt.Sprintf("%d days overdue", r.DaysOverdue(today)),
		})
	})
	return marked, err
}
