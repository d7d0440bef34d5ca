package compliance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/attendance"
	"custodia/internal/audit"
	"custodia/internal/compliance"
	"custodia/internal/ledger"
	"custodia/internal/person"
	"custodia/internal/regime"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/tx"
	"custodia/pkg/requestcontext"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(day time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), day)
}

type fixture struct {
	persons *person.MemoryStore
	regimes *regime.MemoryStore
	events  *ledger.MemoryStore
	trail   *audit.MemoryStore
	runner  tx.Runner
	manager *compliance.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		persons: person.NewMemoryStore(),
		regimes: regime.NewMemoryStore(),
		events:  ledger.NewMemoryStore(),
		trail:   audit.NewMemoryStore(),
		runner:  tx.NewShardedRunner(),
	}
	f.manager = compliance.NewManager(
		f.persons,
		f.regimes,
		compliance.NewMemoryStore(f.persons, f.regimes),
		f.runner,
		audit.NewPublisher(f.trail),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		4,
	)
	return f
}

func (f *fixture) addPerson(t *testing.T, periodicityDays int, initial time.Time) domain.PersonID {
	t.Helper()
	p := &person.MonitoredPerson{
		ID:       domain.NewPersonID(),
		FullName: "Person Under Supervision",
		TaxID:    domain.TaxID(domain.NewPersonID().String()[:11]),
		Status:   domain.StatusCompliant,
		Active:   true,
	}
	require.NoError(t, f.persons.Create(context.Background(), p))
	r, err := regime.Initialize(p.ID, periodicityDays, initial)
	require.NoError(t, err)
	require.NoError(t, f.regimes.Save(context.Background(), r))
	return p.ID
}

func TestReconcileAll(t *testing.T) {
	t.Run("marks overdue persons delinquent", func(t *testing.T) {
		f := newFixture(t)
		overdue := f.addPerson(t, 7, date(2024, time.January, 8))
		onTime := f.addPerson(t, 7, date(2024, time.January, 20))
		ctx := at(date(2024, time.January, 10))

		report, err := f.manager.ReconcileAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Examined)
		assert.Equal(t, 1, report.MarkedDelinquent)
		assert.Equal(t, 0, report.Failed)

		p, err := f.persons.Get(ctx, overdue)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDelinquent, p.Status)

		p, err = f.persons.Get(ctx, onTime)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompliant, p.Status)

		events := f.trail.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionMarkedDelinquent, events[0].Action)
		assert.Equal(t, overdue.String(), events[0].PersonID)
		assert.Equal(t, "2 days overdue", events[0].Detail)
	})

	t.Run("due today still counts as compliant", func(t *testing.T) {
		f := newFixture(t)
		personID := f.addPerson(t, 7, date(2024, time.January, 10))
		ctx := at(date(2024, time.January, 10))

		report, err := f.manager.ReconcileAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Examined)

		p, err := f.persons.Get(ctx, personID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompliant, p.Status)
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.addPerson(t, 7, date(2024, time.January, 8))
		ctx := at(date(2024, time.January, 10))

		first, err := f.manager.ReconcileAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, first.MarkedDelinquent)

		second, err := f.manager.ReconcileAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Examined)
		assert.Equal(t, 0, second.MarkedDelinquent)
		assert.Len(t, f.trail.Events(), 1)
	})

	t.Run("deactivated persons are skipped", func(t *testing.T) {
		f := newFixture(t)
		personID := f.addPerson(t, 7, date(2024, time.January, 8))
		require.NoError(t, f.persons.Deactivate(context.Background(), personID))

		report, err := f.manager.ReconcileAll(at(date(2024, time.January, 10)))
		require.NoError(t, err)
		assert.Equal(t, 0, report.Examined)
	})

	t.Run("a failing person does not block the rest", func(t *testing.T) {
		f := newFixture(t)
		poisoned := f.addPerson(t, 7, date(2024, time.January, 8))
		healthy := f.addPerson(t, 7, date(2024, time.January, 8))
		ctx := at(date(2024, time.January, 10))

		manager := compliance.NewManager(
			&failingPersons{Store: f.persons, failFor: poisoned},
			f.regimes,
			compliance.NewMemoryStore(f.persons, f.regimes),
			f.runner,
			audit.NewPublisher(f.trail),
			nil,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
			4,
		)

		report, err := manager.ReconcileAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Examined)
		assert.Equal(t, 1, report.MarkedDelinquent)
		assert.Equal(t, 1, report.Failed)

		p, err := f.persons.Get(ctx, healthy)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDelinquent, p.Status)

		p, err = f.persons.Get(ctx, poisoned)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompliant, p.Status)
	})
}

func TestEvaluate(t *testing.T) {
	f := newFixture(t)
	personID := f.addPerson(t, 7, date(2024, time.January, 8))

	eval, err := f.manager.Evaluate(at(date(2024, time.January, 10)), personID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelinquent, eval.Status)
	assert.Equal(t, 2, eval.DaysOverdue)
	require.NotNil(t, eval.NextDueDate)
	assert.Equal(t, date(2024, time.January, 8), *eval.NextDueDate)

	_, err = f.manager.Evaluate(context.Background(), domain.NewPersonID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestDelinquencyLifecycle walks one person through the full cycle: check in,
// fall overdue, get swept to DELINQUENT, justify the missed date, and return
// to COMPLIANT with the regime advanced from the absence date.
func TestDelinquencyLifecycle(t *testing.T) {
	f := newFixture(t)
	personID := f.addPerson(t, 7, date(2024, time.January, 1))
	recorder := attendance.NewService(
		f.persons, f.regimes, f.events, f.runner, audit.NewPublisher(f.trail), nil)

	// Jan 1: presential check-in schedules the next one for Jan 8.
	receipt, err := recorder.RecordPresential(at(date(2024, time.January, 1)), personID, "officerA", "")
	require.NoError(t, err)
	require.NotNil(t, receipt.NextDueDate)
	assert.Equal(t, date(2024, time.January, 8), *receipt.NextDueDate)
	assert.Equal(t, domain.StatusCompliant, receipt.Status)

	// Jan 10: the sweep finds the elapsed due date.
	report, err := f.manager.ReconcileAll(at(date(2024, time.January, 10)))
	require.NoError(t, err)
	assert.Equal(t, 1, report.MarkedDelinquent)

	eval, err := f.manager.Evaluate(at(date(2024, time.January, 10)), personID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelinquent, eval.Status)
	assert.Equal(t, 2, eval.DaysOverdue)

	// Jan 10: the missed Jan 8 check-in is justified and rescheduled.
	receipt, err = recorder.RecordJustifiedAbsence(at(date(2024, time.January, 10)), personID, "officerB", attendance.JustificationInput{
		AbsenceDate: date(2024, time.January, 8),
		Reason:      "hospital admission, discharge papers attached",
		Reschedule:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.NextDueDate)
	assert.Equal(t, date(2024, time.January, 15), *receipt.NextDueDate)
	assert.Equal(t, domain.StatusCompliant, receipt.Status)

	p, err := f.persons.Get(context.Background(), personID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompliant, p.Status)

	// A second sweep on the same day changes nothing.
	report, err = f.manager.ReconcileAll(at(date(2024, time.January, 10)))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Examined)

	history, err := recorder.History(context.Background(), personID, ledger.Page{})
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

// failingPersons fails SetStatus for one chosen person.
type failingPersons struct {
	person.Store
	failFor domain.PersonID
}

func (f *failingPersons) SetStatus(ctx context.Context, id domain.PersonID, status domain.ComplianceStatus) error {
	if id == f.failFor {
		return errors.New("simulated storage failure")
	}
	return f.Store.SetStatus(ctx, id, status)
}
