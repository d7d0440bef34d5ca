package person

import (
	"context"
	"errors"
	"strings"
	"time"

	"custodia/internal/audit"
	"custodia/internal/platform/metrics"
	"custodia/internal/regime"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/sentinel"
	"custodia/pkg/platform/tx"
	"custodia/pkg/requestcontext"
)

// Service owns monitored-person intake and lookup. Intake creates the person
// and their regime in one unit of work; the compliance engine assumes the 1:1
// relation always holds.
type Service struct {
	persons Store
	regimes regime.Store
	runner  tx.Runner
	audit   *audit.Publisher
	metrics *metrics.Metrics
}

func NewService(persons Store, regimes regime.Store, runner tx.Runner, auditor *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		persons: persons,
		regimes: regimes,
		runner:  runner,
		audit:   auditor,
		metrics: m,
	}
}

// IntakeInput carries everything needed to register a person. Raw identifier
// strings are validated here, at the trust boundary.
type IntakeInput struct {
	FullName        string
	TaxID           string
	NationalID      string
	Jurisdiction    string
	ContactEmail    string
	ContactPhone    string
	PeriodicityDays int
	InitialCheckIn  time.Time
}

// Intake registers a person together with their check-in regime.
//
// Errors: CodeValidation for a missing name, missing identifiers or a bad
// regime; CodeConflict when an identifier is already registered.
func (s *Service) Intake(ctx context.Context, input IntakeInput) (*MonitoredPerson, *regime.Regime, error) {
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "full name is required")
	}
	if input.TaxID == "" && input.NationalID == "" {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "at least one of tax id or national id is required")
	}

	var (
		taxID domain.TaxID
		natID domain.NationalID
		err   error
	)
	if input.TaxID != "" {
		if taxID, err = domain.ParseTaxID(input.TaxID); err != nil {
			return nil, nil, err
		}
	}
	if input.NationalID != "" {
		if natID, err = domain.ParseNationalID(input.NationalID); err != nil {
			return nil, nil, err
		}
	}

	p := &MonitoredPerson{
		ID:           domain.NewPersonID(),
		FullName:     name,
		TaxID:        taxID,
		NationalID:   natID,
		Jurisdiction: strings.TrimSpace(input.Jurisdiction),
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		Status:       domain.StatusCompliant,
		Active:       true,
		CreatedAt:    requestcontext.Now(ctx),
	}
	r, err := regime.Initialize(p.ID, input.PeriodicityDays, input.InitialCheckIn)
	if err != nil {
		return nil, nil, err
	}

	err = s.runner.RunInTx(ctx, p.ID.String(), func(ctx context.Context) error {
		if err := s.persons.Create(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "a person with this identifier is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person")
		}
		if err := s.regimes.Save(ctx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create regime")
		}
		return s.audit.Emit(ctx, audit.Event{
			Action:   audit.ActionPersonRegistered,
			PersonID: p.ID.String(),
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncrementPersonsCreated()
	return p, r, nil
}

// Get returns a person and their regime.
func (s *Service) Get(ctx context.Context, id domain.PersonID) (*MonitoredPerson, *regime.Regime, error) {
	p, err := s.persons.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	r, err := s.regimes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Intake writes both rows in one transaction; a missing regime
			// means the store is corrupted, not that the caller erred.
			return nil, nil, dErrors.New(dErrors.CodeInternal, "person has no regime")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load regime")
	}
	return p, r, nil
}

// Deactivate ends active supervision for a person. The ledger is retained.
func (s *Service) Deactivate(ctx context.Context, id domain.PersonID) error {
	return s.runner.RunInTx(ctx, id.String(), func(ctx context.Context) error {
		if err := s.persons.Deactivate(ctx, id); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "person not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate person")
		}
		return s.audit.Emit(ctx, audit.Event{
			Action:   audit.ActionPersonDeactivated,
			PersonID: id.String(),
		})
	})
}
