package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"custodia/internal/person"
	"custodia/internal/regime"
	"custodia/internal/transport/http/shared"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// PersonService defines the person intake and lookup operations.
type PersonService interface {
	Intake(ctx context.Context, input person.IntakeInput) (*person.MonitoredPerson, *regime.Regime, error)
	Get(ctx context.Context, id domain.PersonID) (*person.MonitoredPerson, *regime.Regime, error)
	Deactivate(ctx context.Context, id domain.PersonID) error
}

type intakeRequest struct {
	FullName        string `json:"full_name"`
	TaxID           string `json:"tax_id,omitempty"`
	NationalID      string `json:"national_id,omitempty"`
	Jurisdiction    string `json:"jurisdiction,omitempty"`
	ContactEmail    string `json:"contact_email,omitempty"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	PeriodicityDays int    `json:"periodicity_days"`
	InitialCheckIn  string `json:"initial_check_in"`
}

type personResponse struct {
	ID              string     `json:"id"`
	FullName        string     `json:"full_name"`
	TaxID           string     `json:"tax_id,omitempty"`
	NationalID      string     `json:"national_id,omitempty"`
	Jurisdiction    string     `json:"jurisdiction,omitempty"`
	ContactEmail    string     `json:"contact_email,omitempty"`
	ContactPhone    string     `json:"contact_phone,omitempty"`
	Status          string     `json:"status"`
	Active          bool       `json:"active"`
	PeriodicityDays int        `json:"periodicity_days"`
	NextDueDate     *civilDate `json:"next_due_date"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toPersonResponse(p *person.MonitoredPerson, r *regime.Regime) personResponse {
	return personResponse{
		ID:              p.ID.String(),
		FullName:        p.FullName,
		TaxID:           string(p.TaxID),
		NationalID:      string(p.NationalID),
		Jurisdiction:    p.Jurisdiction,
		ContactEmail:    p.ContactEmail,
		ContactPhone:    p.ContactPhone,
		Status:          string(p.Status),
		Active:          p.Active,
		PeriodicityDays: r.PeriodicityDays,
		NextDueDate:     civilDatePtr(r.NextDueDate),
		CreatedAt:       p.CreatedAt,
	}
}

func (h *Handler) handleIntake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req intakeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	initial, err := parseCivilDate(req.InitialCheckIn, "initial_check_in")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p, reg, err := h.persons.Intake(ctx, person.IntakeInput{
		FullName:        req.FullName,
		TaxID:           req.TaxID,
		NationalID:      req.NationalID,
		Jurisdiction:    req.Jurisdiction,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		PeriodicityDays: req.PeriodicityDays,
		InitialCheckIn:  initial,
	})
	if err != nil {
		h.logFailure(ctx, "person intake failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toPersonResponse(p, reg))
}

func (h *Handler) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := pathPersonID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, reg, err := h.persons.Get(ctx, personID)
	if err != nil {
		h.logFailure(ctx, "person lookup failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toPersonResponse(p, reg))
}

func (h *Handler) handleDeactivatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := pathPersonID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.persons.Deactivate(ctx, personID); err != nil {
		h.logFailure(ctx, "person deactivation failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathPersonID(r *http.Request) (domain.PersonID, error) {
	return domain.ParsePersonID(chi.URLParam(r, "personID"))
}

// civilDate marshals a date-only value without a time component.
type civilDate time.Time

func (d civilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).Format(time.DateOnly) + `"`), nil
}

func civilDatePtr(t *time.Time) *civilDate {
	if t == nil {
		return nil
	}
	d := civilDate(*t)
	return &d
}

func parseCivilDate(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "%s is required", field)
	}
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}
