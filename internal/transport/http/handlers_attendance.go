package httptransport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"custodia/internal/attendance"
	"custodia/internal/ledger"
	"custodia/internal/transport/http/shared"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/requestcontext"
)

// AttendanceService defines the recorder operations.
type AttendanceService interface {
	RecordPresential(ctx context.Context, personID domain.PersonID, validatedBy, notes string) (*attendance.Receipt, error)
	RecordRemote(ctx context.Context, personID domain.PersonID, validatedBy string, input attendance.RemoteInput) (*attendance.Receipt, error)
	RecordJustifiedAbsence(ctx context.Context, personID domain.PersonID, validatedBy string, input attendance.JustificationInput) (*attendance.Receipt, error)
	RescheduleNextCheckIn(ctx context.Context, personID domain.PersonID, approvedBy string, newDate time.Time, reason string) (*attendance.Receipt, error)
	History(ctx context.Context, personID domain.PersonID, page ledger.Page) ([]ledger.Event, error)
}

type presentialRequest struct {
	Notes string `json:"notes,omitempty"`
}

type remoteRequest struct {
	Platform        string `json:"platform"`
	DurationMinutes int    `json:"duration_minutes"`
	MeetingLink     string `json:"meeting_link,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type justificationRequest struct {
	AbsenceDate  string   `json:"absence_date"`
	Reason       string   `json:"reason"`
	AttachedDocs []string `json:"attached_docs,omitempty"`
	Reschedule   bool     `json:"reschedule"`
}

type rescheduleRequest struct {
	NewDate string `json:"new_date"`
	Reason  string `json:"reason"`
}

type receiptResponse struct {
	Event       eventResponse `json:"event"`
	NextDueDate *civilDate    `json:"next_due_date"`
	Status      string        `json:"status"`
}

type eventResponse struct {
	ID              string    `json:"id"`
	PersonID        string    `json:"person_id"`
	EventDate       civilDate `json:"event_date"`
	EventTime       time.Time `json:"event_time"`
	Kind            string    `json:"kind"`
	RecordedBy      string    `json:"recorded_by"`
	Notes           string    `json:"notes,omitempty"`
	Platform        string    `json:"platform,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	MeetingLink     string    `json:"meeting_link,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	AttachedDocs    []string  `json:"attached_docs,omitempty"`
	Administrative  bool      `json:"administrative,omitempty"`
}

func toEventResponse(e ledger.Event) eventResponse {
	return eventResponse{
		ID:              e.ID.String(),
		PersonID:        e.PersonID.String(),
		EventDate:       civilDate(e.EventDate),
		EventTime:       e.EventTime,
		Kind:            string(e.Kind),
		RecordedBy:      e.RecordedBy,
		Notes:           e.Notes,
		Platform:        e.Platform,
		DurationMinutes: e.DurationMinutes,
		MeetingLink:     e.MeetingLink,
		Reason:          e.Reason,
		AttachedDocs:    e.AttachedDocs,
		Administrative:  e.Administrative,
	}
}

func toReceiptResponse(receipt *attendance.Receipt) receiptResponse {
	return receiptResponse{
		Event:       toEventResponse(receipt.Event),
		NextDueDate: civilDatePtr(receipt.NextDueDate),
		Status:      string(receipt.Status),
	}
}

func (h *Handler) handleRecordPresential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := pathPersonID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req presentialRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.WriteError(w, err)
			return
		}
	}

	receipt, err := h.attendance.RecordPresential(ctx, personID, requestcontext.ActorID(ctx), req.Notes)
	if err != nil {
		h.logFailure(ctx, "presential recording failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

func (h *Handler) handleRecordRemote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := pathPersonID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req remoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	receipt, err := h.attendance.RecordRemote(ctx, personID, requestcontext.ActorID(ctx), attendance.RemoteInput{
		Platform:        req.Platform,
		DurationMinutes: req.DurationMinutes,
		MeetingLink:     req.MeetingLink,
		Notes:           req.Notes,
	})
	if err != nil {
		h.logFailure(ctx, "remote recording failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

func (h *Handler) handleRecordJustification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := pathPersonID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req justificationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	absenceDate, err := parseCivilDate(req.AbsenceDate, "absence_date")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	receipt, err := h.attendance.RecordJustifiedAbsence(ctx, personID, requestcontext.ActorID(ctx), attendance.JustificationInput{
		AbsenceDate:  absenceDate,
		Reason:       req.Reason,
		AttachedDocs: req.AttachedDocs,
		Reschedule:   req.Reschedule,
	})
	if err != nil {
		h.logFailure(ctx, "justification recording failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

func (h *Handler) handleReschedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := pathPersonID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req rescheduleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	newDate, err := parseCivilDate(req.NewDate, "new_date")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	receipt, err := h.attendance.RescheduleNextCheckIn(ctx, personID, requestcontext.ActorID(ctx), newDate, req.Reason)
	if err != nil {
		h.logFailure(ctx, "reschedule failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toReceiptResponse(receipt))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := pathPersonID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	events, err := h.attendance.History(ctx, personID, page)
	if err != nil {
		h.logFailure(ctx, "history lookup failed", err)
		shared.WriteError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"events": out,
		"page":   page.Normalize().Number,
	})
}

func pageFromQuery(r *http.Request) (ledger.Page, error) {
	var page ledger.Page
	q := r.URL.Query()
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, dErrors.New(dErrors.CodeValidation, "page must be a positive integer")
		}
		page.Number = n
	}
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, dErrors.New(dErrors.CodeValidation, "size must be a positive integer")
		}
		page.Size = n
	}
	// History is only ever ordered by event date (time breaks ties), so the
	// field selector accepts nothing else.
	switch q.Get("sortBy") {
	case "", "date":
	default:
		return page, dErrors.New(dErrors.CodeValidation, "sortBy supports only date")
	}
	switch q.Get("sort") {
	case "", "desc":
		page.SortDir = ledger.SortDesc
	case "asc":
		page.SortDir = ledger.SortAsc
	default:
		return page, dErrors.New(dErrors.CodeValidation, "sort must be asc or desc")
	}
	return page, nil
}
