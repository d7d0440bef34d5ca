package httptransport

import (
	"context"
	"net/http"

	"custodia/internal/compliance"
	"custodia/internal/transport/http/shared"
	"custodia/pkg/domain"
)

// ComplianceService defines the reconciliation operations.
type ComplianceService interface {
	Evaluate(ctx context.Context, personID domain.PersonID) (*compliance.Evaluation, error)
	ReconcileAll(ctx context.Context) (compliance.Report, error)
}

type evaluationResponse struct {
	PersonID    string     `json:"person_id"`
	Status      string     `json:"status"`
	NextDueDate *civilDate `json:"next_due_date"`
	DaysOverdue int        `json:"days_overdue"`
}

func (h *Handler) handleEvaluateCompliance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := pathPersonID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	eval, err := h.compliance.Evaluate(ctx, personID)
	if err != nil {
		h.logFailure(ctx, "compliance evaluation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, evaluationResponse{
		PersonID:    eval.PersonID.String(),
		Status:      string(eval.Status),
		NextDueDate: civilDatePtr(eval.NextDueDate),
		DaysOverdue: eval.DaysOverdue,
	})
}

// handleReconcile triggers an on-demand sweep, outside the timer. Courts ask
// for this before hearings.
func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.compliance.ReconcileAll(ctx)
	if err != nil {
		h.logFailure(ctx, "reconciliation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}
