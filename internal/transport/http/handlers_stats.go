package httptransport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"custodia/internal/stats"
	"custodia/internal/transport/http/shared"
	dErrors "custodia/pkg/domain-errors"
)

// StatsService defines the aggregate reporting operations.
type StatsService interface {
	PeriodSummary(ctx context.Context, from, to time.Time, jurisdiction string) (*stats.Summary, error)
	Upcoming(ctx context.Context, days int) (*stats.UpcomingSchedule, error)
	Overdue(ctx context.Context) (*stats.OverdueReport, error)
}

func (h *Handler) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	from, err := parseCivilDate(q.Get("from"), "from")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	to, err := parseCivilDate(q.Get("to"), "to")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	summary, err := h.stats.PeriodSummary(ctx, from, to, q.Get("jurisdiction"))
	if err != nil {
		h.logFailure(ctx, "summary aggregation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleStatsUpcoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "days must be an integer"))
			return
		}
		days = n
	}

	schedule, err := h.stats.Upcoming(ctx, days)
	if err != nil {
		h.logFailure(ctx, "upcoming listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, schedule)
}

func (h *Handler) handleStatsOverdue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.stats.Overdue(ctx)
	if err != nil {
		h.logFailure(ctx, "overdue listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}
