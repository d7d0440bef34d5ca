// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// the domain services and encode; business rules live below.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"custodia/internal/platform/metrics"
	"custodia/internal/platform/middleware"
	"custodia/internal/transport/http/shared"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/requestcontext"
)

const requestTimeout = 30 * time.Second

// Probe is one named dependency check for the health endpoint.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler wires the domain services to routes.
type Handler struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	validator  middleware.JWTValidator
	persons    PersonService
	attendance AttendanceService
	compliance ComplianceService
	stats      StatsService
	probes     []Probe
}

func NewHandler(
	logger *slog.Logger,
	m *metrics.Metrics,
	validator middleware.JWTValidator,
	persons PersonService,
	attendance AttendanceService,
	compliance ComplianceService,
	stats StatsService,
	probes ...Probe,
) *Handler {
	return &Handler{
		logger:     logger,
		metrics:    m,
		validator:  validator,
		persons:    persons,
		attendance: attendance,
		compliance: compliance,
		stats:      stats,
		probes:     probes,
	}
}

// NewRouter builds the full route tree. Everything except health and metrics
// requires an authenticated officer token.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Latency(h.metrics))

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Route("/persons", func(r chi.Router) {
			r.Post("/", h.handleIntake)
			r.Route("/{personID}", func(r chi.Router) {
				r.Get("/", h.handleGetPerson)
				r.Post("/deactivate", h.handleDeactivatePerson)
				r.Get("/compliance", h.handleEvaluateCompliance)
				r.Get("/attendance", h.handleHistory)
				r.Post("/attendance/presential", h.handleRecordPresential)
				r.Post("/attendance/remote", h.handleRecordRemote)
				r.Post("/attendance/justification", h.handleRecordJustification)
				r.Post("/reschedule", h.handleReschedule)
			})
		})

		r.Post("/compliance/reconcile", h.handleReconcile)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/summary", h.handleStatsSummary)
			r.Get("/upcoming", h.handleStatsUpcoming)
			r.Get("/overdue", h.handleStatsOverdue)
		})
	})

	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := make(map[string]string, len(h.probes))
	healthy := true
	for _, probe := range h.probes {
		if err := probe.Check(ctx); err != nil {
			checks[probe.Name] = err.Error()
			healthy = false
			continue
		}
		checks[probe.Name] = "ok"
	}

	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	shared.WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
}

// logFailure records a handler failure: expected 4xx outcomes at warn, the
// rest at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	attrs := []any{
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeNotFound, dErrors.CodeConflict, dErrors.CodeUnauthorized:
		h.logger.WarnContext(ctx, msg, attrs...)
	default:
		h.logger.ErrorContext(ctx, msg, attrs...)
	}
}
