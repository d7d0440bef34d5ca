package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"custodia/internal/attendance"
	"custodia/internal/audit"
	"custodia/internal/compliance"
	"custodia/internal/jwttoken"
	"custodia/internal/ledger"
	"custodia/internal/person"
	"custodia/internal/regime"
	"custodia/internal/stats"
	httptransport "custodia/internal/transport/http"
	"custodia/internal/transport/http/mocks"
	"custodia/pkg/domain"
	"custodia/pkg/platform/tx"
)

type env struct {
	server     *httptest.Server
	tokens     *jwttoken.JWTService
	compliance *mocks.MockComplianceService
	stats      *mocks.MockStatsService
}

func newEnv(t *testing.T, probes ...httptransport.Probe) *env {
	t.Helper()
	ctrl := gomock.NewController(t)

	persons := person.NewMemoryStore()
	regimes := regime.NewMemoryStore()
	events := ledger.NewMemoryStore()
	runner := tx.NewShardedRunner()
	publisher := audit.NewPublisher(audit.NewMemoryStore())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwttoken.NewJWTService("test-signing-key", "custodia")

	e := &env{
		tokens:     tokens,
		compliance: mocks.NewMockComplianceService(ctrl),
		stats:      mocks.NewMockStatsService(ctrl),
	}

	handler := httptransport.NewHandler(
		logger,
		nil,
		tokens,
		person.NewService(persons, regimes, runner, publisher, nil),
		attendance.NewService(persons, regimes, events, runner, publisher, nil),
		e.compliance,
		e.stats,
		probes...,
	)
	e.server = httptest.NewServer(httptransport.NewRouter(handler))
	t.Cleanup(e.server.Close)
	return e
}

func (e *env) do(t *testing.T, method, path string, body any, authenticated bool) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		token, err := e.tokens.GenerateToken("officer-7", "officer", time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	body := decode[map[string]map[string]string](t, resp)
	return body["error"]["code"]
}

func intakeBody() map[string]any {
	return map[string]any{
		"full_name":        "Maria da Silva",
		"tax_id":           "529.982.247-25",
		"periodicity_days": 30,
		"initial_check_in": "2024-01-01",
	}
}

func (e *env) intake(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/persons", intakeBody(), true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)
	return created["id"].(string)
}

func TestPersonEndpoints(t *testing.T) {
	t.Run("intake creates a person with a scheduled regime", func(t *testing.T) {
		e := newEnv(t)
		resp := e.do(t, http.MethodPost, "/persons", intakeBody(), true)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		created := decode[map[string]any](t, resp)
		assert.Equal(t, "Maria da Silva", created["full_name"])
		assert.Equal(t, "52998224725", created["tax_id"])
		assert.Equal(t, "COMPLIANT", created["status"])
		assert.Equal(t, "2024-01-01", created["next_due_date"])
		assert.Equal(t, true, created["active"])
	})

	t.Run("intake rejects a duplicate identifier", func(t *testing.T) {
		e := newEnv(t)
		e.intake(t)
		resp := e.do(t, http.MethodPost, "/persons", intakeBody(), true)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "conflict", errorCode(t, resp))
	})

	t.Run("intake rejects an unparseable body", func(t *testing.T) {
		e := newEnv(t)
		resp := e.do(t, http.MethodPost, "/persons", map[string]any{"unknown_field": 1}, true)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "bad_request", errorCode(t, resp))
	})

	t.Run("requests without a token are rejected", func(t *testing.T) {
		e := newEnv(t)
		resp := e.do(t, http.MethodPost, "/persons", intakeBody(), false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("lookup of an unknown person is a 404", func(t *testing.T) {
		e := newEnv(t)
		resp := e.do(t, http.MethodGet, "/persons/"+domain.NewPersonID().String(), nil, true)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "not_found", errorCode(t, resp))
	})

	t.Run("deactivate answers 204 and later recordings fail", func(t *testing.T) {
		e := newEnv(t)
		id := e.intake(t)

		resp := e.do(t, http.MethodPost, "/persons/"+id+"/deactivate", nil, true)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = e.do(t, http.MethodPost, "/persons/"+id+"/attendance/presential", nil, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAttendanceEndpoints(t *testing.T) {
	t.Run("presential answers a receipt and conflicts on repeat", func(t *testing.T) {
		e := newEnv(t)
		id := e.intake(t)

		resp := e.do(t, http.MethodPost, "/persons/"+id+"/attendance/presential",
			map[string]any{"notes": "on time"}, true)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		receipt := decode[map[string]any](t, resp)
		event := receipt["event"].(map[string]any)
		assert.Equal(t, "PRESENTIAL", event["kind"])
		assert.Equal(t, "officer-7", event["recorded_by"])
		assert.Equal(t, "COMPLIANT", receipt["status"])
		assert.NotEmpty(t, receipt["next_due_date"])

		resp = e.do(t, http.MethodPost, "/persons/"+id+"/attendance/presential", nil, true)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "conflict", errorCode(t, resp))
	})

	t.Run("remote validates its payload", func(t *testing.T) {
		e := newEnv(t)
		id := e.intake(t)

		resp := e.do(t, http.MethodPost, "/persons/"+id+"/attendance/remote",
			map[string]any{"platform": "", "duration_minutes": 20}, true)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "validation", errorCode(t, resp))

		resp = e.do(t, http.MethodPost, "/persons/"+id+"/attendance/remote",
			map[string]any{"platform": "meet", "duration_minutes": 20, "meeting_link": "https://meet.example/x"}, true)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		receipt := decode[map[string]any](t, resp)
		assert.Equal(t, "REMOTE", receipt["event"].(map[string]any)["kind"])
	})

	t.Run("justification requires a parseable date", func(t *testing.T) {
		e := newEnv(t)
		id := e.intake(t)

		resp := e.do(t, http.MethodPost, "/persons/"+id+"/attendance/justification",
			map[string]any{"absence_date": "not-a-date", "reason": "medical appointment with certificate"}, true)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "validation", errorCode(t, resp))
	})

	t.Run("history pages and validates query parameters", func(t *testing.T) {
		e := newEnv(t)
		id := e.intake(t)
		resp := e.do(t, http.MethodPost, "/persons/"+id+"/attendance/presential", nil, true)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = e.do(t, http.MethodGet, "/persons/"+id+"/attendance?page=1&size=10&sort=asc", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Len(t, body["events"], 1)

		resp = e.do(t, http.MethodGet, "/persons/"+id+"/attendance?sort=sideways", nil, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = e.do(t, http.MethodGet, "/persons/"+id+"/attendance?sortBy=date&sort=desc", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = e.do(t, http.MethodGet, "/persons/"+id+"/attendance?sortBy=officer", nil, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestComplianceEndpoints(t *testing.T) {
	t.Run("evaluate relays the service answer", func(t *testing.T) {
		e := newEnv(t)
		personID := domain.NewPersonID()
		due := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
		e.compliance.EXPECT().Evaluate(gomock.Any(), personID).Return(&compliance.Evaluation{
			PersonID:    personID,
			Status:      domain.StatusDelinquent,
			NextDueDate: &due,
			DaysOverdue: 2,
		}, nil)

		resp := e.do(t, http.MethodGet, "/persons/"+personID.String()+"/compliance", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, "DELINQUENT", body["status"])
		assert.Equal(t, "2024-01-08", body["next_due_date"])
		assert.Equal(t, float64(2), body["days_overdue"])
	})

	t.Run("reconcile relays the report", func(t *testing.T) {
		e := newEnv(t)
		e.compliance.EXPECT().ReconcileAll(gomock.Any()).Return(compliance.Report{
			Examined: 12, MarkedDelinquent: 3,
		}, nil)

		resp := e.do(t, http.MethodPost, "/compliance/reconcile", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, float64(12), body["examined"])
		assert.Equal(t, float64(3), body["marked_delinquent"])
	})
}

func TestStatsEndpoints(t *testing.T) {
	t.Run("summary requires both period bounds", func(t *testing.T) {
		e := newEnv(t)
		resp := e.do(t, http.MethodGet, "/stats/summary?from=2024-01-01", nil, true)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "validation", errorCode(t, resp))
	})

	t.Run("summary relays the aggregate", func(t *testing.T) {
		e := newEnv(t)
		e.stats.EXPECT().PeriodSummary(gomock.Any(), gomock.Any(), gomock.Any(), "").Return(&stats.Summary{
			ActivePersons:  10,
			Compliant:      8,
			Delinquent:     2,
			ComplianceRate: 80,
		}, nil)

		resp := e.do(t, http.MethodGet, "/stats/summary?from=2024-01-01&to=2024-01-31", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, float64(80), body["compliance_rate"])
	})

	t.Run("summary passes the jurisdiction filter through", func(t *testing.T) {
		e := newEnv(t)
		e.stats.EXPECT().PeriodSummary(gomock.Any(), gomock.Any(), gomock.Any(), "SP").Return(&stats.Summary{
			Jurisdiction:   "SP",
			ActivePersons:  4,
			Compliant:      3,
			Delinquent:     1,
			ComplianceRate: 75,
		}, nil)

		resp := e.do(t, http.MethodGet, "/stats/summary?from=2024-01-01&to=2024-01-31&jurisdiction=SP", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, "SP", body["jurisdiction"])
		assert.Equal(t, float64(75), body["compliance_rate"])
	})

	t.Run("upcoming relays the per date counts", func(t *testing.T) {
		e := newEnv(t)
		due := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
		e.stats.EXPECT().Upcoming(gomock.Any(), 7).Return(&stats.UpcomingSchedule{
			Days: []stats.DayCount{{Date: due, Count: 2}},
			Entries: []stats.DueEntry{
				{PersonID: domain.NewPersonID(), FullName: "Ana", Status: domain.StatusCompliant, NextDueDate: due},
				{PersonID: domain.NewPersonID(), FullName: "Bruno", Status: domain.StatusCompliant, NextDueDate: due},
			},
		}, nil)

		resp := e.do(t, http.MethodGet, "/stats/upcoming?days=7", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		days := body["days"].([]any)
		require.Len(t, days, 1)
		assert.Equal(t, float64(2), days[0].(map[string]any)["count"])
		assert.Len(t, body["entries"], 2)
	})

	t.Run("upcoming validates days", func(t *testing.T) {
		e := newEnv(t)
		resp := e.do(t, http.MethodGet, "/stats/upcoming?days=x", nil, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("overdue relays the headcount", func(t *testing.T) {
		e := newEnv(t)
		due := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
		e.stats.EXPECT().Overdue(gomock.Any()).Return(&stats.OverdueReport{
			Count: 1,
			Entries: []stats.DueEntry{
				{PersonID: domain.NewPersonID(), FullName: "Carla", Status: domain.StatusDelinquent, NextDueDate: due},
			},
		}, nil)

		resp := e.do(t, http.MethodGet, "/stats/overdue", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, float64(1), body["count"])
		assert.Len(t, body["entries"], 1)
	})
}

func TestHealthz(t *testing.T) {
	t.Run("healthy probes answer 200", func(t *testing.T) {
		e := newEnv(t, httptransport.Probe{
			Name:  "postgres",
			Check: func(context.Context) error { return nil },
		})
		resp := e.do(t, http.MethodGet, "/healthz", nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("a failing probe degrades to 503", func(t *testing.T) {
		e := newEnv(t, httptransport.Probe{
			Name:  "redis",
			Check: func(context.Context) error { return errors.New("connection refused") },
		})
		resp := e.do(t, http.MethodGet, "/healthz", nil, false)
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, "degraded", body["status"])
	})
}
