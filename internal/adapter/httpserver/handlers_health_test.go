package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthOK(_ context.Context) error { return nil }

func healthErr(msg string) func(context.Context) error {
	return func(_ context.Context) error { return errors.New(msg) }
}

func TestHandleStartup(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/startup", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{},
		withHealthChecks(
			HealthCheck{Name: "classifier", Check: healthOK},
			HealthCheck{Name: "priors", Check: healthOK},
		),
	)

	err := srv.handleStartup(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHandleStartup_ClassifierDown(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/startup", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{},
		withHealthChecks(
			HealthCheck{Name: "classifier", Check: healthErr("connection refused")},
			HealthCheck{Name: "priors", Check: healthOK},
		),
	)

	err := srv.handleStartup(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"failed_check":"classifier"`)
}

func TestHandleLiveness(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{},
		withHealthChecks(HealthCheck{Name: "classifier", Check: healthErr("down")}),
	)
	err := srv.handleLiveness(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"status":"ok"`)
	assert.Contains(t, body, `"uptime"`)
}

func TestHandleReadiness_AllHealthy(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{},
		withHealthChecks(
			HealthCheck{Name: "classifier", Check: healthOK},
			HealthCheck{Name: "priors", Check: healthOK},
		),
	)

	err := srv.handleReadiness(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHandleReadiness_NoChecks(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{})

	err := srv.handleReadiness(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReadiness_Failures(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		wantFailed string
		wantError  string
	}{
		{
			name: "classifier breaker open",
			checks: []HealthCheck{
				{Name: "classifier", Check: healthErr("emotion classifier unavailable")},
				{Name: "priors", Check: healthOK},
			},
			wantFailed: "classifier",
			wantError:  "emotion classifier unavailable",
		},
		{
			name: "priors empty",
			checks: []HealthCheck{
				{Name: "classifier", Check: healthOK},
				{Name: "priors", Check: healthErr("prior table is empty")},
			},
			wantFailed: "priors",
			wantError:  "prior table is empty",
		},
		{
			name: "first failure wins",
			checks: []HealthCheck{
				{Name: "classifier", Check: healthErr("health returned 503")},
				{Name: "priors", Check: healthErr("prior table is empty")},
			},
			wantFailed: "classifier",
			wantError:  "health returned 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			srv := newTestServer(t, &mockAppService{}, withHealthChecks(tt.checks...))

			err := srv.handleReadiness(c)

			require.NoError(t, err)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
			assert.Contains(t, rec.Body.String(), `"failed_check":"`+tt.wantFailed+`"`)
			assert.Contains(t, rec.Body.String(), `"error":"`+tt.wantError+`"`)
		})
	}
}

func TestHandleReadiness_ChecksHaveDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var deadline time.Time
	var hasDeadline bool
	srv := newTestServer(t, &mockAppService{},
		withHealthChecks(HealthCheck{Name: "classifier", Check: func(ctx context.Context) error {
			deadline, hasDeadline = ctx.Deadline()
			return nil
		}}),
	)

	require.NoError(t, srv.handleReadiness(c))
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(readinessProbeTimeout), deadline, time.Second)
}

func TestHandleVersion(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{})
	err := srv.handleVersion(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"version"`)
	assert.Contains(t, body, `"commit"`)
	assert.Contains(t, body, `"build_time"`)
	assert.Contains(t, body, `"go_version"`)
}
