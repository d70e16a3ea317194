package httpserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bertygi/HibiLog-EmotionScore/internal/adapter/metrics"
	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
	"github.com/bertygi/HibiLog-EmotionScore/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	scoreFn  func(ctx context.Context, emoji, text string) (domain.FusionResult, error)
	priorsFn func() []domain.PriorEntry

	calls int
}

func (m *mockAppService) Score(ctx context.Context, emoji, text string) (domain.FusionResult, error) {
	m.calls++
	if m.scoreFn != nil {
		return m.scoreFn(ctx, emoji, text)
	}
	return domain.FusionResult{Emoji: emoji, Text: text, Combined100: 50}, nil
}

func (m *mockAppService) Priors() []domain.PriorEntry {
	if m.priorsFn != nil {
		return m.priorsFn()
	}
	return nil
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo: echo.New(),
		config: &config.Config{
			Port:             "8080",
			CORSAllowOrigins: []string{"*"},
			RateLimitRPS:     100,
			RateLimitBurst:   100,
		},
		app:       app,
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withHTTPMetrics(m *metrics.HTTPMetrics) func(*Server) {
	return func(s *Server) {
		s.httpMetrics = m
	}
}

func withMetricsHandler(h http.Handler) func(*Server) {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

func withRateLimit(rps float64, burst int) func(*Server) {
	return func(s *Server) {
		s.config.RateLimitRPS = rps
		s.config.RateLimitBurst = burst
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(srv *Server, handler echo.HandlerFunc, c echo.Context) error {
	return srv.ErrorHandlingMiddleware()(handler)(c)
}
