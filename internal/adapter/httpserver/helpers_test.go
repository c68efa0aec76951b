package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/boxvote/internal/adapter/metrics"
	"github.com/pscheid92/boxvote/internal/domain"
	"github.com/pscheid92/boxvote/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	renderFn   func(ctx context.Context) (domain.View, error)
	castVoteFn func(ctx context.Context, side domain.Side) (domain.View, error)
}

func (m *mockAppService) Render(ctx context.Context) (domain.View, error) {
	if m.renderFn != nil {
		return m.renderFn(ctx)
	}
	return openView(), nil
}

func (m *mockAppService) CastVote(ctx context.Context, side domain.Side) (domain.View, error) {
	if m.castVoteFn != nil {
		return m.castVoteFn(ctx, side)
	}
	return domain.View{}, errors.New("not implemented")
}

func openView() domain.View {
	return domain.View{
		Status:      domain.StatusOpen,
		Outcome:     domain.OutcomeUnknown,
		Countdown:   "BOX OPENS IN 23:00:00",
		RoundInfo:   "Round ends: Fri, 06 Feb 2026 18:00:00 UTC",
		CanVote:     true,
		Leaderboard: []domain.Vote{},
		Empty:       true,
	}
}

// --- Test server ---

type testServerOption func(*Server)

func withHealthChecks(checks ...HealthCheck) testServerOption {
	return func(s *Server) { s.healthChecks = checks }
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:        "test",
		ListenAddr:    "127.0.0.1:0",
		VoteRateLimit: 100,
		VoteRateBurst: 100,
	}
}

func newTestServer(t *testing.T, app appService, opts ...testServerOption) *Server {
	t.Helper()

	reg := prometheus.NewRegistry()
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusSwitchingProtocols)
	})

	srv, err := NewServer(testConfig(), app, wsHandler, metrics.Handler(reg), metrics.NewHTTPMetrics(reg), nil)
	require.NoError(t, err)

	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

func newJSONRequest(method, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	return serve(srv, newJSONRequest(method, path, body))
}
