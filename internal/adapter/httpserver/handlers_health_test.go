package httpserver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthOK(_ context.Context) error { return nil }

func healthErr(msg string) func(context.Context) error {
	return func(_ context.Context) error { return errors.New(msg) }
}

func TestHandleLiveness(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := doRequest(srv, http.MethodGet, "/health/live", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"uptime"`)
}

func TestHandleReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "no checks",
			wantStatus: http.StatusOK,
			wantBody:   []string{`"status":"ready"`},
		},
		{
			name: "store healthy",
			checks: []HealthCheck{
				{Name: "state_store", Check: healthOK},
				{Name: "store_mode", Check: healthOK},
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"status":"ready"`, `"checks":["state_store","store_mode"]`},
		},
		{
			name: "store unreachable",
			checks: []HealthCheck{
				{Name: "state_store", Check: healthErr("connection refused")},
				{Name: "store_mode", Check: healthOK},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   []string{`"status":"unhealthy"`, `"failed_check":"state_store"`, `"error":"connection refused"`},
		},
		{
			name: "session degraded",
			checks: []HealthCheck{
				{Name: "state_store", Check: healthOK},
				{Name: "store_mode", Check: healthErr("running on in-memory state")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   []string{`"failed_check":"store_mode"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &mockAppService{}, withHealthChecks(tt.checks...))

			rec := doRequest(srv, http.MethodGet, "/health/ready", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := doRequest(srv, http.MethodGet, "/version", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"dev"`)
	assert.Contains(t, rec.Body.String(), `"go_version"`)
}
