package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtools/boardnotify/internal/jobs"
)

func newTestServer(t *testing.T) (*Server, *jobs.Metrics) {
	t.Helper()
	metrics := jobs.NewMetrics()
	return NewServer(":0", metrics, slog.New(slog.NewTextHandler(io.Discard, nil))), metrics
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var response HealthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.NotEmpty(t, response.Uptime)
}

func TestStatus(t *testing.T) {
	server, metrics := newTestServer(t)
	metrics.RecordSuccess(jobs.JobToDo)
	metrics.RecordFailure(jobs.JobPR)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Jobs[jobs.JobToDo].Runs)
	assert.Equal(t, 1, response.Jobs[jobs.JobPR].Failures)
	assert.Equal(t, 1, response.Requests["GET /api/v1/status"])
}

func TestRequestCounting(t *testing.T) {
	server, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		server.httpServer.Handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	counts := server.snapshotRequestCounts()
	assert.Equal(t, 3, counts["GET /healthz"])
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
