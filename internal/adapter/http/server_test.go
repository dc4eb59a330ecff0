package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/weather-seeder/internal/adapter/http"
	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockSummarizer struct {
	sum domain.Summary
	err error
}

func (m *mockSummarizer) Summary(_ context.Context) (domain.Summary, error) { return m.sum, m.err }

func newTestServer(readyErr error, summary *mockSummarizer) *httpadapter.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weather_seeder_test_total",
		Help: "Test counter.",
	}))
	if summary == nil {
		summary = &mockSummarizer{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, summary, reg, logger)
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503BeforeFirstRun(t *testing.T) {
	rec := serve(newTestServer(fmt.Errorf("seeder has not completed a run yet"), nil), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "seeder has not completed a run yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weather_seeder_test_total")
}

func TestSummaryEndpoint(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	first := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 5, 31, 18, 0, 0, 0, time.UTC)
	summary := &mockSummarizer{sum: domain.Summary{
		Stations:         8,
		ActiveStations:   7,
		StationsWithData: 7,
		Observations:     812,
		Fires:            5,
		OldestStation:    &created,
		NewestStation:    &created,
		FirstObservation: &first,
		LastObservation:  &last,
	}}
	rec := serve(newTestServer(nil, summary), "/summary")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"stations":           8.0,
		"active_stations":    7.0,
		"stations_with_data": 7.0,
		"observations":       812.0,
		"fires":              5.0,
		"oldest_station":     "2024-06-01T12:00:00Z",
		"newest_station":     "2024-06-01T12:00:00Z",
		"first_observation":  "2024-05-02T00:00:00Z",
		"last_observation":   "2024-05-31T18:00:00Z",
	}, body)
}

func TestSummaryEndpoint_EmptyStore(t *testing.T) {
	rec := serve(newTestServer(nil, &mockSummarizer{}), "/summary")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body["first_observation"])
	assert.Contains(t, body, "first_observation")
	assert.InDelta(t, 0, body["stations"], 0)
}

func TestSummaryEndpoint_StoreError(t *testing.T) {
	rec := serve(newTestServer(nil, &mockSummarizer{err: errors.New("connection refused")}), "/summary")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestUnknownMethodRejected(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
