package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/parksense/api/handlers"
	"github.com/OldStager01/parksense/internal/auth"
	"github.com/OldStager01/parksense/internal/cache"
	"github.com/OldStager01/parksense/internal/collector"
	"github.com/OldStager01/parksense/internal/events"
	"github.com/OldStager01/parksense/internal/metrics"
	"github.com/OldStager01/parksense/internal/monitor"
	"github.com/OldStager01/parksense/internal/occupancy"
	"github.com/OldStager01/parksense/internal/store"
	"github.com/OldStager01/parksense/pkg/config"
	"github.com/OldStager01/parksense/pkg/models"
)

var now = time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2026, 2, 5, hour, minute, 0, 0, time.UTC)
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

type stubConn struct{ connected bool }

func (s stubConn) IsConnected() bool { return s.connected }

type testEnv struct {
	server    *Server
	monitor   *monitor.Monitor
	collector *collector.MockCollector
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := func() time.Time { return now }
	mock := collector.NewMockCollector(collector.MockCollectorConfig{Clock: clock})
	mock.SetHistory("A01", []models.Observation{
		{Timestamp: at(9, 0), Occupied: true},
		{Timestamp: at(10, 0), Occupied: false},
	})
	mock.SetHistory("A02", []models.Observation{
		{Timestamp: at(11, 0), Occupied: true},
	})

	bus := events.NewEventBus(100)
	t.Cleanup(bus.Close)

	mon := monitor.New(monitor.Config{
		SpotIDs:     []string{"A01", "A02"},
		Interval:    time.Hour,
		Concurrency: 2,
		CacheTTL:    time.Minute,
		Collector:   mock,
		Store:       store.New(0),
		Engine:      occupancy.NewEngine(occupancy.Config{Clock: clock, Location: time.UTC}),
		Cache:       cache.NewMemoryCache(),
		EventBus:    bus,
		Metrics:     metrics.New(),
	})
	_, err := mon.Refresh(context.Background())
	require.NoError(t, err)

	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)

	opts.Service = mon
	if opts.Users == nil {
		opts.Users = auth.NewUserStore("admin", hash, nil)
	}
	if opts.Events == nil {
		opts.Events = bus.Subscribe(models.EventTypeSpotStatusChanged)
	}

	srv := NewServer(config.APIConfig{
		Port:          8080,
		RateLimit:     1000,
		JWTSecret:     "test-secret",
		JWTDuration:   time.Hour,
		JWTIssuer:     "parksense",
		AdminUsername: "admin",
		DefaultLimit:  100,
		MaxLimit:      1000,
	}, config.WebSocketConfig{}, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testEnv{server: srv, monitor: mon, collector: mock}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.server.Router().ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/auth/login", handlers.LoginRequest{Username: "admin", Password: "secret"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp handlers.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, 3600, resp.ExpiresIn)
	return resp.Token
}

func TestServer_ListSpots(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodGet, "/spots", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data  []handlers.SpotSummary `json:"data"`
		Count int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "A01", resp.Data[0].ID)
	assert.Equal(t, models.SpotStatusFree, resp.Data[0].Status)
	assert.Equal(t, "A02", resp.Data[1].ID)
	assert.Equal(t, models.SpotStatusOccupied, resp.Data[1].Status)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestServer_GetSpot(t *testing.T) {
	env := newTestEnv(t, Options{})

	tests := []struct {
		name string
		path string
		code int
	}{
		{"known", "/spots/A01", http.StatusOK},
		{"unknown", "/spots/Z99", http.StatusNotFound},
		{"invalid id", "/spots/not-a-spot", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, nil, "")
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestServer_SpotHistoryAndPeriods(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodGet, "/spots/A01/history?limit=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Data  []models.Observation `json:"data"`
		Count int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Equal(t, 1, history.Count)
	assert.True(t, history.Data[0].Timestamp.Equal(at(10, 0)))

	w = env.do(t, http.MethodGet, "/spots/A01/periods", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var periods struct {
		Data []handlers.PeriodResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &periods))
	require.Len(t, periods.Data, 1)
	assert.Equal(t, 60, periods.Data[0].DurationMinutes)
	assert.Equal(t, "1h", periods.Data[0].Duration)

	w = env.do(t, http.MethodGet, "/spots/A01/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var spotMetrics models.SpotMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &spotMetrics))
	assert.Equal(t, 1, spotMetrics.OccupancyCount)
	assert.Equal(t, 60, spotMetrics.TotalOccupancyTime)
}

func TestServer_MetricsEndpoints(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodGet, "/metrics/global", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var global models.GlobalMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &global))
	assert.Equal(t, 2, global.TotalOccupancyEvents)
	assert.Len(t, global.PeakHours, 24)

	w = env.do(t, http.MethodGet, "/metrics/peak-hours", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var peaks struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &peaks))
	assert.Equal(t, []string{"09:00 (100%)", "11:00 (100%)", "00:00 (0%)"}, peaks.Data)

	w = env.do(t, http.MethodGet, "/stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.ParkingStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalSpots)
	assert.Equal(t, 1, stats.FreeSpots)
	assert.Equal(t, 1, stats.OccupiedSpots)

	for _, path := range []string{"/metrics/hourly", "/metrics/hourly/chart"} {
		w = env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestServer_ProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodPost, "/spots/A01/observations", map[string]bool{"occupied": true}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/refresh", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_Login(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodPost, "/auth/login", handlers.LoginRequest{Username: "admin", Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := env.login(t)
	claims, err := env.server.AuthService().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestServer_AddObservation(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.login(t)

	w := env.do(t, http.MethodPost, "/spots/A01/observations", map[string]interface{}{
		"occupied":  true,
		"timestamp": at(11, 30),
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var spot handlers.SpotSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &spot))
	assert.Equal(t, models.SpotStatusOccupied, spot.Status)

	history, err := env.monitor.History("A01", 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	w = env.do(t, http.MethodPost, "/spots/A01/observations", map[string]string{"state": "busy"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ResetHistory(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.login(t)

	w := env.do(t, http.MethodDelete, "/spots/A01/history", nil, token)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	history, err := env.monitor.History("A01", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	w = env.do(t, http.MethodDelete, "/spots/Z99/history", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Refresh(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.login(t)

	w := env.do(t, http.MethodPost, "/refresh", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary monitor.RefreshSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, []string{"A01", "A02"}, summary.Refreshed)

	env.collector.SetShouldFail(true, nil)
	w = env.do(t, http.MethodPost, "/refresh", nil, token)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		code   int
		status string
	}{
		{"healthy", Options{DB: stubChecker{}, MQTT: stubConn{connected: true}}, http.StatusOK, "healthy"},
		{"mqtt down degrades", Options{MQTT: stubConn{}}, http.StatusOK, "degraded"},
		{"cache down degrades", Options{Cache: stubChecker{err: assert.AnError}}, http.StatusOK, "degraded"},
		{"database down", Options{DB: stubChecker{err: assert.AnError}}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.opts)

			w := env.do(t, http.MethodGet, "/health", nil, "")
			require.Equal(t, tt.code, w.Code)

			var resp handlers.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
		})
	}
}

func TestServer_Probes(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// The monitor is built but its polling loop was never started.
	w = env.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	require.NoError(t, env.monitor.Start())
	defer env.monitor.Stop()
	w = env.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Swagger(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodGet, "/swagger/doc.json", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ParkSense API")
}
