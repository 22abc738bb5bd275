package analyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emojivision/mosaic/pkg/config"
)

func healthyServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"status": "healthy"}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthMonitorCheckAll(t *testing.T) {
	healthy := healthyServer(t)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	offline := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	offlineCfg := analyzerFor(t, offline, "rtdetr")
	offline.Close()

	registry := config.NewAnalyzerRegistry([]config.AnalyzerConfig{
		*analyzerFor(t, healthy, "yolo"),
		*analyzerFor(t, failing, "detectron2"),
		*offlineCfg,
	})

	m := NewHealthMonitor(registry)
	m.CheckAll(context.Background())

	statuses := m.GetStatuses()
	require.Len(t, statuses, 3)

	// Configuration order, not probe-completion order.
	assert.Equal(t, "yolo", statuses[0].ServiceID)
	assert.Equal(t, HealthHealthy, statuses[0].Status)
	assert.Empty(t, statuses[0].Error)

	assert.Equal(t, "detectron2", statuses[1].ServiceID)
	assert.Equal(t, HealthError, statuses[1].Status)
	assert.Contains(t, statuses[1].Error, "500")

	assert.Equal(t, "rtdetr", statuses[2].ServiceID)
	assert.Equal(t, HealthOffline, statuses[2].Status)

	sum := m.Summary()
	assert.Equal(t, 1, sum.Healthy)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, []string{"detectron2", "rtdetr"}, sum.Degraded)
}

func TestHealthMonitorMalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	t.Cleanup(ts.Close)

	registry := config.NewAnalyzerRegistry([]config.AnalyzerConfig{*analyzerFor(t, ts, "yolo")})
	m := NewHealthMonitor(registry)
	m.CheckAll(context.Background())

	statuses := m.GetStatuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, HealthError, statuses[0].Status)
}

func TestHealthMonitorStartStop(t *testing.T) {
	ts := healthyServer(t)

	registry := config.NewAnalyzerRegistry([]config.AnalyzerConfig{*analyzerFor(t, ts, "yolo")})
	m := NewHealthMonitor(registry)

	m.Start(context.Background())
	m.Start(context.Background()) // second Start is a no-op

	// The loop runs its first pass immediately; Stop waits for the goroutine
	// and clears cached statuses.
	m.Stop()
	assert.Empty(t, m.GetStatuses())

	// Restartable after Stop.
	m.Start(context.Background())
	m.Stop()
}

func TestHealthMonitorNoProbesYet(t *testing.T) {
	registry := config.NewAnalyzerRegistry([]config.AnalyzerConfig{
		{ID: "yolo", Host: "localhost", Port: 8001, Endpoint: "/analyze", Category: config.CategorySpatial},
	})
	m := NewHealthMonitor(registry)

	assert.Empty(t, m.GetStatuses())
	sum := m.Summary()
	assert.Equal(t, 0, sum.Healthy)
	assert.Equal(t, 1, sum.Total)
	assert.Empty(t, sum.Degraded)
}
