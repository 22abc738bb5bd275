package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/models"
)

const (
	// HealthCheckInterval is how often the background monitor probes analyzers.
	HealthCheckInterval = 30 * time.Second
	// HealthProbeTimeout bounds one health probe.
	HealthProbeTimeout = 5 * time.Second
)

// HealthState is the probe outcome for one analyzer.
type HealthState string

const (
	HealthHealthy HealthState = "healthy"
	HealthOffline HealthState = "offline"
	HealthError   HealthState = "error"
)

// HealthStatus captures the health check result for a single analyzer.
type HealthStatus struct {
	ServiceID      string      `json:"name"`
	Status         HealthState `json:"status"`
	ResponseTimeMS int64       `json:"response_time_ms"`
	LastCheck      time.Time   `json:"last_check"`
	Error          string      `json:"error,omitempty"`
}

// HealthSummary aggregates probe outcomes across the roster.
type HealthSummary struct {
	Healthy  int
	Total    int
	Degraded []string
}

// HealthMonitor periodically probes each analyzer's health endpoint.
// Runs a background goroutine; statuses are cached and served to the API.
type HealthMonitor struct {
	registry   *config.AnalyzerRegistry
	httpClient *http.Client

	checkInterval time.Duration
	probeTimeout  time.Duration

	statuses   map[string]*HealthStatus
	statusesMu sync.RWMutex

	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger
}

// NewHealthMonitor creates a monitor for the configured analyzer roster.
func NewHealthMonitor(registry *config.AnalyzerRegistry) *HealthMonitor {
	return &HealthMonitor{
		registry:      registry,
		httpClient:    &http.Client{Timeout: HealthProbeTimeout},
		checkInterval: HealthCheckInterval,
		probeTimeout:  HealthProbeTimeout,
		statuses:      make(map[string]*HealthStatus),
		logger:        slog.Default(),
	}
}

// Start launches the background health check loop.
// Calling Start on an already-running monitor is a no-op.
func (m *HealthMonitor) Start(ctx context.Context) {
	if m.cancel != nil {
		return // already started
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.loop(ctx)
}

// Stop gracefully shuts down the health monitor.
// After Stop returns, Start may be called again.
func (m *HealthMonitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.done != nil {
		<-m.done
	}

	// Clear stale health data so a subsequent Start begins with a clean slate.
	m.statusesMu.Lock()
	m.statuses = make(map[string]*HealthStatus)
	m.statusesMu.Unlock()

	m.cancel = nil
	m.done = nil
}

func (m *HealthMonitor) loop(ctx context.Context) {
	defer close(m.done)

	// Run first check immediately
	m.CheckAll(ctx)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll probes every configured analyzer once and updates the cache.
func (m *HealthMonitor) CheckAll(ctx context.Context) {
	for _, a := range m.registry.All() {
		m.checkAnalyzer(ctx, a)
	}
}

type healthEnvelope struct {
	Status string `json:"status"`
}

func (m *HealthMonitor) checkAnalyzer(ctx context.Context, a *config.AnalyzerConfig) {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	start := time.Now()
	state, errMsg := m.probe(probeCtx, a)
	elapsed := time.Since(start)

	if state != HealthHealthy {
		m.logger.Debug("Analyzer health probe failed",
			"analyzer", a.ID, "status", state, "error", errMsg)
	}
	m.setStatus(a.ID, state, elapsed, errMsg)
}

func (m *HealthMonitor) probe(ctx context.Context, a *config.AnalyzerConfig) (HealthState, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL()+"/health", nil)
	if err != nil {
		return HealthError, err.Error()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		if classifyTransportError(err) == models.ErrorKindOffline {
			return HealthOffline, err.Error()
		}
		return HealthError, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthError, fmt.Sprintf("health endpoint returned HTTP %d", resp.StatusCode)
	}

	var env healthEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return HealthError, fmt.Sprintf("decode health response: %v", err)
	}
	return HealthHealthy, ""
}

func (m *HealthMonitor) setStatus(serviceID string, state HealthState, elapsed time.Duration, errMsg string) {
	m.statusesMu.Lock()
	defer m.statusesMu.Unlock()
	m.statuses[serviceID] = &HealthStatus{
		ServiceID:      serviceID,
		Status:         state,
		ResponseTimeMS: elapsed.Milliseconds(),
		LastCheck:      time.Now(),
		Error:          errMsg,
	}
}

// GetStatuses returns the current health status of all monitored analyzers,
// in configuration order. Analyzers not yet probed are absent.
func (m *HealthMonitor) GetStatuses() []*HealthStatus {
	m.statusesMu.RLock()
	defer m.statusesMu.RUnlock()

	out := make([]*HealthStatus, 0, len(m.statuses))
	for _, id := range m.registry.IDs() {
		if s, ok := m.statuses[id]; ok {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

// Summary returns the degraded/offline set and counts from cached statuses.
func (m *HealthMonitor) Summary() HealthSummary {
	m.statusesMu.RLock()
	defer m.statusesMu.RUnlock()

	sum := HealthSummary{Total: m.registry.Len()}
	for _, id := range m.registry.IDs() {
		s, ok := m.statuses[id]
		if !ok {
			continue
		}
		if s.Status == HealthHealthy {
			sum.Healthy++
		} else {
			sum.Degraded = append(sum.Degraded, id)
		}
	}
	return sum
}
