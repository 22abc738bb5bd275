// Package orchestrator fans one image out to every configured analyzer in
// parallel under a global deadline and collects per-service results and
// statuses. Individual analyzer failures never fail the request.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emojivision/mosaic/pkg/analyzer"
	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/models"
)

// ImageRef identifies the image being analyzed and how analyzers reach it.
type ImageRef struct {
	// URL is set when analyzers should fetch the image over HTTP (uploaded
	// or downloaded images served from the public upload path).
	URL string
	// FilePath is set for zero-copy direct file access.
	FilePath string
	// LocalPath is the on-disk location used for dimension measurement.
	// Always set when the bytes are locally available.
	LocalPath string
}

// Param returns the analyzer query parameter name and value for this ref.
func (r ImageRef) Param() (string, string) {
	if r.URL != "" {
		return "url", r.URL
	}
	return "file", r.FilePath
}

// FanoutResult is the orchestrator's complete output for one image.
type FanoutResult struct {
	// Results maps analyzer id to its outcome. Every configured analyzer
	// has an entry.
	Results map[string]*models.AnalysisResult
	// Statuses lists per-service call statuses in configuration order.
	Statuses []models.ServiceStatus
	// Dimensions is nil when measurement failed; rescaling is then a no-op.
	Dimensions *models.Dimensions
}

// Orchestrator owns one client per configured analyzer.
type Orchestrator struct {
	registry *config.AnalyzerRegistry
	clients  map[string]*analyzer.Client
	budget   time.Duration
	logger   *slog.Logger
}

// New builds an orchestrator with one client per analyzer in the registry.
func New(cfg *config.Config) *Orchestrator {
	clients := make(map[string]*analyzer.Client, cfg.Analyzers.Len())
	for _, a := range cfg.Analyzers.All() {
		clients[a.ID] = analyzer.NewClient(a, cfg.Server.AnalyzerTimeout(), cfg.Server.MaxRetries)
	}
	return &Orchestrator{
		registry: cfg.Analyzers,
		clients:  clients,
		budget:   cfg.Server.RequestBudget(),
		logger:   slog.With("component", "orchestrator"),
	}
}

// Analyze runs every analyzer concurrently and awaits them under the global
// budget. Calls still in flight when the budget expires are reported as
// timeouts and their eventual output discarded.
func (o *Orchestrator) Analyze(ctx context.Context, ref ImageRef) *FanoutResult {
	ctx, cancel := context.WithTimeout(ctx, o.budget)
	defer cancel()

	var dims *models.Dimensions
	if ref.LocalPath != "" {
		measured, err := MeasureDimensions(ref.LocalPath)
		if err != nil {
			o.logger.Warn("Dimension measurement failed, rescaling disabled",
				"path", ref.LocalPath, "error", err)
		} else {
			dims = measured
		}
	}

	type callOutcome struct {
		result  *models.AnalysisResult
		elapsed time.Duration
	}

	var mu sync.Mutex
	outcomes := make(map[string]callOutcome, o.registry.Len())

	g := new(errgroup.Group)
	for _, id := range o.registry.IDs() {
		client := o.clients[id]
		g.Go(func() error {
			start := time.Now()
			var result *models.AnalysisResult
			if ref.URL != "" {
				result = client.AnalyzeURL(ctx, ref.URL)
			} else {
				result = client.AnalyzeFile(ctx, ref.FilePath)
			}
			elapsed := time.Since(start)

			mu.Lock()
			outcomes[client.ID()] = callOutcome{result: result, elapsed: elapsed}
			mu.Unlock()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		o.logger.Warn("Request budget expired with analyzers in flight")
	}

	// Snapshot under the lock: goroutines past the deadline may still be
	// finishing, and their late output must be discarded, not raced over.
	mu.Lock()
	snapshot := make(map[string]callOutcome, len(outcomes))
	for id, oc := range outcomes {
		snapshot[id] = oc
	}
	mu.Unlock()

	out := &FanoutResult{
		Results:    make(map[string]*models.AnalysisResult, o.registry.Len()),
		Dimensions: dims,
	}
	for _, id := range o.registry.IDs() {
		oc, finished := snapshot[id]
		if !finished {
			oc = callOutcome{
				result: &models.AnalysisResult{
					OK:           false,
					ErrorKind:    models.ErrorKindTimeout,
					ErrorMessage: "request budget exceeded",
				},
				elapsed: o.budget,
			}
		}
		out.Results[id] = oc.result
		out.Statuses = append(out.Statuses, models.ServiceStatus{
			ServiceID:        id,
			Status:           models.StatusForResult(oc.result),
			ProcessingTimeMS: oc.elapsed.Milliseconds(),
			PredictionCount:  len(oc.result.Predictions),
			ErrorMessage:     oc.result.ErrorMessage,
		})
	}
	return out
}

// HealthSummary derives the degraded-service summary from per-call statuses.
// Returns nil when every analyzer succeeded.
func HealthSummary(statuses []models.ServiceStatus) *models.ServiceHealthSummary {
	var degraded []string
	for _, s := range statuses {
		if s.Status != models.CallSuccess {
			degraded = append(degraded, s.ServiceID)
		}
	}
	if len(degraded) == 0 {
		return nil
	}
	return &models.ServiceHealthSummary{
		DegradedServices: degraded,
		FailedCount:      len(degraded),
		TotalServices:    len(statuses),
	}
}
