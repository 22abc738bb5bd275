// Package pipeline runs the full analysis flow for one image: fan-out,
// spatial clustering, voting, caption aggregation, and response assembly.
package pipeline

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/emojivision/mosaic/pkg/analyzer"
	"github.com/emojivision/mosaic/pkg/caption"
	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/models"
	"github.com/emojivision/mosaic/pkg/orchestrator"
	"github.com/emojivision/mosaic/pkg/spatial"
	"github.com/emojivision/mosaic/pkg/voting"
)

// Request describes one image to analyze.
type Request struct {
	Ref         orchestrator.ImageRef
	Method      models.ProcessingMethod
	OriginalURL string
}

// Pipeline wires the orchestrator, clustering and voting engines, and the
// caption aggregator into one run function.
type Pipeline struct {
	orch     *orchestrator.Orchestrator
	spatial  *spatial.Engine
	voting   *voting.Engine
	captions *caption.Aggregator
	logger   *slog.Logger
}

// New constructs the pipeline from configuration. Caption similarity scoring
// is enabled when a "clip" analyzer is configured.
func New(cfg *config.Config) *Pipeline {
	var scorer caption.Scorer
	if clip, ok := cfg.Analyzers.Get("clip"); ok {
		scorer = analyzer.NewSimilarityClient(clip, cfg.Server.SimilarityPath, cfg.Server.AnalyzerTimeout())
	}
	return &Pipeline{
		orch:     orchestrator.New(cfg),
		spatial:  spatial.NewEngine(cfg.Analyzers),
		voting:   voting.NewEngine(cfg.Analyzers),
		captions: caption.NewAggregator(cfg.Analyzers, scorer),
		logger:   slog.With("component", "pipeline"),
	}
}

// NewWithParts constructs a pipeline from pre-built components. For tests.
func NewWithParts(orch *orchestrator.Orchestrator, sp *spatial.Engine, vt *voting.Engine, ca *caption.Aggregator) *Pipeline {
	return &Pipeline{
		orch:     orch,
		spatial:  sp,
		voting:   vt,
		captions: ca,
		logger:   slog.With("component", "pipeline"),
	}
}

// Run analyzes one image end to end. Partial analyzer failure never fails
// the run; it flips the response's Success flag and fills the health summary.
func (p *Pipeline) Run(ctx context.Context, req Request) *models.AnalyzeResponse {
	start := time.Now()
	imageID := uuid.New().String()
	log := p.logger.With("image_id", imageID)

	fanout := p.orch.Analyze(ctx, req.Ref)

	clustered := p.spatial.Cluster(fanout.Results, fanout.Dimensions)
	votes := p.voting.Run(fanout.Results, clustered)

	input, value := req.Ref.Param()
	captions := p.captions.Collect(ctx, fanout.Results, input, value)

	health := orchestrator.HealthSummary(fanout.Statuses)
	resp := &models.AnalyzeResponse{
		Success:             health == nil,
		ImageID:             imageID,
		AnalysisTimeSeconds: roundSeconds(time.Since(start)),
		ImageData: models.ImageData{
			Dimensions:       fanout.Dimensions,
			ProcessingMethod: req.Method,
			ImageURL:         req.Ref.URL,
			FilePath:         req.Ref.FilePath,
			OriginalURL:      req.OriginalURL,
		},
		Votes:           models.Votes{Consensus: votes.Consensus},
		Special:         votes.Special,
		Captions:        captions,
		Results:         compactResults(fanout),
		ServiceStatuses: fanout.Statuses,
		ServiceHealth:   health,
	}

	log.Info("Analysis complete",
		"consensus", len(votes.Consensus),
		"degraded", health != nil,
		"elapsed", time.Since(start))
	return resp
}

// compactResults retains the per-service slice of each result for the
// response document. JSON object keys serialize sorted, satisfying the
// service-id ordering contract.
func compactResults(fanout *orchestrator.FanoutResult) map[string]models.CompactResult {
	out := make(map[string]models.CompactResult, len(fanout.Results))
	for _, s := range fanout.Statuses {
		r := fanout.Results[s.ServiceID]
		out[s.ServiceID] = models.CompactResult{
			OK:             r.OK,
			Status:         s.Status,
			Predictions:    r.Predictions,
			ProcessingTime: r.Metadata.ProcessingTimeSeconds,
		}
	}
	return out
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
