// Package spatial groups bounding-box detections from independent analyzers
// into per-emoji object instances. It is a pure function of the analyzer
// result map and the original image dimensions: no calls back into the
// orchestrator or voting layers.
package spatial

import (
	"log/slog"
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/models"
)

const (
	// IoUThreshold is the strict lower bound for joining a cluster. Overlap
	// is measured against the cluster anchor only, never other members, so
	// A-B-C chains cannot drift transitively.
	IoUThreshold = 0.30

	// SingletonConfidence is the "shout" threshold: a cluster with a single
	// detection survives only at or above this confidence.
	SingletonConfidence = 0.85

	// FaceKey groups all face detections regardless of emoji.
	FaceKey = "face"
)

// Engine clusters detections across analyzers.
type Engine struct {
	registry *config.AnalyzerRegistry
	logger   *slog.Logger
}

// NewEngine creates a clustering engine over the configured roster.
func NewEngine(registry *config.AnalyzerRegistry) *Engine {
	return &Engine{
		registry: registry,
		logger:   slog.With("component", "spatial"),
	}
}

// Cluster runs the full pipeline: extract, rescale, key, cluster, clean,
// score, and emit instances. dims may be nil, in which case rescaling is
// the identity on every bbox.
func (e *Engine) Cluster(results map[string]*models.AnalysisResult, dims *models.Dimensions) *models.SpatialResult {
	detections := e.extract(results, dims)

	byKey := make(map[string][]models.Detection)
	var keyOrder []string
	for _, d := range detections {
		key := GroupKey(d)
		if key == "" {
			continue
		}
		if _, seen := byKey[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		byKey[key] = append(byKey[key], d)
	}

	out := &models.SpatialResult{Groups: make(map[string]*models.GroupedEmoji)}
	for _, key := range keyOrder {
		group := e.clusterGroup(key, byKey[key])
		if group == nil {
			continue
		}
		out.Groups[key] = group
		out.AllDetections = append(out.AllDetections, group.Detections...)
	}
	return out
}

// extract walks analyzers in configuration order and converts bbox-bearing
// predictions into rescaled detections. Analyzers whose category never emits
// spatial output are skipped.
func (e *Engine) extract(results map[string]*models.AnalysisResult, dims *models.Dimensions) []models.Detection {
	var detections []models.Detection

	for _, a := range e.registry.All() {
		if a.Category == config.CategorySemantic || a.Category == config.CategoryOther {
			continue
		}
		result, ok := results[a.ID]
		if !ok || !result.OK {
			continue
		}

		scaleX, scaleY := rescaleFactors(&result.Metadata, dims)
		for _, p := range result.Predictions {
			if p.BBox == nil || !p.Type.Spatial() {
				continue
			}
			detections = append(detections, models.Detection{
				ServiceID:    a.ID,
				Label:        p.Label,
				Emoji:        p.Emoji,
				Type:         p.Type,
				Confidence:   p.Confidence,
				BBox:         rescaleBBox(*p.BBox, scaleX, scaleY),
				OriginalBBox: *p.BBox,
			})
		}
	}
	return detections
}

// rescaleFactors derives the per-axis multipliers bringing an analyzer's
// working coordinates into the original image space. Analyzers are expected
// to return original-scale coordinates already; only when one reports its own
// processing dimensions does rescaling do anything.
func rescaleFactors(meta *models.ResultMetadata, dims *models.Dimensions) (float64, float64) {
	if dims == nil || meta.ProcessingWidth <= 0 || meta.ProcessingHeight <= 0 {
		return 1, 1
	}
	return float64(dims.Width) / float64(meta.ProcessingWidth),
		float64(dims.Height) / float64(meta.ProcessingHeight)
}

func rescaleBBox(b models.BBox, scaleX, scaleY float64) models.BBox {
	if scaleX == 1 && scaleY == 1 {
		return b
	}
	return models.BBox{
		X:      int(math.Round(float64(b.X) * scaleX)),
		Y:      int(math.Round(float64(b.Y) * scaleY)),
		Width:  int(math.Round(float64(b.Width) * scaleX)),
		Height: int(math.Round(float64(b.Height) * scaleY)),
	}
}

// GroupKey returns the normalized grouping key for a detection: "face" for
// face detections, otherwise the NFC-normalized emoji. NFC coalesces
// variation-selector and ZWJ-sequence differences that would otherwise split
// groups on raw bytes.
func GroupKey(d models.Detection) string {
	if d.Type == models.PredictionFaceDetection {
		return FaceKey
	}
	if d.Emoji == "" {
		return ""
	}
	return norm.NFC.String(d.Emoji)
}
