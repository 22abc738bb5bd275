// Package caption selects analyzer captions and scores them against the
// image via the similarity endpoint.
package caption

import (
	"context"
	"log/slog"

	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/models"
)

// Scorer scores one caption against the analyzed image.
type Scorer interface {
	Score(ctx context.Context, input, value, caption string) (float64, error)
}

// Aggregator collects captions from caption-producing analyzers.
type Aggregator struct {
	registry *config.AnalyzerRegistry
	scorer   Scorer // nil disables similarity scoring
	logger   *slog.Logger
}

// NewAggregator creates an aggregator. scorer may be nil, in which case all
// captions are emitted with a null similarity score.
func NewAggregator(registry *config.AnalyzerRegistry, scorer Scorer) *Aggregator {
	return &Aggregator{
		registry: registry,
		scorer:   scorer,
		logger:   slog.With("component", "caption"),
	}
}

// Collect takes the first caption-typed prediction of each caption-producing
// analyzer and optionally scores it. input/value identify the image for the
// similarity call ("url" or "file"). A failed similarity call leaves the
// score null; the caption is still emitted.
func (a *Aggregator) Collect(ctx context.Context, results map[string]*models.AnalysisResult, input, value string) map[string]models.Caption {
	captions := make(map[string]models.Caption)

	for _, cfg := range a.registry.ByCategory(config.CategorySemantic) {
		result, ok := results[cfg.ID]
		if !ok || !result.OK {
			continue
		}
		text := firstCaption(result)
		if text == "" {
			continue
		}

		entry := models.Caption{
			Original: text,
			Words:    MeaningfulWordCount(text),
		}
		if a.scorer != nil {
			score, err := a.scorer.Score(ctx, input, value, text)
			if err != nil {
				a.logger.Warn("Similarity scoring failed", "analyzer", cfg.ID, "error", err)
			} else {
				entry.CLIPSimilarity = &score
			}
		}
		captions[cfg.ID] = entry
	}
	return captions
}

// Best returns the id of the winning caption: highest similarity first, then
// fewest meaningful words. Unscored captions rank below scored ones.
func Best(captions map[string]models.Caption, order []string) (string, bool) {
	bestID := ""
	for _, id := range order {
		c, ok := captions[id]
		if !ok {
			continue
		}
		if bestID == "" || better(c, captions[bestID]) {
			bestID = id
		}
	}
	return bestID, bestID != ""
}

func better(a, b models.Caption) bool {
	as, bs := scoreOf(a), scoreOf(b)
	if as != bs {
		return as > bs
	}
	return a.Words < b.Words
}

func scoreOf(c models.Caption) float64 {
	if c.CLIPSimilarity == nil {
		return -1
	}
	return *c.CLIPSimilarity
}

func firstCaption(result *models.AnalysisResult) string {
	for i := range result.Predictions {
		if result.Predictions[i].Type == models.PredictionCaption {
			return result.Predictions[i].Text
		}
	}
	return ""
}
