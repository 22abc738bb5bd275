package voting

import (
	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/models"
)

// SentinelService tags detections synthesized from the clustering engine's
// instances. Sentinels contribute spatial evidence but never count as a
// voting service.
const SentinelService = "spatial_clustering"

// voteDetection is one unit of evidence for an emoji.
type voteDetection struct {
	ServiceID    string
	Emoji        string
	EvidenceType models.EvidenceType
	Confidence   float64
	Shiny        bool

	// Semantic context (caption mappings).
	Word   string
	Source string

	// Specialized context.
	Properties map[string]any

	// Spatial sentinel payload.
	SpatialData *models.Instance
}

// extract converts analyzer results into the flat vote-detection stream.
// Analyzers are walked in configuration order so tie resolution within equal
// vote counts is reproducible for a given input.
func (e *Engine) extract(results map[string]*models.AnalysisResult, spatial *models.SpatialResult) []voteDetection {
	var votes []voteDetection

	for _, a := range e.registry.All() {
		result, ok := results[a.ID]
		if !ok || !result.OK {
			continue
		}
		votes = append(votes, extractAnalyzer(a, result)...)
	}

	// Fold clustered instances into the stream as spatial sentinels.
	if spatial != nil {
		for _, key := range sortedKeys(spatial.Groups) {
			group := spatial.Groups[key]
			for i := range group.Instances {
				inst := group.Instances[i]
				votes = append(votes, voteDetection{
					ServiceID:    SentinelService,
					Emoji:        Normalize(inst.Emoji),
					EvidenceType: models.EvidenceSpatial,
					Confidence:   inst.AvgConfidence,
					SpatialData:  &inst,
				})
			}
		}
	}
	return votes
}

// extractAnalyzer emits votes for one analyzer's predictions. Caption
// mappings take precedence over direct emojis; within one analyzer each
// emoji votes at most once.
func extractAnalyzer(a *config.AnalyzerConfig, result *models.AnalysisResult) []voteDetection {
	var votes []voteDetection
	seen := make(map[string]bool)

	for i := range result.Predictions {
		p := &result.Predictions[i]

		if len(p.EmojiMappings) > 0 {
			for _, m := range p.EmojiMappings {
				emoji := Normalize(m.Emoji)
				if emoji == "" || seen[emoji] {
					continue
				}
				seen[emoji] = true
				votes = append(votes, voteDetection{
					ServiceID:    a.ID,
					Emoji:        emoji,
					EvidenceType: models.EvidenceSemantic,
					Confidence:   DefaultConfidence,
					Shiny:        m.Shiny,
					Word:         m.Word,
					Source:       "caption_mapping",
				})
			}
			continue
		}

		if p.Emoji == "" || p.Type == models.PredictionColorAnalysis {
			continue
		}
		emoji := Normalize(p.Emoji)
		if seen[emoji] {
			continue
		}
		seen[emoji] = true

		confidence := p.Confidence
		if confidence == 0 {
			confidence = DefaultConfidence
		}
		votes = append(votes, voteDetection{
			ServiceID:    a.ID,
			Emoji:        emoji,
			EvidenceType: evidenceForCategory(a.Category),
			Confidence:   confidence,
			Properties:   p.Properties,
		})
	}
	return votes
}

func evidenceForCategory(c config.Category) models.EvidenceType {
	switch c {
	case config.CategorySpatial:
		return models.EvidenceSpatial
	case config.CategorySemantic:
		return models.EvidenceSemantic
	case config.CategoryClassification:
		return models.EvidenceClassification
	case config.CategorySpecialized:
		return models.EvidenceSpecialized
	default:
		return models.EvidenceOther
	}
}
