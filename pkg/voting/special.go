package voting

import "github.com/emojivision/mosaic/pkg/models"

// extractSpecial produces the out-of-competition sidecars. Independent of
// voting: a detection reported here may still be absent from the consensus.
func (e *Engine) extractSpecial(results map[string]*models.AnalysisResult) models.SpecialDetections {
	special := models.SpecialDetections{}

	for _, a := range e.registry.All() {
		result, ok := results[a.ID]
		if !ok || !result.OK {
			continue
		}
		for i := range result.Predictions {
			p := &result.Predictions[i]
			switch p.Type {
			case models.PredictionTextExtraction:
				if !special.Text.Detected && p.PropBool("has_text") {
					special.Text = models.SpecialDetection{
						Detected:   true,
						Emoji:      TextEmoji,
						Confidence: p.Confidence,
						Content:    p.Text,
					}
				}

			case models.PredictionFaceDetection:
				if !special.Face.Detected && Normalize(p.Emoji) == Normalize(FaceEmoji) {
					special.Face = models.SpecialDetection{
						Detected:   true,
						Emoji:      Normalize(p.Emoji),
						Confidence: p.Confidence,
						Pose:       p.PropString("pose"),
					}
				}

			case models.PredictionContentModeration:
				if !special.NSFW.Detected && Normalize(p.Emoji) == Normalize(NSFWEmoji) {
					special.NSFW = models.SpecialDetection{
						Detected:   true,
						Emoji:      Normalize(p.Emoji),
						Confidence: p.Confidence,
					}
				}
			}
		}
	}
	return special
}
