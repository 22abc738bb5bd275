package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/models"
)

const (
	catEmoji = "\U0001F63A"
	dogEmoji = "\U0001F436"
)

func testRegistry() *config.AnalyzerRegistry {
	return config.NewAnalyzerRegistry([]config.AnalyzerConfig{
		{ID: "yolo", Host: "localhost", Port: 8001, Endpoint: "/analyze", Category: config.CategorySpatial},
		{ID: "detectron2", Host: "localhost", Port: 8002, Endpoint: "/analyze", Category: config.CategorySpatial},
		{ID: "rtdetr", Host: "localhost", Port: 8003, Endpoint: "/analyze", Category: config.CategorySpatial},
		{ID: "blip", Host: "localhost", Port: 8008, Endpoint: "/analyze", Category: config.CategorySemantic},
		{ID: "ollama", Host: "localhost", Port: 8009, Endpoint: "/analyze", Category: config.CategorySemantic},
		{ID: "face", Host: "localhost", Port: 8010, Endpoint: "/analyze", Category: config.CategorySpecialized},
		{ID: "nsfw", Host: "localhost", Port: 8011, Endpoint: "/analyze", Category: config.CategorySpecialized},
		{ID: "ocr", Host: "localhost", Port: 8012, Endpoint: "/analyze", Category: config.CategorySpecialized},
		{ID: "colors", Host: "localhost", Port: 8013, Endpoint: "/analyze", Category: config.CategoryOther},
	})
}

func detectorResult(label, emoji string, conf float64) *models.AnalysisResult {
	return &models.AnalysisResult{OK: true, Predictions: []models.Prediction{{
		Type:       models.PredictionObjectDetection,
		Label:      label,
		Emoji:      emoji,
		Confidence: conf,
		BBox:       &models.BBox{X: 0, Y: 0, Width: 100, Height: 100},
	}}}
}

func captionResult(text string, mappings ...models.EmojiMapping) *models.AnalysisResult {
	return &models.AnalysisResult{OK: true, Predictions: []models.Prediction{{
		Type:          models.PredictionCaption,
		Text:          text,
		EmojiMappings: mappings,
	}}}
}

func spatialInstances(emoji string, instances ...models.Instance) *models.SpatialResult {
	return &models.SpatialResult{Groups: map[string]*models.GroupedEmoji{
		emoji: {Emoji: emoji, Instances: instances},
	}}
}

func TestRunCorroboratedConsensus(t *testing.T) {
	e := NewEngine(testRegistry())

	results := map[string]*models.AnalysisResult{
		"yolo":       detectorResult("cat", catEmoji, 0.9),
		"detectron2": detectorResult("cat", catEmoji, 0.85),
		"blip":       captionResult("a cat on a mat", models.EmojiMapping{Word: "cat", Emoji: catEmoji}),
	}
	spatial := spatialInstances(catEmoji, models.Instance{
		ClusterID:      "cat_1",
		Emoji:          catEmoji,
		Label:          "cat",
		MergedBBox:     models.BBox{X: 0, Y: 0, Width: 100, Height: 100},
		DetectionCount: 2,
		AvgConfidence:  0.875,
	})

	out := e.Run(results, spatial)
	require.Len(t, out.Consensus, 1)

	item := out.Consensus[0]
	assert.Equal(t, catEmoji, item.Emoji)
	assert.Equal(t, 3, item.Votes)
	assert.Equal(t, []string{"yolo", "detectron2", "blip"}, item.Services)

	// 3 votes + 1 spatial bonus (two detectors on one instance), no content
	// bonus with a single semantic source.
	assert.InDelta(t, 4.0, item.EvidenceWeight, 1e-9)
	assert.InDelta(t, 7.0, item.FinalScore, 1e-9)

	require.Len(t, item.BoundingBoxes, 1)
	assert.Equal(t, "cat_1", item.BoundingBoxes[0].ClusterID)
	require.NotNil(t, item.InstancesSummary)
	assert.Equal(t, 1, item.InstancesSummary.Count)
	assert.Equal(t, 2, item.InstancesSummary.TotalObjects)
	assert.InDelta(t, 0.875, item.InstancesSummary.AvgConfidence, 1e-9)
}

func TestRunVoteFloor(t *testing.T) {
	e := NewEngine(testRegistry())

	results := map[string]*models.AnalysisResult{
		"yolo": detectorResult("cat", catEmoji, 0.95),
	}

	out := e.Run(results, nil)
	assert.Empty(t, out.Consensus)
	assert.Equal(t, 1, out.GroupsTotal)
	assert.Equal(t, 1, out.GroupsBelowMin)
}

func TestRunSentinelIsNotAVotingService(t *testing.T) {
	e := NewEngine(testRegistry())

	// Clustered instances alone carry no votes: a group backed purely by
	// sentinels stays below the floor.
	spatial := spatialInstances(catEmoji, models.Instance{
		ClusterID: "cat_1", Emoji: catEmoji, DetectionCount: 2, AvgConfidence: 0.9,
	})

	out := e.Run(map[string]*models.AnalysisResult{}, spatial)
	assert.Empty(t, out.Consensus)
	assert.Equal(t, 1, out.GroupsBelowMin)
}

func TestRunContentConsensusBonus(t *testing.T) {
	e := NewEngine(testRegistry())

	results := map[string]*models.AnalysisResult{
		"yolo":   detectorResult("dog", dogEmoji, 0.9),
		"blip":   captionResult("a dog", models.EmojiMapping{Word: "dog", Emoji: dogEmoji}),
		"ollama": captionResult("small dog outside", models.EmojiMapping{Word: "dog", Emoji: dogEmoji}),
	}

	out := e.Run(results, nil)
	require.Len(t, out.Consensus, 1)

	item := out.Consensus[0]
	assert.Equal(t, 3, item.Votes)
	// Two semantic sources agree: content bonus is sources-1 = 1.
	assert.InDelta(t, 4.0, item.EvidenceWeight, 1e-9)
	assert.InDelta(t, 7.0, item.FinalScore, 1e-9)
}

func TestRunRanking(t *testing.T) {
	e := NewEngine(testRegistry())

	// cat: 3 votes. dog: 2 votes. Ranking is votes first.
	results := map[string]*models.AnalysisResult{
		"yolo": {OK: true, Predictions: []models.Prediction{
			{Type: models.PredictionObjectDetection, Label: "cat", Emoji: catEmoji, Confidence: 0.9},
			{Type: models.PredictionObjectDetection, Label: "dog", Emoji: dogEmoji, Confidence: 0.9},
		}},
		"detectron2": {OK: true, Predictions: []models.Prediction{
			{Type: models.PredictionObjectDetection, Label: "cat", Emoji: catEmoji, Confidence: 0.9},
			{Type: models.PredictionObjectDetection, Label: "dog", Emoji: dogEmoji, Confidence: 0.9},
		}},
		"blip": captionResult("a cat", models.EmojiMapping{Word: "cat", Emoji: catEmoji}),
	}

	out := e.Run(results, nil)
	require.Len(t, out.Consensus, 2)
	assert.Equal(t, catEmoji, out.Consensus[0].Emoji)
	assert.Equal(t, dogEmoji, out.Consensus[1].Emoji)
}

func TestRunWeightBreaksVoteTies(t *testing.T) {
	e := NewEngine(testRegistry())

	// Both emojis have 2 votes; dog adds a spatial bonus through a
	// two-detection instance, so it ranks first.
	results := map[string]*models.AnalysisResult{
		"yolo": {OK: true, Predictions: []models.Prediction{
			{Type: models.PredictionObjectDetection, Label: "cat", Emoji: catEmoji, Confidence: 0.9},
			{Type: models.PredictionObjectDetection, Label: "dog", Emoji: dogEmoji, Confidence: 0.9},
		}},
		"detectron2": {OK: true, Predictions: []models.Prediction{
			{Type: models.PredictionObjectDetection, Label: "cat", Emoji: catEmoji, Confidence: 0.9},
			{Type: models.PredictionObjectDetection, Label: "dog", Emoji: dogEmoji, Confidence: 0.9},
		}},
	}
	spatial := spatialInstances(dogEmoji, models.Instance{
		ClusterID: "dog_1", Emoji: dogEmoji, DetectionCount: 2, AvgConfidence: 0.9,
	})

	out := e.Run(results, spatial)
	require.Len(t, out.Consensus, 2)
	assert.Equal(t, dogEmoji, out.Consensus[0].Emoji)
	assert.Greater(t, out.Consensus[0].EvidenceWeight, out.Consensus[1].EvidenceWeight)
}

func TestRunIsDeterministic(t *testing.T) {
	e := NewEngine(testRegistry())

	results := map[string]*models.AnalysisResult{
		"yolo":       detectorResult("cat", catEmoji, 0.9),
		"detectron2": detectorResult("cat", catEmoji, 0.9),
		"rtdetr":     detectorResult("dog", dogEmoji, 0.9),
		"blip":       captionResult("a dog", models.EmojiMapping{Word: "dog", Emoji: dogEmoji}),
	}

	first := e.Run(results, nil)
	for i := 0; i < 10; i++ {
		again := e.Run(results, nil)
		assert.Equal(t, first.Consensus, again.Consensus)
	}
}

func TestExtractDedupesWithinAnalyzer(t *testing.T) {
	e := NewEngine(testRegistry())

	// One analyzer naming the same emoji twice gets one vote for it.
	results := map[string]*models.AnalysisResult{
		"yolo": {OK: true, Predictions: []models.Prediction{
			{Type: models.PredictionObjectDetection, Label: "cat", Emoji: catEmoji, Confidence: 0.9},
			{Type: models.PredictionObjectDetection, Label: "cat", Emoji: catEmoji, Confidence: 0.8},
		}},
		"detectron2": detectorResult("cat", catEmoji, 0.9),
	}

	out := e.Run(results, nil)
	require.Len(t, out.Consensus, 1)
	assert.Equal(t, 2, out.Consensus[0].Votes)
	assert.Equal(t, []string{"yolo", "detectron2"}, out.Consensus[0].Services)
}

func TestExtractDefaultConfidence(t *testing.T) {
	votes := extractAnalyzer(
		&config.AnalyzerConfig{ID: "yolo", Category: config.CategorySpatial},
		&models.AnalysisResult{OK: true, Predictions: []models.Prediction{
			{Type: models.PredictionObjectDetection, Label: "cat", Emoji: catEmoji},
		}},
	)
	require.Len(t, votes, 1)
	assert.InDelta(t, DefaultConfidence, votes[0].Confidence, 1e-9)
}

func TestExtractSkipsColorAnalysis(t *testing.T) {
	votes := extractAnalyzer(
		&config.AnalyzerConfig{ID: "colors", Category: config.CategoryOther},
		&models.AnalysisResult{OK: true, Predictions: []models.Prediction{
			{Type: models.PredictionColorAnalysis, Emoji: "\U0001F7E6", Confidence: 0.9},
		}},
	)
	assert.Empty(t, votes)
}

func TestRunShinyPropagates(t *testing.T) {
	e := NewEngine(testRegistry())

	results := map[string]*models.AnalysisResult{
		"yolo": detectorResult("dog", dogEmoji, 0.9),
		"blip": captionResult("a dog", models.EmojiMapping{Word: "dog", Emoji: dogEmoji, Shiny: true}),
	}

	out := e.Run(results, nil)
	require.Len(t, out.Consensus, 1)
	assert.True(t, out.Consensus[0].Shiny)
}

func TestRunNormalizesEmojiForms(t *testing.T) {
	e := NewEngine(testRegistry())

	// Decomposed and precomposed forms of the same sequence vote together.
	results := map[string]*models.AnalysisResult{
		"yolo":       detectorResult("cafe", "e\u0301", 0.9),
		"detectron2": detectorResult("cafe", "\u00e9", 0.9),
	}

	out := e.Run(results, nil)
	require.Len(t, out.Consensus, 1)
	assert.Equal(t, 2, out.Consensus[0].Votes)
}
