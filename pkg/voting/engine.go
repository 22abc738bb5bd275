// Package voting turns analyzer results and clustered instances into a
// ranked emoji consensus. Votes are democratic (one per service per emoji);
// ranking is evidence-weighted; curation applies cross-emoji validation and
// penalty rules after ranking.
package voting

import (
	"log/slog"
	"math"
	"sort"

	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/models"
)

// MinVotes is the consensus floor: an emoji needs at least this many distinct
// voting services to be emitted.
const MinVotes = 2

// Engine computes the emoji consensus.
type Engine struct {
	registry *config.AnalyzerRegistry
	logger   *slog.Logger
}

// NewEngine creates a voting engine over the configured roster.
func NewEngine(registry *config.AnalyzerRegistry) *Engine {
	return &Engine{
		registry: registry,
		logger:   slog.With("component", "voting"),
	}
}

// emojiGroup accumulates all evidence for one normalized emoji.
type emojiGroup struct {
	emoji string
	votes []voteDetection

	votingServices []string // distinct non-sentinel services, first-seen order
	shiny          bool

	spatial        *models.SpatialEvidence
	semantic       *models.SemanticEvidence
	classification *models.ClassificationEvidence
	specialized    map[string][]voteDetection

	weight     float64
	score      float64
	validation []string
}

// Run produces the ranked consensus and special detections for one request.
func (e *Engine) Run(results map[string]*models.AnalysisResult, spatial *models.SpatialResult) *models.VoteResult {
	votes := e.extract(results, spatial)
	groups := groupByEmoji(votes)

	for _, g := range groups {
		computeEvidence(g)
		computeWeight(g)
	}

	// Apply the vote floor, then rank. Curation runs on the ranked set so
	// penalties and validations never change ordering.
	var ranked []*emojiGroup
	below := 0
	for _, g := range groups {
		if len(g.votingServices) >= MinVotes {
			ranked = append(ranked, g)
		} else {
			below++
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if len(ranked[i].votingServices) != len(ranked[j].votingServices) {
			return len(ranked[i].votingServices) > len(ranked[j].votingServices)
		}
		return ranked[i].weight > ranked[j].weight
	})

	curate(ranked, groupSet(groups))

	result := &models.VoteResult{
		Special:        e.extractSpecial(results),
		GroupsTotal:    len(groups),
		GroupsBelowMin: below,
	}
	for _, g := range ranked {
		result.Consensus = append(result.Consensus, emitItem(g))
	}

	e.logger.Debug("Voting complete",
		"groups", len(groups), "emitted", len(result.Consensus), "below_min", below)
	return result
}

// groupByEmoji buckets votes by emoji, preserving first-appearance order.
func groupByEmoji(votes []voteDetection) []*emojiGroup {
	byEmoji := make(map[string]*emojiGroup)
	var order []*emojiGroup

	for _, v := range votes {
		g, ok := byEmoji[v.Emoji]
		if !ok {
			g = &emojiGroup{emoji: v.Emoji, specialized: make(map[string][]voteDetection)}
			byEmoji[v.Emoji] = g
			order = append(order, g)
		}
		g.votes = append(g.votes, v)
		if v.Shiny {
			g.shiny = true
		}
		if v.ServiceID != SentinelService && !contains(g.votingServices, v.ServiceID) {
			g.votingServices = append(g.votingServices, v.ServiceID)
		}
	}
	return order
}

// computeEvidence fills the per-type evidence summaries for a group.
func computeEvidence(g *emojiGroup) {
	var spatialServices []string
	var spatialConfSum float64
	spatialCount := 0
	maxDetections := 0
	totalInstances := 0

	for _, v := range g.votes {
		switch v.EvidenceType {
		case models.EvidenceSpatial:
			spatialCount++
			spatialConfSum += v.Confidence
			if v.ServiceID != SentinelService && !contains(spatialServices, v.ServiceID) {
				spatialServices = append(spatialServices, v.ServiceID)
			}
			if v.SpatialData != nil {
				totalInstances++
				if v.SpatialData.DetectionCount > maxDetections {
					maxDetections = v.SpatialData.DetectionCount
				}
			} else if maxDetections == 0 {
				maxDetections = 1
			}

		case models.EvidenceSemantic:
			if g.semantic == nil {
				g.semantic = &models.SemanticEvidence{}
			}
			if !contains(g.semantic.Sources, v.ServiceID) {
				g.semantic.Sources = append(g.semantic.Sources, v.ServiceID)
				g.semantic.ServiceCount++
			}
			if v.Word != "" {
				g.semantic.Words = append(g.semantic.Words, v.Word)
			}

		case models.EvidenceClassification:
			if g.classification == nil {
				g.classification = &models.ClassificationEvidence{}
			}
			if !contains(g.classification.Sources, v.ServiceID) {
				g.classification.Sources = append(g.classification.Sources, v.ServiceID)
				g.classification.ServiceCount++
			}

		case models.EvidenceSpecialized:
			g.specialized[v.ServiceID] = append(g.specialized[v.ServiceID], v)
		}
	}

	if spatialCount > 0 {
		g.spatial = &models.SpatialEvidence{
			ServiceCount:      len(spatialServices),
			MaxDetectionCount: maxDetections,
			AvgConfidence:     round3(spatialConfSum / float64(spatialCount)),
			TotalInstances:    totalInstances,
		}
	}
}

// computeWeight applies the evidence-weighting formula:
//
//	weight = votes + spatial_consensus_bonus + content_consensus_bonus
//	final  = votes + weight
//
// Multiple detectors agreeing on one physical location add one bonus per
// extra corroboration; two or more content services agreeing add their
// count minus one.
func computeWeight(g *emojiGroup) {
	votes := float64(len(g.votingServices))

	spatialBonus := 0.0
	if g.spatial != nil && g.spatial.MaxDetectionCount > 1 {
		spatialBonus = float64(g.spatial.MaxDetectionCount - 1)
	}

	contentServices := 0
	if g.semantic != nil {
		contentServices += g.semantic.ServiceCount
	}
	if g.classification != nil {
		contentServices += g.classification.ServiceCount
	}
	contentBonus := 0.0
	if contentServices >= 2 {
		contentBonus = float64(contentServices - 1)
	}

	g.weight = votes + spatialBonus + contentBonus
	g.score = votes + g.weight
}

// emitItem converts a curated group into its reported consensus entry.
// Instances ride in on the group's clustering sentinels, so bounding boxes
// appear exactly when spatial evidence exists.
func emitItem(g *emojiGroup) models.ConsensusItem {
	item := models.ConsensusItem{
		Emoji:          g.emoji,
		Votes:          len(g.votingServices),
		EvidenceWeight: round2(g.weight),
		FinalScore:     round2(g.score),
		Services:       g.votingServices,
		Shiny:          g.shiny,
	}
	if len(g.validation) > 0 {
		item.Validation = g.validation
	}

	var instances []models.Instance
	for _, v := range g.votes {
		if v.SpatialData != nil {
			instances = append(instances, *v.SpatialData)
		}
	}
	if len(instances) > 0 {
		item.BoundingBoxes = instances
		item.InstancesSummary = summarizeInstances(instances)
	}
	return item
}

func summarizeInstances(instances []models.Instance) *models.InstancesSummary {
	total := 0
	var confSum float64
	for _, inst := range instances {
		total += inst.DetectionCount
		confSum += inst.AvgConfidence
	}
	return &models.InstancesSummary{
		Count:         len(instances),
		TotalObjects:  total,
		AvgConfidence: round3(confSum / float64(len(instances))),
	}
}

func groupSet(groups []*emojiGroup) map[string]*emojiGroup {
	set := make(map[string]*emojiGroup, len(groups))
	for _, g := range groups {
		set[g.emoji] = g
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
