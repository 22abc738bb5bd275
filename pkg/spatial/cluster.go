package spatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/emojivision/mosaic/pkg/models"
)

// clusterGroup clusters one key's detections, cleans each cluster, scores and
// ranks survivors, and emits instances. Returns nil when nothing survives.
func (e *Engine) clusterGroup(key string, detections []models.Detection) *models.GroupedEmoji {
	clusters := clusterByAnchor(detections)

	var cleaned [][]models.Detection
	for _, cluster := range clusters {
		c := e.dedupSameService(key, cluster)
		if len(c) == 1 && c[0].Confidence < SingletonConfidence {
			continue
		}
		cleaned = append(cleaned, c)
	}
	if len(cleaned) == 0 {
		return nil
	}

	// Rank clusters by score, descending. sort.SliceStable keeps input order
	// on ties so output is deterministic for a given result map.
	sort.SliceStable(cleaned, func(i, j int) bool {
		return clusterScore(cleaned[i]) > clusterScore(cleaned[j])
	})

	anchor := cleaned[0][0]
	group := &models.GroupedEmoji{
		Label: anchor.Label,
		Emoji: anchor.Emoji,
		Type:  string(anchor.Type),
	}

	for rank, cluster := range cleaned {
		group.Detections = append(group.Detections, cluster...)
		group.Instances = append(group.Instances, emitInstance(cluster, rank+1))
	}
	return group
}

// clusterByAnchor walks detections in input order. Each unused detection
// anchors a new cluster; every later unused detection joins iff its IoU with
// the anchor exceeds the threshold. Membership is tested against the anchor
// only, so every detection lands in exactly one cluster.
func clusterByAnchor(detections []models.Detection) [][]models.Detection {
	used := make([]bool, len(detections))
	var clusters [][]models.Detection

	for i := range detections {
		if used[i] {
			continue
		}
		used[i] = true
		cluster := []models.Detection{detections[i]}

		for j := i + 1; j < len(detections); j++ {
			if used[j] {
				continue
			}
			if detections[i].BBox.IoU(detections[j].BBox) > IoUThreshold {
				used[j] = true
				cluster = append(cluster, detections[j])
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// dedupSameService keeps only the highest-confidence detection per analyzer
// within a cluster. One analyzer voting twice for the same object would skew
// the instance's detection count.
func (e *Engine) dedupSameService(key string, cluster []models.Detection) []models.Detection {
	best := make(map[string]int)
	dropped := 0
	for i, d := range cluster {
		if j, ok := best[d.ServiceID]; ok {
			dropped++
			if d.Confidence > cluster[j].Confidence {
				best[d.ServiceID] = i
			}
			continue
		}
		best[d.ServiceID] = i
	}
	if dropped == 0 {
		return cluster
	}

	e.logger.Warn("Dropping duplicate same-service detections in cluster",
		"key", key, "dropped", dropped)

	keep := make(map[int]bool, len(best))
	for _, i := range best {
		keep[i] = true
	}
	out := make([]models.Detection, 0, len(best))
	for i, d := range cluster {
		if keep[i] {
			out = append(out, d)
		}
	}
	return out
}

// clusterScore ranks clusters: corroboration dominates, then confidence,
// then (logarithmically) object size.
func clusterScore(cluster []models.Detection) float64 {
	var confSum float64
	var areaSum float64
	for _, d := range cluster {
		confSum += d.Confidence
		areaSum += float64(d.BBox.Area())
	}
	n := float64(len(cluster))
	avgConf := confSum / n
	avgArea := areaSum / n
	return 2*n + 3*avgConf + math.Log10(math.Max(1, avgArea))
}

// emitInstance builds the reported instance for one surviving cluster.
func emitInstance(cluster []models.Detection, rank int) models.Instance {
	merged := cluster[0].BBox
	var confSum float64
	contribs := make([]models.InstanceDetection, 0, len(cluster))

	for _, d := range cluster {
		merged = merged.Union(d.BBox)
		confSum += d.Confidence
		contribs = append(contribs, models.InstanceDetection{
			Service:    d.ServiceID,
			Confidence: d.Confidence,
		})
	}

	return models.Instance{
		ClusterID:      fmt.Sprintf("%s_%d", cluster[0].Label, rank),
		Emoji:          cluster[0].Emoji,
		Label:          cluster[0].Label,
		MergedBBox:     merged,
		DetectionCount: len(cluster),
		AvgConfidence:  round3(confSum / float64(len(cluster))),
		Detections:     contribs,
	}
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
