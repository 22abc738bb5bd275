package models

// EvidenceType categorizes the signal backing a vote.
type EvidenceType string

const (
	EvidenceSpatial        EvidenceType = "spatial"
	EvidenceSemantic       EvidenceType = "semantic"
	EvidenceClassification EvidenceType = "classification"
	EvidenceSpecialized    EvidenceType = "specialized"
	EvidenceOther          EvidenceType = "other"
)

// SpatialEvidence summarizes spatial agreement for one emoji group.
type SpatialEvidence struct {
	ServiceCount      int     `json:"service_count"`
	MaxDetectionCount int     `json:"max_detection_count"`
	AvgConfidence     float64 `json:"avg_confidence"`
	TotalInstances    int     `json:"total_instances"`
}

// SemanticEvidence summarizes caption-derived agreement for one emoji group.
type SemanticEvidence struct {
	ServiceCount int      `json:"service_count"`
	Words        []string `json:"words"`
	Sources      []string `json:"sources"`
}

// ClassificationEvidence summarizes classifier agreement. Reserved: no
// analyzer ships in this category by default, but the path stays live for
// any analyzer configured with category "classification".
type ClassificationEvidence struct {
	ServiceCount int      `json:"service_count"`
	Sources      []string `json:"sources"`
}

// InstancesSummary is the compact per-emoji instance digest on a consensus item.
type InstancesSummary struct {
	Count         int     `json:"count"`
	TotalObjects  int     `json:"total_objects"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// ConsensusItem is the final ranked entry emitted for one emoji.
type ConsensusItem struct {
	Emoji            string            `json:"emoji"`
	Votes            int               `json:"votes"`
	EvidenceWeight   float64           `json:"evidence_weight"`
	FinalScore       float64           `json:"final_score"`
	InstancesSummary *InstancesSummary `json:"instances_summary,omitempty"`
	Services         []string          `json:"services"`
	BoundingBoxes    []Instance        `json:"bounding_boxes,omitempty"`
	Validation       []string          `json:"validation,omitempty"`
	Shiny            bool              `json:"shiny,omitempty"`
}

// SpecialDetection is one out-of-competition sidecar (text, face, or nsfw).
type SpecialDetection struct {
	Detected   bool    `json:"detected"`
	Emoji      string  `json:"emoji,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Content    string  `json:"content,omitempty"`
	Pose       string  `json:"pose,omitempty"`
}

// SpecialDetections groups the three sidecars reported alongside the consensus.
type SpecialDetections struct {
	Text SpecialDetection `json:"text"`
	Face SpecialDetection `json:"face"`
	NSFW SpecialDetection `json:"nsfw"`
}

// VoteResult is the complete voting-engine output.
type VoteResult struct {
	Consensus []ConsensusItem   `json:"consensus"`
	Special   SpecialDetections `json:"special"`
	// Debug counters: emoji groups seen before the vote floor was applied,
	// and groups that failed it.
	GroupsTotal    int `json:"groups_total"`
	GroupsBelowMin int `json:"groups_below_min"`
}
