package models

// Detection is a bbox-bearing prediction after coordinate rescaling, the unit
// the clustering engine consumes.
type Detection struct {
	ServiceID    string         `json:"service"`
	Label        string         `json:"label"`
	Emoji        string         `json:"emoji"`
	Type         PredictionType `json:"type"`
	Confidence   float64        `json:"confidence"`
	BBox         BBox           `json:"bbox"`
	OriginalBBox BBox           `json:"original_bbox"`
}

// InstanceDetection records one service's contribution to an instance.
type InstanceDetection struct {
	Service    string  `json:"service"`
	Confidence float64 `json:"confidence"`
}

// Instance is one ranked cluster of detections describing the same physical
// object. MergedBBox is the axis-aligned union of every member bbox.
type Instance struct {
	ClusterID      string              `json:"cluster_id"`
	Emoji          string              `json:"emoji"`
	Label          string              `json:"label"`
	MergedBBox     BBox                `json:"merged_bbox"`
	DetectionCount int                 `json:"detection_count"`
	AvgConfidence  float64             `json:"avg_confidence"`
	Detections     []InstanceDetection `json:"detections"`
}

// GroupedEmoji holds all spatial output for one normalized emoji key.
type GroupedEmoji struct {
	Label      string      `json:"label"`
	Emoji      string      `json:"emoji"`
	Type       string      `json:"type"`
	Detections []Detection `json:"detections"`
	Instances  []Instance  `json:"instances"`
}

// SpatialResult is the clustering engine's complete output for one image.
type SpatialResult struct {
	// Groups maps the normalized grouping key ("face" or NFC emoji) to its
	// surviving detections and ranked instances.
	Groups map[string]*GroupedEmoji `json:"grouped_objects"`
	// AllDetections is the flat post-clean detection list.
	AllDetections []Detection `json:"all_detections"`
}

// Dimensions holds the measured width and height of the original image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
