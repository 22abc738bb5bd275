package models

// ProcessingMethod records how the analyzed image reached the pipeline.
type ProcessingMethod string

const (
	MethodFileUpload            ProcessingMethod = "file_upload"
	MethodExternalURLDownloaded ProcessingMethod = "external_url_downloaded"
	MethodDirectFileAccess      ProcessingMethod = "direct_file_access"
)

// ImageData describes the analyzed image in the response document.
type ImageData struct {
	Dimensions       *Dimensions      `json:"dimensions"`
	ProcessingMethod ProcessingMethod `json:"processing_method"`
	ImageURL         string           `json:"image_url,omitempty"`
	FilePath         string           `json:"file_path,omitempty"`
	OriginalURL      string           `json:"original_url,omitempty"`
}

// Caption is one emitted caption record with its similarity score.
// CLIPSimilarity is nil when similarity scoring failed or was unavailable.
type Caption struct {
	Original       string   `json:"original"`
	Words          int      `json:"words"`
	CLIPSimilarity *float64 `json:"clip_similarity"`
}

// ServiceHealthSummary is present when any analyzer degraded during a request.
type ServiceHealthSummary struct {
	DegradedServices []string `json:"degraded_services"`
	FailedCount      int      `json:"failed_count"`
	TotalServices    int      `json:"total_services"`
}

// CompactResult is the per-service result retained in the response document.
type CompactResult struct {
	OK             bool              `json:"ok"`
	Status         ServiceCallStatus `json:"status"`
	Predictions    []Prediction      `json:"predictions"`
	ProcessingTime float64           `json:"processing_time"`
}

// Votes wraps the ranked consensus in the response document.
type Votes struct {
	Consensus []ConsensusItem `json:"consensus"`
}

// AnalyzeResponse is the single output document for one analyzed image.
type AnalyzeResponse struct {
	Success             bool                     `json:"success"`
	ImageID             string                   `json:"image_id"`
	AnalysisTimeSeconds float64                  `json:"analysis_time_seconds"`
	ImageData           ImageData                `json:"image_data"`
	Votes               Votes                    `json:"votes"`
	Special             SpecialDetections        `json:"special"`
	Captions            map[string]Caption       `json:"captions"`
	Results             map[string]CompactResult `json:"results"`
	ServiceStatuses     []ServiceStatus          `json:"service_statuses"`
	ServiceHealth       *ServiceHealthSummary    `json:"service_health_summary,omitempty"`
}
