package models

// ErrorKind classifies why an analyzer call failed.
type ErrorKind string

const (
	// ErrorKindOffline covers connection refused and DNS failures.
	ErrorKindOffline ErrorKind = "offline"
	// ErrorKindTimeout covers deadline expiry and read resets.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindProtocol covers malformed responses and missing required fields.
	ErrorKindProtocol ErrorKind = "protocol"
	// ErrorKindService covers a well-formed status=="error" payload.
	ErrorKindService ErrorKind = "service"
)

// ResultMetadata carries analyzer-reported timing and processing details.
type ResultMetadata struct {
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	// ProcessingWidth/Height are the dimensions the analyzer worked at,
	// when it reports them. Zero means unreported (rescaling is identity).
	ProcessingWidth  int `json:"processing_width,omitempty"`
	ProcessingHeight int `json:"processing_height,omitempty"`
}

// AnalysisResult is the per-analyzer outcome for one image.
// Invariant: OK == false implies Predictions is empty.
type AnalysisResult struct {
	OK           bool           `json:"ok"`
	Predictions  []Prediction   `json:"predictions"`
	Metadata     ResultMetadata `json:"metadata"`
	ErrorKind    ErrorKind      `json:"error_kind,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// ServiceCallStatus is the reported outcome of one analyzer call.
type ServiceCallStatus string

const (
	CallSuccess ServiceCallStatus = "success"
	CallTimeout ServiceCallStatus = "timeout"
	CallOffline ServiceCallStatus = "offline"
	CallError   ServiceCallStatus = "error"
)

// ServiceStatus summarizes one analyzer's participation in a request.
type ServiceStatus struct {
	ServiceID        string            `json:"service_id"`
	Status           ServiceCallStatus `json:"status"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
	PredictionCount  int               `json:"prediction_count"`
	ErrorMessage     string            `json:"error_message,omitempty"`
}

// StatusForResult maps an AnalysisResult to the wire-level call status.
func StatusForResult(r *AnalysisResult) ServiceCallStatus {
	if r.OK {
		return CallSuccess
	}
	switch r.ErrorKind {
	case ErrorKindTimeout:
		return CallTimeout
	case ErrorKindOffline:
		return CallOffline
	default:
		return CallError
	}
}
