package config

import (
	"fmt"
	"time"
)

// Category classifies the evidence type an analyzer contributes.
type Category string

const (
	// CategorySpatial marks object detectors and embedding models that emit
	// bounding boxes (YOLO family, Detectron2, RT-DETR, CLIP, Inception).
	CategorySpatial Category = "spatial"
	// CategorySemantic marks caption producers (BLIP, Ollama).
	CategorySemantic Category = "semantic"
	// CategorySpecialized marks single-purpose analyzers (face, nsfw, ocr).
	CategorySpecialized Category = "specialized"
	// CategoryClassification is reserved; no built-in analyzer uses it, but
	// any analyzer configured with it feeds classification evidence.
	CategoryClassification Category = "classification"
	// CategoryOther marks analyzers whose output never enters voting.
	CategoryOther Category = "other"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySpatial, CategorySemantic, CategorySpecialized, CategoryClassification, CategoryOther:
		return true
	}
	return false
}

// OptimalSizeOriginal means the analyzer wants the unmodified image.
const OptimalSizeOriginal = "original"

// AnalyzerConfig describes one external ML analyzer endpoint.
// Constructed at startup from configuration; immutable thereafter.
type AnalyzerConfig struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	Endpoint    string   `json:"endpoint"`
	OptimalSize string   `json:"optimal_size,omitempty"`
	Category    Category `json:"category"`
}

// BaseURL returns the analyzer's http origin.
func (a *AnalyzerConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", a.Host, a.Port)
}

// AnalyzeURL returns the full analysis endpoint URL.
func (a *AnalyzerConfig) AnalyzeURL() string {
	return a.BaseURL() + a.Endpoint
}

// ServerConfig holds the global service settings.
type ServerConfig struct {
	Port            int    `json:"port"`
	UploadDir       string `json:"upload_dir"`
	MaxFileSizeMB   int    `json:"max_file_size_mb"`
	TimeoutSeconds  int    `json:"analyzer_timeout_seconds"`
	MaxRetries      int    `json:"max_retries"`
	PublicURLPrefix string `json:"public_url"`
	// SimilarityPath is the caption-scoring endpoint on the CLIP analyzer.
	SimilarityPath string `json:"similarity_path"`
	// UploadRetentionHours bounds how long stored images and their variants
	// stay on disk before the janitor removes them.
	UploadRetentionHours int `json:"upload_retention_hours"`
	// CleanupIntervalMinutes is how often the janitor sweeps the upload dir.
	CleanupIntervalMinutes int `json:"cleanup_interval_minutes"`
}

// AnalyzerTimeout returns the per-call deadline.
func (s *ServerConfig) AnalyzerTimeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// RequestBudget returns the global per-request deadline: the per-call timeout
// plus slack for scheduling and response assembly.
func (s *ServerConfig) RequestBudget() time.Duration {
	return s.AnalyzerTimeout() + 5*time.Second
}

// MaxFileSizeBytes returns the upload size cap in bytes.
func (s *ServerConfig) MaxFileSizeBytes() int64 {
	return int64(s.MaxFileSizeMB) << 20
}

// UploadRetention returns how long stored images are kept.
func (s *ServerConfig) UploadRetention() time.Duration {
	return time.Duration(s.UploadRetentionHours) * time.Hour
}

// CleanupInterval returns the janitor sweep period.
func (s *ServerConfig) CleanupInterval() time.Duration {
	return time.Duration(s.CleanupIntervalMinutes) * time.Minute
}

// Config is the complete immutable runtime configuration.
type Config struct {
	Server    ServerConfig
	Analyzers *AnalyzerRegistry
}

// Stats summarizes the loaded configuration for startup logging.
type Stats struct {
	Analyzers int
	Spatial   int
	Semantic  int
}

// Stats counts configured analyzers by category.
func (c *Config) Stats() Stats {
	s := Stats{Analyzers: c.Analyzers.Len()}
	for _, a := range c.Analyzers.All() {
		switch a.Category {
		case CategorySpatial:
			s.Spatial++
		case CategorySemantic:
			s.Semantic++
		}
	}
	return s
}
