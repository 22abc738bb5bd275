package config

// BuiltinAnalyzers is the default analyzer roster. A config file entry with a
// matching id overrides the built-in definition; unknown ids extend the roster.
func BuiltinAnalyzers() []AnalyzerConfig {
	return []AnalyzerConfig{
		{ID: "yolo", Name: "YOLO", Host: "localhost", Port: 8001, Endpoint: "/analyze", OptimalSize: "640", Category: CategorySpatial},
		{ID: "detectron2", Name: "Detectron2", Host: "localhost", Port: 8002, Endpoint: "/analyze", OptimalSize: OptimalSizeOriginal, Category: CategorySpatial},
		{ID: "rtdetr", Name: "RT-DETR", Host: "localhost", Port: 8003, Endpoint: "/analyze", OptimalSize: "640", Category: CategorySpatial},
		{ID: "yolo_365", Name: "YOLO Objects365", Host: "localhost", Port: 8004, Endpoint: "/analyze", OptimalSize: "640", Category: CategorySpatial},
		{ID: "yolo_oi7", Name: "YOLO OpenImages", Host: "localhost", Port: 8005, Endpoint: "/analyze", OptimalSize: "640", Category: CategorySpatial},
		{ID: "clip", Name: "CLIP", Host: "localhost", Port: 8006, Endpoint: "/analyze", OptimalSize: "336", Category: CategorySpatial},
		{ID: "inception", Name: "Inception", Host: "localhost", Port: 8007, Endpoint: "/analyze", OptimalSize: "299", Category: CategorySpatial},
		{ID: "blip", Name: "BLIP", Host: "localhost", Port: 8008, Endpoint: "/analyze", OptimalSize: "384", Category: CategorySemantic},
		{ID: "ollama", Name: "Ollama Vision", Host: "localhost", Port: 8009, Endpoint: "/analyze", OptimalSize: OptimalSizeOriginal, Category: CategorySemantic},
		{ID: "face", Name: "Face Detection", Host: "localhost", Port: 8010, Endpoint: "/analyze", OptimalSize: OptimalSizeOriginal, Category: CategorySpecialized},
		{ID: "nsfw", Name: "NSFW Detection", Host: "localhost", Port: 8011, Endpoint: "/analyze", OptimalSize: OptimalSizeOriginal, Category: CategorySpecialized},
		{ID: "ocr", Name: "OCR", Host: "localhost", Port: 8012, Endpoint: "/analyze", OptimalSize: OptimalSizeOriginal, Category: CategorySpecialized},
		{ID: "colors", Name: "Color Analysis", Host: "localhost", Port: 8013, Endpoint: "/analyze", OptimalSize: OptimalSizeOriginal, Category: CategoryOther},
		{ID: "metadata", Name: "Metadata", Host: "localhost", Port: 8014, Endpoint: "/analyze", OptimalSize: OptimalSizeOriginal, Category: CategoryOther},
	}
}

// DefaultServerConfig returns the built-in server settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            8080,
		UploadDir:       "./uploads",
		MaxFileSizeMB:   10,
		TimeoutSeconds:  15,
		MaxRetries:      2,
		PublicURLPrefix: "http://localhost:8080",
		SimilarityPath:  "/v3/score",

		UploadRetentionHours:   24,
		CleanupIntervalMinutes: 30,
	}
}
