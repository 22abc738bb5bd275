package config

import "strings"

// validate performs comprehensive validation on loaded configuration.
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return NewValidationError("server", "server", "port", ErrInvalidValue)
	}
	if cfg.Server.UploadDir == "" {
		return NewValidationError("server", "server", "upload_dir", ErrMissingRequiredField)
	}
	if cfg.Server.MaxFileSizeMB <= 0 {
		return NewValidationError("server", "server", "max_file_size_mb", ErrInvalidValue)
	}
	if cfg.Server.TimeoutSeconds <= 0 {
		return NewValidationError("server", "server", "analyzer_timeout_seconds", ErrInvalidValue)
	}
	if cfg.Server.MaxRetries < 0 {
		return NewValidationError("server", "server", "max_retries", ErrInvalidValue)
	}
	if cfg.Server.UploadRetentionHours <= 0 {
		return NewValidationError("server", "server", "upload_retention_hours", ErrInvalidValue)
	}
	if cfg.Server.CleanupIntervalMinutes <= 0 {
		return NewValidationError("server", "server", "cleanup_interval_minutes", ErrInvalidValue)
	}

	for _, a := range cfg.Analyzers.All() {
		if a.ID == "" {
			return NewValidationError("analyzer", a.Name, "id", ErrMissingRequiredField)
		}
		if a.ID != strings.ToLower(a.ID) {
			return NewValidationError("analyzer", a.ID, "id", ErrInvalidValue)
		}
		if a.Host == "" {
			return NewValidationError("analyzer", a.ID, "host", ErrMissingRequiredField)
		}
		if a.Port <= 0 || a.Port > 65535 {
			return NewValidationError("analyzer", a.ID, "port", ErrInvalidValue)
		}
		if !strings.HasPrefix(a.Endpoint, "/") {
			return NewValidationError("analyzer", a.ID, "endpoint", ErrInvalidValue)
		}
		if !a.Category.Valid() {
			return NewValidationError("analyzer", a.ID, "category", ErrInvalidValue)
		}
	}
	return nil
}
