package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"dario.cat/mergo"
)

// fileConfig represents the complete analyzers.json file structure.
type fileConfig struct {
	Server    *ServerConfig    `json:"server"`
	Analyzers []AnalyzerConfig `json:"analyzers"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load analyzers.json from configDir (optional; built-ins apply without it)
//  2. Merge user-defined analyzers over the built-in roster
//  3. Apply environment-variable fallbacks
//  4. Build the immutable analyzer registry
//  5. Validate all configuration
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"analyzers", stats.Analyzers,
		"spatial", stats.Spatial,
		"semantic", stats.Semantic)

	return cfg, nil
}

func load(configDir string) (*Config, error) {
	fc, err := loadFile(filepath.Join(configDir, "analyzers.json"))
	if err != nil {
		return nil, err
	}

	server := DefaultServerConfig()
	if fc.Server != nil {
		// Non-zero user values override defaults.
		if err := mergo.Merge(&server, *fc.Server, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge server config: %w", err)
		}
	}
	applyServerEnv(&server)

	analyzers := mergeAnalyzers(BuiltinAnalyzers(), fc.Analyzers)
	for i := range analyzers {
		applyAnalyzerEnv(&analyzers[i])
	}

	return &Config{
		Server:    server,
		Analyzers: NewAnalyzerRegistry(analyzers),
	}, nil
}

// loadFile reads and parses analyzers.json. A missing file is not an error:
// the built-in roster plus environment fallbacks fully describe a deployment.
func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("No config file found, using built-in analyzer roster", "path", path)
			return &fileConfig{}, nil
		}
		return nil, NewLoadError(filepath.Base(path), err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, NewLoadError(filepath.Base(path), fmt.Errorf("%w: %v", ErrInvalidJSON, err))
	}
	return &fc, nil
}

// mergeAnalyzers overlays user analyzers on the built-in roster. A user entry
// with a known id replaces that built-in (field-wise, non-zero wins); an
// unknown id appends in file order.
func mergeAnalyzers(builtin, user []AnalyzerConfig) []AnalyzerConfig {
	index := make(map[string]int, len(builtin))
	out := make([]AnalyzerConfig, len(builtin))
	copy(out, builtin)
	for i, a := range builtin {
		index[a.ID] = i
	}

	for _, u := range user {
		if i, ok := index[u.ID]; ok {
			merged := out[i]
			if err := mergo.Merge(&merged, u, mergo.WithOverride); err == nil {
				out[i] = merged
			}
			continue
		}
		out = append(out, u)
	}
	return out
}

// applyServerEnv overlays environment variables on the server config.
func applyServerEnv(s *ServerConfig) {
	if v := os.Getenv("MOSAIC_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			s.Port = p
		}
	}
	if v := os.Getenv("MOSAIC_UPLOAD_DIR"); v != "" {
		s.UploadDir = v
	}
	if v := os.Getenv("MOSAIC_MAX_FILE_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MaxFileSizeMB = n
		}
	}
	if v := os.Getenv("MOSAIC_ANALYZER_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("MOSAIC_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MaxRetries = n
		}
	}
	if v := os.Getenv("MOSAIC_PUBLIC_URL"); v != "" {
		s.PublicURLPrefix = v
	}
}

// applyAnalyzerEnv overlays MOSAIC_<ID>_HOST / MOSAIC_<ID>_PORT variables.
func applyAnalyzerEnv(a *AnalyzerConfig) {
	prefix := "MOSAIC_" + envKey(a.ID)
	if v := os.Getenv(prefix + "_HOST"); v != "" {
		a.Host = v
	}
	if v := os.Getenv(prefix + "_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			a.Port = p
		}
	}
}

func envKey(id string) string {
	out := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
