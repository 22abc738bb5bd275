package analyzer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/emojivision/mosaic/pkg/config"
)

// ResolveVariantPath returns the path to pass to an analyzer for a local file.
// Analyzers that declare an optimal size get a pre-scaled sibling variant of
// the form <dir>/variants/<size>/<basename>.jpg when one exists; otherwise
// the original path is returned unchanged. This is a read-only lookup and
// absence of a variant is never an error.
func ResolveVariantPath(optimalSize, path string) string {
	if optimalSize == "" || optimalSize == config.OptimalSizeOriginal {
		return path
	}

	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	candidate := filepath.Join(filepath.Dir(path), "variants", optimalSize, base+".jpg")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}
