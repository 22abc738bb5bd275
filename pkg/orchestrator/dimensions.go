package orchestrator

import (
	"fmt"
	"image"
	"os"

	// Registered decoders cover every accepted upload MIME type.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/emojivision/mosaic/pkg/models"
)

// MeasureDimensions reads the image header once and returns its pixel
// dimensions. The pixel data itself is never buffered; analyzers reference
// the image by path or URL only.
func MeasureDimensions(path string) (*models.Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid %s dimensions %dx%d", format, cfg.Width, cfg.Height)
	}
	return &models.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
