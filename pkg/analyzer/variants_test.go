package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emojivision/mosaic/pkg/config"
)

func TestResolveVariantPath(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(original, []byte("x"), 0o644))

	t.Run("original size passes through", func(t *testing.T) {
		assert.Equal(t, original, ResolveVariantPath(config.OptimalSizeOriginal, original))
	})

	t.Run("empty size passes through", func(t *testing.T) {
		assert.Equal(t, original, ResolveVariantPath("", original))
	})

	t.Run("missing variant falls back to original", func(t *testing.T) {
		assert.Equal(t, original, ResolveVariantPath("640", original))
	})

	t.Run("existing variant substituted", func(t *testing.T) {
		variantDir := filepath.Join(dir, "variants", "640")
		require.NoError(t, os.MkdirAll(variantDir, 0o755))
		variant := filepath.Join(variantDir, "photo.jpg")
		require.NoError(t, os.WriteFile(variant, []byte("y"), 0o644))

		assert.Equal(t, variant, ResolveVariantPath("640", original))
	})
}
