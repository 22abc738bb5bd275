package ingest

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emojivision/mosaic/pkg/config"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, fh, err := req.FormFile("image")
	require.NoError(t, err)
	return fh
}

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.ServerConfig{
		UploadDir:       t.TempDir(),
		MaxFileSizeMB:   1,
		PublicURLPrefix: "http://localhost:8080",
	}
	s := NewStore(cfg)
	require.NoError(t, s.EnsureDir())
	return s
}

func TestSaveUpload(t *testing.T) {
	t.Run("valid png stored with sniffed extension", func(t *testing.T) {
		s := testStore(t)
		fh := multipartFile(t, "cat.exe", pngBytes(t)) // client filename is untrusted

		stored, err := s.SaveUpload(fh)
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(stored.Path, ".png"))
		assert.True(t, strings.HasPrefix(stored.PublicURL, "http://localhost:8080/uploads/"))
		assert.Empty(t, stored.OriginalURL)

		data, err := os.ReadFile(stored.Path)
		require.NoError(t, err)
		assert.Equal(t, pngBytes(t), data)
	})

	t.Run("non-image bytes rejected", func(t *testing.T) {
		s := testStore(t)
		fh := multipartFile(t, "cat.png", []byte("definitely not an image"))

		_, err := s.SaveUpload(fh)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("oversized upload rejected", func(t *testing.T) {
		s := testStore(t)
		big := make([]byte, 2<<20)
		fh := multipartFile(t, "cat.png", big)

		_, err := s.SaveUpload(fh)
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}

func TestDownload(t *testing.T) {
	t.Run("stores fetched image and keeps origin", func(t *testing.T) {
		img := pngBytes(t)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write(img)
		}))
		t.Cleanup(ts.Close)

		s := testStore(t)
		stored, err := s.Download(context.Background(), ts.URL+"/cat.png")
		require.NoError(t, err)

		assert.Equal(t, ts.URL+"/cat.png", stored.OriginalURL)
		assert.True(t, strings.HasSuffix(stored.Path, ".png"))

		data, err := os.ReadFile(stored.Path)
		require.NoError(t, err)
		assert.Equal(t, img, data)
	})

	t.Run("http error fails", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(ts.Close)

		s := testStore(t)
		_, err := s.Download(context.Background(), ts.URL+"/missing.png")
		assert.ErrorIs(t, err, ErrDownloadFailed)
	})

	t.Run("unreachable host fails", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		addr := ts.URL
		ts.Close()

		s := testStore(t)
		_, err := s.Download(context.Background(), addr+"/cat.png")
		assert.ErrorIs(t, err, ErrDownloadFailed)
	})

	t.Run("non-image content rejected", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html>not found</html>"))
		}))
		t.Cleanup(ts.Close)

		s := testStore(t)
		_, err := s.Download(context.Background(), ts.URL+"/cat.png")
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})
}

func TestRemove(t *testing.T) {
	s := testStore(t)
	fh := multipartFile(t, "cat.png", pngBytes(t))
	stored, err := s.SaveUpload(fh)
	require.NoError(t, err)

	s.Remove(stored.Path)
	_, err = os.Stat(stored.Path)
	assert.True(t, os.IsNotExist(err))

	// Removing twice is quiet.
	s.Remove(stored.Path)
}

func TestSniffExtension(t *testing.T) {
	_, err := sniffExtension([]byte("%PDF-1.4 not an image"))
	require.ErrorIs(t, err, ErrUnsupportedType)

	ext, err := sniffExtension(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)
}

func TestEnsureDirCreatesPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	s := NewStore(&config.ServerConfig{UploadDir: dir, MaxFileSizeMB: 1})
	require.NoError(t, s.EnsureDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
