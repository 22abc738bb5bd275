// Package ingest brings image bytes into the upload directory: multipart
// uploads and external URL downloads, with MIME and size validation.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/emojivision/mosaic/pkg/config"
)

var (
	// ErrUnsupportedType indicates the uploaded bytes are not an accepted image type.
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrTooLarge indicates the upload exceeds the configured size cap.
	ErrTooLarge = errors.New("image exceeds maximum file size")

	// ErrDownloadFailed indicates the external image URL could not be fetched.
	ErrDownloadFailed = errors.New("image download failed")
)

// allowedTypes maps accepted sniffed MIME types to file extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// StoredImage is one image placed in the upload directory.
type StoredImage struct {
	Path        string
	PublicURL   string
	OriginalURL string
}

// Store writes images into the upload directory and hands out their public
// URLs. The upload path is write-only here; analyzer clients read the
// directory through the served URL or by path.
type Store struct {
	dir        string
	maxBytes   int64
	publicBase string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewStore creates a store rooted at the configured upload directory.
func NewStore(cfg *config.ServerConfig) *Store {
	return &Store{
		dir:        cfg.UploadDir,
		maxBytes:   cfg.MaxFileSizeBytes(),
		publicBase: cfg.PublicURLPrefix,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.With("component", "ingest"),
	}
}

// EnsureDir creates the upload directory if missing.
func (s *Store) EnsureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// SaveUpload validates and persists one multipart upload. The MIME type is
// sniffed from the leading bytes, not taken from the client header.
func (s *Store) SaveUpload(fh *multipart.FileHeader) (*StoredImage, error) {
	if fh.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, fh.Size)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return s.save(f, fh.Size, "")
}

// Download fetches an external image URL into the upload directory so that
// distributed analyzers can re-fetch it over HTTP.
func (s *Store) Download(ctx context.Context, imageURL string) (*StoredImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrDownloadFailed, resp.StatusCode, imageURL)
	}
	if resp.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	stored, err := s.save(resp.Body, s.maxBytes, imageURL)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// save sniffs the MIME type, enforces the size cap, and writes the bytes
// under a UUID name.
func (s *Store) save(r io.Reader, limit int64, originalURL string) (*StoredImage, error) {
	if limit <= 0 || limit > s.maxBytes {
		limit = s.maxBytes
	}
	// One extra byte exposes over-limit readers without buffering them.
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read image bytes: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, limit)
	}

	ext, err := sniffExtension(data)
	if err != nil {
		return nil, err
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	s.logger.Debug("Stored image", "path", path, "bytes", len(data))
	return &StoredImage{
		Path:        path,
		PublicURL:   s.publicBase + "/uploads/" + name,
		OriginalURL: originalURL,
	}, nil
}

// Remove deletes a stored image. Best effort; used for temp-file cleanup.
func (s *Store) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove stored image", "path", path, "error", err)
	}
}

func sniffExtension(data []byte) (string, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mime := http.DetectContentType(head)
	ext, ok := allowedTypes[mime]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	return ext, nil
}
