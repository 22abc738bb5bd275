package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/emojivision/mosaic/pkg/config"
)

// Janitor periodically removes stored images and their pre-scaled variants
// once they age past the retention window. Sweeps are idempotent and safe to
// run concurrently with uploads: files younger than the window are untouched.
type Janitor struct {
	dir       string
	retention time.Duration
	interval  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger
}

// NewJanitor creates a janitor over the configured upload directory.
func NewJanitor(cfg *config.ServerConfig) *Janitor {
	return &Janitor{
		dir:       cfg.UploadDir,
		retention: cfg.UploadRetention(),
		interval:  cfg.CleanupInterval(),
		logger:    slog.With("component", "janitor"),
	}
}

// Start launches the background sweep loop. Starting twice is a no-op.
func (j *Janitor) Start(ctx context.Context) {
	if j.cancel != nil {
		return
	}
	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})
	go j.run(ctx)

	j.logger.Info("Upload janitor started",
		"dir", j.dir, "retention", j.retention, "interval", j.interval)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (j *Janitor) Stop() {
	if j.cancel == nil {
		return
	}
	j.cancel()
	<-j.done
	j.cancel = nil
	j.done = nil
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.done)

	j.Sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep removes every regular file under the upload directory older than the
// retention window. Returns the number of files removed.
func (j *Janitor) Sweep() int {
	cutoff := time.Now().Add(-j.retention)
	removed := 0

	err := filepath.WalkDir(j.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			j.logger.Warn("Failed to remove expired image", "path", path, "error", err)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		j.logger.Warn("Upload sweep failed", "dir", j.dir, "error", err)
	}
	if removed > 0 {
		j.logger.Info("Removed expired images", "count", removed)
	}
	return removed
}
