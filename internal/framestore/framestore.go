// Package framestore persists selected keyframes as JPEG files in a locked
// output directory.
package framestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/nfnt/resize"

	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

const lockName = ".vidscribe.lock"

// ErrLocked is returned when another run holds the output directory.
var ErrLocked = errors.New("frames directory is in use by another run")

// Dir writes keyframes to <dir>/<name>.jpg.
type Dir struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// Open creates dir if needed and takes its lock.
func Open(dir string, logger *slog.Logger) (*Dir, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "framestore", "open", "frames directory not set", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frames directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire frames lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return &Dir{
		path:   dir,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "framestore"),
	}, nil
}

// Path returns the directory frames are written to.
func (d *Dir) Path() string {
	return d.path
}

// Store writes data atomically and returns the file path.
func (d *Dir) Store(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid frame name %q", name)
	}
	target := filepath.Join(d.path, name+".jpg")
	tmp, err := os.CreateTemp(d.path, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp frame: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close frame: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename frame: %w", err)
	}
	d.logger.Debug("frame stored", logging.String("path", target), logging.Int("bytes", len(data)))
	return target, nil
}

// Close releases the directory lock.
func (d *Dir) Close() error {
	if d == nil || d.lock == nil {
		return nil
	}
	if err := d.lock.Unlock(); err != nil {
		return fmt.Errorf("release frames lock: %w", err)
	}
	_ = os.Remove(filepath.Join(d.path, lockName))
	return nil
}

// Encoder returns a JPEG encoder that first scales images by scale when it
// is below 1.
func Encoder(scale float64, quality int) func(image.Image) ([]byte, error) {
	return func(img image.Image) ([]byte, error) {
		if scale > 0 && scale < 1 {
			img = Downscale(img, scale)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// Downscale resizes img by scale, keeping at least one pixel per side.
func Downscale(img image.Image, scale float64) image.Image {
	b := img.Bounds()
	w := uint(float64(b.Dx()) * scale)
	h := uint(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return resize.Resize(w, h, img, resize.Bilinear)
}
