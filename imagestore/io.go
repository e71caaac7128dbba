package imagestore

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when a file extension has no encoder.
	ErrUnsupportedFormat = errors.New("imagestore: unsupported format")

	// ErrNilImage is returned when saving a nil image.
	ErrNilImage = errors.New("imagestore: nil image")
)

// DefaultJPEGQuality is used by FileStore when no quality is configured.
const DefaultJPEGQuality = 90

// Store saves and loads raster images.
type Store interface {
	Save(img image.Image, path string) error
	Load(path string) (image.Image, error)
}

// FileStore is a Store backed by the local filesystem.
type FileStore struct {
	// JPEGQuality is the quality (1-100) used for .jpg/.jpeg files.
	// Zero selects DefaultJPEGQuality.
	JPEGQuality int
}

var _ Store = FileStore{}

// Load decodes the image at path, auto-detecting the format from content.
func (FileStore) Load(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imagestore: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imagestore: decode %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img to path, creating parent directories as needed.
// The format is chosen from the extension; unknown extensions fail with
// ErrUnsupportedFormat before any file is created.
func (s FileStore) Save(img image.Image, path string) error {
	if img == nil {
		return ErrNilImage
	}
	enc, err := s.encoder(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("imagestore: create dir: %w", err)
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("imagestore: create file: %w", err)
	}
	if err := enc(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("imagestore: encode %s: %w", path, err)
	}
	return f.Close()
}

type encodeFunc func(io.Writer, image.Image) error

func (s FileStore) encoder(path string) (encodeFunc, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return png.Encode, nil
	case ".jpg", ".jpeg":
		q := s.JPEGQuality
		if q == 0 {
			q = DefaultJPEGQuality
		}
		q = max(1, min(q, 100))
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
		}, nil
	case ".gif":
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}, nil
	case ".bmp":
		return bmp.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
