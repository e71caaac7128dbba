package imagestore

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{200, 30, 60, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{10, 220, 90, 255})
			}
		}
	}
	return img
}

func TestFileStore_LosslessRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := checker(7, 5)
	for _, ext := range []string{".png", ".bmp", ".tiff", ".tif"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "nested", "img"+ext)
			require.NoError(t, FileStore{}.Save(src, path))

			got, err := FileStore{}.Load(path)
			require.NoError(t, err)
			require.Equal(t, src.Bounds(), got.Bounds())
			flat := Flatten(got, color.White)
			assert.Equal(t, src.Pix, flat.Pix)
		})
	}
}

func TestFileStore_JPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.jpg")
	require.NoError(t, FileStore{JPEGQuality: 100}.Save(checker(16, 16), path))
	got, err := FileStore{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), got.Bounds())
}

func TestFileStore_Errors(t *testing.T) {
	dir := t.TempDir()

	err := FileStore{}.Save(checker(2, 2), filepath.Join(dir, "img.xyz"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, statErr := os.Stat(filepath.Join(dir, "img.xyz"))
	assert.True(t, os.IsNotExist(statErr), "no file should be created for unknown formats")

	assert.ErrorIs(t, FileStore{}.Save(nil, filepath.Join(dir, "a.png")), ErrNilImage)

	_, err = FileStore{}.Load(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o600))
	_, err = FileStore{}.Load(garbage)
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	src := image.NewNRGBA(image.Rect(3, 3, 5, 4))
	src.SetNRGBA(3, 3, color.NRGBA{0, 0, 0, 0})
	src.SetNRGBA(4, 3, color.NRGBA{255, 0, 0, 255})

	got := Flatten(src, color.White)
	assert.Equal(t, image.Rect(0, 0, 2, 1), got.Bounds())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, got.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, got.RGBAAt(1, 0))
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"within", 100, 50, 200, 100, 50},
		{"disabled", 800, 600, 0, 800, 600},
		{"landscape", 800, 400, 200, 200, 100},
		{"portrait", 300, 900, 300, 100, 300},
		{"thin", 1000, 1, 10, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.maxDim)
			assert.Equal(t, tt.wantW, got.Bounds().Dx())
			assert.Equal(t, tt.wantH, got.Bounds().Dy())
		})
	}
}

func TestPrepareTarget(t *testing.T) {
	got := PrepareTarget(image.NewNRGBA(image.Rect(0, 0, 40, 20)), 10)
	assert.Equal(t, image.Rect(0, 0, 10, 5), got.Bounds())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, got.RGBAAt(2, 2))
}

func TestCheckpointName(t *testing.T) {
	ts := time.Date(2026, 3, 4, 15, 6, 7, 89*int(time.Millisecond), time.UTC)
	got := CheckpointName("out", 42, ts)
	assert.Equal(t, filepath.Join("out", "intermediate_gen_00042_20260304_150607_089.png"), got)
	assert.Equal(t, filepath.Join("out", "final_result.png"), FinalName("out"))
}
