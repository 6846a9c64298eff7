package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSolidImage creates an in-memory solid color image
func newSolidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createTestImage writes a solid color PNG into the test's temp dir and
// returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, newSolidImage(width, height, c)))
	return path
}

func TestImageCache_Load(t *testing.T) {
	path := createTestImage(t, 100, 50, color.RGBA{255, 0, 0, 255})
	cache := NewImageCache()

	img, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
	assert.Equal(t, 1, cache.Len())

	// Second load returns the cached image even after the file is gone.
	require.NoError(t, os.Remove(path))
	again, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, img, again)
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()

	_, err := cache.Load(filepath.Join(t.TempDir(), "missing.png"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnreadable)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrCorruptImage)
	assert.Zero(t, cache.Len())
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := NewImageCache().Load(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptImage)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Source)
}

func TestImageCache_Load_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jpg")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := LoadFile(path)

	assert.ErrorIs(t, err, ErrCorruptImage)
}

func TestImageCache_Evict(t *testing.T) {
	path := createTestImage(t, 10, 10, color.White)
	cache := NewImageCache()

	_, err := cache.Load(path)
	require.NoError(t, err)
	cache.Evict(path)
	assert.Zero(t, cache.Len())

	// Evicting an unknown path is a no-op.
	cache.Evict("/nonexistent/path.png")
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	path := createTestImage(t, 50, 50, color.RGBA{0, 0, 255, 255})
	cache := NewImageCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := cache.Load(path)
			assert.NoError(t, err)
			assert.NotNil(t, img)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Len())
}

func TestDecode_JPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, newSolidImage(32, 16, color.Gray{Y: 128}), nil))

	img, err := Decode(&buf, "memory")

	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
}

func TestDecodeBytes_Empty(t *testing.T) {
	_, err := DecodeBytes(nil, "memory")

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCorruptImage, loadErr.Kind)
	assert.Contains(t, err.Error(), "memory")
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	src := newSolidImage(20, 10, color.RGBA{10, 20, 30, 255})
	path := filepath.Join(t.TempDir(), "out.png")

	require.NoError(t, Save(src, path))
	img, err := LoadFile(path)
	require.NoError(t, err)

	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(10), r>>8)
	assert.Equal(t, uint32(20), g>>8)
	assert.Equal(t, uint32(30), b>>8)
}

func TestEncodePNGBase64(t *testing.T) {
	result, err := EncodePNGBase64(newSolidImage(7, 3, color.White))

	require.NoError(t, err)
	assert.Equal(t, 7, result.Width)
	assert.Equal(t, 3, result.Height)
	assert.Equal(t, "image/png", result.MimeType)
	assert.NotEmpty(t, result.ImageBase64)
}
