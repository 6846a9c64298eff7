package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

var (
	// ErrSourceUnreadable means the image source does not exist or could not
	// be read.
	ErrSourceUnreadable = errors.New("image source not found or unreadable")

	// ErrCorruptImage means the source was read but does not hold a decodable,
	// non-empty image.
	ErrCorruptImage = errors.New("image data is corrupt or empty")
)

// LoadError reports a failure to load an image.
//
// errors.Is matches a LoadError against its Kind, which is always
// ErrSourceUnreadable or ErrCorruptImage, and also against the underlying
// cause.
type LoadError struct {
	// Source is the path, or a description of an in-memory source.
	Source string

	// Kind classifies the failure.
	Kind error

	// Err is the underlying cause. May be nil.
	Err error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to load image %s: %v", e.Source, e.Kind)
	}
	return fmt.Sprintf("failed to load image %s: %v: %v", e.Source, e.Kind, e.Err)
}

// Is reports whether target is the error's Kind.
func (e *LoadError) Is(target error) bool { return target == e.Kind }

func (e *LoadError) Unwrap() error { return e.Err }

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once an image
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O. Failed loads are never cached.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict(). Photographs
// that change on disk under the same path must be evicted before reloading.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/photo.jpg")
//	if errors.Is(err, imaging.ErrSourceUnreadable) {
//	    // missing file
//	}
//	cache.Evict("/path/to/photo.jpg") // Optional: free memory
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, GIF, BMP, TIFF, and WebP.
//
// Returns:
//   - image.Image: The decoded image, rotated upright according to any EXIF
//     orientation tag.
//   - error: A *LoadError if the file cannot be read or decoded.
//
// The image is cached using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
// After eviction, the next Load() call for this path will read from disk.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// LoadFile reads and decodes an image file without caching.
//
// # Errors
//
//   - ErrSourceUnreadable if the file does not exist or cannot be read
//   - ErrCorruptImage if the file is empty, not a supported format, or decodes
//     to an image with no pixels
func LoadFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Kind: ErrSourceUnreadable, Err: err}
	}
	return DecodeBytes(data, path)
}

// Decode reads all of r and decodes it. source names the origin for errors.
func Decode(r io.Reader, source string) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: source, Kind: ErrSourceUnreadable, Err: err}
	}
	return DecodeBytes(data, source)
}

// DecodeBytes decodes an in-memory encoded image.
func DecodeBytes(data []byte, source string) (image.Image, error) {
	if len(data) == 0 {
		return nil, &LoadError{Source: source, Kind: ErrCorruptImage, Err: errors.New("no data")}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &LoadError{Source: source, Kind: ErrCorruptImage, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &LoadError{Source: source, Kind: ErrCorruptImage, Err: errors.New("image has no pixels")}
	}

	return img, nil
}
