package binarize

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Default parameters for the two binarization rules.
const (
	DefaultCutoff     uint8   = 250
	DefaultBlurRadius float64 = 2
	DefaultWindowSize int     = 11
	DefaultOffset     float64 = 2
)

// Binarizer converts an image into a foreground/background mask.
type Binarizer interface {
	Binarize(img image.Image) *Mask
}

// FixedThreshold marks a pixel as foreground when its grayscale intensity is
// strictly below Cutoff. It suits clean renders of dark geometry on a white
// background.
type FixedThreshold struct {
	Cutoff uint8
}

// NewFixedThreshold returns a FixedThreshold using the given cutoff.
func NewFixedThreshold(cutoff uint8) *FixedThreshold {
	return &FixedThreshold{Cutoff: cutoff}
}

// Binarize applies the fixed cutoff. Fully transparent pixels count as background.
func (f *FixedThreshold) Binarize(img image.Image) *Mask {
	if img == nil {
		return NewMask(0, 0)
	}

	// segment.Threshold paints pixels at or above the level white, so the
	// black pixels of its output are exactly the foreground.
	gray := segment.Threshold(img, f.Cutoff)
	bounds := gray.Bounds()
	mask := NewMask(bounds.Dx(), bounds.Dy())

	for y := 0; y < mask.Height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+mask.Width]
		for x, v := range row {
			if v == 0x00 {
				mask.Pix[y*mask.Width+x] = Foreground
			}
		}
	}

	return mask
}

// AdaptiveOptions configures the Adaptive binarizer.
type AdaptiveOptions struct {
	// BlurRadius is the Gaussian smoothing radius applied before thresholding.
	// Zero disables smoothing.
	BlurRadius float64

	// WindowSize is the side of the square neighbourhood used for the local
	// mean. It is forced odd and at least 3.
	WindowSize int

	// Offset is subtracted from the local mean before comparison.
	Offset float64
}

// DefaultAdaptiveOptions returns the options used for photographs.
func DefaultAdaptiveOptions() AdaptiveOptions {
	return AdaptiveOptions{
		BlurRadius: DefaultBlurRadius,
		WindowSize: DefaultWindowSize,
		Offset:     DefaultOffset,
	}
}

// Adaptive thresholds each pixel against the mean of its neighbourhood, which
// tolerates uneven lighting across a photograph.
//
// A pixel is foreground when its smoothed intensity is at or below the local
// mean minus Offset. Uniform regions of any brightness therefore become
// background, and dark objects on a lighter surround produce foreground along
// their borders.
type Adaptive struct {
	opts AdaptiveOptions
}

// NewAdaptive returns an Adaptive binarizer with normalized options.
func NewAdaptive(opts AdaptiveOptions) *Adaptive {
	if opts.WindowSize < 3 {
		opts.WindowSize = 3
	}
	if opts.WindowSize%2 == 0 {
		opts.WindowSize++
	}
	if opts.BlurRadius < 0 {
		opts.BlurRadius = 0
	}
	return &Adaptive{opts: opts}
}

// Options returns the normalized options in effect.
func (a *Adaptive) Options() AdaptiveOptions {
	return a.opts
}

// Binarize applies the adaptive rule.
func (a *Adaptive) Binarize(img image.Image) *Mask {
	if img == nil {
		return NewMask(0, 0)
	}

	gray := effect.Grayscale(img)
	bounds := gray.Bounds()
	mask := NewMask(bounds.Dx(), bounds.Dy())
	if mask.Width == 0 || mask.Height == 0 {
		return mask
	}

	smoothed := gray
	if a.opts.BlurRadius > 0 {
		smoothed = blur.Gaussian(gray, a.opts.BlurRadius)
	}

	mean := localMean(smoothed, a.opts.WindowSize)

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			v := float64(smoothed.Pix[y*smoothed.Stride+x*4])
			m := float64(mean.Pix[y*mean.Stride+x*4])
			if v <= m-a.opts.Offset {
				mask.Pix[y*mask.Width+x] = Foreground
			}
		}
	}

	return mask
}

// localMean returns the mean of each pixel's size x size neighbourhood, with
// the image edges extended. The box is applied as a horizontal then a vertical
// 1-D pass, so each pixel costs 2*size taps instead of size*size.
func localMean(img image.Image, size int) *image.RGBA {
	k := convolution.NewKernel(size, 1)
	for i := range k.Matrix {
		k.Matrix[i] = 1
	}
	nk := k.Normalized()

	// Bias rounds each pass to the nearest level instead of truncating.
	opts := convolution.Options{Bias: 0.5}
	horizontal := convolution.Convolve(img, nk, &opts)
	return convolution.Convolve(horizontal, nk.Transposed(), &opts)
}
