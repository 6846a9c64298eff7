package binarize

import (
	"image"
	"image/color"
)

// Pixel values stored in a Mask.
const (
	Background uint8 = 0x00
	Foreground uint8 = 0xFF
)

// Mask is a two-valued image with the same dimensions as its source.
//
// Pix holds one byte per pixel in row-major order with a stride equal to
// Width. A pixel is foreground when its byte equals Foreground; every other
// value is background. Coordinates are 0-based relative to the top-left corner
// regardless of the source image's bounds origin.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask returns an all-background mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// IsForeground reports whether (x, y) lies inside the mask and is foreground.
func (m *Mask) IsForeground(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] == Foreground
}

// Set marks (x, y) as foreground or background. Out-of-range writes are ignored.
func (m *Mask) Set(x, y int, foreground bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	if foreground {
		m.Pix[y*m.Width+x] = Foreground
	} else {
		m.Pix[y*m.Width+x] = Background
	}
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v == Foreground {
			n++
		}
	}
	return n
}

// Image renders the mask as a grayscale image with white foreground on black.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] == Foreground {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}
	return img
}
