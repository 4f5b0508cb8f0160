package entities

import (
	"errors"
	"fmt"
)

// Frame is a decoded grayscale image. Pix holds one luminance byte per
// pixel in row-major order.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a black frame of the given size
func NewFrame(width, height int) *Frame {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the luminance at column x, row y
func (f *Frame) At(x, y int) uint8 {
	return f.Pix[y*f.Width+x]
}

// Set writes the luminance at column x, row y
func (f *Frame) Set(x, y int, v uint8) {
	f.Pix[y*f.Width+x] = v
}

// SameSize reports whether both frames have identical dimensions
func (f *Frame) SameSize(other *Frame) bool {
	return other != nil && f.Width == other.Width && f.Height == other.Height
}

// Validate checks that the frame is non-empty and its buffer matches its shape
func (f *Frame) Validate() error {
	if f == nil {
		return errors.New("frame is nil")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame has empty dimensions %dx%d", f.Width, f.Height)
	}
	if len(f.Pix) != f.Width*f.Height {
		return fmt.Errorf("frame buffer has %d bytes, want %d", len(f.Pix), f.Width*f.Height)
	}
	return nil
}
