//go:build !gocv

package imaging

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/satriahrh/framegate/domain/entities"
	"github.com/satriahrh/framegate/domain/repositories"
)

// Resizer scales frames with bilinear interpolation
type Resizer struct{}

var _ repositories.FrameResizer = (*Resizer)(nil)

func NewResizer() *Resizer {
	return &Resizer{}
}

// Resize returns a new frame of exactly width x height. The source is left untouched.
func (r *Resizer) Resize(frame *entities.Frame, width, height int) (*entities.Frame, error) {
	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("resize source: %w", err)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid resize target %dx%d", width, height)
	}

	if frame.Width == width && frame.Height == height {
		out := entities.NewFrame(width, height)
		copy(out.Pix, frame.Pix)
		return out, nil
	}

	src := FrameToImage(frame)
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return &entities.Frame{Width: width, Height: height, Pix: dst.Pix}, nil
}
