//go:build gocv

package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/satriahrh/framegate/domain"
	"github.com/satriahrh/framegate/domain/entities"
	"github.com/satriahrh/framegate/domain/repositories"
)

// Decoder decodes base64 images with OpenCV. Built with -tags gocv.
type Decoder struct {
	maxPixels int
	logger    *zap.Logger
}

var _ repositories.FrameDecoder = (*Decoder)(nil)

// NewDecoder creates a decoder. maxPixels <= 0 selects DefaultMaxPixels.
func NewDecoder(maxPixels int, logger *zap.Logger) *Decoder {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Decoder{maxPixels: maxPixels, logger: logger}
}

// Decode strips an optional data-URL header, base64-decodes the payload and
// lets OpenCV decode straight to grayscale
func (d *Decoder) Decode(encoded string) (*entities.Frame, error) {
	data, err := DecodePayload(encoded)
	if err != nil {
		return nil, &domain.InvalidImageError{Cause: err}
	}

	// Header sniffing only guards the pixel budget; OpenCV may know formats Go does not.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if err := checkDimensions(cfg.Width, cfg.Height, d.maxPixels); err != nil {
			return nil, &domain.InvalidImageError{Cause: err}
		}
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadGrayScale)
	if err != nil {
		return nil, &domain.InvalidImageError{Cause: err}
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, &domain.InvalidImageError{Cause: errors.New("image: unknown format")}
	}

	frame, err := matToFrame(mat)
	if err != nil {
		return nil, &domain.InvalidImageError{Cause: err}
	}

	d.logger.Debug("Decoded frame with OpenCV",
		zap.Int("width", frame.Width),
		zap.Int("height", frame.Height))

	return frame, nil
}

// Resizer scales frames with cv::resize and INTER_LINEAR
type Resizer struct{}

var _ repositories.FrameResizer = (*Resizer)(nil)

func NewResizer() *Resizer {
	return &Resizer{}
}

func (r *Resizer) Resize(frame *entities.Frame, width, height int) (*entities.Frame, error) {
	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("resize source: %w", err)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid resize target %dx%d", width, height)
	}

	src, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC1, frame.Pix)
	if err != nil {
		return nil, fmt.Errorf("wrap frame: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	if dst.Empty() {
		return nil, errors.New("cv::resize produced an empty image")
	}

	return matToFrame(dst)
}

func matToFrame(mat gocv.Mat) (*entities.Frame, error) {
	if mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("unexpected mat type %v", mat.Type())
	}

	frame := &entities.Frame{
		Width:  mat.Cols(),
		Height: mat.Rows(),
		Pix:    mat.ToBytes(),
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return frame, nil
}
