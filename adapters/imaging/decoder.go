//go:build !gocv

package imaging

import (
	"bytes"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/satriahrh/framegate/domain"
	"github.com/satriahrh/framegate/domain/entities"
	"github.com/satriahrh/framegate/domain/repositories"
)

// Decoder decodes base64 images with the Go image codecs
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

// Decode strips an optional data-URL header, base64-decodes the payload,
// sniffs the image format and converts the result to grayscale
func (d *Decoder) Decode(encoded string) (*entities.Frame, error) {
	data, err := DecodePayload(encoded)
	if err != nil {
		return nil, &domain.InvalidImageError{Cause: err}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.InvalidImageError{Cause: err}
	}
	if err := checkDimensions(cfg.Width, cfg.Height, d.maxPixels); err != nil {
		return nil, &domain.InvalidImageError{Cause: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.InvalidImageError{Cause: fmt.Errorf("decode %s: %w", format, err)}
	}

	frame := ToGray(img)
	if err := frame.Validate(); err != nil {
		return nil, &domain.InvalidImageError{Cause: err}
	}

	d.logger.Debug("Decoded frame",
		zap.String("format", format),
		zap.Int("width", frame.Width),
		zap.Int("height", frame.Height))

	return frame, nil
}
