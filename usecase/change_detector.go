package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/satriahrh/framegate/domain"
	"github.com/satriahrh/framegate/domain/entities"
	"github.com/satriahrh/framegate/domain/repositories"
	"github.com/satriahrh/framegate/internal/ssim"
)

// ChangeDetectorService decides whether a frame differs from its predecessor
type ChangeDetectorService struct {
	decoder repositories.FrameDecoder
	resizer repositories.FrameResizer
	logger  *zap.Logger
}

var _ repositories.ChangeDetector = (*ChangeDetectorService)(nil)

// NewChangeDetectorService creates a new change detector service
func NewChangeDetectorService(
	decoder repositories.FrameDecoder,
	resizer repositories.FrameResizer,
	logger *zap.Logger,
) *ChangeDetectorService {
	return &ChangeDetectorService{
		decoder: decoder,
		resizer: resizer,
		logger:  logger,
	}
}

// Detect compares current against previous. Decode failures of either frame
// are *domain.InvalidImageError; resize or scoring failures are
// *domain.ComparisonError. An empty previous yields the first-frame result
// without any computation.
func (s *ChangeDetectorService) Detect(ctx context.Context, current, previous string) (entities.ComparisonResult, error) {
	// Step 1: decode the current frame
	currentFrame, err := s.decode(current)
	if err != nil {
		return entities.ComparisonResult{}, err
	}

	// Step 2: no baseline yet
	if previous == "" {
		s.logger.Debug("No previous frame, reporting first frame as changed")
		return entities.FirstFrameResult(), nil
	}

	// Step 3: decode the baseline
	previousFrame, err := s.decode(previous)
	if err != nil {
		return entities.ComparisonResult{}, err
	}

	// Step 4: score
	score, err := s.compare(ctx, currentFrame, previousFrame)
	if err != nil {
		s.logger.Error("Frame comparison failed",
			zap.Int("currentWidth", currentFrame.Width),
			zap.Int("currentHeight", currentFrame.Height),
			zap.Int("previousWidth", previousFrame.Width),
			zap.Int("previousHeight", previousFrame.Height),
			zap.Error(err))
		return entities.ComparisonResult{}, &domain.ComparisonError{Cause: err}
	}

	result := entities.Classify(score)

	s.logger.Debug("Frames compared",
		zap.Float64("similarityScore", result.SimilarityScore),
		zap.Bool("hasChanged", result.HasChanged))

	return result, nil
}

func (s *ChangeDetectorService) decode(encoded string) (*entities.Frame, error) {
	frame, err := s.decoder.Decode(encoded)
	if err != nil {
		if domain.IsInvalidImage(err) {
			return nil, err
		}
		return nil, &domain.InvalidImageError{Cause: err}
	}
	return frame, nil
}

// compare resizes current onto previous's shape when they differ, then
// computes SSIM. previous is never resized.
func (s *ChangeDetectorService) compare(ctx context.Context, current, previous *entities.Frame) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if current == nil || previous == nil {
		return 0, errors.New("missing frame")
	}

	if !current.SameSize(previous) {
		resized, err := s.resizer.Resize(current, previous.Width, previous.Height)
		if err != nil {
			return 0, err
		}
		s.logger.Debug("Resized current frame to match previous",
			zap.Int("fromWidth", current.Width),
			zap.Int("fromHeight", current.Height),
			zap.Int("toWidth", previous.Width),
			zap.Int("toHeight", previous.Height))
		current = resized
	}

	return ssim.Compute(ctx, current, previous)
}
