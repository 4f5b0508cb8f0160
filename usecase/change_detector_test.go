package usecase

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/framegate/adapters/imaging"
	"github.com/satriahrh/framegate/domain"
	"github.com/satriahrh/framegate/domain/entities"
	"github.com/satriahrh/framegate/domain/repositories"
	"github.com/satriahrh/framegate/internal/testutil"
)

// recordingResizer remembers the last requested target size
type recordingResizer struct {
	next          repositories.FrameResizer
	calls         int
	width, height int
	err           error
}

func (r *recordingResizer) Resize(frame *entities.Frame, width, height int) (*entities.Frame, error) {
	r.calls++
	r.width, r.height = width, height
	if r.err != nil {
		return nil, r.err
	}
	return r.next.Resize(frame, width, height)
}

type failingDecoder struct{ err error }

func (d failingDecoder) Decode(string) (*entities.Frame, error) { return nil, d.err }

func setupDetector(t testing.TB) (*ChangeDetectorService, *recordingResizer) {
	logger := zaptest.NewLogger(t)
	resizer := &recordingResizer{next: imaging.NewResizer()}
	return NewChangeDetectorService(imaging.NewDecoder(0, logger), resizer, logger), resizer
}

func TestDetect_FirstFrame(t *testing.T) {
	detector, resizer := setupDetector(t)

	frames := map[string]string{
		"solid png":    testutil.PNGBase64(t, testutil.Solid(16, 16, color.NRGBA{R: 200, A: 255})),
		"gradient png": testutil.PNGDataURL(t, testutil.Gradient(64, 8)),
		"jpeg":         testutil.JPEGBase64(t, testutil.Checkerboard(9, 30, 3), 80),
		"tiny":         testutil.PNGBase64(t, testutil.Gradient(1, 1)),
	}

	for name, frame := range frames {
		t.Run(name, func(t *testing.T) {
			result, err := detector.Detect(context.Background(), frame, "")
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if result != entities.FirstFrameResult() {
				t.Errorf("Expected first frame result, got %+v", result)
			}
		})
	}

	if resizer.calls != 0 {
		t.Errorf("First frame must not resize, got %d calls", resizer.calls)
	}
}

func TestDetect_FirstFrameStillDecodesCurrent(t *testing.T) {
	detector, _ := setupDetector(t)

	_, err := detector.Detect(context.Background(), "not-base64!!", "")
	if !domain.IsInvalidImage(err) {
		t.Errorf("Expected InvalidImageError, got %v", err)
	}
}

func TestDetect_IdenticalFrames(t *testing.T) {
	detector, resizer := setupDetector(t)
	frame := testutil.PNGBase64(t, testutil.Checkerboard(40, 30, 4))

	result, err := detector.Detect(context.Background(), frame, frame)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if math.Abs(result.SimilarityScore-1) > 1e-9 {
		t.Errorf("Expected score close to 1, got %v", result.SimilarityScore)
	}
	if result.HasChanged {
		t.Error("Identical frames should not be reported as changed")
	}
	if resizer.calls != 0 {
		t.Errorf("Equal sizes must not resize, got %d calls", resizer.calls)
	}
}

func TestDetect_SolidColorAcrossSizes(t *testing.T) {
	detector, _ := setupDetector(t)
	gray := color.NRGBA{R: 90, G: 90, B: 90, A: 255}

	sizes := [][2]int{{8, 8}, {64, 48}, {13, 77}}
	for _, cur := range sizes {
		for _, prev := range sizes {
			current := testutil.PNGBase64(t, testutil.Solid(cur[0], cur[1], gray))
			previous := testutil.PNGDataURL(t, testutil.Solid(prev[0], prev[1], gray))

			result, err := detector.Detect(context.Background(), current, previous)
			if err != nil {
				t.Fatalf("Detect %v vs %v failed: %v", cur, prev, err)
			}
			if math.Abs(result.SimilarityScore-1) > 1e-9 || result.HasChanged {
				t.Errorf("Detect %v vs %v = %+v, want unchanged with score 1", cur, prev, result)
			}
		}
	}
}

func TestDetect_ResizesCurrentToPrevious(t *testing.T) {
	detector, resizer := setupDetector(t)

	current := testutil.PNGBase64(t, testutil.Gradient(120, 30))
	previous := testutil.PNGBase64(t, testutil.Gradient(20, 50))

	if _, err := detector.Detect(context.Background(), current, previous); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if resizer.calls != 1 {
		t.Fatalf("Expected one resize, got %d", resizer.calls)
	}
	if resizer.width != 20 || resizer.height != 50 {
		t.Errorf("Expected resize to previous 20x50, got %dx%d", resizer.width, resizer.height)
	}
}

func TestDetect_ChangedFrames(t *testing.T) {
	detector, _ := setupDetector(t)

	board := testutil.Checkerboard(32, 32, 4)
	current := testutil.PNGBase64(t, board)
	previous := testutil.PNGBase64(t, testutil.Invert(board))

	result, err := detector.Detect(context.Background(), current, previous)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !result.HasChanged {
		t.Errorf("Inverted frame should be reported as changed, got %+v", result)
	}
	if result.SimilarityScore >= entities.ChangeThreshold {
		t.Errorf("Expected score below threshold, got %v", result.SimilarityScore)
	}
}

func TestDetect_InvalidPrevious(t *testing.T) {
	detector, _ := setupDetector(t)
	current := testutil.PNGBase64(t, testutil.Gradient(16, 16))

	for _, previous := range []string{"not-base64!!", "data:image/png;base64,aGVsbG8="} {
		_, err := detector.Detect(context.Background(), current, previous)
		if !domain.IsInvalidImage(err) {
			t.Errorf("Previous %q: expected InvalidImageError, got %v", previous, err)
		}
	}
}

func TestDetect_ComparisonErrors(t *testing.T) {
	t.Run("frames smaller than the window", func(t *testing.T) {
		detector, _ := setupDetector(t)
		tiny := testutil.PNGBase64(t, testutil.Gradient(5, 5))

		_, err := detector.Detect(context.Background(), tiny, tiny)
		if !domain.IsComparison(err) {
			t.Errorf("Expected ComparisonError, got %v", err)
		}
	})

	t.Run("resize failure", func(t *testing.T) {
		detector, resizer := setupDetector(t)
		resizer.err = errors.New("resize exploded")

		current := testutil.PNGBase64(t, testutil.Gradient(30, 30))
		previous := testutil.PNGBase64(t, testutil.Gradient(20, 20))

		_, err := detector.Detect(context.Background(), current, previous)
		if !domain.IsComparison(err) {
			t.Fatalf("Expected ComparisonError, got %v", err)
		}
		if !errors.Is(err, resizer.err) {
			t.Error("Expected resize error to be wrapped")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		detector, _ := setupDetector(t)
		frame := testutil.PNGBase64(t, testutil.Gradient(30, 30))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := detector.Detect(ctx, frame, frame)
		if !domain.IsComparison(err) || !errors.Is(err, context.Canceled) {
			t.Errorf("Expected ComparisonError wrapping context.Canceled, got %v", err)
		}
	})
}

func TestDetect_DecoderErrorsBecomeInvalidImage(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cause := errors.New("codec unavailable")
	detector := NewChangeDetectorService(failingDecoder{err: cause}, imaging.NewResizer(), logger)

	_, err := detector.Detect(context.Background(), "anything", "")
	if !domain.IsInvalidImage(err) {
		t.Fatalf("Expected InvalidImageError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected decoder error to be wrapped")
	}
}
