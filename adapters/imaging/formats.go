package imaging

import (
	"fmt"

	// Formats understood by image.Decode and image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels caps the decoded size of a single frame (about 8K UHD x 2)
const DefaultMaxPixels = 64 << 20

func checkDimensions(width, height, maxPixels int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image has empty dimensions %dx%d", width, height)
	}
	if maxPixels > 0 && width*height > maxPixels {
		return fmt.Errorf("image is %dx%d, larger than the %d pixel limit", width, height, maxPixels)
	}
	return nil
}
