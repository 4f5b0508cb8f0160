package repositories

import "github.com/satriahrh/framegate/domain/entities"

// FrameDecoder turns an encoded image (base64 or data-URL) into a grayscale frame
type FrameDecoder interface {
	// Decode fails with *domain.InvalidImageError on any decode-time problem
	Decode(encoded string) (*entities.Frame, error)
}

// FrameResizer scales a frame to an exact size
type FrameResizer interface {
	Resize(frame *entities.Frame, width, height int) (*entities.Frame, error)
}
