package domain

import "errors"

const (
	// InvalidImagePrefix starts every InvalidImageError message
	InvalidImagePrefix = "Invalid image data: "
	// ComparisonPrefix starts every ComparisonError message
	ComparisonPrefix = "Error comparing frames: "
)

// InvalidImageError reports a frame that could not be decoded. It is the
// caller's fault and maps to a client error.
type InvalidImageError struct {
	Cause error
}

func (e *InvalidImageError) Error() string {
	if e.Cause == nil {
		return InvalidImagePrefix + "unknown error"
	}
	return InvalidImagePrefix + e.Cause.Error()
}

func (e *InvalidImageError) Unwrap() error {
	return e.Cause
}

// ComparisonError reports a failure while resizing or scoring two frames
// that both decoded successfully. It maps to a server error.
type ComparisonError struct {
	Cause error
}

func (e *ComparisonError) Error() string {
	if e.Cause == nil {
		return ComparisonPrefix + "unknown error"
	}
	return ComparisonPrefix + e.Cause.Error()
}

func (e *ComparisonError) Unwrap() error {
	return e.Cause
}

// IsInvalidImage reports whether err is or wraps an InvalidImageError
func IsInvalidImage(err error) bool {
	var target *InvalidImageError
	return errors.As(err, &target)
}

// IsComparison reports whether err is or wraps a ComparisonError
func IsComparison(err error) bool {
	var target *ComparisonError
	return errors.As(err, &target)
}
