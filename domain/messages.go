package domain

// CompareFramesRequest is the body of POST /compare-frames. A null or
// omitted previous_frame decodes to the empty string.
type CompareFramesRequest struct {
	CurrentFrame  string `json:"current_frame" validate:"required"`
	PreviousFrame string `json:"previous_frame,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Error codes carried in ErrorResponse.Error
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeValidation       = "validation_failed"
	ErrorCodeInvalidImage     = "invalid_image"
	ErrorCodeComparison       = "comparison_failed"
	ErrorCodeInternal         = "internal_error"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeMethodNotAllowed = "method_not_allowed"
	ErrorCodePayloadTooLarge  = "payload_too_large"
	ErrorCodeHTTP             = "http_error"
)
