package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/framegate/domain"
	"github.com/satriahrh/framegate/domain/entities"
	"github.com/satriahrh/framegate/domain/repositories"
)

const (
	defaultTimeout    = 30 * time.Second
	compareFramesPath = "/compare-frames"
	maxResponseBytes  = 1 << 20
	envServerURL      = "FRAMEGATE_SERVER_URL"
	envRequestTimeout = "FRAMEGATE_CLIENT_TIMEOUT"
)

// Config holds configuration for the remote Client
// Required fields:
// - BaseURL: scheme and host of a framegate server, e.g. "http://localhost:8000"
// Optional fields with defaults:
// - Timeout: per-request timeout (default: 30s)
// - HTTPClient: transport to use (default: a new client with Timeout)
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewConfigFromEnv reads FRAMEGATE_SERVER_URL and FRAMEGATE_CLIENT_TIMEOUT.
// A timeout that does not parse as a positive duration is an error.
func NewConfigFromEnv() (Config, error) {
	cfg := Config{BaseURL: os.Getenv(envServerURL)}
	if v := os.Getenv(envRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envRequestTimeout, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q: must be positive", envRequestTimeout, v)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// StatusError is returned for non-2xx responses that do not map to a domain error
type StatusError struct {
	StatusCode int
	Code       string
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("framegate server returned %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("framegate server returned %d %s: %s", e.StatusCode, e.Code, e.Detail)
}

// Client calls POST /compare-frames on a remote server. It implements
// repositories.ChangeDetector, translating 400 invalid_image and
// 500 comparison_failed back into the domain error types.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ repositories.ChangeDetector = (*Client)(nil)

// NewClient validates the config and creates a Client
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("framegate server URL is required")
	}

	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid framegate server URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("framegate server URL must be http or https, got %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("framegate server URL %q has no host", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint:   strings.TrimRight(base.String(), "/") + compareFramesPath,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Detect sends both frames to the server. An empty previous is omitted from
// the request body.
func (c *Client) Detect(ctx context.Context, current, previous string) (entities.ComparisonResult, error) {
	body, err := json.Marshal(domain.CompareFramesRequest{
		CurrentFrame:  current,
		PreviousFrame: previous,
	})
	if err != nil {
		return entities.ComparisonResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return entities.ComparisonResult{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entities.ComparisonResult{}, fmt.Errorf("compare-frames request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return entities.ComparisonResult{}, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("compare-frames response",
		zap.Int("statusCode", resp.StatusCode),
		zap.String("requestID", resp.Header.Get("X-Request-Id")))

	if resp.StatusCode != http.StatusOK {
		return entities.ComparisonResult{}, decodeError(resp.StatusCode, payload)
	}

	return decodeResult(payload)
}

// resultBody mirrors entities.ComparisonResult with pointer fields so that
// absent fields can be told apart from zero values
type resultBody struct {
	HasChanged      *bool    `json:"has_changed"`
	SimilarityScore *float64 `json:"similarity_score"`
}

func decodeResult(payload []byte) (entities.ComparisonResult, error) {
	var body resultBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return entities.ComparisonResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.HasChanged == nil {
		return entities.ComparisonResult{}, errors.New("malformed response: missing has_changed")
	}
	if body.SimilarityScore == nil {
		return entities.ComparisonResult{}, errors.New("malformed response: missing similarity_score")
	}
	return entities.ComparisonResult{
		HasChanged:      *body.HasChanged,
		SimilarityScore: *body.SimilarityScore,
	}, nil
}

func decodeError(status int, payload []byte) error {
	var body domain.ErrorResponse
	if err := json.Unmarshal(payload, &body); err != nil || body.Error == "" {
		body = domain.ErrorResponse{
			Error:  http.StatusText(status),
			Detail: strings.TrimSpace(string(payload)),
		}
	}

	switch {
	case status == http.StatusBadRequest && body.Error == domain.ErrorCodeInvalidImage:
		return &domain.InvalidImageError{
			Cause: errors.New(strings.TrimPrefix(body.Detail, domain.InvalidImagePrefix)),
		}
	case status == http.StatusInternalServerError && body.Error == domain.ErrorCodeComparison:
		return &domain.ComparisonError{
			Cause: errors.New(strings.TrimPrefix(body.Detail, domain.ComparisonPrefix)),
		}
	default:
		return &StatusError{
			StatusCode: status,
			Code:       body.Error,
			Detail:     body.Detail,
		}
	}
}
