package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/framegate/adapters/imaging"
	"github.com/satriahrh/framegate/domain"
	"github.com/satriahrh/framegate/domain/entities"
	"github.com/satriahrh/framegate/internal/testutil"
	"github.com/satriahrh/framegate/usecase"
)

func setupTestServer(t testing.TB) *echo.Echo {
	logger := zaptest.NewLogger(t)
	detector := usecase.NewChangeDetectorService(imaging.NewDecoder(0, logger), imaging.NewResizer(), logger)
	return NewServer(ServerOptions{BodyLimit: "2M"}, detector, logger)
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func mustJSON(t testing.TB, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	return string(b)
}

func decodeError(t testing.TB, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var body domain.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestCompareFrames_Success(t *testing.T) {
	e := setupTestServer(t)
	frame := testutil.PNGDataURL(t, testutil.Checkerboard(24, 24, 3))

	tests := []struct {
		name        string
		body        string
		wantChanged bool
		wantScore   float64
	}{
		{
			name:        "first frame with omitted previous",
			body:        mustJSON(t, map[string]interface{}{"current_frame": frame}),
			wantChanged: true,
			wantScore:   0.2,
		},
		{
			name:        "first frame with null previous",
			body:        `{"current_frame": "` + frame + `", "previous_frame": null}`,
			wantChanged: true,
			wantScore:   0.2,
		},
		{
			name:        "identical frames",
			body:        mustJSON(t, map[string]string{"current_frame": frame, "previous_frame": frame}),
			wantChanged: false,
			wantScore:   1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(e, "/compare-frames", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var raw map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if len(raw) != 2 {
				t.Errorf("Expected exactly has_changed and similarity_score, got %v", raw)
			}

			var result entities.ComparisonResult
			if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
				t.Fatalf("Failed to decode result: %v", err)
			}
			if result.HasChanged != tt.wantChanged {
				t.Errorf("Expected has_changed %v, got %v", tt.wantChanged, result.HasChanged)
			}
			if math.Abs(result.SimilarityScore-tt.wantScore) > 1e-9 {
				t.Errorf("Expected similarity_score %v, got %v", tt.wantScore, result.SimilarityScore)
			}
		})
	}
}

func TestCompareFrames_ErrorMapping(t *testing.T) {
	e := setupTestServer(t)
	valid := testutil.PNGBase64(t, testutil.Gradient(16, 16))
	tiny := testutil.PNGBase64(t, testutil.Gradient(4, 4))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{
			name:       "malformed current frame",
			body:       mustJSON(t, map[string]string{"current_frame": "not-base64!!"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.ErrorCodeInvalidImage,
			wantDetail: "Invalid image data: ",
		},
		{
			name:       "malformed previous frame",
			body:       mustJSON(t, map[string]string{"current_frame": valid, "previous_frame": "not-base64!!"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.ErrorCodeInvalidImage,
			wantDetail: "Invalid image data: ",
		},
		{
			name:       "frames smaller than the ssim window",
			body:       mustJSON(t, map[string]string{"current_frame": tiny, "previous_frame": tiny}),
			wantStatus: http.StatusInternalServerError,
			wantCode:   domain.ErrorCodeComparison,
			wantDetail: "Error comparing frames: ",
		},
		{
			name:       "missing current frame",
			body:       `{"previous_frame": "` + valid + `"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   domain.ErrorCodeValidation,
			wantDetail: "current_frame is required",
		},
		{
			name:       "wrong field type",
			body:       `{"current_frame": 42}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.ErrorCodeInvalidRequest,
		},
		{
			name:       "malformed json",
			body:       `{"current_frame": `,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.ErrorCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(e, "/compare-frames", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			body := decodeError(t, rec)
			if body.Error != tt.wantCode {
				t.Errorf("Expected error code %q, got %q", tt.wantCode, body.Error)
			}
			if !strings.HasPrefix(body.Detail, tt.wantDetail) {
				t.Errorf("Expected detail to start with %q, got %q", tt.wantDetail, body.Detail)
			}
		})
	}
}

func TestCompareFrames_BodyLimit(t *testing.T) {
	logger := zap.NewNop()
	detector := usecase.NewChangeDetectorService(imaging.NewDecoder(0, logger), imaging.NewResizer(), logger)
	e := NewServer(ServerOptions{BodyLimit: "1K"}, detector, logger)

	body := `{"current_frame": "` + strings.Repeat("A", 4096) + `"}`
	rec := postJSON(e, "/compare-frames", body)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %d", rec.Code)
	}
	if decodeError(t, rec).Error != domain.ErrorCodePayloadTooLarge {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

func TestServer_HealthAndRouting(t *testing.T) {
	e := setupTestServer(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /health, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("Expected a generated request ID header")
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if decodeError(t, rec).Error != domain.ErrorCodeNotFound {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/compare-frames", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rec.Code)
	}
}

type panickingDetector struct{}

func (panickingDetector) Detect(context.Context, string, string) (entities.ComparisonResult, error) {
	panic("boom")
}

func TestServer_RecoversFromPanics(t *testing.T) {
	e := NewServer(ServerOptions{}, panickingDetector{}, zap.NewNop())

	rec := postJSON(e, "/compare-frames", `{"current_frame": "abc"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if decodeError(t, rec).Error != domain.ErrorCodeInternal {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}
