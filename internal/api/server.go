package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/framegate/domain"
	"github.com/satriahrh/framegate/domain/repositories"
)

// ServerOptions tunes the echo instance built by NewServer
type ServerOptions struct {
	// BodyLimit is an echo size string such as "20M". Empty disables the limit.
	BodyLimit string
}

// NewServer builds an echo instance with middleware, validation, error
// rendering and all routes registered
func NewServer(opts ServerOptions, detector repositories.ChangeDetector, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = newHTTPErrorHandler(logger)

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	InitRoutes(e, detector, logger)

	return e
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("requestID", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("Request handled", fields...)
			return nil
		},
	})
}

// newHTTPErrorHandler renders echo's own errors (unknown route, body too
// large, recovered panics) in the same ErrorResponse shape as the handlers
func newHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := http.StatusText(status)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			detail = fmt.Sprint(he.Message)
		} else {
			logger.Error("Unhandled error", zap.Error(err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, domain.ErrorResponse{
				Error:  httpErrorCode(status),
				Detail: detail,
			})
		}
		if writeErr != nil {
			logger.Error("Failed to write error response", zap.Error(writeErr))
		}
	}
}
