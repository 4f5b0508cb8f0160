package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/framegate/domain"
	"github.com/satriahrh/framegate/domain/repositories"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, detector repositories.ChangeDetector, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "framegate",
		})
	})

	e.POST("/compare-frames", func(c echo.Context) error {
		return compareFrames(c, detector, logger)
	})
}

func compareFrames(c echo.Context, detector repositories.ChangeDetector, logger *zap.Logger) error {
	var req domain.CompareFramesRequest

	// Bind and validate request
	if err := c.Bind(&req); err != nil {
		logger.Warn("Failed to bind compare-frames request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:  domain.ErrorCodeInvalidRequest,
			Detail: "Invalid request format",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, domain.ErrorResponse{
			Error:  domain.ErrorCodeValidation,
			Detail: validationDetail(err),
		})
	}

	result, err := detector.Detect(c.Request().Context(), req.CurrentFrame, req.PreviousFrame)
	if err != nil {
		status, code := errorStatus(err)
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		if status >= http.StatusInternalServerError {
			logger.Error("Frame comparison failed",
				zap.String("requestID", requestID),
				zap.Error(err))
		} else {
			logger.Info("Rejected undecodable frame",
				zap.String("requestID", requestID),
				zap.Error(err))
		}
		return c.JSON(status, domain.ErrorResponse{
			Error:  code,
			Detail: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, result)
}
