package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/satriahrh/framegate/adapters/imaging"
	"github.com/satriahrh/framegate/internal/api"
	"github.com/satriahrh/framegate/internal/config"
	"github.com/satriahrh/framegate/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize adapters
	decoder := imaging.NewDecoder(cfg.MaxPixels, logger)
	resizer := imaging.NewResizer()

	// Initialize usecase services
	detector := usecase.NewChangeDetectorService(decoder, resizer, logger)

	// Create Echo instance with routes
	e := api.NewServer(api.ServerOptions{BodyLimit: cfg.BodyLimit}, detector, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("address", cfg.Address()),
		zap.String("environment", cfg.Environment))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
