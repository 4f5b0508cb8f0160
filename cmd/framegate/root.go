package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/satriahrh/framegate/adapters/imaging"
	"github.com/satriahrh/framegate/adapters/remote"
	"github.com/satriahrh/framegate/domain/repositories"
	"github.com/satriahrh/framegate/usecase"
)

// Version is the application version.
const Version = "0.1.0"

var (
	// serverURL selects remote detection when set
	serverURL string
	timeout   time.Duration
	logLevel  string
	maxPixels int

	logger   *zap.Logger
	detector repositories.ChangeDetector
)

var rootCmd = &cobra.Command{
	Use:          "framegate",
	Short:        "Frame change detection with structural similarity",
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		var err error
		logger, err = newLogger(logLevel)
		if err != nil {
			return err
		}
		logger = logger.With(zap.String("runID", uuid.NewString()))

		detector, err = newDetector(logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "framegate server URL; compares in-process when empty (env: FRAMEGATE_SERVER_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout when using --server (default 30s)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&maxPixels, "max-pixels", 0, "largest frame accepted in-process, in pixels (0 = default)")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(scanCmd)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// newDetector picks the remote client when a server URL is configured and
// the in-process detector otherwise
func newDetector(logger *zap.Logger) (repositories.ChangeDetector, error) {
	cfg, err := remote.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.BaseURL = serverURL
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}

	if cfg.BaseURL != "" {
		client, err := remote.NewClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using remote detector", zap.String("server", cfg.BaseURL))
		return client, nil
	}

	logger.Debug("Using in-process detector")
	return usecase.NewChangeDetectorService(
		imaging.NewDecoder(maxPixels, logger),
		imaging.NewResizer(),
		logger,
	), nil
}
