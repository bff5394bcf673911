package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thermalnetwork/internal/config"
	"github.com/ajitpratap0/thermalnetwork/internal/engine"
	"github.com/ajitpratap0/thermalnetwork/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:     "thermalnetwork",
		Short:   "Size the ground loop of a fifth-generation district thermal network",
		Long:    "thermalnetwork resolves the loop order of a district GeoJSON, cascades building loads to the ground, and sizes every ground heat exchanger, the trunk pipe and the central pump.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		sizeCmd(),
		loopCmd(),
		pipeCmd(),
		validateCmd(),
		mcpCmd(),
		serveCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger once. Logs always go to stderr so
// stdout stays free for command output and MCP traffic.
func newLogger() *slog.Logger {
	if logger != nil {
		return logger
	}
	if cfg == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		return logger
	}
	logger, logCloser = logging.New(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

func newEngine(logger *slog.Logger) (engine.Engine, error) {
	switch cfg.Engine.Mode {
	case config.EngineModeHTTP:
		return engine.NewHTTPEngine(cfg.Engine.BaseURL, cfg.Engine.Timeout, logger), nil
	case config.EngineModeCommand:
		return engine.NewCommandEngine(cfg.Engine.Command, cfg.Engine.Args, cfg.Engine.Timeout, logger), nil
	}
	return nil, fmt.Errorf("unknown engine mode %q", cfg.Engine.Mode)
}
