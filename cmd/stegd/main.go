// Stegd hosts the text-to-frame encoder over HTTP.
//
// The daemon wraps the external llama-zip compressor: POST /api/v1/encode
// compresses text and returns a base64 frame with a one-byte bit-length
// header; POST /api/v1/decode is the inverse.
//
// Configuration is loaded from a YAML file and environment variables.
//
// Usage:
//
//	# Start with defaults (model path is required)
//	LLAMAZIP_MODEL_PATH=/models/q4km.gguf stegd
//
//	# With a config file
//	stegd -config /etc/stegd/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/config"
	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/framer"
	stegdhttp "github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/http"
	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/llamazip"
	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/logging"
	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
)

func versionString() string {
	return fmt.Sprintf("stegd %s (%s)", version, gitCommit)
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			fmt.Println(versionString())
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\nusage: stegd [-config file] [version]\n", args[0])
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// run starts the daemon and blocks until ctx is cancelled.
//
//  1. Loads and validates configuration
//  2. Initializes telemetry, then the logger (with the log bridge)
//  3. Builds the llama-zip compressor and framer service
//  4. Starts the HTTP server
//  5. Performs graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tel, err := telemetry.New(ctx, cfg.Observability, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger, err := logging.New(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logging.OutputConfig{
			Stdout: true,
			OTEL:   cfg.Log.OTEL,
		},
	}, tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger) // Best-effort sync on shutdown
	}()

	logger.Info("starting stegd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("model_path", cfg.LlamaZip.ModelPath),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()))

	if tel.Degraded() {
		logger.Warn("telemetry degraded, some exporters are disabled")
	}

	compressor, err := llamazip.NewCLICompressor(llamazip.Options{
		Binary:        cfg.LlamaZip.Binary,
		ModelPath:     cfg.LlamaZip.ModelPath,
		ContextLength: cfg.LlamaZip.ContextLength,
		WindowOverlap: cfg.LlamaZip.WindowOverlap,
		GPULayers:     cfg.LlamaZip.GPULayers,
	}, logger.Named("llamazip"))
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}

	svc, err := framer.NewService(compressor, logger.Named("framer"))
	if err != nil {
		return fmt.Errorf("failed to create framer service: %w", err)
	}

	srv, err := stegdhttp.NewServer(svc, logger.Named("http"), &stegdhttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	return errors.Join(errs...)
}
