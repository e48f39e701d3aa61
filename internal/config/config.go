// Package config provides configuration loading for the steg daemon.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config is the full daemon configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	LlamaZip      LlamaZipConfig      `koanf:"llamazip"`
	Log           LogConfig           `koanf:"log"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LlamaZipConfig holds settings for the external llama-zip compressor.
type LlamaZipConfig struct {
	Binary        string `koanf:"binary"`
	ModelPath     string `koanf:"model_path"`
	ContextLength int    `koanf:"context_length"`
	WindowOverlap string `koanf:"window_overlap"`
	GPULayers     int    `koanf:"gpu_layers"`
}

// LogConfig holds logging settings. OTEL additionally bridges log
// records to the telemetry pipeline when observability is enabled.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	OTEL   bool   `koanf:"otel"`
}

// ObservabilityConfig holds OTEL export settings.
type ObservabilityConfig struct {
	Enabled        bool     `koanf:"enabled"`
	ServiceName    string   `koanf:"service_name"`
	ServiceVersion string   `koanf:"service_version"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // "grpc" (default) or "http/protobuf"
	Insecure       bool     `koanf:"insecure"`
	SamplingRate   float64  `koanf:"sampling_rate"`
	MetricsEnabled bool     `koanf:"metrics_enabled"`
	ExportInterval Duration `koanf:"export_interval"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9090
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	// llama-zip defaults match the upstream CLI recommendation for
	// Q4_K_M models: 8K context, 25% window overlap, full GPU offload.
	if cfg.LlamaZip.Binary == "" {
		cfg.LlamaZip.Binary = "llama-zip"
	}
	if cfg.LlamaZip.ContextLength == 0 {
		cfg.LlamaZip.ContextLength = 8192
	}
	if cfg.LlamaZip.WindowOverlap == "" {
		cfg.LlamaZip.WindowOverlap = "25%"
	}
	if cfg.LlamaZip.GPULayers == 0 {
		cfg.LlamaZip.GPULayers = -1
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "stegd"
	}
	if cfg.Observability.ServiceVersion == "" {
		cfg.Observability.ServiceVersion = "0.1.0"
	}
	if cfg.Observability.Endpoint == "" {
		cfg.Observability.Endpoint = "localhost:4317"
	}
	if cfg.Observability.SamplingRate == 0 {
		cfg.Observability.SamplingRate = 1.0
	}
	if cfg.Observability.ExportInterval == 0 {
		cfg.Observability.ExportInterval = Duration(15 * time.Second)
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.LlamaZip.ModelPath == "" {
		return errors.New("llamazip model path is required (llamazip.model_path or LLAMAZIP_MODEL_PATH)")
	}
	if c.LlamaZip.ContextLength < 0 {
		return fmt.Errorf("llamazip context length cannot be negative, got %d", c.LlamaZip.ContextLength)
	}
	if err := validateWindowOverlap(c.LlamaZip.WindowOverlap); err != nil {
		return err
	}

	var level zapcore.Level
	if err := level.Set(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got %q", c.Log.Format)
	}

	if c.Observability.Enabled {
		if c.Observability.Endpoint == "" {
			return errors.New("observability endpoint required when telemetry is enabled")
		}
		if c.Observability.SamplingRate < 0 || c.Observability.SamplingRate > 1 {
			return fmt.Errorf("observability sampling rate must be 0-1, got %f", c.Observability.SamplingRate)
		}
	}

	return nil
}

// validateWindowOverlap accepts llama-zip's -w formats: a token count
// ("128") or a percentage of the context window ("25%").
func validateWindowOverlap(overlap string) error {
	v := strings.TrimSuffix(overlap, "%")
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid window overlap %q: expected a token count or percentage", overlap)
	}
	if n < 0 {
		return fmt.Errorf("window overlap cannot be negative: %q", overlap)
	}
	if strings.HasSuffix(overlap, "%") && n > 100 {
		return fmt.Errorf("window overlap percentage cannot exceed 100: %q", overlap)
	}
	return nil
}
