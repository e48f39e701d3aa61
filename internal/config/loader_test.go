package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithFile(t *testing.T) {
	t.Run("defaults apply without file", func(t *testing.T) {
		t.Setenv("LLAMAZIP_MODEL_PATH", "/models/q4km.gguf")

		cfg, err := LoadWithFile("")
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
		assert.Equal(t, "llama-zip", cfg.LlamaZip.Binary)
		assert.Equal(t, 8192, cfg.LlamaZip.ContextLength)
		assert.Equal(t, "25%", cfg.LlamaZip.WindowOverlap)
		assert.Equal(t, -1, cfg.LlamaZip.GPULayers)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "stegd", cfg.Observability.ServiceName)
		assert.False(t, cfg.Observability.Enabled)
	})

	t.Run("yaml file values load", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  port: 8080
  shutdown_timeout: 5s
llamazip:
  model_path: /models/q4km.gguf
  context_length: 4096
  window_overlap: 10%
log:
  level: debug
  format: console
`)

		cfg, err := LoadWithFile(path)
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout.Duration())
		assert.Equal(t, "/models/q4km.gguf", cfg.LlamaZip.ModelPath)
		assert.Equal(t, 4096, cfg.LlamaZip.ContextLength)
		assert.Equal(t, "10%", cfg.LlamaZip.WindowOverlap)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
	})

	t.Run("env vars override file", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  port: 8080
llamazip:
  model_path: /models/old.gguf
`)
		t.Setenv("SERVER_PORT", "7070")
		t.Setenv("LLAMAZIP_MODEL_PATH", "/models/new.gguf")

		cfg, err := LoadWithFile(path)
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "/models/new.gguf", cfg.LlamaZip.ModelPath)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		t.Setenv("LLAMAZIP_MODEL_PATH", "/models/q4km.gguf")

		cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
	})

	t.Run("missing model path fails validation", func(t *testing.T) {
		_, err := LoadWithFile("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model path")
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := writeConfigFile(t, "server: [not a map")

		_, err := LoadWithFile(path)
		assert.Error(t, err)
	})
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "server.port", envTransform("SERVER_PORT"))
	assert.Equal(t, "server.shutdown_timeout", envTransform("SERVER_SHUTDOWN_TIMEOUT"))
	assert.Equal(t, "llamazip.model_path", envTransform("LLAMAZIP_MODEL_PATH"))
	assert.Equal(t, "observability.service_name", envTransform("OBSERVABILITY_SERVICE_NAME"))
	assert.Equal(t, "home", envTransform("HOME"))
}
