package llamazip

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCLICompressor(t *testing.T) {
	t.Run("requires model path", func(t *testing.T) {
		_, err := NewCLICompressor(Options{}, zap.NewNop())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "model path")
	})

	t.Run("fills defaults", func(t *testing.T) {
		c, err := NewCLICompressor(Options{ModelPath: "/models/q4km.gguf"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "llama-zip", c.opts.Binary)
		assert.Equal(t, 8192, c.opts.ContextLength)
		assert.Equal(t, "25%", c.opts.WindowOverlap)
		assert.Equal(t, -1, c.opts.GPULayers)
	})

	t.Run("keeps explicit options", func(t *testing.T) {
		c, err := NewCLICompressor(Options{
			ModelPath:     "/models/q4km.gguf",
			Binary:        "/opt/bin/llama-zip",
			ContextLength: 4096,
			WindowOverlap: "10%",
			GPULayers:     32,
		}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "/opt/bin/llama-zip", c.opts.Binary)
		assert.Equal(t, 4096, c.opts.ContextLength)
		assert.Equal(t, "10%", c.opts.WindowOverlap)
		assert.Equal(t, 32, c.opts.GPULayers)
	})
}

func TestArgs(t *testing.T) {
	c, err := NewCLICompressor(Options{ModelPath: "/models/q4km.gguf"}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/models/q4km.gguf",
		"-f", "base64",
		"--n-ctx", "8192",
		"-w", "25%",
		"--n-gpu-layers", "-1",
		"-c",
	}, c.args())
}

// fakeBinary writes an executable shell script standing in for llama-zip.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "llama-zip")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755)
	require.NoError(t, err)
	return path
}

func TestCompress(t *testing.T) {
	t.Run("parses base64 output", func(t *testing.T) {
		payload := []byte{0xde, 0xad, 0xbe, 0xef}
		bin := fakeBinary(t, "cat >/dev/null; printf '%s' '"+base64.StdEncoding.EncodeToString(payload)+"'")

		c, err := NewCLICompressor(Options{ModelPath: "/models/q4km.gguf", Binary: bin}, zap.NewNop())
		require.NoError(t, err)

		res, err := c.Compress(context.Background(), "some intelligence text")
		require.NoError(t, err)
		assert.Equal(t, payload, res.Payload)
		assert.Equal(t, len(payload)*8, res.BitLength)
	})

	t.Run("tolerates trailing newline", func(t *testing.T) {
		bin := fakeBinary(t, "cat >/dev/null; echo 'QUJD'")

		c, err := NewCLICompressor(Options{ModelPath: "/models/q4km.gguf", Binary: bin}, zap.NewNop())
		require.NoError(t, err)

		res, err := c.Compress(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("ABC"), res.Payload)
		assert.Equal(t, 24, res.BitLength)
	})

	t.Run("missing binary fails", func(t *testing.T) {
		c, err := NewCLICompressor(Options{
			ModelPath: "/models/q4km.gguf",
			Binary:    filepath.Join(t.TempDir(), "no-such-llama-zip"),
		}, zap.NewNop())
		require.NoError(t, err)

		_, err = c.Compress(context.Background(), "text")
		assert.ErrorIs(t, err, ErrCompressionFailed)
	})

	t.Run("non-zero exit fails with stderr detail", func(t *testing.T) {
		bin := fakeBinary(t, "cat >/dev/null; echo 'model load failed' >&2; exit 3")

		c, err := NewCLICompressor(Options{ModelPath: "/models/q4km.gguf", Binary: bin}, zap.NewNop())
		require.NoError(t, err)

		_, err = c.Compress(context.Background(), "text")
		assert.ErrorIs(t, err, ErrCompressionFailed)
		assert.Contains(t, err.Error(), "model load failed")
	})

	t.Run("undecodable output fails", func(t *testing.T) {
		bin := fakeBinary(t, "cat >/dev/null; echo 'this is not base64!!!'")

		c, err := NewCLICompressor(Options{ModelPath: "/models/q4km.gguf", Binary: bin}, zap.NewNop())
		require.NoError(t, err)

		_, err = c.Compress(context.Background(), "text")
		assert.ErrorIs(t, err, ErrCompressionFailed)
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		bin := fakeBinary(t, "sleep 10")

		c, err := NewCLICompressor(Options{ModelPath: "/models/q4km.gguf", Binary: bin}, zap.NewNop())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = c.Compress(ctx, "text")
		assert.ErrorIs(t, err, ErrCompressionFailed)
	})
}
