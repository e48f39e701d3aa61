package llamazip

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options configures the llama-zip CLI invocation. Values mirror the tool's
// flags; the zero value is completed by NewCLICompressor except for
// ModelPath, which is always required.
type Options struct {
	// Binary is the executable name or path. Default "llama-zip".
	Binary string

	// ModelPath points to the GGUF model file. Required.
	ModelPath string

	// ContextLength is the model context window (--n-ctx). Default 8192.
	ContextLength int

	// WindowOverlap is the sliding-window overlap (-w). Default "25%".
	WindowOverlap string

	// GPULayers is the layer offload count (--n-gpu-layers).
	// Default -1 (offload everything).
	GPULayers int
}

// CLICompressor runs the llama-zip CLI as a subprocess, once per call.
// It holds no state between calls and is safe for concurrent use.
type CLICompressor struct {
	opts   Options
	logger *zap.Logger
}

// NewCLICompressor validates options, fills defaults and returns a
// ready-to-use compressor. It does not check that the binary exists;
// that happens per call so a freshly installed tool is picked up.
func NewCLICompressor(opts Options, logger *zap.Logger) (*CLICompressor, error) {
	if opts.ModelPath == "" {
		return nil, fmt.Errorf("model path is required (set llamazip.model_path or LLAMAZIP_MODEL_PATH)")
	}
	if opts.Binary == "" {
		opts.Binary = "llama-zip"
	}
	if opts.ContextLength <= 0 {
		opts.ContextLength = 8192
	}
	if opts.WindowOverlap == "" {
		opts.WindowOverlap = "25%"
	}
	if opts.GPULayers == 0 {
		opts.GPULayers = -1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CLICompressor{
		opts:   opts,
		logger: logger,
	}, nil
}

// Compress runs one llama-zip invocation with text on stdin and parses the
// base64 output into raw payload bytes. Any failure wraps
// ErrCompressionFailed. No retry and no timeout beyond what ctx carries.
func (c *CLICompressor) Compress(ctx context.Context, text string) (*Result, error) {
	exe, err := exec.LookPath(c.opts.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %q not found on PATH: %v", ErrCompressionFailed, c.opts.Binary, err)
	}

	cmd := exec.CommandContext(ctx, exe, c.args()...)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s: %v (stderr: %s)",
			ErrCompressionFailed, c.opts.Binary, err, strings.TrimSpace(stderr.String()))
	}

	// llama-zip prints base64 with -f base64; anything else means the tool
	// misbehaved and counts as a compression failure.
	payload, err := base64.StdEncoding.Strict().DecodeString(strings.TrimSpace(stdout.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: unexpected output from %s: %v", ErrCompressionFailed, c.opts.Binary, err)
	}

	c.logger.Debug("llama-zip compression complete",
		zap.Int("text_length", len(text)),
		zap.Int("payload_bytes", len(payload)),
		zap.Duration("duration", time.Since(start)),
	)

	return &Result{
		BitLength: len(payload) * 8,
		Payload:   payload,
	}, nil
}

// args builds the CLI argument list.
// Shape: llama-zip <model> [options] -c, text on stdin.
func (c *CLICompressor) args() []string {
	return []string{
		c.opts.ModelPath,
		"-f", "base64",
		"--n-ctx", strconv.Itoa(c.opts.ContextLength),
		"-w", c.opts.WindowOverlap,
		"--n-gpu-layers", strconv.Itoa(c.opts.GPULayers),
		"-c",
	}
}
