// Package llamazip invokes the external llama-zip compressor.
//
// llama-zip performs LLM-based context-window compression on a GPU-backed
// host. This package treats it as an opaque capability: text in, compressed
// bytes plus a bit-length count out. All invocation failures collapse into
// the single ErrCompressionFailed kind; callers decide whether to retry.
package llamazip

import (
	"context"
	"errors"
)

// Result is the output of one compression call.
type Result struct {
	// BitLength is the length of Payload in bits.
	BitLength int

	// Payload holds the raw compressed bytes.
	Payload []byte
}

// Compressor is the external compression capability.
//
// Implementations must be safe for concurrent use; each call is independent
// and stateless from the caller's perspective.
type Compressor interface {
	// Compress compresses text and returns the raw compressed bytes with
	// their bit length. Called exactly once per frame; may block for an
	// extended duration (model load, inference).
	Compress(ctx context.Context, text string) (*Result, error)
}

// ErrCompressionFailed is the single failure kind for the external
// capability. Tool invocation errors, unavailable resources and I/O
// failures all wrap it with no sub-classification.
var ErrCompressionFailed = errors.New("compression failed")
