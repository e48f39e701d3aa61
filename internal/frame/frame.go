// Package frame implements the header-prefixed binary frame format.
//
// A frame is a single header byte followed by the compressed payload:
//
//	frame       = header_byte || payload_bytes
//	header_byte = bit length of the payload, modulo 256
//
// Frames travel as standard base64 text. The header is lossy for payloads
// whose true bit length exceeds 255; decoders only ever see the modulo-256
// residue. That wraparound is documented behavior, not an error.
package frame

import (
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrEmptyFrame indicates a frame with no header byte.
	ErrEmptyFrame = errors.New("frame is empty")

	// ErrInvalidBase64 indicates frame text that is not valid base64.
	ErrInvalidBase64 = errors.New("frame is not valid base64")
)

// Encode builds a frame from a bit length and payload and returns its
// base64 encoding. The header byte holds bitLength mod 256; values above
// 255 wrap silently. The frame is always 1+len(payload) bytes before
// base64 expansion.
func Encode(bitLength int, payload []byte) string {
	buf := make([]byte, 1+len(payload))
	buf[0] = byte(bitLength) // truncates to bitLength mod 256
	copy(buf[1:], payload)
	return base64.StdEncoding.EncodeToString(buf)
}

// Decode parses base64 frame text and splits it into header byte and
// payload. The returned header is the stored modulo-256 residue; the true
// bit length is not recoverable. Returns ErrEmptyFrame when the decoded
// frame has no header byte and ErrInvalidBase64 on malformed input.
func Decode(encoded string) (byte, []byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	if len(raw) == 0 {
		return 0, nil, ErrEmptyFrame
	}
	return raw[0], raw[1:], nil
}
