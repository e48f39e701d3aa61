package frame

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Run("frame is header plus payload", func(t *testing.T) {
		payload := []byte{0x41, 0x42, 0x43}

		encoded := Encode(24, payload)

		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		assert.Equal(t, []byte{24, 0x41, 0x42, 0x43}, raw)
		assert.Len(t, raw, 1+len(payload))
	})

	t.Run("empty payload yields single header byte", func(t *testing.T) {
		encoded := Encode(7, nil)

		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		assert.Equal(t, []byte{7}, raw)
	})

	t.Run("bit length wraps modulo 256", func(t *testing.T) {
		// Documented lossy behavior: 256 wraps to 0, never an error.
		header, _, err := Decode(Encode(256, []byte{0xaa}))
		require.NoError(t, err)
		assert.Equal(t, byte(0), header)

		header, _, err = Decode(Encode(300, []byte{0xaa}))
		require.NoError(t, err)
		assert.Equal(t, byte(300-256), header)
	})
}

func TestDecode(t *testing.T) {
	t.Run("round trip preserves payload and residue", func(t *testing.T) {
		payload := []byte{0x00, 0xff, 0x10, 0x20}

		header, got, err := Decode(Encode(32, payload))
		require.NoError(t, err)
		assert.Equal(t, byte(32), header)
		assert.Equal(t, payload, got)
	})

	t.Run("single byte frame has empty payload", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte{42})

		header, payload, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, byte(42), header)
		assert.Empty(t, payload)
	})

	t.Run("empty frame fails", func(t *testing.T) {
		_, _, err := Decode("")
		assert.ErrorIs(t, err, ErrEmptyFrame)
	})

	t.Run("invalid base64 fails", func(t *testing.T) {
		_, _, err := Decode("not base64!!!")
		assert.ErrorIs(t, err, ErrInvalidBase64)
	})

	t.Run("decode is idempotent", func(t *testing.T) {
		encoded := Encode(24, []byte("ABC"))

		h1, p1, err1 := Decode(encoded)
		h2, p2, err2 := Decode(encoded)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, h1, h2)
		assert.Equal(t, p1, p2)
	})
}
