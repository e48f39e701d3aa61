package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// encodeJSON controls whether encode prints the full JSON response.
var encodeJSON bool

// encodeCmd compresses text into a base64 frame via the daemon
var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode text into a base64 frame",
	Long: `Encode text into a base64 frame using the stegd server.

The server compresses the text with llama-zip and prepends a one-byte
header holding the payload bit length modulo 256.

Examples:
  # Encode a file
  steg encode report.txt

  # Encode from stdin
  echo "attack at dawn" | steg encode -

  # Print the full response as JSON
  steg encode --json report.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().BoolVar(&encodeJSON, "json", false, "print the full JSON response")
}

// EncodeRequest matches internal/http/server.go EncodeRequest
type EncodeRequest struct {
	Text string `json:"text"`
}

// EncodeResponse matches internal/http/server.go EncodeResponse
type EncodeResponse struct {
	Encoded      string `json:"encoded"`
	HeaderByte   byte   `json:"header_byte"`
	BitLength    int    `json:"bit_length"`
	PayloadBytes int    `json:"payload_bytes"`
}

// runEncode handles the encode command
func runEncode(cmd *cobra.Command, args []string) error {
	content, err := readInput(args)
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return fmt.Errorf("no text to encode")
	}

	reqBody, err := json.Marshal(EncodeRequest{Text: string(content)})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	// Compression can block on model load and inference; give it room.
	client := &http.Client{Timeout: 10 * time.Minute}

	resp, err := client.Post(serverURL+"/api/v1/encode", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("encode failed (%d): %s", resp.StatusCode, string(body))
	}

	var encodeResp EncodeResponse
	if err := json.Unmarshal(body, &encodeResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if encodeJSON {
		out, err := json.MarshalIndent(encodeResp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), encodeResp.Encoded)
	return nil
}
