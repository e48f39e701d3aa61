package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/frame"
)

// decodeCmd splits a base64 frame locally; no server required
var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode a base64 frame into header byte and payload",
	Long: `Decode a base64 frame locally, without contacting the server.

The raw payload bytes are written to stdout; the header byte (the payload
bit length modulo 256 - lossy above 255) is reported on stderr.

Examples:
  # Decode a stored frame
  steg decode frame.txt > payload.bin

  # Decode from stdin
  steg encode report.txt | steg decode -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

// runDecode handles the decode command
func runDecode(cmd *cobra.Command, args []string) error {
	content, err := readInput(args)
	if err != nil {
		return err
	}

	header, payload, err := frame.Decode(strings.TrimSpace(string(content)))
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "header byte: %d (bit length mod 256), payload: %d bytes\n",
		header, len(payload))

	if _, err := cmd.OutOrStdout().Write(payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}
