// Package framer turns text into base64 frames via the external
// llama-zip compressor.
//
// Encode is the single remote function this repository exposes: compress
// the text, prepend the one-byte bit-length header, base64 the result.
// Decode is the inverse, provided for completeness and testability.
package framer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/frame"
	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/llamazip"
)

const tracerName = "github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/framer"
const meterName = "framer"

// ErrEmptyText indicates an encode request with no text.
var ErrEmptyText = errors.New("text cannot be empty")

// Encoded is the result of one encode operation.
type Encoded struct {
	// Frame is the base64 text of header||payload.
	Frame string

	// HeaderByte is the stored bit length modulo 256.
	HeaderByte byte

	// BitLength is the true payload bit length as reported by the
	// compressor. Not recoverable from Frame above 255.
	BitLength int

	// PayloadBytes is the compressed payload size.
	PayloadBytes int
}

// Decoded is the result of one decode operation. HeaderByte carries only
// the modulo-256 residue of the original bit length.
type Decoded struct {
	HeaderByte byte
	Payload    []byte
}

// Service frames compressed text. It holds no shared mutable state and is
// safe for concurrent use; each call invokes the compressor exactly once.
type Service struct {
	compressor llamazip.Compressor
	logger     *zap.Logger

	tracer trace.Tracer
	meter  metric.Meter

	opsCounter  metric.Int64Counter
	opsDuration metric.Float64Histogram
	payloadSize metric.Int64Histogram
	opsErrors   metric.Int64Counter
}

// NewService creates a framer service around a compression capability.
func NewService(compressor llamazip.Compressor, logger *zap.Logger) (*Service, error) {
	if compressor == nil {
		return nil, fmt.Errorf("compressor cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		compressor: compressor,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		meter:      otel.Meter(meterName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return s, nil
}

// Encode compresses text through the external capability and returns the
// base64 frame. The compressor is called exactly once; its failure
// propagates wrapped with no retry and no partial result.
func (s *Service) Encode(ctx context.Context, text string) (*Encoded, error) {
	ctx, span := s.tracer.Start(ctx, "framer.encode",
		trace.WithAttributes(attribute.Int("text_length", len(text))),
	)
	defer span.End()

	if text == "" {
		span.RecordError(ErrEmptyText)
		s.opsErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "encode"),
		))
		return nil, ErrEmptyText
	}

	start := time.Now()
	res, err := s.compressor.Compress(ctx, text)
	if err != nil {
		span.RecordError(err)
		s.opsErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "encode"),
		))
		return nil, fmt.Errorf("compress text: %w", err)
	}

	encoded := &Encoded{
		Frame:        frame.Encode(res.BitLength, res.Payload),
		HeaderByte:   byte(res.BitLength),
		BitLength:    res.BitLength,
		PayloadBytes: len(res.Payload),
	}

	duration := time.Since(start)
	s.opsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "encode"),
	))
	s.opsDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", "encode"),
	))
	s.payloadSize.Record(ctx, int64(encoded.PayloadBytes))

	span.SetAttributes(
		attribute.Int("bit_length", encoded.BitLength),
		attribute.Int("payload_bytes", encoded.PayloadBytes),
		attribute.Int("frame_length", len(encoded.Frame)),
	)

	s.logger.Debug("encoded frame",
		zap.Int("text_length", len(text)),
		zap.Int("payload_bytes", encoded.PayloadBytes),
		zap.Uint8("header_byte", encoded.HeaderByte),
		zap.Duration("duration", duration),
	)

	return encoded, nil
}

// Decode splits a base64 frame into header byte and payload. Pure and
// deterministic; repeated calls on the same input yield the same result.
func (s *Service) Decode(ctx context.Context, encoded string) (*Decoded, error) {
	ctx, span := s.tracer.Start(ctx, "framer.decode",
		trace.WithAttributes(attribute.Int("frame_length", len(encoded))),
	)
	defer span.End()

	header, payload, err := frame.Decode(encoded)
	if err != nil {
		span.RecordError(err)
		s.opsErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "decode"),
		))
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	s.opsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "decode"),
	))

	return &Decoded{
		HeaderByte: header,
		Payload:    payload,
	}, nil
}

// initMetrics registers the service instruments.
func (s *Service) initMetrics() error {
	var err error

	s.opsCounter, err = s.meter.Int64Counter(
		"framer.operations_total",
		metric.WithDescription("Total number of frame operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create operations counter: %w", err)
	}

	s.opsDuration, err = s.meter.Float64Histogram(
		"framer.duration_seconds",
		metric.WithDescription("Time spent on frame operations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1.0, 5.0, 15.0, 60.0, 300.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create duration histogram: %w", err)
	}

	s.payloadSize, err = s.meter.Int64Histogram(
		"framer.payload_bytes",
		metric.WithDescription("Compressed payload sizes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(8, 32, 128, 256, 1024, 4096, 16384),
	)
	if err != nil {
		return fmt.Errorf("failed to create payload size histogram: %w", err)
	}

	s.opsErrors, err = s.meter.Int64Counter(
		"framer.errors_total",
		metric.WithDescription("Total number of frame operation errors"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create errors counter: %w", err)
	}

	return nil
}
