// Package http provides the HTTP API for the steg daemon.
package http

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/frame"
	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/framer"
	"github.com/Raghavaggarwal06/LLM-Steganography-Tool/internal/llamazip"
)

// Server exposes the framer over HTTP.
type Server struct {
	echo   *echo.Echo
	framer *framer.Service
	logger *zap.Logger
	config *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates the HTTP server and registers routes.
func NewServer(svc *framer.Service, logger *zap.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("framer service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9090,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:   e,
		framer: svc,
		logger: logger,
		config: cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/encode", s.handleEncode)
	v1.POST("/decode", s.handleDecode)
}

// EncodeRequest is the request body for POST /api/v1/encode.
type EncodeRequest struct {
	Text string `json:"text"`
}

// EncodeResponse is the response body for POST /api/v1/encode.
type EncodeResponse struct {
	Encoded      string `json:"encoded"`
	HeaderByte   byte   `json:"header_byte"`
	BitLength    int    `json:"bit_length"`
	PayloadBytes int    `json:"payload_bytes"`
}

// DecodeRequest is the request body for POST /api/v1/decode.
type DecodeRequest struct {
	Encoded string `json:"encoded"`
}

// DecodeResponse is the response body for POST /api/v1/decode.
// HeaderByte is the stored bit length modulo 256.
type DecodeResponse struct {
	HeaderByte    byte   `json:"header_byte"`
	PayloadBase64 string `json:"payload_base64"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleEncode compresses text and returns the base64 frame.
func (s *Server) handleEncode(c echo.Context) error {
	var req EncodeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid encode request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}

	enc, err := s.framer.Encode(c.Request().Context(), req.Text)
	if err != nil {
		if errors.Is(err, llamazip.ErrCompressionFailed) {
			s.logger.Error("compression failed", zap.Error(err))
			return echo.NewHTTPError(http.StatusBadGateway, "compression failed")
		}
		if errors.Is(err, framer.ErrEmptyText) {
			return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
		}
		s.logger.Error("encode failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "encode failed")
	}

	return c.JSON(http.StatusOK, EncodeResponse{
		Encoded:      enc.Frame,
		HeaderByte:   enc.HeaderByte,
		BitLength:    enc.BitLength,
		PayloadBytes: enc.PayloadBytes,
	})
}

// handleDecode splits a base64 frame into header byte and payload.
func (s *Server) handleDecode(c echo.Context) error {
	var req DecodeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid decode request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	dec, err := s.framer.Decode(c.Request().Context(), req.Encoded)
	if err != nil {
		if errors.Is(err, frame.ErrEmptyFrame) || errors.Is(err, frame.ErrInvalidBase64) {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed frame")
		}
		s.logger.Error("decode failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "decode failed")
	}

	return c.JSON(http.StatusOK, DecodeResponse{
		HeaderByte:    dec.HeaderByte,
		PayloadBase64: base64.StdEncoding.EncodeToString(dec.Payload),
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
