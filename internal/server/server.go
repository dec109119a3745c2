// Package server exposes the spectrum renderer over HTTP: a POST of the
// options bundle returns a snapshot of the freshly built spectrum as a
// base64 encoded PNG.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/roman-kulish/spectrum-analyzer/internal/render"
	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

const (
	DefaultAddr = ":8080"

	// Maximum accepted request body
	maxBodySize = 1 << 20

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// ImageResponse is the body of a successful options request
type ImageResponse struct {
	Image string `json:"image"` // Base64 encoded PNG
}

// ErrorResponse is the body of a failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// WithLogger sets the logger for the server
func WithLogger(logger *slog.Logger) func(s *Server) {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAddr sets the listen address of the server
func WithAddr(addr string) func(s *Server) {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithChartConfig sets the bar chart configuration used for snapshots
func WithChartConfig(config render.ChartConfig) func(s *Server) {
	return func(s *Server) {
		s.chart = config
	}
}

// Server renders spectrum snapshots on request. It keeps no state between
// requests.
type Server struct {
	addr   string
	chart  render.ChartConfig
	logger *slog.Logger
}

// New creates a new Server with a discard logger
func New(options ...func(s *Server)) *Server {
	s := Server{
		addr:   DefaultAddr,
		chart:  render.ChartConfig{ShowStatus: true},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/options", s.handleOptions)
	return mux
}

// Run serves requests until the context is cancelled, then shuts the server
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	opts, err := decodeOptions(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	img, err := s.snapshot(opts)
	if err != nil {
		var cfgErr *spectrum.ConfigError
		if errors.As(err, &cfgErr) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}

		s.logger.Error("failed to render snapshot", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, errors.New("rendering failed"))
		return
	}

	s.logger.Info("snapshot rendered",
		slog.Int("bands", opts.NumBands),
		slog.String("size", humanize.Bytes(uint64(len(img)))),
		slog.Duration("took", time.Since(start)))

	s.writeJSON(w, http.StatusOK, ImageResponse{
		Image: base64.StdEncoding.EncodeToString(img),
	})
}

// decodeOptions reads the options bundle; missing keys and an empty body
// keep the defaults.
func decodeOptions(body io.Reader) (spectrum.Options, error) {
	opts := spectrum.DefaultOptions()

	if err := json.NewDecoder(body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return spectrum.Options{}, fmt.Errorf("decoding options: %w", err)
	}
	return opts, nil
}

func (s *Server) snapshot(opts spectrum.Options) ([]byte, error) {
	model, err := spectrum.New(opts, spectrum.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	img, err := render.NewBarChart(model.Options(), s.chart).Render(model.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}

	var buf bytes.Buffer
	if err = render.EncodePNG(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed", slog.Int("status", status), slog.String("error", err.Error()))
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", slog.Any("error", err))
	}
}
