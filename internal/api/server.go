package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"cutmark/internal/config"
	"cutmark/internal/cuts"
	"cutmark/internal/history"
	"cutmark/internal/logging"
	"cutmark/internal/media/frames"
	"cutmark/internal/metrics"
)

// HistoryStore is the subset of history.Store the server uses.
type HistoryStore interface {
	Record(ctx context.Context, a history.Analysis) error
	List(ctx context.Context, limit int) ([]history.Analysis, error)
	Get(ctx context.Context, id string) (*history.Analysis, error)
}

// SourceOpener opens the frame source for an uploaded file.
type SourceOpener func(ctx context.Context, path string) (frames.Source, error)

// Option customizes a Server.
type Option func(*Server)

// WithHistory records finished analyses into store.
func WithHistory(store HistoryStore) Option {
	return func(s *Server) {
		s.history = store
	}
}

// WithSourceOpener replaces the ffmpeg-backed frame source.
func WithSourceOpener(open SourceOpener) Option {
	return func(s *Server) {
		if open != nil {
			s.open = open
		}
	}
}

// Server is the HTTP API.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	scanner *cuts.Scanner
	history HistoryStore
	open    SourceOpener
	origins map[string]struct{}
	handler http.Handler

	listener net.Listener
	server   *http.Server
}

// NewServer wires routes and middleware for cfg.
func NewServer(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("api server: config is required")
	}
	logger = logging.NewComponentLogger(logger, "api")
	bin := frames.Binaries{FFmpeg: cfg.FFmpeg.FFmpegBinary, FFprobe: cfg.FFmpeg.FFprobeBinary}
	srv := &Server{
		cfg:     cfg,
		logger:  logger,
		scanner: cuts.NewScanner(cuts.OptionsFromConfig(cfg), logger),
		open: func(ctx context.Context, path string) (frames.Source, error) {
			return frames.Open(ctx, bin, path)
		},
		origins: make(map[string]struct{}, len(cfg.Server.AllowedOrigins)),
	}
	for _, origin := range cfg.Server.AllowedOrigins {
		srv.origins[strings.TrimRight(strings.TrimSpace(origin), "/")] = struct{}{}
	}
	for _, opt := range opts {
		opt(srv)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/health", srv.route("health", srv.handleHealth))
	mux.Handle("POST /api/detect-cuts", srv.route("detect-cuts", srv.handleDetectCuts))
	mux.Handle("GET /api/analyses", srv.route("analyses", srv.handleAnalyses))
	mux.Handle("GET /api/analyses/{id}", srv.route("analysis", srv.handleAnalysis))
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", srv.route("metrics", metrics.Handler().ServeHTTP))
	}

	srv.handler = srv.requestIDMiddleware(srv.corsMiddleware(mux))
	// Uploads and scans can take minutes, so only header reads are bounded.
	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the fully wrapped handler for use with httptest.
func (s *Server) Handler() http.Handler { return s.handler }

// Start listens on the configured bind address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.Bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.Int("allowed_origins", len(s.origins)),
		logging.Bool("history", s.history != nil),
	)
	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Warn("api shutdown incomplete", logging.Error(err))
	}
}
