// Package server exposes the quality pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/KaramelBytes/eda-cli/internal/logger"
	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"
)

// Config holds the service limits.
type Config struct {
	Addr string
	// MaxUploadBytes caps a request body.
	MaxUploadBytes int64
	// MaxConcurrent bounds simultaneous full-table analyses.
	MaxConcurrent   int
	ShutdownTimeout time.Duration
	// Ingest is applied to every uploaded file.
	Ingest table.Options
}

// DefaultConfig mirrors the configuration defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8000",
		MaxUploadBytes:  10 << 20,
		MaxConcurrent:   4,
		ShutdownTimeout: 10 * time.Second,
		Ingest:          table.DefaultOptions(),
	}
}

// Server routes requests to the quality handlers.
type Server struct {
	cfg    Config
	log    *logger.Logger
	slots  *semaphore.Weighted
	router chi.Router
}

// New builds a server. Non-positive limits fall back to the defaults.
func New(cfg Config, log *logger.Logger) *Server {
	def := DefaultConfig()
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		cfg:    cfg,
		log:    log,
		slots:  semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(s.requestID)
	s.router.Use(s.accessLog)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Post("/quality", s.handleQuality)
	s.router.Post("/quality-from-csv", s.handleQualityFromCSV)
	s.router.Post("/quality-flags-from-csv", s.handleQualityFlagsFromCSV)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
