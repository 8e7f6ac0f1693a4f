// Package server runs the admin HTTP endpoint of the long-running cardvault
// process: Prometheus metrics, health probes and build information.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"mercator-hq/cardvault/pkg/telemetry/health"
)

// Default timeouts of the admin server.
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger.With("component", "server") }
}

// Server is the admin HTTP server.
type Server struct {
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	isRunning  bool
}

// Routes describes what the admin mux serves. A nil Metrics or Checker
// leaves the matching endpoints out.
type Routes struct {
	MetricsPath string
	Metrics     http.Handler
	Checker     *health.Checker
	Version     health.VersionInfo
}

// NewMux builds the admin routes.
func NewMux(r Routes) *http.ServeMux {
	mux := http.NewServeMux()
	if r.Metrics != nil && r.MetricsPath != "" {
		mux.Handle(r.MetricsPath, r.Metrics)
	}
	if r.Checker != nil {
		health.Register(mux, r.Checker, r.Version)
	} else {
		mux.HandleFunc("/version", health.VersionHandler(r.Version))
	}
	return mux
}

// New creates an admin server listening on addr.
func New(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		addr:            addr,
		handler:         handler,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      recoveryMiddleware(loggingMiddleware(s.handler)),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	s.isRunning = true
	srv := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting admin server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server. Calling it on a server that
// is not running is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	s.isRunning = false
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("admin server stopped")
	return nil
}

// Addr returns the bound address once the server is running, or an empty
// string.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil || !s.isRunning {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
