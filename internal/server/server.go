// package server contains routing, middleware, templates and the HTTP server for the download front end
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotweb/internal/shared"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, panic recovery and security headers.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own their route patterns.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// ShutdownTimeout bounds graceful shutdown. Open download streams are cut when it elapses.
const ShutdownTimeout = 10 * time.Second

// Server serves a handler over HTTP/1.1 and cleartext HTTP/2.
//
// No write timeout is set because download streams stay open for the whole run.
type Server struct {
	srv    *http.Server
	logger *log.Logger
}

// New creates a Server listening on addr.
func New(addr string, handler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h2c.NewHandler(handler, &http2.Server{}),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("server forced to shutdown", "err", err)
		s.srv.Close()
	}

	if err := <-errc; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
