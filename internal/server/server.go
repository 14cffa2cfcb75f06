// package server contains middleware & handlers for the local OAuth callback server
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers served by the callback server.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// CallbackServer runs a short-lived HTTP server that waits for a single OAuth redirect.
type CallbackServer struct {
	handler  *OAuthHandler
	logger   *log.Logger
	srv      *http.Server
	listener net.Listener
	errs     chan error
}

// NewCallbackServer routes handler through a [BasicRouter] with request logging.
func NewCallbackServer(handler *OAuthHandler, logger *log.Logger) *CallbackServer {
	router := NewBasicRouter()
	if logger != nil {
		router.Use(RequestLogger(logger))
	}
	router.Handler(handler)

	return &CallbackServer{
		handler: handler,
		logger:  logger,
		srv:     &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		errs:    make(chan error, 1),
	}
}

// Start listens on addr and serves in the background. The listener is bound before Start returns.
func (s *CallbackServer) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()

	if s.logger != nil {
		s.logger.Info("callback server listening", "addr", ln.Addr().String())
	}
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *CallbackServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Wait blocks until the callback completes, the server fails, timeout elapses or ctx is done,
// then shuts the server down.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (*OAuthResult, error) {
	defer s.shutdown()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-s.handler.Result():
		if err := result.Error(); err != nil {
			return nil, fmt.Errorf("authorization failed: %w", err)
		}
		if result.Token == nil {
			return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
		}
		return &result, nil
	case err := <-s.errs:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CallbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil && s.logger != nil {
		s.logger.Warn("error shutting down server", "error", err)
	}
}

// RequestLogger logs method, path, status and duration of every request at debug level.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("callback request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
