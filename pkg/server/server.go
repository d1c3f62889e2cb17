// Package server exposes a metadata.Client over HTTP.
//
// Every operation of the client is served as a POST under
// /servers/{server}/users/{userId}/ using the bodies of package api.
// When a token manager is configured, callers must present a bearer token
// whose subject is the user in the path.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ajitpratap0/metactx/pkg/api"
	"github.com/ajitpratap0/metactx/pkg/auth"
	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/logger"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/observability"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Option customises a Server.
type Option func(*Server)

// WithAuth requires bearer tokens verified by m.
func WithAuth(m *auth.Manager) Option {
	return func(s *Server) { s.auth = m }
}

// WithMetrics records served calls in the collector and exposes gatherer
// on /metrics.
func WithMetrics(c *metrics.Collector, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = c
		s.gatherer = gatherer
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// Server serves one metadata.Client.
type Server struct {
	client  metadata.Client
	cfg     config.ServerConfig
	name    string
	version string

	auth     *auth.Manager
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	monitor  *ResourceMonitor
	logger   *zap.Logger

	handler http.Handler
}

// New creates a server for client.
func New(client metadata.Client, cfg config.ServerConfig, logger *zap.Logger, opts ...Option) (*Server, error) {
	if client == nil {
		return nil, omerrors.New(omerrors.ErrorTypeConfig, "a metadata client is required")
	}
	if cfg.Name == "" {
		return nil, omerrors.New(omerrors.ErrorTypeConfig, "server.name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		client:   client,
		cfg:      cfg,
		name:     cfg.Name,
		version:  "dev",
		metrics:  metrics.Default(),
		gatherer: prometheus.DefaultGatherer,
		monitor:  NewResourceMonitor(),
		logger:   logger.With(zap.String("component", "server"), zap.String("server", cfg.Name)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	operations := http.NewServeMux()
	s.register(operations)

	var ops http.Handler = operations
	if s.auth != nil {
		ops = s.auth.Middleware(ops)
	}

	mux := http.NewServeMux()
	mux.Handle("/servers/", ops)
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return observability.TracingMiddleware(s.name)(mux)
}

// ListenAndServe serves on the configured address until ctx ends, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to listen on "+s.cfg.Address)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Metadata server listening", zap.String("address", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "server failed")
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down metadata server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeTimeout, "graceful shutdown failed")
	}
	return nil
}

// operation adapts a typed handler: it decodes the body, checks the server
// name and caller, runs fn and renders the result or the error.
func operation[Req any](s *Server, name string, fn func(ctx context.Context, r *http.Request, userID string, req *Req) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer(name)
		userID := r.PathValue("userId")

		requestID := r.Header.Get(logger.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := logger.ContextWithRequestID(logger.ContextWithUser(r.Context(), userID), requestID)
		w.Header().Set(logger.RequestIDHeader, requestID)

		resp, err := func() (interface{}, error) {
			if server := r.PathValue("server"); server != s.name {
				return nil, omerrors.InvalidParameter("serverName", "unknown metadata server "+server)
			}
			if err := auth.Authorize(ctx, userID); err != nil {
				return nil, err
			}
			req := new(Req)
			if err := api.ReadJSON(r, req); err != nil {
				return nil, err
			}
			return fn(ctx, r, userID, req)
		}()

		s.metrics.ObserveCall("server", name, timer.Stop(), err)
		if err != nil {
			logger.FromContext(ctx, s.logger).Debug("Request failed",
				zap.String("operation", name),
				zap.Error(err))
			api.WriteError(w, err)
			return
		}
		if resp == nil {
			resp = &api.VoidResponse{RelatedHTTPCode: http.StatusOK}
		}
		api.WriteJSON(w, http.StatusOK, resp)
	}
}
