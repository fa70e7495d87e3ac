package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"cxkit/internal/frontend"
	"cxkit/internal/metrics"
	"cxkit/internal/webhook"
	"cxkit/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout is the timeout for writing responses.
	DefaultWriteTimeout = 30 * time.Second
	// DefaultIdleTimeout is the idle timeout for keepalive connections.
	DefaultIdleTimeout = 60 * time.Second
	// ShutdownTimeout bounds how long in-flight requests may finish.
	ShutdownTimeout = 10 * time.Second
)

// Routes served by the server.
const (
	RouteWebhook  = "/webhook"
	RouteFrontend = "/"
	RouteMetrics  = "/metrics"
	RouteHealth   = "/health"
)

// Options selects what the server exposes. The front end is only mounted
// when Frontend is set.
type Options struct {
	Addr     string
	Frontend *frontend.Frontend
	Recorder *metrics.Recorder
}

// Server serves the fulfillment webhook, the optional front end, a health
// probe and Prometheus metrics.
type Server struct {
	addr       string
	router     chi.Router
	httpServer *http.Server
}

// New builds the router for opts. Metrics are recorded into opts.Recorder,
// or into a fresh recorder when it is nil.
func New(opts Options) *Server {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get(RouteHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, RouteMetrics, recorder.Handler())

	hook := &webhook.Handler{Observe: recorder.ObserveWebhook}
	r.With(recorder.Instrument(RouteWebhook)).Post(RouteWebhook, hook.ServeHTTP)

	if opts.Frontend != nil {
		opts.Frontend.OnView = recorder.IncPageView
		r.With(recorder.Instrument(RouteFrontend)).Method(http.MethodGet, RouteFrontend, opts.Frontend)
	}

	s := &Server{addr: opts.Addr, router: r}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Serve", "Listening on %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Serve", "Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
