// Package server exposes engine sessions over a JSON HTTP API.
//
// Every session owns one engine; requests for a session are serialized by
// the session itself, so the engine only ever sees one pass at a time.
//
// Routes:
//
//	GET    /healthz                  build info
//	POST   /simulate                 run a script, returns the artifact
//	GET    /sessions                 list sessions
//	POST   /sessions                 create a session (runs a layout pass)
//	GET    /sessions/{id}            session info and current frame
//	DELETE /sessions/{id}            close a session
//	POST   /sessions/{id}/scroll     {"delta": 120}
//	POST   /sessions/{id}/layout     optional viewport, count or palette change
//	GET    /sessions/{id}/frame.svg  current frame as SVG
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackscroll/pkg/config"
	"github.com/matzehuels/stackscroll/pkg/session"
	"github.com/matzehuels/stackscroll/pkg/simulate"
)

// DefaultCleanupInterval is how often expired sessions are removed.
const DefaultCleanupInterval = time.Minute

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves the preview API.
type Server struct {
	cfg     config.Config
	store   session.Store
	runner  *simulate.Runner
	logger  *log.Logger
	cleanup time.Duration
	router  chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithStore sets the session store. Defaults to a memory store bounded by
// the config's max_sessions.
func WithStore(st session.Store) Option { return func(s *Server) { s.store = st } }

// WithRunner sets the simulation runner used by /simulate.
func WithRunner(r *simulate.Runner) Option { return func(s *Server) { s.runner = r } }

// WithLogger sets the request and lifecycle logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithCleanupInterval sets how often expired sessions are removed.
func WithCleanupInterval(d time.Duration) Option { return func(s *Server) { s.cleanup = d } }

// New creates a server. cfg is the base configuration every session and
// simulation starts from; requests may override parts of it.
func New(cfg config.Config, opts ...Option) *Server {
	s := &Server{cfg: cfg, cleanup: DefaultCleanupInterval}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.store == nil {
		s.store = session.NewMemoryStore(cfg.Server.MaxSessions)
	}
	if s.runner == nil {
		s.runner = simulate.NewRunner(nil, nil, s.logger)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/simulate", s.handleSimulate)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/scroll", s.handleScroll)
			r.Post("/layout", s.handleLayout)
			r.Get("/frame.svg", s.handleFrameSVG)
		})
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Expired sessions are cleaned up in the background.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.cleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) cleanupLoop(ctx context.Context) {
	if s.cleanup <= 0 {
		return
	}
	ticker := time.NewTicker(s.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.store.Cleanup(ctx); n > 0 {
				s.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
