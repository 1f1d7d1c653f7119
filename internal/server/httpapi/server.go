// Package httpapi exposes the key-value repository over HTTP: GET /health,
// GET /kv, GET /kv/{key} and PUT /kv/{key}.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/logging"
	"github.com/dmitrijs2005/drawersync/internal/server/repositories/kv"
	"github.com/dmitrijs2005/drawersync/internal/timex"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout bounds graceful shutdown once the run context is done.
const ShutdownTimeout = 5 * time.Second

type Server struct {
	address     string
	repo        kv.Repository
	logger      logging.Logger
	jwtSecret   []byte
	corsOrigins []string
	now         timex.Clock
}

type Option func(*Server)

// WithSecret enables bearer-token auth on /kv routes. An empty secret leaves
// them open.
func WithSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.jwtSecret = []byte(secret)
		}
	}
}

func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

func WithClock(c timex.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.now = c
		}
	}
}

func NewServer(address string, l logging.Logger, repo kv.Repository, opts ...Option) *Server {
	s := &Server{
		address: address,
		repo:    repo,
		logger:  l.With("module", "http_server"),
		now:     timex.NowMillis,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	if len(s.corsOrigins) > 0 {
		r.Use(corsHandler(s.corsOrigins))
	}

	r.Get("/health", s.health)

	r.Route("/kv", func(r chi.Router) {
		if s.jwtSecret != nil {
			r.Use(s.requireToken)
		}
		r.Get("/", s.list)
		r.Get("/{key}", s.get)
		r.Put("/{key}", s.put)
	})

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
