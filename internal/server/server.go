// Package server exposes a loaded budget tree as a small JSON API for web
// charts (pie, treemap, dendrogram) and can host a local data directory.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/rshade/budgettree/internal/chart"
	"github.com/rshade/budgettree/internal/tree"
)

// Server defaults.
const (
	DefaultAddr      = ":8080"
	DefaultTimeout   = 60 * time.Second
	DefaultTreeDepth = 1
	MaxTreeDepth     = 5
	DefaultLimit     = 20
)

// Config holds server configuration.
type Config struct {
	Addr        string
	AllowAll    bool   // allow all CORS origins
	DataDir     string // served under /data/ when set
	MaxSegments int
	Timeout     time.Duration
}

// Server serves the API for one loader.
type Server struct {
	cfg        Config
	loader     *tree.Loader
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server and builds its router.
func New(cfg Config, loader *tree.Loader, logger zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxSegments <= 0 {
		cfg.MaxSegments = chart.DefaultSegments
	}

	s := &Server{cfg: cfg, loader: loader, logger: logger}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/entries", s.handleEntries)
		r.Get("/pie", s.handlePie)
		r.Get("/tree", s.handleTree)
		r.Get("/breadcrumbs", s.handleBreadcrumbs)
		r.Get("/search", s.handleSearch)
	})

	if s.cfg.DataDir != "" {
		fs := http.StripPrefix("/data/", http.FileServer(http.Dir(s.cfg.DataDir)))
		r.Handle("/data/*", fs)
	}

	return r
}

// requestLogger logs one line per request with the chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		reqLog := s.logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

		reqLog.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Start listens until Shutdown. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.cfg.Addr).Msg("budgettree server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
