// Package server exposes the portfolio over an HTTP JSON API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/news"
	"github.com/etnz/folio/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Newsroom looks up news about a symbol.
type Newsroom interface {
	Lookup(ctx context.Context, symbol string) ([]news.Item, error)
}

// Commentator writes a narrative about the portfolio.
type Commentator interface {
	Commentary(ctx context.Context, summary folio.Summary, positions []folio.Position) (string, error)
}

// Config holds server configuration
type Config struct {
	Port     int
	Log      zerolog.Logger
	Store    store.Store
	Currency string
	// News and Commentary are optional, their endpoints answer 503 without them.
	News       Newsroom
	Commentary Commentator
	// OnChange is called after every successful ledger change.
	OnChange func()
	// Now is the clock of the reports, time.Now by default.
	Now func() time.Time
	// Reports returns the latest precomputed report, as refresh.Refresher.Latest
	// does. Until it has one, reports are computed from Store on each request.
	Reports func() (*folio.Report, time.Time, error)
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.OnChange == nil {
		cfg.OnChange = func() {}
	}
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // AI commentary is slow
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler of the API.
func (s *Server) Handler() http.Handler { return s.router }

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/positions", s.handlePositions)
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleTransactions)
			r.Post("/", s.handleAppend)
			r.Delete("/{id}", s.handleDelete)
		})
		r.Get("/news/{symbol}", s.handleNews)
		r.Get("/commentary", s.handleCommentary)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
