package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/contactbook/internal/database"
	"github.com/saltyorg/contactbook/internal/maintenance"
	"github.com/saltyorg/contactbook/internal/web/handlers"
	"github.com/saltyorg/contactbook/internal/web/middleware"
)

// RequestTimeout bounds a single API request
const RequestTimeout = 60 * time.Second

// Options configures the HTTP server
type Options struct {
	Port       int
	Bind       string
	AllowedNet *net.IPNet
	APIKeyHash string
	Version    handlers.VersionInfo
	Scheduler  *maintenance.Scheduler
}

// Server represents the web server
type Server struct {
	db       *database.DB
	opts     Options
	router   *chi.Mux
	handlers *handlers.Handlers
}

// NewServer creates a new web server
func NewServer(db *database.DB, opts Options) *Server {
	s := &Server{
		db:     db,
		opts:   opts,
		router: chi.NewRouter(),
	}

	s.setupRoutes()

	return s
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.opts.AllowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(RequestTimeout))

	h := handlers.New(s.db)
	h.SetVersionInfo(s.opts.Version.Version, s.opts.Version.Commit, s.opts.Version.Date)
	if s.opts.Scheduler != nil {
		h.SetScheduler(s.opts.Scheduler)
	}
	s.handlers = h

	// Public routes
	r.Get("/healthz", h.Health)

	// API routes (API key auth)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKey(s.opts.APIKeyHash))

		r.Get("/version", h.Version)

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.ListContacts)
			r.Post("/", h.CreateContact)
			r.Get("/{id}", h.GetContact)
			r.Patch("/{id}", h.UpdateContact)
			r.Delete("/{id}", h.DeleteContact)
		})
	})
}

// Start starts the web server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	var addr string
	if s.opts.Bind != "" {
		addr = fmt.Sprintf("%s:%d", s.opts.Bind, s.opts.Port)
	} else {
		addr = fmt.Sprintf(":%d", s.opts.Port)
	}

	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
		// ReadTimeout is for reading request body
		ReadTimeout:  15 * time.Second,
		WriteTimeout: RequestTimeout + 5*time.Second,
		// IdleTimeout for keep-alive connections between requests
		IdleTimeout: 120 * time.Second,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
