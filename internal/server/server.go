// Package server provides the HTTP server and routing for FundScope.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	fundshandlers "fundscope/internal/modules/funds/handlers"
	virtualportfoliohandlers "fundscope/internal/modules/virtualportfolio/handlers"
	watchlisthandlers "fundscope/internal/modules/watchlist/handlers"
)

// Config holds server configuration.
type Config struct {
	Log               zerolog.Logger
	Port              int
	DevMode           bool
	FundsHandler      *fundshandlers.Handler
	WatchlistHandler  *watchlisthandlers.Handler
	PortfoliosHandler *virtualportfoliohandlers.Handler
	CalcHandlers      *CalcHandlers
	SystemHandlers    *SystemHandlers
}

// Server represents the HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}
	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/funds", func(r chi.Router) {
			r.Get("/", s.cfg.FundsHandler.HandleSearch)
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", s.cfg.FundsHandler.HandleGet)
				r.Get("/returns", s.cfg.CalcHandlers.HandlePointReturns)
				r.Post("/lumpsum", s.cfg.CalcHandlers.HandleLumpsum)
				r.Post("/sip", s.cfg.CalcHandlers.HandleSIP(false))
				r.Post("/stepup-sip", s.cfg.CalcHandlers.HandleSIP(true))
				r.Post("/swp", s.cfg.CalcHandlers.HandleSWP(false))
				r.Post("/stepup-swp", s.cfg.CalcHandlers.HandleSWP(true))
				r.Post("/rolling-returns", s.cfg.CalcHandlers.HandleRollingReturns)
			})
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.cfg.WatchlistHandler.HandleList)
			r.Post("/", s.cfg.WatchlistHandler.HandleAdd)
			r.Get("/performance", s.cfg.WatchlistHandler.HandlePerformance)
			r.Delete("/{code}", s.cfg.WatchlistHandler.HandleRemove)
		})

		r.Route("/portfolios", func(r chi.Router) {
			r.Get("/", s.cfg.PortfoliosHandler.HandleList)
			r.Post("/", s.cfg.PortfoliosHandler.HandleCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.cfg.PortfoliosHandler.HandleGet)
				r.Put("/", s.cfg.PortfoliosHandler.HandleUpdate)
				r.Delete("/", s.cfg.PortfoliosHandler.HandleDelete)
				r.Post("/refresh", s.cfg.PortfoliosHandler.HandleRefresh)
			})
		})

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.cfg.SystemHandlers.HandleStatus)
			r.Post("/jobs/refresh-funds", s.cfg.SystemHandlers.HandleTriggerRefresh)
		})
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode health response")
	}
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

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
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
