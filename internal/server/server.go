// Package server exposes the prediction, feedback and retrain operations over
// HTTP for the external dashboard and API clients.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/engine"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine *engine.Engine
	store  engine.FeedbackStore
	router *chi.Mux
	logger *slog.Logger
}

// NewServer creates an HTTP server with all routes configured. allowedOrigins
// is the CORS allowlist for the dashboard.
func NewServer(eng *engine.Engine, store engine.FeedbackStore, allowedOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		engine: eng,
		store:  store,
		router: chi.NewRouter(),
		logger: logger,
	}

	s.setupMiddleware(allowedOrigins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/predict", s.handlePredict)
		r.Get("/model-status", s.handleModelStatus)

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", s.handleSubmitFeedback)
			r.Get("/", s.handleListFeedback)
			r.Get("/count", s.handleFeedbackCount)
			r.Delete("/", s.handleClearFeedback)
		})

		r.Route("/retrain", func(r chi.Router) {
			r.Post("/", s.handleRetrain)
			r.Get("/status", s.handleRetrainStatus)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
