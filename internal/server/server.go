package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/controller"
	"github.com/claude/liftlog/internal/saveflow"
	"github.com/claude/liftlog/internal/session"
)

// LastStatsFetcher looks up previous performances for exercise names.
// Failures are non-fatal: handlers degrade to renaming without a hint.
type LastStatsFetcher interface {
	LastStats(ctx context.Context, names []string) (map[string]session.LastWorkoutData, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	ctrl   *controller.Controller
	flow   *saveflow.Flow
	stats  LastStatsFetcher
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a Server with all routes configured. apiKey, when non-empty,
// gates every /api/v1 route.
func New(ctrl *controller.Controller, flow *saveflow.Flow, stats LastStatsFetcher, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		ctrl:   ctrl,
		flow:   flow,
		stats:  stats,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}

		r.Get("/session", s.handleGetSession)
		r.Post("/session", s.handleStartSession)
		r.Delete("/session", s.handleDiscardSession)

		r.Post("/session/finish", s.handleFinish)
		r.Post("/session/resume", s.handleResume)
		r.Post("/session/save", s.handleSave)

		r.Post("/session/exercises", s.handleAddExercise)
		r.Delete("/session/exercises/{exercise}", s.handleRemoveExercise)
		r.Put("/session/exercises/{exercise}", s.handleRenameExercise)

		r.Post("/session/exercises/{exercise}/sets", s.handleAddSet)
		r.Delete("/session/exercises/{exercise}/sets/{set}", s.handleRemoveSet)
		r.Put("/session/exercises/{exercise}/sets/{set}", s.handleUpdateSet)
		r.Post("/session/exercises/{exercise}/sets/{set}/complete", s.handleCompleteSet)
		r.Post("/session/exercises/{exercise}/sets/{set}/uncomplete", s.handleUncompleteSet)

		r.Post("/session/rest/skip", s.handleSkipRest)
		r.Post("/session/rest/extend", s.handleExtendRest)
	})
}

// Mount attaches an extra handler subtree (used for the MCP endpoint).
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}
