package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kaioguedesm/chronofit/internal/journal"
	"github.com/kaioguedesm/chronofit/internal/session"
	"github.com/kaioguedesm/chronofit/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      *storage.DB
	mgr     *Manager
	journal *journal.Journal  // nil disables journaling
	motiv   session.Motivator // nil disables post-workout messages
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, jrnl *journal.Journal, motiv session.Motivator, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		mgr:     NewManager(log),
		journal: jrnl,
		motiv:   motiv,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
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

	// Session lifecycle (API key required — these mutate training data)
	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/", s.handleStartSession)
			r.Post("/{id}/sets", s.handleCompleteSet)
			r.Post("/{id}/defer", s.handleDefer)
			r.Post("/{id}/defer/resolve", s.handleResolveDefer)
			r.Post("/{id}/rest/cancel", s.handleCancelRest)
			r.Post("/{id}/finalize", s.handleFinalize)
			r.Delete("/{id}", s.handleCancelSession)
		})
		r.Get("/", s.handleListSessions)
		r.Get("/{id}", s.handleGetSession)
	})

	// Read-only dashboard endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/plans", s.handleListPlans)
	s.router.Get("/api/v1/plans/{id}/exercises", s.handlePlanExercises)
	s.router.Get("/api/v1/stats/weekly", s.handleWeeklyStats)
}

// SetMCP mounts the MCP transport handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}
