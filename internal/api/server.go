package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/clementg/consoleback/internal/api/handler"
	mw "github.com/clementg/consoleback/internal/api/middleware"
	"github.com/clementg/consoleback/internal/artifact"
	"github.com/clementg/consoleback/internal/core"
	"github.com/clementg/consoleback/internal/logging"
)

// Server is the control surface: it only ever calls the orchestrator's
// public operations and reads registry/session state.
type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
}

func NewServer(logger zerolog.Logger, services *core.Services, artifacts *artifact.Store, ring *logging.Ring) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)

	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/api/v1", func(r chi.Router) {
		console := handler.NewConsole(services.Console, services.Orchestrator)
		r.Get("/consoles", console.List)
		r.Post("/consoles", console.Create)
		r.Get("/consoles/{name}", console.Get)
		r.Put("/consoles/{name}/schedule", console.UpdateSchedule)
		r.Delete("/consoles/{name}", console.Delete)
		r.Post("/consoles/{name}/enable", console.Enable)
		r.Post("/consoles/{name}/disable", console.Disable)
		r.Post("/consoles/{name}/backup", console.BackupNow)

		session := handler.NewSession(services.Session)
		r.Get("/session", session.Get)
		r.Post("/session/login", session.Login)

		status := handler.NewStatus(services.Orchestrator, services.Session)
		r.Get("/status", status.Get)

		artifactHandler := handler.NewArtifact(artifacts, services.Console)
		r.Get("/artifacts", artifactHandler.List)

		logs := handler.NewLogs(ring, logger)
		r.Get("/logs/recent", logs.Recent)
		r.Get("/logs/stream", logs.Stream)
	})

	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
