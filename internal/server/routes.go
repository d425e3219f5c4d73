package server

import (
	"github.com/flocklens/flocklens/internal/server/handlers"
)

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes() {
	// Standard health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	// Graph API
	if s.api != nil {
		s.router.Post("/v1/group", s.api.GroupHandler)
		s.router.Get("/v1/followers/{id}", s.api.FollowersHandler)
		s.router.Post("/v1/users/lookup", s.api.LookupHandler)
	}
}
