// Package api provides the HTTP API server and handlers for the MyMichiganLake backend.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mymichiganlake/lakes-server/internal/config"
	"github.com/mymichiganlake/lakes-server/internal/http/response"
	"github.com/mymichiganlake/lakes-server/internal/logger"
	"github.com/mymichiganlake/lakes-server/internal/ratelimit"
	"github.com/mymichiganlake/lakes-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	router   *chi.Mux
	api      huma.API
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, st store.Store, services *Services, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:    st,
		services: services,
		router:   router,
		limiter:  ratelimit.New(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		logger:   logger,
	}

	s.setupMiddleware(cfg.Server)

	humaConfig := huma.DefaultConfig("MyMichiganLake API", Version)
	humaConfig.Info.Description = "Profiles, lake communities, posts and marketplace items."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	RegisterErrorHandler(logger)
	s.api = humachi.New(router, humaConfig)

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg config.ServerConfig) {
	origins := cfg.AllowedOrigins

	s.router.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(logger.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(origins),
		MaxAge:           300,
	}))
	s.router.Use(RateLimitMiddleware(s.limiter, s.logger))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Not Found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "Method Not Allowed", s.logger)
	})
}

// registerRoutes registers every huma operation.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerProtectedRoutes()
	s.registerProfileRoutes()
	s.registerRegisterRoutes()
	s.registerCommunityRoutes()
	s.registerInterestRoutes()
	s.registerPostRoutes()
	s.registerItemRoutes()
	s.registerMapsRoutes()
}

// allowsAnyOrigin reports whether the CORS list is the wildcard. Browsers
// reject credentialed requests against "*".
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
