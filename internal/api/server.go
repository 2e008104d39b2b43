// Package api provides the HTTP API server and handlers for the catalog scraper.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/catalog-scraper/internal/http/response"
	"github.com/listenupapp/catalog-scraper/internal/service"
	"github.com/listenupapp/catalog-scraper/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog *service.CatalogService
	pages   *store.Store // Persistent page cache; nil when disabled
	router  *chi.Mux
	api     huma.API
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(catalog *service.CatalogService, pages *store.Store, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		catalog: catalog,
		pages:   pages,
		router:  router,
		limiter: NewRateLimiter(clientRateLimit, time.Minute, clientRateBurst),
		logger:  logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Catalog Scraper API", Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerCatalogRoutes()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "no route for "+r.Method+" "+r.URL.Path, s.logger)
	})

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

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RealIP)
	s.router.Use(requestID)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
}
