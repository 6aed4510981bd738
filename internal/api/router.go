package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/daap14/catalog-api/internal/api/handler"
	"github.com/daap14/catalog-api/internal/api/middleware"
	"github.com/daap14/catalog-api/internal/api/response"
	"github.com/daap14/catalog-api/internal/store"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Stores      store.Factory
	Auth        middleware.IdentityResolver
	Errors      *response.ErrorHandler
	Version     string
	OpenAPISpec []byte
	Logger      zerolog.Logger
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Errors))
	r.Use(middleware.RequestLogger(deps.Logger))

	// Must precede Route so the subrouter inherits it.
	r.MethodNotAllowed(response.MethodNotAllowed)

	healthHandler := handler.NewHealthHandler(deps.Stores, deps.Version, deps.Logger)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)
	r.Method("GET", "/metrics", promhttp.Handler())

	if len(deps.OpenAPISpec) > 0 {
		r.Method("GET", "/openapi.json", handler.NewOpenAPIHandler(deps.OpenAPISpec, deps.Errors))
	}

	// Authentication is attached per route so that unmapped methods get 405
	// without a token lookup.
	demoOnly := chi.Chain(
		middleware.Auth(deps.Auth, deps.Errors),
		middleware.RequireDemoUser(deps.Errors),
	)

	catalogs := handler.NewCatalogHandler(deps.Stores, deps.Errors)
	r.Route("/catalogs", func(r chi.Router) {
		r.With(demoOnly...).Get("/", catalogs.List)
		r.With(demoOnly...).Post("/", catalogs.Create)
		r.With(demoOnly...).Get("/{catalog_id}", catalogs.Get)
		r.With(demoOnly...).Put("/{catalog_id}", catalogs.Update)
		r.With(demoOnly...).Delete("/{catalog_id}", catalogs.Delete)
	})

	return r
}
