package api_test

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	apidoc "github.com/daap14/catalog-api/api"
	"github.com/daap14/catalog-api/internal/api"
	"github.com/daap14/catalog-api/internal/api/response"
	"github.com/daap14/catalog-api/internal/store"
)

type openAPIDoc struct {
	Paths map[string]map[string]any `json:"paths"`
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "head": true, "options": true, "trace": true,
}

// Operational endpoints served outside the documented API surface.
var undocumented = map[string]bool{
	"GET /metrics":      true,
	"GET /openapi.json": true,
}

type route struct {
	method string
	path   string
}

func (r route) String() string { return r.method + " " + r.path }

func TestOpenAPISpec_RoutesCoverAllPaths(t *testing.T) {
	t.Parallel()

	var doc openAPIDoc
	require.NoError(t, yaml.Unmarshal(apidoc.OpenAPISpec, &doc), "embedded document must parse")

	specRoutes := extractSpecRoutes(doc)
	require.NotEmpty(t, specRoutes)

	st := &memStore{catalogs: newMemCatalogs(), members: &memMembers{}}
	router := api.NewRouter(api.RouterDeps{
		Stores:      func() store.Store { return st },
		Auth:        &tokenResolver{},
		Errors:      response.NewErrorHandler(response.ErrorHandlerOptions{}, zerolog.Nop()),
		OpenAPISpec: apidoc.OpenAPISpec,
		Logger:      zerolog.Nop(),
	})

	chiRoutes := extractChiRoutes(t, router)
	require.NotEmpty(t, chiRoutes)

	for _, sr := range specRoutes {
		t.Run(fmt.Sprintf("spec_%s_%s_has_Chi_route", sr.method, sr.path), func(t *testing.T) {
			assert.Contains(t, chiRoutes, sr, "documented route %s not served", sr)
		})
	}

	for _, cr := range chiRoutes {
		if undocumented[cr.String()] {
			continue
		}
		t.Run(fmt.Sprintf("Chi_%s_%s_has_spec_path", cr.method, cr.path), func(t *testing.T) {
			assert.Contains(t, specRoutes, cr, "served route %s not documented", cr)
		})
	}
}

func extractSpecRoutes(doc openAPIDoc) []route {
	var routes []route
	for path, item := range doc.Paths {
		for key := range item {
			if httpMethods[key] {
				routes = append(routes, route{method: strings.ToUpper(key), path: path})
			}
		}
	}
	sortRoutes(routes)
	return routes
}

func extractChiRoutes(t *testing.T, r *chi.Mux) []route {
	t.Helper()
	var routes []route
	err := chi.Walk(r, func(method, routePath string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		// Subrouter roots walk as "/catalogs/".
		normalized := strings.TrimRight(routePath, "/")
		if normalized == "" {
			normalized = "/"
		}
		routes = append(routes, route{method: method, path: normalized})
		return nil
	})
	require.NoError(t, err)
	sortRoutes(routes)
	return routes
}

func sortRoutes(routes []route) {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].path == routes[j].path {
			return routes[i].method < routes[j].method
		}
		return routes[i].path < routes[j].path
	})
}
