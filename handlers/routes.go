// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Catalogs
		{Method: http.MethodGet, Path: "/api/v1/catalogs", Handler: h.ListCatalogs},
		{Method: http.MethodGet, Path: "/api/v1/catalogs/{name}", Handler: h.GetCatalog},

		// Allocations
		{Method: http.MethodPost, Path: "/api/v1/allocations", Handler: h.Allocate},
		{Method: http.MethodPost, Path: "/api/v1/allocations/best", Handler: h.BestAllocation},
	}
}

// NewRouter registers every route on a new ServeMux using method patterns.
func NewRouter(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		mux.HandleFunc(route.Method+" "+route.Path, route.Handler)
	}
	return mux
}
