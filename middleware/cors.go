// ABOUTME: CORS middleware for API cross-origin requests
// ABOUTME: Echoes allowed origins and answers OPTIONS preflight requests

package middleware

import (
	"net/http"
	"slices"
)

// CORS returns middleware that allows the configured origins. An entry of "*"
// allows any origin. With no origins configured, cross-origin requests get no
// CORS headers and browsers block them.
// Preflight OPTIONS requests are answered with 204 without calling the handler.
func CORS(allowedOrigins []string) Middleware {
	allowAny := slices.Contains(allowedOrigins, "*")

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAny || slices.Contains(allowedOrigins, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next(w, r)
		}
	}
}
