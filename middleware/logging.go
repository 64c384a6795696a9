// ABOUTME: HTTP request logging middleware with correlation IDs.
// ABOUTME: Logs each request with method, path, status, and latency and recovers panics.

package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/markalston/vm-allocator/models"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// LogRequest logs HTTP requests with timing and correlation ID. The ID is
// echoed in X-Request-ID and stored on the request context. A panicking
// handler is logged and answered with a JSON 500.
func LogRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		// Add request ID to response header
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

		// Wrap response writer to capture status
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Handler panicked",
					"request_id", requestID,
					"path", r.URL.Path,
					"panic", rec,
				)
				if !wrapped.wroteHeader {
					writeJSONError(wrapped, models.ErrorResponse{
						Error:   "Internal server error",
						Details: "request " + requestID + " failed",
						Code:    http.StatusInternalServerError,
					})
				}
				wrapped.statusCode = http.StatusInternalServerError
			}

			slog.Info("Request completed",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"latency_ms", time.Since(start).Milliseconds(),
			)
		}()

		next(wrapped, r)
	}
}

// RequestID returns the correlation ID set by LogRequest, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// generateRequestID creates a short random hex ID.
func generateRequestID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
