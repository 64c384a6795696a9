// ABOUTME: JSON error bodies written by middleware
// ABOUTME: Uses the same models.ErrorResponse shape as the API handlers

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/markalston/vm-allocator/models"
)

// writeJSONError writes an error body the client decodes like any handler error.
func writeJSONError(w http.ResponseWriter, resp models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode middleware error", "error", err, "code", resp.Code)
	}
}
