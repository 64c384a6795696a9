// ABOUTME: HTTP handlers for the VM allocation API
// ABOUTME: Holds the catalog registry and reuses allocators per workload

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/markalston/vm-allocator/cache"
	"github.com/markalston/vm-allocator/config"
	"github.com/markalston/vm-allocator/models"
	"github.com/markalston/vm-allocator/services"
)

const maxRequestBodySize = 1 << 20 // 1MB

type Handler struct {
	cfg        *config.Config
	catalogs   *services.CatalogRegistry
	allocators *cache.Cache[*services.Allocator]
}

// NewHandler creates the API handler. A nil registry serves the preset catalogs;
// a nil config keeps allocators for the lifetime of the handler.
func NewHandler(cfg *config.Config, catalogs *services.CatalogRegistry) *Handler {
	if catalogs == nil {
		catalogs = services.NewCatalogRegistry()
	}

	var ttl time.Duration
	if cfg != nil {
		ttl = time.Duration(cfg.CacheTTL) * time.Second
	}

	return &Handler{
		cfg:        cfg,
		catalogs:   catalogs,
		allocators: cache.New[*services.Allocator](ttl),
	}
}

// Close releases the allocator cache.
func (h *Handler) Close() {
	h.allocators.Close()
}

// allocator returns the shared allocator for a workload so repeated requests
// reuse its memoized results.
func (h *Handler) allocator(workload models.WorkloadConfig) *services.Allocator {
	a, _ := h.allocators.GetOrCompute(workload.Key(), func() (*services.Allocator, error) {
		return services.NewAllocator(workload), nil
	})
	return a
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{Error: message, Code: code})
}

func (h *Handler) writeErrorDetails(w http.ResponseWriter, message string, err error, code int) {
	h.writeJSON(w, code, models.ErrorResponse{Error: message, Details: err.Error(), Code: code})
}

// writeDomainError maps validation failures to 400 and anything else to 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid " + vErr.Field,
			Details: vErr.Error(),
			Field:   vErr.Field,
			Code:    http.StatusBadRequest,
		})
	case errors.Is(err, models.ErrInvalidArgument):
		h.writeErrorDetails(w, "Invalid request", err, http.StatusBadRequest)
	default:
		slog.Error("Allocation failed", "error", err)
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}
