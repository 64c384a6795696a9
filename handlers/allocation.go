// ABOUTME: HTTP handlers for allocation endpoints
// ABOUTME: Decodes a workload plus catalog and returns per-size allocations or the best one

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markalston/vm-allocator/middleware"
	"github.com/markalston/vm-allocator/models"
	"github.com/markalston/vm-allocator/services"
)

// AllocationRequest names a workload and either an inline catalog or a
// registered catalog name. With neither, the default catalog is used.
type AllocationRequest struct {
	Workload    models.WorkloadInput  `json:"workload"`
	Catalog     *models.VMSizeCatalog `json:"catalog,omitempty"`
	CatalogName string                `json:"catalog_name,omitempty"`
}

// Allocate returns an allocation record for every size in the catalog.
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	allocator, catalog, ok := h.decodeAllocationRequest(w, r)
	if !ok {
		return
	}

	result, err := allocator.Result(catalog)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	slog.Debug("Allocations computed",
		"request_id", middleware.RequestID(r.Context()),
		"catalog", catalog.Name,
		"records", len(result.Allocations),
	)
	h.writeJSON(w, http.StatusOK, result)
}

// BestAllocation returns only the least wasteful allocation.
func (h *Handler) BestAllocation(w http.ResponseWriter, r *http.Request) {
	allocator, catalog, ok := h.decodeAllocationRequest(w, r)
	if !ok {
		return
	}

	result, err := allocator.Best(catalog)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// decodeAllocationRequest writes the error response itself and returns ok=false
// when the request cannot be served.
func (h *Handler) decodeAllocationRequest(w http.ResponseWriter, r *http.Request) (*services.Allocator, *models.VMSizeCatalog, bool) {
	// MaxBytesReader only triggers on read, so decode the body first
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req AllocationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return nil, nil, false
		}
		h.writeErrorDetails(w, "Invalid JSON", err, http.StatusBadRequest)
		return nil, nil, false
	}

	workload, err := req.Workload.Config()
	if err != nil {
		h.writeDomainError(w, err)
		return nil, nil, false
	}

	catalog, status, message := h.resolveCatalog(req)
	if status != http.StatusOK {
		h.writeError(w, message, status)
		return nil, nil, false
	}

	return h.allocator(workload), catalog, true
}

// resolveCatalog returns the catalog to allocate against, or a non-200 status
// and message.
func (h *Handler) resolveCatalog(req AllocationRequest) (*models.VMSizeCatalog, int, string) {
	switch {
	case req.Catalog != nil && req.CatalogName != "":
		return nil, http.StatusBadRequest, "Specify either catalog or catalog_name, not both"
	case req.Catalog != nil:
		return req.Catalog, http.StatusOK, ""
	}

	name := req.CatalogName
	if name == "" {
		name = services.DefaultCatalogName
	}
	catalog, ok := h.catalogs.Get(name)
	if !ok {
		return nil, http.StatusNotFound, "Unknown catalog: " + name
	}
	return catalog, http.StatusOK, ""
}
