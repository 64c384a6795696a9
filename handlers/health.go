// ABOUTME: HTTP handlers for health and catalog endpoints
// ABOUTME: Reports API status and lists the VM size catalogs the server knows

package handlers

import (
	"net/http"

	"github.com/markalston/vm-allocator/models"
)

// HealthResponse reports server status.
type HealthResponse struct {
	Status   string `json:"status"`
	Catalogs int    `json:"catalogs"`
}

// CatalogsResponse lists the registered catalogs.
type CatalogsResponse struct {
	Catalogs []*models.VMSizeCatalog `json:"catalogs"`
}

// Health returns API health status and the number of known catalogs.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Catalogs: len(h.catalogs.List()),
	})
}

// ListCatalogs returns every registered catalog sorted by name.
func (h *Handler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, CatalogsResponse{Catalogs: h.catalogs.List()})
}

// GetCatalog returns one catalog by name.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	catalog, ok := h.catalogs.Get(name)
	if !ok {
		h.writeError(w, "Unknown catalog: "+name, http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, catalog)
}
