// ABOUTME: Tests for the allocation API handlers
// ABOUTME: Covers health, catalogs, allocation bodies, error mapping, and allocator reuse

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markalston/vm-allocator/config"
	"github.com/markalston/vm-allocator/models"
	"github.com/markalston/vm-allocator/services"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	h := NewHandler(&config.Config{CacheTTL: 60}, nil)
	t.Cleanup(h.Close)
	return h
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// allocationResponse mirrors models.AllocationResult on the wire.
type allocationResponse struct {
	Catalog     models.VMSizeCatalog     `json:"catalog"`
	Workload    models.WorkloadInput     `json:"workload"`
	Allocations []models.AllocationRecord `json:"allocations"`
	Best        *models.AllocationRecord `json:"best"`
}

func TestHealthHandler(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("Expected status ok, got %s", resp.Status)
	}
	if resp.Catalogs != 2 {
		t.Errorf("Expected 2 catalogs, got %d", resp.Catalogs)
	}
}

func TestListCatalogs(t *testing.T) {
	custom, err := models.NewVMSizeCatalog("Custom", "0.1", 4, 8)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	h := NewHandler(nil, services.NewCatalogRegistry(custom))
	defer h.Close()

	w := httptest.NewRecorder()
	h.ListCatalogs(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalogs", nil))

	var resp CatalogsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Catalogs) != 3 {
		t.Fatalf("Expected 3 catalogs, got %d", len(resp.Catalogs))
	}
	if resp.Catalogs[0].Name != "Custom" {
		t.Errorf("Expected Custom first, got %s", resp.Catalogs[0].Name)
	}
}

func TestAllocate_DefaultCatalog(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(t, h.Allocate, "/api/v1/allocations",
		`{"workload":{"cpu_per_process":2,"number_of_processes":64,"cpu_overhead_per_vm":1}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp allocationResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Catalog.Name != services.DefaultCatalogName {
		t.Errorf("Expected catalog %s, got %s", services.DefaultCatalogName, resp.Catalog.Name)
	}
	// Size 2 cannot host a 2-CPU process plus 1 CPU overhead
	if len(resp.Allocations) != 6 {
		t.Errorf("Expected 6 allocations, got %d", len(resp.Allocations))
	}
	if resp.Best == nil || resp.Best.VMSize != 48 {
		t.Errorf("Expected best size 48, got %+v", resp.Best)
	}
	if resp.Best != nil && resp.Best.TotalCostPerHour.String() != "8.424" {
		t.Errorf("Expected cost 8.424, got %s", resp.Best.TotalCostPerHour)
	}
	if resp.Workload.MinimumVMCount == nil || *resp.Workload.MinimumVMCount != 1 {
		t.Errorf("Expected echoed minimum_vm_count 1, got %v", resp.Workload.MinimumVMCount)
	}
}

func TestAllocate_NamedCatalog(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(t, h.Allocate, "/api/v1/allocations",
		`{"workload":{"cpu_per_process":1,"number_of_processes":1},"catalog_name":"das v5"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp allocationResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Allocations) != 8 {
		t.Errorf("Expected 8 allocations, got %d", len(resp.Allocations))
	}
}

func TestAllocate_InlineCatalog(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(t, h.Allocate, "/api/v1/allocations",
		`{"workload":{"cpu_per_process":2,"number_of_processes":16,"cpu_overhead_per_vm":1},
		  "catalog":{"name":"single","cost_per_cpu":"0.1","sizes":[8]}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp allocationResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Allocations) != 1 {
		t.Fatalf("Expected 1 allocation, got %d", len(resp.Allocations))
	}

	r := resp.Allocations[0]
	if r.NumberOfVMs != 6 || r.TotalBillableCPUs != 48 || r.TotalIdleCPUs != 16 {
		t.Errorf("Expected 6 VMs / 48 billable / 16 idle, got %d / %d / %d",
			r.NumberOfVMs, r.TotalBillableCPUs, r.TotalIdleCPUs)
	}
}

func TestAllocate_NoFeasibleSize(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(t, h.Allocate, "/api/v1/allocations",
		`{"workload":{"cpu_per_process":128,"number_of_processes":1}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp allocationResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Allocations) != 0 {
		t.Errorf("Expected no allocations, got %d", len(resp.Allocations))
	}
	if resp.Best != nil {
		t.Errorf("Expected null best, got %+v", resp.Best)
	}
}

func TestAllocate_Errors(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedCode  int
		expectedField string
	}{
		{"invalid json", `{"workload":`, http.StatusBadRequest, ""},
		{"unknown field", `{"workload":{"cpu_per_process":1,"number_of_processes":1},"region":"west"}`, http.StatusBadRequest, ""},
		{"zero cpu", `{"workload":{"cpu_per_process":0,"number_of_processes":1}}`, http.StatusBadRequest, models.FieldCPUPerProcess},
		{"zero processes", `{"workload":{"cpu_per_process":1,"number_of_processes":0}}`, http.StatusBadRequest, models.FieldNumberOfProcesses},
		{"zero min vms", `{"workload":{"cpu_per_process":1,"number_of_processes":1,"minimum_vm_count":0}}`, http.StatusBadRequest, models.FieldMinimumVMCount},
		{"negative overhead", `{"workload":{"cpu_per_process":1,"number_of_processes":1,"cpu_overhead_per_vm":-1}}`, http.StatusBadRequest, models.FieldCPUOverheadPerVM},
		{"empty inline catalog", `{"workload":{"cpu_per_process":1,"number_of_processes":1},"catalog":{"name":"x","sizes":[]}}`, http.StatusBadRequest, ""},
		{"invalid inline size", `{"workload":{"cpu_per_process":1,"number_of_processes":1},"catalog":{"name":"x","sizes":[-2]}}`, http.StatusBadRequest, models.FieldCatalogSizes},
		{"both catalogs", `{"workload":{"cpu_per_process":1,"number_of_processes":1},"catalog":{"name":"x","sizes":[2]},"catalog_name":"D3"}`, http.StatusBadRequest, ""},
		{"unknown catalog", `{"workload":{"cpu_per_process":1,"number_of_processes":1},"catalog_name":"nope"}`, http.StatusNotFound, ""},
		{"processes overflow", `{"workload":{"cpu_per_process":1,"number_of_processes":9223372036854775805}}`, http.StatusBadRequest, models.FieldNumberOfProcesses},
		{"consumed cpus above bound", `{"workload":{"cpu_per_process":64,"number_of_processes":1000000}}`, http.StatusBadRequest, models.FieldNumberOfProcesses},
		{"oversized inline size", `{"workload":{"cpu_per_process":1,"number_of_processes":1},"catalog":{"name":"x","sizes":[9223372036854775807]}}`, http.StatusBadRequest, models.FieldCatalogSizes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			w := postJSON(t, h.Allocate, "/api/v1/allocations", tt.body)

			if w.Code != tt.expectedCode {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedCode, w.Code, w.Body.String())
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Code != tt.expectedCode {
				t.Errorf("Expected code %d in body, got %d", tt.expectedCode, resp.Code)
			}
			if resp.Field != tt.expectedField {
				t.Errorf("Expected field %q, got %q", tt.expectedField, resp.Field)
			}
			if resp.Error == "" {
				t.Error("Expected error message")
			}
			if tt.expectedField != "" && !strings.Contains(resp.Details, tt.expectedField) {
				t.Errorf("Expected details to describe %s, got %q", tt.expectedField, resp.Details)
			}
		})
	}
}

func TestAllocate_BodyTooLarge(t *testing.T) {
	h := newTestHandler(t)

	body := `{"workload":{"cpu_per_process":1,"number_of_processes":1},"catalog_name":"` +
		strings.Repeat("x", maxRequestBodySize) + `"}`
	w := postJSON(t, h.Allocate, "/api/v1/allocations", body)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", w.Code)
	}
}

func TestAllocate_ReusesAllocatorPerWorkload(t *testing.T) {
	h := newTestHandler(t)
	body := `{"workload":{"cpu_per_process":2,"number_of_processes":10}}`

	for i := 0; i < 3; i++ {
		if w := postJSON(t, h.Allocate, "/api/v1/allocations", body); w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
	}
	postJSON(t, h.Allocate, "/api/v1/allocations", `{"workload":{"cpu_per_process":2,"number_of_processes":11}}`)

	if h.allocators.Len() != 2 {
		t.Errorf("Expected 2 cached allocators, got %d", h.allocators.Len())
	}
}

func TestBestAllocation(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(t, h.BestAllocation, "/api/v1/allocations/best",
		`{"workload":{"cpu_per_process":2,"number_of_processes":16},
		  "catalog":{"name":"ties","cost_per_cpu":"0.05","sizes":[32,16,8]}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Best  *models.AllocationRecord `json:"best"`
		Found bool                     `json:"found"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !resp.Found {
		t.Fatal("Expected found true")
	}
	if resp.Best.VMSize != 8 {
		t.Errorf("Expected tie to go to size 8, got %d", resp.Best.VMSize)
	}
}

func TestBestAllocation_NotFound(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(t, h.BestAllocation, "/api/v1/allocations/best",
		`{"workload":{"cpu_per_process":100,"number_of_processes":1}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["found"] != false {
		t.Errorf("Expected found false, got %v", resp["found"])
	}
	if resp["best"] != nil {
		t.Errorf("Expected best null, got %v", resp["best"])
	}
}
