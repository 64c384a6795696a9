// ABOUTME: Shared fixtures for command tests
// ABOUTME: Builds local planners and remote planners backed by an in-process API server

package cmd

import (
	"net/http/httptest"
	"testing"

	"github.com/markalston/vm-allocator/handlers"
	"github.com/markalston/vm-allocator/internal/client"
	"github.com/markalston/vm-allocator/internal/output"
	"github.com/markalston/vm-allocator/models"
	"github.com/markalston/vm-allocator/services"
)

// testPlanners returns a local planner and a remote planner over the same presets.
func testPlanners(t *testing.T) map[string]planner {
	t.Helper()

	h := handlers.NewHandler(nil, nil)
	server := httptest.NewServer(handlers.NewRouter(h))
	t.Cleanup(func() {
		server.Close()
		h.Close()
	})

	return map[string]planner{
		"local":  &localPlanner{catalogs: services.NewCatalogRegistry()},
		"remote": &remotePlanner{client: client.New(server.URL)},
	}
}

// demoWorkload is 64 processes of 2 CPUs with 1 CPU of overhead per VM.
func demoWorkload() models.WorkloadInput {
	minVMs, overhead := 1, 1
	return models.WorkloadInput{
		CPUPerProcess:     2,
		NumberOfProcesses: 64,
		MinimumVMCount:    &minVMs,
		CPUOverheadPerVM:  &overhead,
	}
}

func tableOptions() output.Options {
	return output.Options{Format: output.TableFormat}
}
