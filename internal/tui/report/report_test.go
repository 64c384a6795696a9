// ABOUTME: Tests for the allocation report and chart views
// ABOUTME: Renders real allocator results for the D3 demo workload

package report

import (
	"strings"
	"testing"

	"github.com/markalston/vm-allocator/models"
	"github.com/markalston/vm-allocator/services"
)

func demoResult(t *testing.T, cpuPerProcess int) *models.AllocationResult {
	t.Helper()

	workload, err := models.NewWorkloadConfig(cpuPerProcess, 64, models.WithCPUOverheadPerVM(1))
	if err != nil {
		t.Fatalf("workload: %v", err)
	}
	catalog, ok := services.NewCatalogRegistry().Get(services.DefaultCatalogName)
	if !ok {
		t.Fatal("missing default catalog")
	}
	result, err := services.NewAllocator(workload).Result(catalog)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	return result
}

func TestReportView(t *testing.T) {
	view := New(demoResult(t, 2), 0).View()

	for _, want := range []string{
		"VM Allocation Report",
		"D3",
		"64 processes x 2 CPU",
		"Best allocation",
		"3 x 48-CPU VMs",
		"Cost for D3 per hour: $8.424",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q\n%s", want, view)
		}
	}
}

func TestReportView_NoAllocation(t *testing.T) {
	view := New(demoResult(t, 100), 80).View()

	if !strings.Contains(view, NoAllocationMessage) {
		t.Errorf("expected %q in view\n%s", NoAllocationMessage, view)
	}
	if strings.Contains(view, "Best allocation") {
		t.Error("expected no best allocation panel")
	}
}

func TestReportView_NilResult(t *testing.T) {
	if view := New(nil, 80).View(); view != "No allocation data" {
		t.Errorf("unexpected view %q", view)
	}
}

func TestChart(t *testing.T) {
	out := Chart(demoResult(t, 2), 80)

	if !strings.Contains(out, "Billable CPUs by VM size (D3)") {
		t.Errorf("expected chart title\n%s", out)
	}
	if strings.Count(out, "◀ best") != 1 {
		t.Errorf("expected exactly one best marker\n%s", out)
	}
	if !strings.Contains(out, "48 CPU") {
		t.Errorf("expected 48 CPU bar\n%s", out)
	}
	if strings.Contains(out, " 2 CPU") {
		t.Errorf("expected skipped size 2 to be absent\n%s", out)
	}
	if !strings.Contains(out, "Cost for D3 per hour: $8.424") {
		t.Errorf("expected cost line\n%s", out)
	}
}

func TestChart_NoAllocation(t *testing.T) {
	if out := Chart(demoResult(t, 100), 80); out != NoAllocationMessage {
		t.Errorf("expected %q, got %q", NoAllocationMessage, out)
	}
}
