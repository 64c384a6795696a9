// ABOUTME: Allocation report view: every VM size, its waste, and the best choice
// ABOUTME: Also renders the billable-CPU chart used by the chart command

package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/markalston/vm-allocator/internal/tui/styles"
	"github.com/markalston/vm-allocator/internal/tui/widgets"
	"github.com/markalston/vm-allocator/models"
)

// NoAllocationMessage is shown when no VM size can host a single process
const NoAllocationMessage = "No good allocation found."

// Report displays an allocation result
type Report struct {
	result *models.AllocationResult
	width  int
}

// New creates a new report view
func New(result *models.AllocationResult, width int) *Report {
	return &Report{
		result: result,
		width:  width,
	}
}

// SetWidth updates the render width
func (r *Report) SetWidth(width int) {
	r.width = width
}

// View renders the report
func (r *Report) View() string {
	if r.result == nil {
		return "No allocation data"
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("VM Allocation Report"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s | %s", r.result.Catalog.Label(), describeWorkload(r.result.Workload))))
	sb.WriteString("\n\n")

	if len(r.result.Allocations) == 0 {
		sb.WriteString(styles.StatusWarning.Render(NoAllocationMessage))
		sb.WriteString("\n")
		return r.frame(sb.String())
	}

	barCfg := widgets.DefaultProgressBarConfig()
	barCfg.Width = 16

	sb.WriteString(fmt.Sprintf("%6s %5s %9s %6s  %-25s %s\n", "SIZE", "VMS", "BILLABLE", "IDLE", "WASTE", "COST/H"))
	for _, rec := range r.result.Allocations {
		marker := " "
		if r.result.Best != nil && rec.VMSize == r.result.Best.VMSize {
			marker = styles.StatusOK.Render("*")
		}
		sb.WriteString(fmt.Sprintf("%s%5d %5d %9d %6d  %s  $%s\n",
			marker,
			rec.VMSize,
			rec.NumberOfVMs,
			rec.TotalBillableCPUs,
			rec.TotalIdleCPUs,
			widgets.ProgressBarWithLabel(rec.WasteRate()*100, barCfg),
			rec.TotalCostPerHour.String(),
		))
	}

	sb.WriteString("\n")
	if r.result.Best == nil {
		sb.WriteString(styles.StatusWarning.Render(NoAllocationMessage))
	} else {
		sb.WriteString(styles.BestPanel.Render(Summary(r.result.Catalog, *r.result.Best)))
	}
	sb.WriteString("\n")

	return r.frame(sb.String())
}

func (r *Report) frame(content string) string {
	if r.width <= 0 {
		return content
	}
	return lipgloss.NewStyle().Width(r.width).Render(content)
}

// Summary describes the best allocation and its hourly cost.
func Summary(catalog *models.VMSizeCatalog, best models.AllocationRecord) string {
	var sb strings.Builder
	sb.WriteString(styles.StatusOK.Render("Best allocation"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d x %d-CPU VMs (%d billable, %d idle, %.1f%% waste)\n",
		best.NumberOfVMs, best.VMSize, best.TotalBillableCPUs, best.TotalIdleCPUs, best.WasteRate()*100))
	sb.WriteString(CostLine(catalog, best))
	return sb.String()
}

// CostLine formats the hourly cost of an allocation.
func CostLine(catalog *models.VMSizeCatalog, rec models.AllocationRecord) string {
	return fmt.Sprintf("Cost for %s per hour: $%s", catalog.Name, rec.TotalCostPerHour.String())
}

// Chart renders billable CPUs per VM size as a bar chart with the best size
// highlighted, followed by a sparkline of the same series.
func Chart(result *models.AllocationResult, width int) string {
	if result == nil || len(result.Allocations) == 0 {
		return NoAllocationMessage
	}

	bars := lo.Map(result.Allocations, func(rec models.AllocationRecord, _ int) widgets.Bar {
		bar := widgets.Bar{Label: fmt.Sprintf("%d CPU", rec.VMSize), Value: rec.TotalBillableCPUs}
		if result.Best != nil && rec.VMSize == result.Best.VMSize {
			bar.Highlight = true
			bar.Note = "◀ best"
		}
		return bar
	})
	billable := lo.Map(result.Allocations, func(rec models.AllocationRecord, _ int) float64 {
		return float64(rec.TotalBillableCPUs)
	})

	cfg := widgets.DefaultBarChartConfig()
	if width > 0 {
		cfg.Width = max(10, width-30)
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(fmt.Sprintf("Billable CPUs by VM size (%s)", result.Catalog.Name)))
	sb.WriteString("\n")
	sb.WriteString(widgets.BarChart(bars, cfg))
	sb.WriteString("\n\n")
	sb.WriteString(styles.Subtitle.Render("Trend "))
	sb.WriteString(widgets.Sparkline(billable, 0, styles.Accent))
	sb.WriteString("\n")
	if result.Best != nil {
		sb.WriteString(CostLine(result.Catalog, *result.Best))
		sb.WriteString("\n")
	}
	return sb.String()
}

func describeWorkload(w models.WorkloadConfig) string {
	return fmt.Sprintf("%d processes x %d CPU, min %d VMs, overhead %d CPU/VM",
		w.NumberOfProcesses(), w.CPUPerProcess(), w.MinimumVMCount(), w.CPUOverheadPerVM())
}
