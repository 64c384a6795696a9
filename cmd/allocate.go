// ABOUTME: Allocate command lists every VM size's allocation for a workload
// ABOUTME: Prints the full table followed by the best allocation and its hourly cost

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/markalston/vm-allocator/internal/output"
	"github.com/markalston/vm-allocator/internal/tui/report"
	"github.com/markalston/vm-allocator/models"
)

var allocateFlags allocationFlags

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Compute the allocation for every VM size in a catalog",
	Long: `Compute, for every VM size in a catalog, how many VMs the workload needs,
how many billable CPUs sit idle, and the hourly cost. Sizes too small for one
process plus overhead are skipped. The best allocation is printed last.`,
	Example: `  vm-allocator allocate --cpu-per-process 2 --processes 64 --cpu-overhead 1
  vm-allocator allocate --cpu-per-process 4 --processes 8 --sizes 2,8,16 --cost-per-cpu 0.1 -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := GetOutputOptions()
		if err != nil {
			return err
		}
		selection, err := allocateFlags.selection(cmd.Flags())
		if err != nil {
			return err
		}
		p, err := newPlanner()
		if err != nil {
			return err
		}
		return runAllocate(cmd.Context(), p, cmd.OutOrStdout(), opts, allocateFlags.workload(), selection)
	},
}

func init() {
	allocateFlags.register(allocateCmd.Flags())
	rootCmd.AddCommand(allocateCmd)
}

// allocationColumns are the table columns for an allocation record
var allocationColumns = []output.TableColumn[models.AllocationRecord]{
	{
		ColumnConfig: table.ColumnConfig{Name: "VM SIZE", Align: text.AlignRight},
		Value:        func(r models.AllocationRecord) string { return strconv.Itoa(r.VMSize) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "ALLOCATABLE/VM", Align: text.AlignRight},
		Value:        func(r models.AllocationRecord) string { return strconv.Itoa(r.AllocatableCPUsPerVM) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "REQUESTED/VM", Align: text.AlignRight},
		Value:        func(r models.AllocationRecord) string { return strconv.Itoa(r.RequestedCPUsPerVM) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "VMS", Align: text.AlignRight},
		Value:        func(r models.AllocationRecord) string { return strconv.Itoa(r.NumberOfVMs) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "BILLABLE", Align: text.AlignRight},
		Value:        func(r models.AllocationRecord) string { return strconv.Itoa(r.TotalBillableCPUs) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "IDLE", Align: text.AlignRight},
		Value:        func(r models.AllocationRecord) string { return strconv.Itoa(r.TotalIdleCPUs) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "WASTE", Align: text.AlignRight},
		Value:        func(r models.AllocationRecord) string { return fmt.Sprintf("%.1f%%", r.WasteRate()*100) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "COST/H", Align: text.AlignRight},
		Value:        func(r models.AllocationRecord) string { return r.TotalCostPerHour.String() },
	},
}

func runAllocate(ctx context.Context, p planner, w io.Writer, opts output.Options, workload models.WorkloadInput, selection catalogSelection) error {
	result, err := p.Allocate(ctx, workload, selection)
	if err != nil {
		return fmt.Errorf("allocation failed: %w", err)
	}

	if !opts.Format.IsTabular() {
		return output.OutputNonTabular(w, opts, result)
	}

	opts.Title = result.Catalog.Label()
	if err := output.Output(w, allocationColumns, opts, result.Allocations); err != nil {
		return err
	}
	if opts.Format != output.TableFormat {
		return nil
	}

	fmt.Fprintln(w)
	writeBest(w, result.Catalog, result.Best)
	return nil
}

// writeBest prints the best allocation summary, or the no-result message.
func writeBest(w io.Writer, catalog *models.VMSizeCatalog, best *models.AllocationRecord) {
	if best == nil {
		fmt.Fprintln(w, report.NoAllocationMessage)
		return
	}

	fmt.Fprintln(w, "Best allocation:")
	output.KeyValue(w, []lo.Entry[string, any]{
		{Key: "VM size", Value: best.VMSize},
		{Key: "VMs", Value: best.NumberOfVMs},
		{Key: "Billable CPUs", Value: best.TotalBillableCPUs},
		{Key: "Idle CPUs", Value: best.TotalIdleCPUs},
		{Key: "Waste", Value: fmt.Sprintf("%.1f%%", best.WasteRate()*100)},
	})
	fmt.Fprintln(w, report.CostLine(catalog, *best))
}
