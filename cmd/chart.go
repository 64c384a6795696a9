// ABOUTME: Chart command draws billable CPUs per VM size as a bar chart
// ABOUTME: The best size is highlighted and a sparkline shows the trend

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markalston/vm-allocator/internal/tui/report"
	"github.com/markalston/vm-allocator/models"
)

var (
	chartFlags allocationFlags
	chartWidth int
)

var chartCmd = &cobra.Command{
	Use:     "chart",
	Short:   "Chart billable CPUs for every VM size in a catalog",
	Example: `  vm-allocator chart --cpu-per-process 2 --processes 64 --cpu-overhead 1 --width 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		selection, err := chartFlags.selection(cmd.Flags())
		if err != nil {
			return err
		}
		p, err := newPlanner()
		if err != nil {
			return err
		}
		return runChart(cmd.Context(), p, cmd.OutOrStdout(), chartWidth, chartFlags.workload(), selection)
	},
}

func init() {
	chartFlags.register(chartCmd.Flags())
	chartCmd.Flags().IntVar(&chartWidth, "width", 80, "Terminal columns available for the chart")
	rootCmd.AddCommand(chartCmd)
}

func runChart(ctx context.Context, p planner, w io.Writer, width int, workload models.WorkloadInput, selection catalogSelection) error {
	result, err := p.Allocate(ctx, workload, selection)
	if err != nil {
		return fmt.Errorf("allocation failed: %w", err)
	}
	fmt.Fprintln(w, report.Chart(result, width))
	return nil
}
