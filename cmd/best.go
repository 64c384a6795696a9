// ABOUTME: Best command prints only the least wasteful VM size for a workload
// ABOUTME: Reports "No good allocation found." when no size fits a process

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markalston/vm-allocator/internal/output"
	"github.com/markalston/vm-allocator/internal/tui/report"
	"github.com/markalston/vm-allocator/models"
)

var bestFlags allocationFlags

var bestCmd = &cobra.Command{
	Use:   "best",
	Short: "Print the allocation with the fewest billable CPUs",
	Long: `Print the allocation with the fewest billable CPUs. Ties go to the smaller
VM size.`,
	Example: `  vm-allocator best --cpu-per-process 2 --processes 64 --cpu-overhead 1 --catalog "Das v5"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := GetOutputOptions()
		if err != nil {
			return err
		}
		selection, err := bestFlags.selection(cmd.Flags())
		if err != nil {
			return err
		}
		p, err := newPlanner()
		if err != nil {
			return err
		}
		return runBest(cmd.Context(), p, cmd.OutOrStdout(), opts, bestFlags.workload(), selection)
	},
}

func init() {
	bestFlags.register(bestCmd.Flags())
	rootCmd.AddCommand(bestCmd)
}

func runBest(ctx context.Context, p planner, w io.Writer, opts output.Options, workload models.WorkloadInput, selection catalogSelection) error {
	result, err := p.Best(ctx, workload, selection)
	if err != nil {
		return fmt.Errorf("allocation failed: %w", err)
	}

	if !opts.Format.IsTabular() {
		return output.OutputNonTabular(w, opts, result)
	}

	if !result.Found || result.Best == nil {
		fmt.Fprintln(w, report.NoAllocationMessage)
		return nil
	}

	if opts.Format == output.CSVFormat {
		return output.OutputOne(w, allocationColumns, opts, *result.Best)
	}
	writeBest(w, result.Catalog, result.Best)
	return nil
}
