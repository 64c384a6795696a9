// ABOUTME: Plan command runs the interactive allocation wizard
// ABOUTME: Prints the final report to stdout once the TUI exits

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/markalston/vm-allocator/internal/tui"
	"github.com/markalston/vm-allocator/internal/tui/report"
	"github.com/markalston/vm-allocator/models"
	"github.com/markalston/vm-allocator/services"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Interactively describe a workload and compare VM sizes",
	Long: `Walk through the workload, its constraints, and a catalog in a terminal
wizard, then browse the allocation report. Press n for a new plan and q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPlanner()
		if err != nil {
			return err
		}
		return runPlan(cmd.Context(), p, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(ctx context.Context, p planner, w io.Writer) error {
	catalogs, err := p.Catalogs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalogs: %w", err)
	}
	if len(catalogs) == 0 {
		return errors.New("no catalogs available")
	}

	app := tui.New(ctx, planFuncFor(p), catalogs, services.DefaultCatalogName)
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("planner exited: %w", err)
	}

	if result := app.Result(); result != nil {
		fmt.Fprintln(w, report.New(result, 0).View())
	}
	return nil
}

// planFuncFor adapts a planner to the TUI's plan callback.
func planFuncFor(p planner) tui.PlanFunc {
	return func(ctx context.Context, workload models.WorkloadConfig, catalogName string) (*models.AllocationResult, error) {
		return p.Allocate(ctx, workload.Input(), catalogSelection{Name: catalogName})
	}
}
