// ABOUTME: Catalogs command lists the VM size catalogs that can be allocated against
// ABOUTME: Shows presets plus any loaded from a catalog file, or the server's list

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/markalston/vm-allocator/internal/output"
	"github.com/markalston/vm-allocator/models"
)

var catalogsCmd = &cobra.Command{
	Use:   "catalogs",
	Short: "List known VM size catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := GetOutputOptions()
		if err != nil {
			return err
		}
		p, err := newPlanner()
		if err != nil {
			return err
		}
		return runCatalogs(cmd.Context(), p, cmd.OutOrStdout(), opts)
	},
}

func init() {
	rootCmd.AddCommand(catalogsCmd)
}

var catalogColumns = []output.TableColumn[*models.VMSizeCatalog]{
	{
		ColumnConfig: table.ColumnConfig{Name: "NAME"},
		Value:        func(c *models.VMSizeCatalog) string { return c.Name },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "COST/CPU/H", Align: text.AlignRight},
		Value:        func(c *models.VMSizeCatalog) string { return c.CostPerCPU.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "SIZES"},
		Value: func(c *models.VMSizeCatalog) string {
			return strings.Join(lo.Map(c.Sizes, func(s int, _ int) string { return strconv.Itoa(s) }), " ")
		},
	},
}

func runCatalogs(ctx context.Context, p planner, w io.Writer, opts output.Options) error {
	catalogs, err := p.Catalogs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalogs: %w", err)
	}
	return output.Output(w, catalogColumns, opts, catalogs)
}
