// ABOUTME: Health command for the vm-allocator CLI
// ABOUTME: Checks allocation server connectivity and catalog count

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/markalston/vm-allocator/internal/client"
	"github.com/markalston/vm-allocator/internal/output"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check allocation server connectivity",
	Long:  `Check connectivity to the allocation server named by --api-url or VM_ALLOCATOR_API_URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := GetOutputOptions()
		if err != nil {
			return err
		}
		return runHealth(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// healthReport is the serialized form of a health check
type healthReport struct {
	Backend  string `json:"backend"`
	Status   string `json:"status"`
	Catalogs int    `json:"catalogs"`
}

func runHealth(ctx context.Context, w io.Writer, opts output.Options) error {
	url := GetAPIURL()
	if url == "" {
		return errors.New("health requires --api-url or " + envAPIURL)
	}

	resp, err := client.New(url).Health(ctx)
	if err != nil {
		return err
	}

	report := healthReport{Backend: url, Status: resp.Status, Catalogs: resp.Catalogs}
	if !opts.Format.IsTabular() {
		return output.OutputNonTabular(w, opts, report)
	}

	output.KeyValue(w, []lo.Entry[string, any]{
		{Key: "Backend", Value: report.Backend},
		{Key: "Status", Value: report.Status},
		{Key: "Catalogs", Value: fmt.Sprint(report.Catalogs)},
	})
	return nil
}
